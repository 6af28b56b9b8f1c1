// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"fmt"
)

const (
	debugDirEntrySize = 28

	debugTypeCodeView = 2

	cvSignatureRSDS = 0x53445352 // "RSDS", PDB 7.0
	cvSignatureNB10 = 0x3031424E // "NB10", PDB 2.0
)

// parseDebugDirectory scans the debug directory for a CodeView record and
// lifts its PDB signature into BuildID, the PE analogue of an ELF
// build-id note. Other debug entry types (POGO, REPRO, FPO) still count
// as debug info being present but carry nothing the component needs.
func (pe *File) parseDebugDirectory(rva, size uint32) error {
	count := size / debugDirEntrySize
	if count == 0 {
		return nil
	}
	dirOffset, err := pe.offsetFromRVA(rva)
	if err != nil {
		return err
	}

	for i := uint32(0); i < count; i++ {
		raw, err := pe.readBytes(dirOffset+i*debugDirEntrySize, debugDirEntrySize)
		if err != nil {
			return fmt.Errorf("%w: debug directory entry %d", ErrTruncated, i)
		}
		pe.HasDebugInfo = true

		entryType := binary.LittleEndian.Uint32(raw[12:16])
		if entryType != debugTypeCodeView || pe.BuildID != "" {
			continue
		}

		dataOffset := binary.LittleEndian.Uint32(raw[24:28])
		dataSize := binary.LittleEndian.Uint32(raw[16:20])
		if dataOffset == 0 {
			if dataOffset, err = pe.offsetFromRVA(binary.LittleEndian.Uint32(raw[20:24])); err != nil {
				continue
			}
		}
		if err := pe.parseCodeView(dataOffset, dataSize); err != nil {
			pe.logger.Debugf("pe: CodeView record: %v", err)
		}
	}
	return nil
}

// parseCodeView decodes an RSDS (PDB 7.0) or NB10 (PDB 2.0) record.
func (pe *File) parseCodeView(offset, size uint32) error {
	if size < 4 {
		return fmt.Errorf("%w: %d-byte CodeView record", ErrMalformed, size)
	}
	signature, err := pe.readUint32(offset)
	if err != nil {
		return fmt.Errorf("%w: CodeView signature", ErrTruncated)
	}

	switch signature {
	case cvSignatureRSDS:
		// u32 sig, 16-byte GUID, u32 age, NUL-terminated PDB path.
		raw, err := pe.readBytes(offset+4, 20)
		if err != nil {
			return fmt.Errorf("%w: RSDS payload", ErrTruncated)
		}
		pe.BuildID = formatGUID(raw[0:16])
		pe.PDBPath = pe.cstringAt(offset+24, 260)
	case cvSignatureNB10:
		// u32 sig, u32 offset, u32 timestamp, u32 age, PDB path.
		raw, err := pe.readBytes(offset+8, 8)
		if err != nil {
			return fmt.Errorf("%w: NB10 payload", ErrTruncated)
		}
		timestamp := binary.LittleEndian.Uint32(raw[0:4])
		age := binary.LittleEndian.Uint32(raw[4:8])
		pe.BuildID = fmt.Sprintf("%08x%x", timestamp, age)
		pe.PDBPath = pe.cstringAt(offset+16, 260)
	default:
		return fmt.Errorf("%w: CodeView signature 0x%x", ErrUnsupported, signature)
	}
	return nil
}

// formatGUID renders a 16-byte Windows GUID in its canonical hyphenated
// form, lowercased to match how build ids are emitted elsewhere.
func formatGUID(b []byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%x",
		binary.LittleEndian.Uint32(b[0:4]),
		binary.LittleEndian.Uint16(b[4:6]),
		binary.LittleEndian.Uint16(b[6:8]),
		binary.BigEndian.Uint16(b[8:10]),
		b[10:16])
}
