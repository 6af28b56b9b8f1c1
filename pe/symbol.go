// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"fmt"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
)

// IMAGE_SYM_CLASS_EXTERNAL marks a symbol visible across objects; every
// other storage class maps to local binding.
const symClassExternal = 2

// parseCOFFSymbols walks the deprecated-but-still-emitted COFF symbol
// table, producing one component.SymbolInfo per primary record. Auxiliary
// records are skipped via each record's aux count. Images without a
// symbol table (the normal case for linked executables) parse to zero
// symbols with no error.
func (pe *File) parseCOFFSymbols() error {
	fh := &pe.NtHeader.FileHeader
	tableOffset := fh.PointerToSymbolTable
	total := fh.NumberOfSymbols
	if tableOffset == 0 || total == 0 {
		return nil
	}
	if total > pe.opts.MaxCOFFSymbolsCount {
		pe.logger.Debugf("pe: clamping %d COFF symbols to %d", total, pe.opts.MaxCOFFSymbolsCount)
		total = pe.opts.MaxCOFFSymbolsCount
	}

	for i := uint32(0); i < total; i++ {
		raw, err := pe.readBytes(tableOffset+i*coffSymbolSize, coffSymbolSize)
		if err != nil {
			return fmt.Errorf("%w: COFF symbol %d", ErrTruncated, i)
		}

		name := pe.symbolName(raw[0:8])
		value := binary.LittleEndian.Uint32(raw[8:12])
		sectionNumber := int16(binary.LittleEndian.Uint16(raw[12:14]))
		storageClass := raw[16]
		auxCount := uint32(raw[17])

		if name != "" {
			pe.Symbols = append(pe.Symbols, component.SymbolInfo{
				Name:       name,
				Address:    uint64(value),
				Binding:    bindingOf(storageClass),
				Visibility: "default",
				Defined:    sectionNumber > 0,
			})
		}
		i += auxCount
	}
	return nil
}

// symbolName decodes the 8-byte name field: an inline NUL-padded short
// name, or zeroes followed by an offset into the COFF string table.
func (pe *File) symbolName(field []byte) string {
	if binary.LittleEndian.Uint32(field[0:4]) != 0 {
		return cstring(field)
	}
	return pe.stringTableAt(binary.LittleEndian.Uint32(field[4:8]))
}

// stringTableAt reads a NUL-terminated name at the given offset into the
// COFF string table, which sits immediately after the symbol table. The
// offset counts from the table's 4-byte length prefix.
func (pe *File) stringTableAt(offset uint32) string {
	if pe.strTableOff == 0 || offset < 4 {
		return ""
	}
	return pe.cstringAt(pe.strTableOff+offset, 512)
}

func bindingOf(storageClass uint8) string {
	if storageClass == symClassExternal {
		return "global"
	}
	return "local"
}
