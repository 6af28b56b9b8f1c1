// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"fmt"
)

const (
	resourceDirSize       = 16
	resourceDirEntrySize  = 8
	resourceDataEntrySize = 16
	resourceSubdirFlag    = 0x80000000

	// RT_VERSION, the resource type holding VS_VERSION_INFO.
	rtVersion = 16

	fixedFileInfoSignature = 0xFEEF04BD
	fixedFileInfoSize      = 52
)

// parseVersionResource walks the resource directory down its three fixed
// levels (type, name, language) to the first RT_VERSION data entry and
// decodes its VS_VERSIONINFO block into the VersionInfo map. Images whose
// resource tree carries no version resource parse to a nil map with no
// error.
func (pe *File) parseVersionResource(rva, size uint32) error {
	base, err := pe.offsetFromRVA(rva)
	if err != nil {
		return err
	}

	dirOffset := base
	for depth := 0; depth < 3; depth++ {
		header, err := pe.readBytes(dirOffset, resourceDirSize)
		if err != nil {
			return fmt.Errorf("%w: resource directory at depth %d", ErrTruncated, depth)
		}
		named := uint32(binary.LittleEndian.Uint16(header[12:14]))
		ids := uint32(binary.LittleEndian.Uint16(header[14:16]))

		next, ok, err := pe.pickVersionEntry(base, dirOffset, named+ids, depth)
		if err != nil {
			return err
		}
		if !ok {
			return nil // no RT_VERSION resource: common, not an error
		}
		if depth < 2 {
			dirOffset = next
			continue
		}
		return pe.parseVersionData(next)
	}
	return nil
}

// pickVersionEntry selects the entry to follow at one directory level: at
// the type level the RT_VERSION id, below that simply the first entry.
// Returns the next directory offset (depth 0..1) or the data-entry offset
// (depth 2).
func (pe *File) pickVersionEntry(base, dirOffset, count uint32, depth int) (uint32, bool, error) {
	for i := uint32(0); i < count; i++ {
		raw, err := pe.readBytes(dirOffset+resourceDirSize+i*resourceDirEntrySize, resourceDirEntrySize)
		if err != nil {
			return 0, false, fmt.Errorf("%w: resource entry", ErrTruncated)
		}
		id := binary.LittleEndian.Uint32(raw[0:4])
		value := binary.LittleEndian.Uint32(raw[4:8])

		if depth == 0 && (id&resourceSubdirFlag != 0 || id != rtVersion) {
			continue // named entries and non-version types
		}
		if depth < 2 {
			if value&resourceSubdirFlag == 0 {
				continue // a leaf where a subdirectory belongs
			}
			return base + value&^uint32(resourceSubdirFlag), true, nil
		}
		if value&resourceSubdirFlag != 0 {
			continue // deeper nesting than the format defines
		}
		return base + value, true, nil
	}
	return 0, false, nil
}

// parseVersionData reads the leaf IMAGE_RESOURCE_DATA_ENTRY and decodes
// the VS_VERSIONINFO block it points at.
func (pe *File) parseVersionData(entryOffset uint32) error {
	raw, err := pe.readBytes(entryOffset, resourceDataEntrySize)
	if err != nil {
		return fmt.Errorf("%w: resource data entry", ErrTruncated)
	}
	dataRVA := binary.LittleEndian.Uint32(raw[0:4])
	dataSize := binary.LittleEndian.Uint32(raw[4:8])

	blobOffset, err := pe.offsetFromRVA(dataRVA)
	if err != nil {
		return err
	}
	blob, err := pe.readBytes(blobOffset, dataSize)
	if err != nil {
		return fmt.Errorf("%w: version resource data", ErrTruncated)
	}

	info, err := parseVersionBlock(blob)
	if err != nil {
		return err
	}
	pe.VersionInfo = info
	return nil
}

// verBlock is the header every VS_VERSIONINFO node shares: a length, a
// value length, a type flag, and a UTF-16 key, padded to a DWORD.
type verBlock struct {
	valueLen uint16
	typ      uint16
	key      string
	valStart int // first byte after key padding
	end      int // one past the node's last byte
}

func readVerBlock(b []byte, offset int) (verBlock, error) {
	if offset+6 > len(b) {
		return verBlock{}, fmt.Errorf("%w: version block header", ErrTruncated)
	}
	length := int(binary.LittleEndian.Uint16(b[offset : offset+2]))
	if length < 6 || offset+length > len(b) {
		return verBlock{}, fmt.Errorf("%w: version block of %d bytes", ErrMalformed, length)
	}
	key, next := utf16CString(b, offset+6)
	return verBlock{
		valueLen: binary.LittleEndian.Uint16(b[offset+2 : offset+4]),
		typ:      binary.LittleEndian.Uint16(b[offset+4 : offset+6]),
		key:      key,
		valStart: align4(next),
		end:      offset + length,
	}, nil
}

// parseVersionBlock decodes a VS_VERSIONINFO tree: the fixed file info
// yields FileVersion/ProductVersion, and every String under
// StringFileInfo's tables lands in the map under its own key
// (CompanyName, ProductName, ...).
func parseVersionBlock(b []byte) (map[string]string, error) {
	root, err := readVerBlock(b, 0)
	if err != nil {
		return nil, err
	}
	if root.key != "VS_VERSION_INFO" {
		return nil, fmt.Errorf("%w: version root key %q", ErrMalformed, root.key)
	}

	out := make(map[string]string)
	cursor := root.valStart
	if root.valueLen >= fixedFileInfoSize && cursor+fixedFileInfoSize <= root.end {
		if binary.LittleEndian.Uint32(b[cursor:cursor+4]) == fixedFileInfoSignature {
			out["FileVersion"] = dottedVersion(
				binary.LittleEndian.Uint32(b[cursor+8:cursor+12]),
				binary.LittleEndian.Uint32(b[cursor+12:cursor+16]))
			out["ProductVersion"] = dottedVersion(
				binary.LittleEndian.Uint32(b[cursor+16:cursor+20]),
				binary.LittleEndian.Uint32(b[cursor+20:cursor+24]))
		}
		cursor = align4(cursor + int(root.valueLen))
	}

	for cursor+6 <= root.end {
		child, err := readVerBlock(b, cursor)
		if err != nil {
			break
		}
		if child.key == "StringFileInfo" {
			collectStringTables(b, child, out)
		}
		cursor = align4(child.end)
	}
	return out, nil
}

// collectStringTables walks StringFileInfo -> StringTable -> String.
func collectStringTables(b []byte, info verBlock, out map[string]string) {
	tableCursor := info.valStart
	for tableCursor+6 <= info.end {
		table, err := readVerBlock(b, tableCursor)
		if err != nil {
			return
		}
		stringCursor := table.valStart
		for stringCursor+6 <= table.end {
			entry, err := readVerBlock(b, stringCursor)
			if err != nil {
				return
			}
			// For text nodes the value length counts UTF-16 words.
			if entry.typ == 1 && entry.key != "" {
				valueEnd := entry.valStart + int(entry.valueLen)*2
				if valueEnd > entry.end {
					valueEnd = entry.end
				}
				if entry.valStart <= valueEnd {
					out[entry.key] = decodeUTF16(b[entry.valStart:valueEnd])
				}
			}
			stringCursor = align4(entry.end)
		}
		tableCursor = align4(table.end)
	}
}

func dottedVersion(ms, ls uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", ms>>16, ms&0xFFFF, ls>>16, ls&0xFFFF)
}
