// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
)

const (
	sectionHeaderSize = 40

	// Windows' own loader refuses more than 96 sections; a count beyond
	// that means a corrupt header, not a bigger binary.
	maxSectionCount = 96
)

// ImageSectionHeader is one 40-byte entry of the section table.
type ImageSectionHeader struct {
	Name                 [8]byte `json:"-"`
	VirtualSize          uint32  `json:"virtual_size"`
	VirtualAddress       uint32  `json:"virtual_address"`
	SizeOfRawData        uint32  `json:"size_of_raw_data"`
	PointerToRawData     uint32  `json:"pointer_to_raw_data"`
	PointerToRelocations uint32  `json:"pointer_to_relocations"`
	PointerToLineNumbers uint32  `json:"pointer_to_line_numbers"`
	NumberOfRelocations  uint16  `json:"number_of_relocations"`
	NumberOfLineNumbers  uint16  `json:"number_of_line_numbers"`
	Characteristics      uint32  `json:"characteristics"`
}

func (pe *File) parseSectionHeaders() error {
	fh := &pe.NtHeader.FileHeader
	count := uint32(fh.NumberOfSections)
	if count > maxSectionCount {
		return fmt.Errorf("%w: %d sections", ErrMalformed, count)
	}

	tableOffset := pe.DOSHeader.AddressOfNewEXEHeader + 4 + fileHeaderSize +
		uint32(fh.SizeOfOptionalHeader)
	for i := uint32(0); i < count; i++ {
		var hdr ImageSectionHeader
		if err := pe.unpack(&hdr, tableOffset+i*sectionHeaderSize, sectionHeaderSize); err != nil {
			return fmt.Errorf("%w: section header %d", ErrTruncated, i)
		}
		pe.sections = append(pe.sections, hdr)
		// Flags are the Characteristics bits, verbatim.
		pe.Sections = append(pe.Sections, component.SectionInfo{
			Name:    pe.sectionName(&hdr),
			Address: uint64(hdr.VirtualAddress),
			Size:    uint64(hdr.SizeOfRawData),
			Flags:   uint64(hdr.Characteristics),
		})
	}
	return nil
}

// sectionName resolves the 8-byte name field. Object files store longer
// names as "/N", an offset into the COFF string table.
func (pe *File) sectionName(hdr *ImageSectionHeader) string {
	name := cstring(hdr.Name[:])
	if strings.HasPrefix(name, "/") {
		if off, err := strconv.ParseUint(name[1:], 10, 32); err == nil {
			if long := pe.stringTableAt(uint32(off)); long != "" {
				return long
			}
		}
	}
	return name
}

// offsetFromRVA translates a relative virtual address to a file offset
// through the section table. RVAs below the first section resolve
// identically: the headers are mapped one-to-one.
func (pe *File) offsetFromRVA(rva uint32) (uint32, error) {
	for i := range pe.sections {
		hdr := &pe.sections[i]
		span := hdr.VirtualSize
		if span == 0 {
			span = hdr.SizeOfRawData
		}
		if hdr.VirtualAddress <= rva && rva < hdr.VirtualAddress+span {
			return hdr.PointerToRawData + (rva - hdr.VirtualAddress), nil
		}
	}
	if rva < pe.size {
		return rva, nil
	}
	return 0, fmt.Errorf("%w: rva 0x%x not covered by any section", ErrMalformed, rva)
}
