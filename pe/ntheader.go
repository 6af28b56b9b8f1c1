// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"fmt"
)

const (
	fileHeaderSize = 20
	coffSymbolSize = 18

	// Optional-header field offsets shared by PE32 and PE32+.
	optSectionAlignmentOffset = 32
	optFileAlignmentOffset    = 36
	optSizeOfImageOffset      = 56
	optSizeOfHeadersOffset    = 60

	// The data directory array starts after the fixed part, which is sixteen
	// bytes longer in PE32+ (ImageBase grows to 8 bytes, BaseOfData goes
	// away, and four size fields double).
	optDataDirectoryOffset32 = 96
	optDataDirectoryOffset64 = 112
)

// ImageNtHeader is the PE signature plus the COFF file header and the
// slice of the optional header this package consumes.
type ImageNtHeader struct {
	Signature      uint32              `json:"signature"`
	FileHeader     ImageFileHeader     `json:"file_header"`
	OptionalHeader ImageOptionalHeader `json:"optional_header"`
}

// ImageFileHeader is the 20-byte COFF header.
type ImageFileHeader struct {
	Machine              uint16 `json:"machine"`
	NumberOfSections     uint16 `json:"number_of_sections"`
	TimeDateStamp        uint32 `json:"time_date_stamp"`
	PointerToSymbolTable uint32 `json:"pointer_to_symbol_table"`
	NumberOfSymbols      uint32 `json:"number_of_symbols"`
	SizeOfOptionalHeader uint16 `json:"size_of_optional_header"`
	Characteristics      uint16 `json:"characteristics"`
}

// ImageOptionalHeader carries the optional-header fields this package
// actually reads, normalised across PE32 and PE32+. The dozens of loader
// fields in between (stack sizes, subsystem, linker versions) are skipped.
type ImageOptionalHeader struct {
	Magic            uint16                                       `json:"magic"`
	SectionAlignment uint32                                       `json:"section_alignment"`
	FileAlignment    uint32                                       `json:"file_alignment"`
	SizeOfImage      uint32                                       `json:"size_of_image"`
	SizeOfHeaders    uint32                                       `json:"size_of_headers"`
	DataDirectory    [ImageNumberOfDirectoryEntries]DataDirectory `json:"data_directories"`
}

// DataDirectory locates one table in the image: an RVA and a size. The
// certificate directory is the one exception whose "RVA" is a raw file
// offset.
type DataDirectory struct {
	VirtualAddress uint32 `json:"virtual_address"`
	Size           uint32 `json:"size"`
}

func (pe *File) parseNTHeader() error {
	ntOffset := pe.DOSHeader.AddressOfNewEXEHeader
	signature, err := pe.readUint32(ntOffset)
	if err != nil {
		return fmt.Errorf("%w: NT signature", ErrTruncated)
	}
	if signature != ImageNTSignature {
		// NE/LE/LX/TE images carry the same MZ stub but are not PE.
		return fmt.Errorf("%w: signature 0x%x at e_lfanew", ErrNotPE, signature)
	}
	pe.NtHeader.Signature = signature

	if err := pe.unpack(&pe.NtHeader.FileHeader, ntOffset+4, fileHeaderSize); err != nil {
		return fmt.Errorf("%w: COFF file header", ErrTruncated)
	}
	fh := &pe.NtHeader.FileHeader
	if fh.PointerToSymbolTable != 0 {
		pe.strTableOff = fh.PointerToSymbolTable + fh.NumberOfSymbols*coffSymbolSize
	}

	optOffset := ntOffset + 4 + fileHeaderSize
	optSize := uint32(fh.SizeOfOptionalHeader)
	magic, err := pe.readUint16(optOffset)
	if err != nil {
		return fmt.Errorf("%w: optional header", ErrTruncated)
	}

	var dirOffset uint32
	switch magic {
	case ImageNtOptionalHeader64Magic:
		pe.Is64 = true
		dirOffset = optDataDirectoryOffset64
	case ImageNtOptionalHeader32Magic:
		dirOffset = optDataDirectoryOffset32
	default:
		return fmt.Errorf("%w: optional header magic 0x%x", ErrMalformed, magic)
	}

	oh := &pe.NtHeader.OptionalHeader
	oh.Magic = magic
	if optSize < dirOffset {
		return fmt.Errorf("%w: optional header of %d bytes has no data directories", ErrMalformed, optSize)
	}
	if oh.SectionAlignment, err = pe.readUint32(optOffset + optSectionAlignmentOffset); err != nil {
		return fmt.Errorf("%w: optional header", ErrTruncated)
	}
	if oh.FileAlignment, err = pe.readUint32(optOffset + optFileAlignmentOffset); err != nil {
		return fmt.Errorf("%w: optional header", ErrTruncated)
	}
	if oh.SizeOfImage, err = pe.readUint32(optOffset + optSizeOfImageOffset); err != nil {
		return fmt.Errorf("%w: optional header", ErrTruncated)
	}
	if oh.SizeOfHeaders, err = pe.readUint32(optOffset + optSizeOfHeadersOffset); err != nil {
		return fmt.Errorf("%w: optional header", ErrTruncated)
	}

	// NumberOfRvaAndSizes sits right before the directory array; corrupt
	// counts are clamped to the 16 the format defines.
	count, err := pe.readUint32(optOffset + dirOffset - 4)
	if err != nil {
		return fmt.Errorf("%w: optional header", ErrTruncated)
	}
	if count > ImageNumberOfDirectoryEntries {
		count = ImageNumberOfDirectoryEntries
	}
	for i := uint32(0); i < count; i++ {
		entryOffset := optOffset + dirOffset + i*8
		if dirOffset+(i+1)*8 > optSize {
			break
		}
		va, err := pe.readUint32(entryOffset)
		if err != nil {
			return fmt.Errorf("%w: data directory %d", ErrTruncated, i)
		}
		size, err := pe.readUint32(entryOffset + 4)
		if err != nil {
			return fmt.Errorf("%w: data directory %d", ErrTruncated, i)
		}
		oh.DataDirectory[i] = DataDirectory{VirtualAddress: va, Size: size}
	}
	return nil
}

// IsDLL reports whether the image is a dynamic-link library.
func (pe *File) IsDLL() bool {
	return pe.NtHeader.FileHeader.Characteristics&ImageFileDLL != 0
}

// IsEXE reports whether the image is a standalone executable.
func (pe *File) IsEXE() bool {
	return pe.NtHeader.FileHeader.Characteristics&ImageFileExecutableImage != 0 && !pe.IsDLL()
}
