// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package pe reads the evidence an SBOM needs out of PE/COFF binaries:
// COFF symbols, section headers, imported DLL names, the CodeView build
// id, the VS_VERSION_INFO resource, and the Authenticode signer. It is
// not a general-purpose PE parser — data directories nothing downstream
// consumes are left unparsed.
package pe

import "errors"

// Error taxonomy for the reader. The dispatch layer treats ErrNotPE as
// "try another reader"; everything else is logged against the component
// and is non-fatal for the run.
var (
	// ErrNotPE means the file exists but does not carry PE magic.
	ErrNotPE = errors.New("not a PE file")

	// ErrTruncated means the file ended inside a structure.
	ErrTruncated = errors.New("unexpected end of file")

	// ErrMalformed means a structure is self-inconsistent (an offset or
	// size that cannot be satisfied by the file).
	ErrMalformed = errors.New("malformed PE structure")

	// ErrUnsupported means the file is well-formed but uses a feature
	// this reader does not handle.
	ErrUnsupported = errors.New("unsupported PE feature")
)

// Image signatures.
const (
	ImageDOSSignature   = 0x5A4D // MZ
	ImageDOSZMSignature = 0x4D5A // ZM, seen on ancient non-PE EXEs
	ImageNTSignature    = 0x00004550

	ImageNtOptionalHeader32Magic = 0x10B
	ImageNtOptionalHeader64Magic = 0x20B
)

// Data directory indexes (IMAGE_DIRECTORY_ENTRY_*). Only the directories
// this package parses are named.
const (
	ImageDirectoryEntryImport      = 1
	ImageDirectoryEntryResource    = 2
	ImageDirectoryEntryCertificate = 4
	ImageDirectoryEntryDebug       = 6

	ImageNumberOfDirectoryEntries = 16
)

// IMAGE_FILE_* characteristics consulted by IsDLL/IsEXE.
const (
	ImageFileExecutableImage = 0x0002
	ImageFileDLL             = 0x2000
)

// IMAGE_FILE_MACHINE_* values surfaced through Architecture.
const (
	ImageFileMachineI386  = 0x14C
	ImageFileMachineARM   = 0x1C0
	ImageFileMachineARMNT = 0x1C4
	ImageFileMachineAMD64 = 0x8664
	ImageFileMachineARM64 = 0xAA64
)

// Architecture returns a short name for the file header's Machine field.
func (pe *File) Architecture() string {
	switch pe.NtHeader.FileHeader.Machine {
	case ImageFileMachineI386:
		return "x86"
	case ImageFileMachineAMD64:
		return "x86-64"
	case ImageFileMachineARM, ImageFileMachineARMNT:
		return "arm"
	case ImageFileMachineARM64:
		return "arm64"
	default:
		return "unknown"
	}
}
