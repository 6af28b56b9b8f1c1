// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	log "github.com/Heimdall-SBOM/heimdall-sub003/internal/obslog"
)

// smallestPESize is the size of the tiniest possible PE image; anything
// shorter cannot hold a DOS header plus an NT header.
const smallestPESize = 97

// Options tunes parsing.
type Options struct {
	// MaxCOFFSymbolsCount caps how many COFF symbol records are walked,
	// as a guard against corrupt NumberOfSymbols values.
	MaxCOFFSymbolsCount uint32

	// A custom logger.
	Logger log.Logger
}

const maxDefaultCOFFSymbolsCount = 0x10000

// A File represents an open PE file and the evidence parsed out of it.
type File struct {
	DOSHeader ImageDOSHeader
	NtHeader  ImageNtHeader

	// Evidence, shaped for the component store.
	Symbols      []component.SymbolInfo
	Sections     []component.SectionInfo
	ImportedDLLs []string
	VersionInfo  map[string]string
	Supplier     string // Authenticode signer subject, "" when unsigned
	BuildID      string // CodeView PDB signature, "" without debug info
	PDBPath      string
	HasDebugInfo bool
	Is64         bool

	sections    []ImageSectionHeader
	strTableOff uint32 // COFF string table file offset, 0 when absent

	data   []byte
	size   uint32
	mapped mmap.MMap
	f      *os.File
	opts   *Options
	logger *log.Helper
}

// New memory-maps the named file. Close releases the mapping.
func New(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	mapped, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	file := newFile(mapped, opts)
	file.mapped = mapped
	file.f = f
	return file, nil
}

// NewBytes wraps an image already in memory.
func NewBytes(data []byte, opts *Options) (*File, error) {
	return newFile(data, opts), nil
}

func newFile(data []byte, opts *Options) *File {
	file := &File{
		data: data,
		size: uint32(len(data)),
	}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}
	if file.opts.MaxCOFFSymbolsCount == 0 {
		file.opts.MaxCOFFSymbolsCount = maxDefaultCOFFSymbolsCount
	}
	if file.opts.Logger == nil {
		file.logger = log.Default
	} else {
		file.logger = log.NewHelper(file.opts.Logger)
	}
	return file
}

// Close unmaps the file and closes its handle.
func (pe *File) Close() error {
	if pe.mapped != nil {
		_ = pe.mapped.Unmap()
	}
	if pe.f != nil {
		return pe.f.Close()
	}
	return nil
}

// Parse walks the headers and every data directory this package reads.
// Header errors are fatal; a failure inside one data directory is logged
// and the rest still parse, so a damaged resource tree cannot cost the
// component its symbols.
func (pe *File) Parse() error {
	if pe.size < smallestPESize {
		return fmt.Errorf("%w: %d bytes is below the smallest valid PE", ErrTruncated, pe.size)
	}
	if err := pe.parseDOSHeader(); err != nil {
		return err
	}
	if err := pe.parseNTHeader(); err != nil {
		return err
	}
	if err := pe.parseSectionHeaders(); err != nil {
		return err
	}

	if err := pe.parseCOFFSymbols(); err != nil {
		pe.logger.Debugf("pe: COFF symbol table: %v", err)
	}

	for _, dir := range []struct {
		index int
		name  string
		parse func(rva, size uint32) error
	}{
		{ImageDirectoryEntryImport, "import", pe.parseImports},
		{ImageDirectoryEntryResource, "resource", pe.parseVersionResource},
		{ImageDirectoryEntryCertificate, "certificate", pe.parseSecurityDirectory},
		{ImageDirectoryEntryDebug, "debug", pe.parseDebugDirectory},
	} {
		entry := pe.NtHeader.OptionalHeader.DataDirectory[dir.index]
		if entry.VirtualAddress == 0 || entry.Size == 0 {
			continue
		}
		if err := dir.parse(entry.VirtualAddress, entry.Size); err != nil {
			pe.logger.Warnf("pe: %s directory: %v", dir.name, err)
		}
	}
	return nil
}
