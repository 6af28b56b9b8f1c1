// Package objectreader is the format-agnostic facade over the
// per-format object readers: it classifies a file with format.Classify
// and dispatches to elfreader, machoreader, pe, or arreader, presenting
// one interface to the link event sink instead of a type switch
// scattered across callers.
package objectreader

import (
	"github.com/Heimdall-SBOM/heimdall-sub003/arreader"
	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	"github.com/Heimdall-SBOM/heimdall-sub003/elfreader"
	"github.com/Heimdall-SBOM/heimdall-sub003/format"
	"github.com/Heimdall-SBOM/heimdall-sub003/internal/herrors"
	"github.com/Heimdall-SBOM/heimdall-sub003/machoreader"
	"github.com/Heimdall-SBOM/heimdall-sub003/pe"
)

// Info is the evidence a single dispatched read can gather about a
// file. Fields are left zero-valued when the underlying format doesn't
// carry that kind of evidence.
type Info struct {
	Format       format.Format
	FileType     component.FileType
	Symbols      []component.SymbolInfo
	Sections     []component.SectionInfo
	Dependencies []string
	BuildID      string
	Version      string
	VersionInfo  map[string]string
	Supplier     string
	IsStripped   bool
	HasDebugInfo bool
}

// Reader dispatches to the per-format branch selected by format.Classify.
type Reader struct {
	elf   *elfreader.Reader
	macho *machoreader.Reader
	ar    *arreader.Reader
}

// New returns a Reader with one instance of each per-format branch.
func New() *Reader {
	return &Reader{
		elf:   elfreader.New(),
		macho: machoreader.New(),
		ar:    arreader.New(),
	}
}

// Read classifies path and runs every applicable extraction for its
// format, returning partial Info even when some operations fail: an
// UnsupportedFormat or FormatError on one operation does not abort the
// others.
func (r *Reader) Read(path string) (Info, error) {
	f, err := format.Classify(path)
	if err != nil {
		return Info{}, err
	}

	info := Info{Format: f}
	switch f {
	case format.ELF:
		r.readELF(path, &info)
	case format.MachO:
		r.readMachO(path, &info)
	case format.PE:
		r.readPE(path, &info)
	case format.Archive:
		r.readArchive(path, &info)
	default:
		return info, herrors.New(herrors.UnsupportedFormat, "objectreader.Read", path, nil)
	}
	return info, nil
}

func (r *Reader) readELF(path string, info *Info) {
	if syms, err := r.elf.ExtractSymbols(path); err == nil {
		info.Symbols = syms
	}
	if sections, err := r.elf.ExtractSections(path); err == nil {
		info.Sections = sections
	}
	if deps, err := r.elf.ExtractDependencies(path); err == nil {
		info.Dependencies = deps
	}
	if id, err := r.elf.ExtractBuildID(path); err == nil {
		info.BuildID = id
	}
	if v, err := r.elf.ExtractVersion(path); err == nil {
		info.Version = v
	}
	if stripped, err := r.elf.IsStripped(path); err == nil {
		info.IsStripped = stripped
	}
	if dbg, err := r.elf.HasDebugInfo(path); err == nil {
		info.HasDebugInfo = dbg
	}
	if ft, err := r.elf.FileType(path); err == nil {
		info.FileType = ft
	}
}

func (r *Reader) readMachO(path string, info *Info) {
	if syms, err := r.macho.ExtractSymbols(path); err == nil {
		info.Symbols = syms
	}
	if sections, err := r.macho.ExtractSections(path); err == nil {
		info.Sections = sections
	}
	if deps, err := r.macho.ExtractDependencies(path); err == nil {
		info.Dependencies = deps
	}
	if id, err := r.macho.ExtractBuildID(path); err == nil {
		info.BuildID = id
	}
	if v, err := r.macho.ExtractVersion(path); err == nil {
		info.Version = v
	}
	if dbg, err := r.macho.HasDebugInfo(path); err == nil {
		info.HasDebugInfo = dbg
	}
	if ft, err := r.macho.FileType(path); err == nil {
		info.FileType = ft
	}
}

func (r *Reader) readPE(path string, info *Info) {
	f, err := pe.New(path, nil)
	if err != nil {
		return
	}
	defer f.Close()
	if err := f.Parse(); err != nil {
		return
	}

	info.Symbols = f.Symbols
	info.Sections = f.Sections
	info.Dependencies = f.ImportedDLLs
	info.VersionInfo = f.VersionInfo
	if v, ok := f.VersionInfo["FileVersion"]; ok {
		info.Version = v
	} else if v, ok := f.VersionInfo["ProductVersion"]; ok {
		info.Version = v
	}
	info.Supplier = f.Supplier
	info.BuildID = f.BuildID
	info.HasDebugInfo = f.HasDebugInfo
	switch {
	case f.IsDLL():
		info.FileType = component.SharedLibrary
	case f.IsEXE():
		info.FileType = component.Executable
	default:
		info.FileType = component.Object
	}
}

func (r *Reader) readArchive(path string, info *Info) {
	if syms, err := r.ar.ExtractSymbols(path); err == nil {
		info.Symbols = syms
	}
	info.FileType = component.StaticLibrary
}
