// Package machoreader implements the Mach-O branch of the object
// reader, built on github.com/blacktop/go-macho rather than the
// standard library's lower-fidelity debug/macho.
package machoreader

import (
	"fmt"
	"strings"

	macho "github.com/blacktop/go-macho"
	"github.com/blacktop/go-macho/types"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	"github.com/Heimdall-SBOM/heimdall-sub003/internal/herrors"
)

// Reader opens and parses Mach-O object files, executables, and dylibs,
// including the 'fat' (universal) container — the first architecture
// slice is used.
type Reader struct{}

// New returns a Mach-O Reader.
func New() *Reader { return &Reader{} }

func open(op, path string) (*macho.File, error) {
	f, err := macho.Open(path)
	if err != nil {
		if fat, ferr := macho.OpenFat(path); ferr == nil && len(fat.Arches) > 0 {
			return fat.Arches[0].File, nil
		}
		return nil, herrors.New(herrors.FormatError, op, path, err)
	}
	return f, nil
}

// ExtractSymbols walks the LC_SYMTAB command's symbol table.
func (r *Reader) ExtractSymbols(path string) ([]component.SymbolInfo, error) {
	f, err := open("machoreader.ExtractSymbols", path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if f.Symtab == nil {
		return nil, nil
	}
	out := make([]component.SymbolInfo, 0, len(f.Symtab.Syms))
	for _, s := range f.Symtab.Syms {
		if s.Name == "" {
			continue
		}
		defined := s.Sect != 0 && s.Type&types.N_TYPE != types.N_UNDF
		out = append(out, component.SymbolInfo{
			Name:       s.Name,
			Address:    s.Value,
			Binding:    bindingOf(s),
			Visibility: "default",
			Defined:    defined,
		})
	}
	return out, nil
}

func bindingOf(s macho.Symbol) string {
	if s.Type&types.N_EXT != 0 {
		return "global"
	}
	return "local"
}

// ExtractSections enumerates section headers across every segment.
func (r *Reader) ExtractSections(path string) ([]component.SectionInfo, error) {
	f, err := open("machoreader.ExtractSections", path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make([]component.SectionInfo, 0)
	for _, s := range f.Sections {
		out = append(out, component.SectionInfo{
			Name:    fmt.Sprintf("%s,%s", s.Seg, s.Name),
			Address: s.Addr,
			Size:    s.Size,
			Flags:   uint64(s.Flags),
		})
	}
	return out, nil
}

// ExtractDependencies returns the install names of libraries listed via
// LC_LOAD_DYLIB, LC_LOAD_WEAK_DYLIB, and LC_REEXPORT_DYLIB.
func (r *Reader) ExtractDependencies(path string) ([]string, error) {
	f, err := open("machoreader.ExtractDependencies", path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	libs := f.ImportedLibraries()
	return libs, nil
}

// ExtractVersion returns the dylib's own current_version from its
// LC_ID_DYLIB command. Executables and objects carry no dylib ID and
// yield "".
func (r *Reader) ExtractVersion(path string) (string, error) {
	f, err := open("machoreader.ExtractVersion", path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	id := f.DylibID()
	if id == nil {
		return "", nil
	}
	return id.CurrentVersion.String(), nil
}

// ExtractBuildID returns the Mach-O LC_UUID as a hyphenated hex string.
func (r *Reader) ExtractBuildID(path string) (string, error) {
	f, err := open("machoreader.ExtractBuildID", path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	u := f.UUID()
	if u == nil {
		return "", nil
	}
	return strings.ToLower(u.String()), nil
}

// HasDebugInfo reports whether the file carries a __DWARF segment.
func (r *Reader) HasDebugInfo(path string) (bool, error) {
	f, err := open("machoreader.HasDebugInfo", path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return f.Segment("__DWARF") != nil, nil
}

// FileType maps the Mach-O file type to the core's FileType enum.
func (r *Reader) FileType(path string) (component.FileType, error) {
	f, err := open("machoreader.FileType", path)
	if err != nil {
		return component.Unknown, err
	}
	defer f.Close()

	switch f.Type {
	case types.MH_EXECUTE:
		return component.Executable, nil
	case types.MH_DYLIB, types.MH_BUNDLE:
		return component.SharedLibrary, nil
	case types.MH_OBJECT:
		return component.Object, nil
	default:
		return component.Unknown, nil
	}
}
