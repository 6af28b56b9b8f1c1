// Package elfreader implements the ELF branch of the object reader,
// built on the standard library's debug/elf.
package elfreader

import (
	"debug/elf"
	"strings"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	"github.com/Heimdall-SBOM/heimdall-sub003/internal/herrors"
)

// Reader opens and parses ELF object files, executables, and shared
// libraries.
type Reader struct{}

// New returns an ELF Reader.
func New() *Reader { return &Reader{} }

func openOrWrap(op, path string) (*elf.File, error) {
	f, err := elf.Open(path)
	if err != nil {
		if _, ok := err.(*elf.FormatError); ok {
			return nil, herrors.New(herrors.FormatError, op, path, err)
		}
		return nil, herrors.New(herrors.IoError, op, path, err)
	}
	return f, nil
}

// ExtractSymbols walks .symtab if present, else .dynsym. A binary with
// neither (stripped) yields zero symbols, no error.
func (r *Reader) ExtractSymbols(path string) ([]component.SymbolInfo, error) {
	f, err := openOrWrap("elfreader.ExtractSymbols", path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	syms, serr := f.Symbols()
	if serr != nil || len(syms) == 0 {
		syms, _ = f.DynamicSymbols()
	}

	out := make([]component.SymbolInfo, 0, len(syms))
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		out = append(out, component.SymbolInfo{
			Name:       s.Name,
			Address:    s.Value,
			Size:       s.Size,
			Binding:    bindingString(elf.ST_BIND(s.Info)),
			Visibility: visibilityString(elf.ST_VISIBILITY(s.Other)),
			Defined:    s.Section != elf.SHN_UNDEF,
		})
	}
	return out, nil
}

// ExtractSections enumerates section headers, preserving flags verbatim.
func (r *Reader) ExtractSections(path string) ([]component.SectionInfo, error) {
	f, err := openOrWrap("elfreader.ExtractSections", path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make([]component.SectionInfo, 0, len(f.Sections))
	for _, s := range f.Sections {
		out = append(out, component.SectionInfo{
			Name:    s.Name,
			Address: s.Addr,
			Size:    s.Size,
			Flags:   uint64(s.Flags),
		})
	}
	return out, nil
}

// ExtractDependencies returns DT_NEEDED entries in file order.
func (r *Reader) ExtractDependencies(path string) ([]string, error) {
	f, err := openOrWrap("elfreader.ExtractDependencies", path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	needed, err := f.DynString(elf.DT_NEEDED)
	if err != nil {
		// No PT_DYNAMIC segment (static binary, object file, archive
		// member): not an error, just an empty dependency list.
		return nil, nil
	}
	return needed, nil
}

// ExtractVersion returns a version string embedded in the binary: the
// trailing version suffix of the DT_SONAME entry (e.g. "libfoo.so.1.2.3"
// yields "1.2.3"). Binaries without a versioned soname yield "".
func (r *Reader) ExtractVersion(path string) (string, error) {
	f, err := openOrWrap("elfreader.ExtractVersion", path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sonames, err := f.DynString(elf.DT_SONAME)
	if err != nil || len(sonames) == 0 {
		return "", nil
	}
	if i := strings.Index(sonames[0], ".so."); i >= 0 {
		return sonames[0][i+len(".so."):], nil
	}
	return "", nil
}

// ExtractBuildID returns the contents of a .note.gnu.build-id note, if
// present.
func (r *Reader) ExtractBuildID(path string) (string, error) {
	f, err := openOrWrap("elfreader.ExtractBuildID", path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sec := f.Section(".note.gnu.build-id")
	if sec == nil {
		return "", nil
	}
	data, err := sec.Data()
	if err != nil {
		return "", herrors.New(herrors.FormatError, "elfreader.ExtractBuildID", path, err)
	}
	return parseBuildIDNote(data), nil
}

// IsStripped reports whether the file has no .symtab section.
func (r *Reader) IsStripped(path string) (bool, error) {
	f, err := openOrWrap("elfreader.IsStripped", path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return f.Section(".symtab") == nil, nil
}

// HasDebugInfo reports whether the file carries a .debug_info section.
func (r *Reader) HasDebugInfo(path string) (bool, error) {
	f, err := openOrWrap("elfreader.HasDebugInfo", path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return f.Section(".debug_info") != nil, nil
}

// FileType maps an ELF e_type to the core's FileType enum.
func (r *Reader) FileType(path string) (component.FileType, error) {
	f, err := openOrWrap("elfreader.FileType", path)
	if err != nil {
		return component.Unknown, err
	}
	defer f.Close()

	switch f.Type {
	case elf.ET_EXEC, elf.ET_DYN:
		if f.Section(".dynamic") != nil && f.Type == elf.ET_DYN {
			return component.SharedLibrary, nil
		}
		return component.Executable, nil
	case elf.ET_REL:
		return component.Object, nil
	default:
		return component.Unknown, nil
	}
}

func bindingString(b elf.SymBind) string {
	switch b {
	case elf.STB_LOCAL:
		return "local"
	case elf.STB_WEAK:
		return "weak"
	default:
		return "global"
	}
}

func visibilityString(v elf.SymVis) string {
	switch v {
	case elf.STV_HIDDEN:
		return "hidden"
	case elf.STV_PROTECTED:
		return "protected"
	case elf.STV_INTERNAL:
		return "internal"
	default:
		return "default"
	}
}

// parseBuildIDNote extracts the hex build-id payload from a raw
// .note.gnu.build-id section, tolerating a short/malformed note by
// returning "" instead of failing.
func parseBuildIDNote(data []byte) string {
	const noteHeaderSize = 12 // namesz, descsz, type, each uint32
	if len(data) < noteHeaderSize {
		return ""
	}
	descsz := leUint32(data[4:8])
	nameszAligned := align4(leUint32(data[0:4]))
	descStart := noteHeaderSize + int(nameszAligned)
	descEnd := descStart + int(descsz)
	if descEnd > len(data) || descStart > len(data) {
		return ""
	}
	return hexEncode(data[descStart:descEnd])
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func align4(n uint32) uint32 { return (n + 3) &^ 3 }

const hexDigits = "0123456789abcdef"

func hexEncode(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}
