// Package arreader implements the ar-archive branch of the object
// reader, built on github.com/blakesmith/ar for the "!<arch>\n" member
// stream, delegating per-member object parsing to debug/elf since ar
// archives on the platforms this core targets carry ELF relocatable
// object members.
package arreader

import (
	"io"
	"os"

	"github.com/blakesmith/ar"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	"github.com/Heimdall-SBOM/heimdall-sub003/format"
	"github.com/Heimdall-SBOM/heimdall-sub003/internal/herrors"
)

// Reader enumerates ar archive members and unions their symbol tables.
// Archives carry no link-time dependency list.
type Reader struct {
	// MemberSymbols parses one member's bytes (already sniffed as ELF) and
	// returns its exported symbols. Defaults to an ELF-only extractor;
	// tests substitute a stub.
	MemberSymbols func(memberName string, data []byte) []component.SymbolInfo
}

// New returns an ar Reader using the default ELF member symbol extractor.
func New() *Reader {
	return &Reader{MemberSymbols: elfMemberSymbols}
}

// Members lists the archive's member names in storage order, skipping the
// special "/", "//", and "__.SYMDEF" bookkeeping entries System V / BSD ar
// variants use.
func (r *Reader) Members(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, herrors.New(herrors.IoError, "arreader.Members", path, err)
	}
	defer f.Close()

	reader := ar.NewReader(f)
	var names []string
	for {
		hdr, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return names, herrors.New(herrors.FormatError, "arreader.Members", path, err)
		}
		if isBookkeepingMember(hdr.Name) {
			continue
		}
		names = append(names, hdr.Name)
	}
	return names, nil
}

// ExtractSymbols returns the union of every object member's symbol table,
// in archive-member order. Non-object members (e.g. a BSD symbol-table
// index) are skipped with no error.
func (r *Reader) ExtractSymbols(path string) ([]component.SymbolInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, herrors.New(herrors.IoError, "arreader.ExtractSymbols", path, err)
	}
	defer f.Close()

	reader := ar.NewReader(f)
	var out []component.SymbolInfo
	for {
		hdr, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, herrors.New(herrors.FormatError, "arreader.ExtractSymbols", path, err)
		}
		if isBookkeepingMember(hdr.Name) {
			continue
		}

		data := make([]byte, hdr.Size)
		if _, err := io.ReadFull(reader, data); err != nil {
			continue // truncated member: skip, not fatal to the archive
		}
		if format.ClassifyBytes(data) != format.ELF {
			continue // non-object member: skipped with no error
		}
		out = append(out, r.MemberSymbols(hdr.Name, data)...)
	}
	return out, nil
}

func isBookkeepingMember(name string) bool {
	switch name {
	case "/", "//", "__.SYMDEF", "__.SYMDEF SORTED":
		return true
	default:
		return false
	}
}
