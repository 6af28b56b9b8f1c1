package arreader

import (
	"bytes"
	"debug/elf"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
)

// elfMemberSymbols parses an in-memory ELF relocatable object (one ar
// member) and returns its defined/undefined symbols. Parse failures
// yield no symbols rather than propagating an error: non-object and
// malformed members are skipped, never fatal to the archive.
func elfMemberSymbols(memberName string, data []byte) []component.SymbolInfo {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil || len(syms) == 0 {
		syms, _ = f.DynamicSymbols()
	}
	out := make([]component.SymbolInfo, 0, len(syms))
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		out = append(out, component.SymbolInfo{
			Name:    s.Name,
			Address: s.Value,
			Size:    s.Size,
			Defined: s.Section != elf.SHN_UNDEF,
		})
	}
	return out
}
