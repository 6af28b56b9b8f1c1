// Package dwarfreader extracts source files, compile units, functions,
// and line tables from ELF-hosted DWARF debug sections, on top of the
// standard library's debug/dwarf and debug/elf.
//
// Every exported function is serialised through a single executor
// goroutine (see executor.go): the DWARF read path is not reentrant, and
// the contract is to never dispatch DWARF work from more than one caller
// at a time.
package dwarfreader

import (
	"debug/dwarf"
	"debug/elf"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Heimdall-SBOM/heimdall-sub003/internal/herrors"
)

// Reader extracts DWARF debug information from ELF-hosted debug sections.
type Reader struct {
	exec *executor
}

// New returns a Reader backed by its own single-threaded executor.
func New() *Reader {
	return &Reader{exec: newExecutor()}
}

// Close shuts down the reader's executor goroutine. Safe to call once.
func (r *Reader) Close() { r.exec.close() }

func (r *Reader) open(path string) (*dwarf.Data, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, herrors.New(herrors.UnsupportedFormat, "dwarfreader.open", path, err)
	}
	defer ef.Close()
	d, err := ef.DWARF()
	if err != nil {
		return nil, herrors.New(herrors.UnsupportedFormat, "dwarfreader.open", path, err)
	}
	return d, nil
}

// HasDWARFInfo reports whether path carries parseable DWARF debug
// information.
func (r *Reader) HasDWARFInfo(path string) bool {
	ok := false
	r.exec.run(func() {
		_, err := r.open(path)
		ok = err == nil
	})
	return ok
}

// ExtractSourceFiles appends every absolute source file path referenced by
// the line table or by a DW_AT_decl_file attribute to out, deduplicated.
// On failure out is left untouched and false is returned.
func (r *Reader) ExtractSourceFiles(path string, out *[]string) bool {
	ok := false
	r.exec.run(func() {
		d, err := r.open(path)
		if err != nil {
			return
		}
		seen := make(map[string]struct{})
		for _, f := range *out {
			seen[f] = struct{}{}
		}
		add := func(name string) {
			if name == "" {
				return
			}
			if _, dup := seen[name]; dup {
				return
			}
			seen[name] = struct{}{}
			*out = append(*out, name)
		}
		// cuFiles is the current compile unit's line-table file table;
		// DW_AT_decl_file attributes on subprogram DIEs index into it.
		var cuFiles []*dwarf.LineFile
		reader := d.Reader()
		for {
			entry, err := reader.Next()
			if err != nil || entry == nil {
				break
			}
			switch entry.Tag {
			case dwarf.TagCompileUnit:
				cuFiles = nil
				if lr, lerr := d.LineReader(entry); lerr == nil && lr != nil {
					cuFiles = lr.Files()
					for _, f := range cuFiles {
						if f != nil {
							add(f.Name)
						}
					}
				}
			case dwarf.TagSubprogram:
				idx, ok2 := entry.Val(dwarf.AttrDeclFile).(int64)
				if !ok2 || idx <= 0 || int(idx) >= len(cuFiles) {
					continue
				}
				if f := cuFiles[idx]; f != nil {
					add(f.Name)
				}
			}
		}
		ok = true
	})
	return ok
}

// ExtractCompileUnits appends the DW_AT_name of every DW_TAG_compile_unit
// DIE to out.
func (r *Reader) ExtractCompileUnits(path string, out *[]string) bool {
	ok := false
	r.exec.run(func() {
		d, err := r.open(path)
		if err != nil {
			return
		}
		reader := d.Reader()
		for {
			entry, err := reader.Next()
			if err != nil || entry == nil {
				break
			}
			if entry.Tag != dwarf.TagCompileUnit {
				continue
			}
			if name, ok2 := entry.Val(dwarf.AttrName).(string); ok2 {
				*out = append(*out, name)
			}
		}
		ok = true
	})
	return ok
}

// ExtractFunctions appends the name of every DW_TAG_subprogram DIE that
// has a DW_AT_name to out. Inlined instances without a name are skipped.
func (r *Reader) ExtractFunctions(path string, out *[]string) bool {
	ok := false
	r.exec.run(func() {
		d, err := r.open(path)
		if err != nil {
			return
		}
		reader := d.Reader()
		for {
			entry, err := reader.Next()
			if err != nil || entry == nil {
				break
			}
			if entry.Tag != dwarf.TagSubprogram {
				continue
			}
			if name, ok2 := entry.Val(dwarf.AttrName).(string); ok2 && name != "" {
				*out = append(*out, name)
			}
		}
		ok = true
	})
	return ok
}

// LineEntry is one "<file>:<line>" pair from a compile unit's line
// program.
type LineEntry struct {
	File string
	Line int
}

func (e LineEntry) String() string { return fmt.Sprintf("%s:%d", e.File, e.Line) }

// ExtractLineInfo appends every row of every compile unit's line program
// to out, sorted by file then line for determinism.
func (r *Reader) ExtractLineInfo(path string, out *[]LineEntry) bool {
	ok := false
	r.exec.run(func() {
		d, err := r.open(path)
		if err != nil {
			return
		}
		var collected []LineEntry
		reader := d.Reader()
		for {
			entry, err := reader.Next()
			if err != nil || entry == nil {
				break
			}
			if entry.Tag != dwarf.TagCompileUnit {
				continue
			}
			lr, lerr := d.LineReader(entry)
			if lerr != nil || lr == nil {
				continue
			}
			var le dwarf.LineEntry
			for {
				lerr := lr.Next(&le)
				if lerr != nil {
					break
				}
				if le.File == nil {
					continue
				}
				collected = append(collected, LineEntry{File: filepath.Base(le.File.Name), Line: le.Line})
			}
		}
		sort.Slice(collected, func(i, j int) bool {
			if collected[i].File != collected[j].File {
				return collected[i].File < collected[j].File
			}
			return collected[i].Line < collected[j].Line
		})
		*out = append(*out, collected...)
		ok = true
	})
	return ok
}
