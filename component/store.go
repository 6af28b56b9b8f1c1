package component

import "fmt"

// Identity is the (name, file_path) tuple that uniquely identifies a
// component within a run.
type Identity struct {
	Name     string
	FilePath string
}

// Store is the in-process component store. It assumes a single mutator
// and is not safe for concurrent enrolment — the link event sink and
// the compiler metadata loader must not call Enrol from more than one
// goroutine at a time.
type Store struct {
	index   map[Identity]int
	order   []Identity
	records []*ComponentInfo
	closed  bool
}

// NewStore returns an empty Component Store.
func NewStore() *Store {
	return &Store{index: make(map[Identity]int)}
}

// Enrol inserts c if its identity is new, or merges into the existing
// record otherwise (never a replace), and returns the stored record. It
// panics if called after Iter has begun: once finalize starts, no
// further enrolment is permitted.
func (s *Store) Enrol(c *ComponentInfo) *ComponentInfo {
	if s.closed {
		panic("component: Enrol called after the store was finalized")
	}
	id := Identity{Name: c.Name, FilePath: c.FilePath}
	if idx, ok := s.index[id]; ok {
		existing := s.records[idx]
		mergeInto(existing, c)
		return existing
	}
	s.index[id] = len(s.records)
	s.order = append(s.order, id)
	s.records = append(s.records, c)
	return c
}

// Lookup returns the record for an identity, if enrolled.
func (s *Store) Lookup(id Identity) (*ComponentInfo, bool) {
	idx, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.records[idx], true
}

// Len reports how many distinct components have been enrolled.
func (s *Store) Len() int { return len(s.records) }

// Iter yields components in insertion order and marks the store closed to
// further enrolment. It must be called exactly once, during finalize.
func (s *Store) Iter() []*ComponentInfo {
	s.closed = true
	out := make([]*ComponentInfo, len(s.records))
	copy(out, s.records)
	return out
}

// mergeInto applies the merge rule: set-typed attributes append items
// not already present while preserving existing order; scalar
// attributes keep the existing value if non-empty, else adopt the
// incoming one.
func mergeInto(dst, src *ComponentInfo) {
	dst.Version = mergeScalar(dst.Version, src.Version, "UNKNOWN")
	dst.Supplier = mergeScalar(dst.Supplier, src.Supplier, "NOASSERTION")
	dst.DownloadLocation = mergeScalar(dst.DownloadLocation, src.DownloadLocation, "NOASSERTION")
	dst.Homepage = mergeScalar(dst.Homepage, src.Homepage, "NOASSERTION")
	dst.MergeLicense(src.License, src.LicenseConfidence)

	if dst.FileType == Unknown {
		dst.FileType = src.FileType
	}
	if dst.FileSize == 0 {
		dst.FileSize = src.FileSize
	}
	if dst.Checksum == "" {
		dst.Checksum = src.Checksum
	}

	if len(src.Symbols) > 0 && len(dst.Symbols) == 0 {
		dst.Symbols = append(dst.Symbols, src.Symbols...)
	} else {
		dst.Symbols = appendNewSymbols(dst.Symbols, src.Symbols)
	}
	if len(src.Sections) > 0 && len(dst.Sections) == 0 {
		dst.Sections = append(dst.Sections, src.Sections...)
	}

	for _, d := range src.Dependencies() {
		dst.AddDependency(d)
	}
	for _, f := range src.SourceFiles() {
		dst.AddSourceFile(f)
	}
	for _, f := range src.Functions() {
		dst.AddFunction(f)
	}
	for _, u := range src.CompileUnits() {
		dst.AddCompileUnit(u)
	}

	keys, props := src.Properties()
	for _, k := range keys {
		if _, ok := dst.Property(k); !ok {
			dst.SetProperty(k, props[k])
		}
	}

	dst.ContainsDebugInfo = dst.ContainsDebugInfo || src.ContainsDebugInfo
	dst.IsStripped = dst.IsStripped || src.IsStripped
	dst.IsSystemLibrary = dst.IsSystemLibrary || src.IsSystemLibrary
	dst.WasProcessed = dst.WasProcessed || src.WasProcessed
}

func mergeScalar(existing, incoming, zero string) string {
	if existing != "" && existing != zero {
		return existing
	}
	if incoming != "" {
		return incoming
	}
	return existing
}

// appendNewSymbols appends src entries to dst, keeping duplicate names
// at different addresses as distinct entries while skipping the exact
// (name, address) repeats idempotence requires.
func appendNewSymbols(dst, src []SymbolInfo) []SymbolInfo {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[symbolKey(s)] = struct{}{}
	}
	for _, s := range src {
		k := symbolKey(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}

func symbolKey(s SymbolInfo) string {
	return fmt.Sprintf("%s@%x", s.Name, s.Address)
}
