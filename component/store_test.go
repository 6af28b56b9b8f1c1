package component

import "testing"

func TestEnrolNewIdentity(t *testing.T) {
	s := NewStore()
	c := New("libfoo", "/lib/libfoo.so")
	got := s.Enrol(c)
	if got != c {
		t.Error("Enrol of a new identity should return the same record it was given")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestEnrolSameIdentityMerges(t *testing.T) {
	s := NewStore()
	first := New("libfoo", "/lib/libfoo.so")
	first.AddDependency("libc.so.6")
	s.Enrol(first)

	second := New("libfoo", "/lib/libfoo.so")
	second.AddDependency("libm.so.6")
	second.Version = "1.2.3"
	merged := s.Enrol(second)

	if merged != first {
		t.Error("Enrol of a repeat identity must merge into and return the existing record, not the new one")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (identity must not duplicate)", s.Len())
	}
	deps := merged.Dependencies()
	if len(deps) != 2 || deps[0] != "libc.so.6" || deps[1] != "libm.so.6" {
		t.Errorf("Dependencies() = %v, want [libc.so.6 libm.so.6] in first-insertion order", deps)
	}
	if merged.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3 adopted from incoming since existing was UNKNOWN", merged.Version)
	}
}

func TestEnrolDifferentPathsAreDistinctIdentities(t *testing.T) {
	s := NewStore()
	s.Enrol(New("libfoo", "/lib/libfoo.so"))
	s.Enrol(New("libfoo", "/usr/lib/libfoo.so"))
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (same name, different file_path, is a distinct identity)", s.Len())
	}
}

func TestLookup(t *testing.T) {
	s := NewStore()
	c := New("libfoo", "/lib/libfoo.so")
	s.Enrol(c)
	id := Identity{Name: "libfoo", FilePath: "/lib/libfoo.so"}
	got, ok := s.Lookup(id)
	if !ok || got != c {
		t.Errorf("Lookup(%v) = (%v, %v), want the enrolled record", id, got, ok)
	}
	if _, ok := s.Lookup(Identity{Name: "missing", FilePath: "/x"}); ok {
		t.Error("Lookup of an unenrolled identity reported ok=true")
	}
}

func TestIterPreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Enrol(New("z", "/z"))
	s.Enrol(New("a", "/a"))
	s.Enrol(New("m", "/m"))
	got := s.Iter()
	want := []string{"z", "a", "m"}
	if len(got) != len(want) {
		t.Fatalf("Iter() returned %d components, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("Iter()[%d].Name = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestEnrolAfterIterPanics(t *testing.T) {
	s := NewStore()
	s.Enrol(New("a", "/a"))
	s.Iter()
	defer func() {
		if recover() == nil {
			t.Error("Enrol after Iter should panic; the store is closed once finalize begins")
		}
	}()
	s.Enrol(New("b", "/b"))
}

func TestMergeKeepsExistingScalarUnlessEmptyOrZeroValue(t *testing.T) {
	s := NewStore()
	first := New("a", "/a")
	first.Supplier = "Acme Corp"
	s.Enrol(first)

	second := New("a", "/a")
	second.Supplier = "Other Corp"
	merged := s.Enrol(second)
	if merged.Supplier != "Acme Corp" {
		t.Errorf("Supplier = %q, want Acme Corp (existing non-empty value must be kept)", merged.Supplier)
	}
}

func TestMergeSymbolsKeepsDuplicateNamesAtDifferentAddresses(t *testing.T) {
	s := NewStore()
	first := New("a", "/a")
	first.Symbols = []SymbolInfo{{Name: "foo", Address: 0x1000}}
	s.Enrol(first)

	second := New("a", "/a")
	second.Symbols = []SymbolInfo{
		{Name: "foo", Address: 0x1000}, // exact repeat, must be skipped
		{Name: "foo", Address: 0x2000}, // same name, different address, must be kept
	}
	merged := s.Enrol(second)
	if len(merged.Symbols) != 2 {
		t.Fatalf("Symbols = %v, want 2 entries (dedup exact repeat, keep same-name-different-address)", merged.Symbols)
	}
	if merged.Symbols[0].Address != 0x1000 || merged.Symbols[1].Address != 0x2000 {
		t.Errorf("Symbols addresses = %#x, %#x, want 0x1000, 0x2000", merged.Symbols[0].Address, merged.Symbols[1].Address)
	}
}

func TestMergeBooleansAreOredNotOverwritten(t *testing.T) {
	s := NewStore()
	first := New("a", "/a")
	first.IsStripped = true
	s.Enrol(first)

	second := New("a", "/a")
	second.ContainsDebugInfo = true
	merged := s.Enrol(second)
	if !merged.IsStripped || !merged.ContainsDebugInfo {
		t.Errorf("IsStripped=%v ContainsDebugInfo=%v, want both true", merged.IsStripped, merged.ContainsDebugInfo)
	}
}

func TestMergePropertiesDoNotOverwriteExisting(t *testing.T) {
	s := NewStore()
	first := New("a", "/a")
	first.SetProperty("k", "first")
	s.Enrol(first)

	second := New("a", "/a")
	second.SetProperty("k", "second")
	merged := s.Enrol(second)
	v, _ := merged.Property("k")
	if v != "first" {
		t.Errorf("Property(k) = %q, want %q (merge must not overwrite an existing property)", v, "first")
	}
}
