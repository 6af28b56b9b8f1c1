package machoreader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractSymbolsNotAMachOFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notmacho.bin")
	if err := os.WriteFile(path, []byte("not a mach-o file"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New()
	if _, err := r.ExtractSymbols(path); err == nil {
		t.Error("ExtractSymbols(non-Mach-O file) should return an error")
	}
}

func TestExtractSymbolsMissingFile(t *testing.T) {
	r := New()
	if _, err := r.ExtractSymbols(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("ExtractSymbols(missing file) should return an error")
	}
}

func TestExtractSectionsMissingFile(t *testing.T) {
	r := New()
	if _, err := r.ExtractSections(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("ExtractSections(missing file) should return an error")
	}
}

func TestExtractDependenciesMissingFile(t *testing.T) {
	r := New()
	if _, err := r.ExtractDependencies(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("ExtractDependencies(missing file) should return an error")
	}
}
