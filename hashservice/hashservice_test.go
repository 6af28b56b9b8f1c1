package hashservice

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashFileSHA256OfEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s := New()
	digest, err := s.HashFile(path, SHA256)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if digest != emptySHA256 {
		t.Errorf("HashFile(empty) = %s, want %s", digest, emptySHA256)
	}
	if len(digest) != 64 {
		t.Errorf("digest length = %d, want 64", len(digest))
	}
}

func TestHashFileMemoizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New()
	d1, err := s.HashFile(path, SHA256)
	if err != nil {
		t.Fatal(err)
	}

	// Mutate the file on disk; a memoised service must still return the
	// first digest it ever computed for this path within the run.
	if err := os.WriteFile(path, []byte("goodbye"), 0o644); err != nil {
		t.Fatal(err)
	}
	d2, err := s.HashFile(path, SHA256)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Errorf("HashFile not memoised: first=%s second=%s", d1, d2)
	}
}

func TestHashFileRelativeAndAbsoluteAlias(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New()
	abs, err := s.HashFile(path, SHA256)
	if err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	rel, err := s.HashFile("a.bin", SHA256)
	if err != nil {
		t.Fatal(err)
	}
	if abs != rel {
		t.Errorf("relative and absolute paths to the same file diverged: %s vs %s", rel, abs)
	}
}

func TestHashBytes(t *testing.T) {
	digest := HashBytes(nil, SHA256)
	if len(digest) != 64 {
		t.Errorf("HashBytes(nil) length = %d, want 64", len(digest))
	}
}

func TestVerificationCodeOrdering(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.bin")
	pathB := filepath.Join(dir, "b.bin")
	if err := os.WriteFile(pathA, []byte("aaaa"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathB, []byte("bbbb"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New()
	code1, err := s.VerificationCode([]string{pathA, pathB}, nil)
	if err != nil {
		t.Fatal(err)
	}
	code2, err := s.VerificationCode([]string{pathB, pathA}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if code1 != code2 {
		t.Errorf("verification code is not order-independent: %s vs %s", code1, code2)
	}
	if len(code1) != 40 {
		t.Errorf("verification code length = %d, want 40 (SHA-1 hex)", len(code1))
	}
}

func TestVerificationCodeExcludedNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	if err := os.WriteFile(path, []byte("aaaa"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New()
	code, err := s.VerificationCode([]string{path}, []string{"generated.jar", "manifest.txt"})
	if err != nil {
		t.Fatal(err)
	}
	want := "(excludes: generated.jar,manifest.txt)"
	if got := code[len(code)-len(want):]; got != want {
		t.Errorf("verification code excluded-names suffix = %q, want %q", got, want)
	}
}
