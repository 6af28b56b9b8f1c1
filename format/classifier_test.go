package format

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyBytes(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Format
	}{
		{"elf", []byte{0x7F, 'E', 'L', 'F', 2, 1, 1, 0}, ELF},
		{"macho-64-le", []byte{0xCF, 0xFA, 0xED, 0xFE, 0, 0, 0, 0}, MachO},
		{"macho-fat-be", []byte{0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 2}, MachO},
		{"macho-fat-le", []byte{0xBE, 0xBA, 0xFE, 0xCA, 0, 0, 0, 2}, MachO},
		{"pe", []byte("MZ\x90\x00\x03\x00\x00\x00"), PE},
		{"archive", []byte("!<arch>\n"), Archive},
		{"unknown", []byte{0, 0, 0, 0, 0, 0, 0, 0}, Unknown},
		{"empty", nil, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyBytes(tt.head); got != tt.want {
				t.Errorf("ClassifyBytes(%v) = %v, want %v", tt.head, got, tt.want)
			}
		})
	}
}

func TestClassifyZeroByteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Classify(path)
	if err != nil {
		t.Fatalf("Classify: unexpected error %v", err)
	}
	if got != Unknown {
		t.Errorf("Classify(zero-byte file) = %v, want Unknown", got)
	}
}

func TestClassifyMissingFile(t *testing.T) {
	_, err := Classify(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("Classify: expected an IoError for a missing file")
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		f    Format
		want string
	}{
		{ELF, "ELF"},
		{MachO, "Mach-O"},
		{PE, "PE"},
		{Archive, "ar"},
		{Unknown, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.f, got, tt.want)
		}
	}
}
