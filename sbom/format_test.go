package sbom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
)

func TestParseFormatString(t *testing.T) {
	tests := []struct {
		in      string
		wantFmt Format
		wantVer string
		wantOK  bool
	}{
		{"spdx", FormatSPDX23, "2.3", true},
		{"spdx-2.3", FormatSPDX23, "2.3", true},
		{"spdx-3.0", FormatSPDX3, "3.0.0", true},
		{"spdx-3.0.0", FormatSPDX3, "3.0.0", true},
		{"spdx-3.0.1", FormatSPDX3, "3.0.1", true},
		{"cyclonedx", FormatCycloneDX, "", true},
		{"cyclonedx-1.4", FormatCycloneDX, "1.4", true},
		{"cyclonedx-1.6", FormatCycloneDX, "1.6", true},
		{"bogus", "", "", false},
	}
	for _, tt := range tests {
		gotFmt, gotVer, gotOK := ParseFormatString(tt.in)
		if gotFmt != tt.wantFmt || gotVer != tt.wantVer || gotOK != tt.wantOK {
			t.Errorf("ParseFormatString(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, gotFmt, gotVer, gotOK, tt.wantFmt, tt.wantVer, tt.wantOK)
		}
	}
}

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"out.spdx", FormatSPDX23},
		{"out.spdx.json", FormatSPDX3},
		{"out.json", FormatCycloneDX},
		{"out.xml", FormatCycloneDX},
		{"", ""},
	}
	for _, tt := range tests {
		got, ok := SelectFormat(tt.path)
		if tt.path == "" {
			if ok {
				t.Errorf("SelectFormat(\"\") ok = true, want false")
			}
			continue
		}
		if !ok || got != tt.want {
			t.Errorf("SelectFormat(%q) = (%v, %v), want (%v, true)", tt.path, got, ok, tt.want)
		}
	}
}

func TestWriteEmptyPathIsAnError(t *testing.T) {
	err := Write("", FormatCycloneDX, VersionSelection{}, nil)
	if err == nil {
		t.Error("Write(\"\") should return an error")
	}
}

func TestWriteCycloneDXFallsBackOnUnrecognisedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	comps := []*component.ComponentInfo{component.New("libfoo", "/lib/libfoo.so")}
	if err := Write(path, FormatCycloneDX, VersionSelection{CycloneDX: "9.9"}, comps); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("Write produced an empty file")
	}
}

func TestWriteSPDX23Default(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.spdx")
	comps := []*component.ComponentInfo{component.New("libfoo", "/lib/libfoo.so")}
	if err := Write(path, FormatSPDX23, VersionSelection{}, comps); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("Write produced an empty file")
	}
}

func TestWriteSPDX3FallsBackOnUnrecognisedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.spdx.json")
	comps := []*component.ComponentInfo{component.New("libfoo", "/lib/libfoo.so")}
	if err := Write(path, FormatSPDX3, VersionSelection{SPDX: "9.9.9"}, comps); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("Write produced an empty file")
	}
}
