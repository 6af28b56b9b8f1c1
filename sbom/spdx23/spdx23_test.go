package spdx23

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
)

func TestWriteProducesTagValueDocument(t *testing.T) {
	c := component.New("libfoo.so", "/lib/libfoo.so")
	c.Checksum = "deadbeef"
	c.License = "MIT"
	c.FileType = component.SharedLibrary

	var buf bytes.Buffer
	if err := Write(&buf, []*component.ComponentInfo{c}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"SPDXVersion:",
		"DataLicense:",
		"PackageName: heimdall-sbom",
		"FileName: /lib/libfoo.so",
		"LicenseConcluded: MIT",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n--- output ---\n%s", want, out)
		}
	}
}

func TestSanitizeRefBodyStripsPrefix(t *testing.T) {
	got := sanitizeRefBody("lib_foo++.so.1")
	if strings.HasPrefix(got, "SPDXRef-") {
		t.Errorf("sanitizeRefBody(%q) = %q, still carries the SPDXRef- prefix", "lib_foo++.so.1", got)
	}
	if got != "lib-foo+-so-1" {
		t.Errorf("sanitizeRefBody(%q) = %q, want %q", "lib_foo++.so.1", got, "lib-foo+-so-1")
	}
}

func TestSpdxFileType(t *testing.T) {
	tests := map[component.FileType]string{
		component.SourceFile:    "SOURCE",
		component.HeaderFile:    "SOURCE",
		component.StaticLibrary: "ARCHIVE",
		component.Object:        "BINARY",
		component.SharedLibrary: "BINARY",
		component.Executable:    "BINARY",
		component.Unknown:       "OTHER",
	}
	for ft, want := range tests {
		if got := spdxFileType(ft); got != want {
			t.Errorf("spdxFileType(%v) = %q, want %q", ft, got, want)
		}
	}
}

func TestWriteWithNoComponents(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write(nil) should not error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Write(nil) produced an empty document; expected at least the document/package header")
	}
}
