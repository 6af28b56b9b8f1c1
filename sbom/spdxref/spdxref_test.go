package spdxref

import (
	"regexp"
	"testing"
)

var validRef = regexp.MustCompile(`^SPDXRef-[A-Za-z0-9+.-]+$`)

func TestSanitizeSPDXRef(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"lib_foo++.so.1", "SPDXRef-lib-foo+-so-1"},
		{"libutils.a", "SPDXRef-libutils-a"},
		{"my component", "SPDXRef-my-component"},
		{"a/b\\c", "SPDXRef-a-b-c"},
		{"++++", "SPDXRef-++"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeSPDXRef(tt.name)
			if got != tt.want {
				t.Errorf("SanitizeSPDXRef(%q) = %q, want %q", tt.name, got, tt.want)
			}
			if !validRef.MatchString(got) {
				t.Errorf("SanitizeSPDXRef(%q) = %q, does not match %s", tt.name, got, validRef)
			}
		})
	}
}

func TestSanitizeSPDXRefEmptyName(t *testing.T) {
	got := SanitizeSPDXRef("")
	if !validRef.MatchString(got) {
		t.Errorf("SanitizeSPDXRef(\"\") = %q, does not match %s", got, validRef)
	}
}
