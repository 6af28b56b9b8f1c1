// Package spdxref implements the SPDXRef identifier sanitisation rule
// shared by every SBOM renderer. It is its own leaf
// package, with no dependency on sbom or any of its format
// sub-packages, so both the top-level dispatcher and
// spdx23/spdx3/cyclonedx can import it without creating a cycle.
package spdxref

import "strings"

// SanitizeSPDXRef turns a component name into a valid SPDXRef local
// identifier: prefix "SPDXRef-", substitute disallowed characters
// (space, /, \, ., _, and any other character outside [A-Za-z0-9+-])
// with "-", collapse "+-" to "-", then collapse
// "++" to "+". Each collapse is a single left-to-right pass:
// "lib_foo++.so.1" -> "SPDXRef-lib-foo+-so-1" only holds when "+-" is
// collapsed once, before "++" is collapsed — collapsing either rule to
// a fixed point, or in the opposite order, over-collapses the trailing
// "+-so" down to "-so". The result always matches
// SPDXRef-[A-Za-z0-9+.-]+.
func SanitizeSPDXRef(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '+' || r == '-' || '0' <= r && r <= '9' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	s := b.String()
	s = strings.ReplaceAll(s, "+-", "-")
	s = strings.ReplaceAll(s, "++", "+")
	if s == "" {
		s = "component"
	}
	return "SPDXRef-" + s
}
