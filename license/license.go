// Package license implements the license/version heuristic: a
// best-effort, never-fatal three-probe pipeline (content, path, symbols)
// producing a normalised SPDX short identifier, plus symmetric version
// detection. The content probe is backed by
// github.com/google/licensecheck rather than a hand-rolled keyword
// scanner.
package license

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/google/licensecheck"
)

// NOASSERTION is the SPDX fallback for anything the tables do not
// recognise.
const NOASSERTION = "NOASSERTION"

// UnknownVersion is the SPDX 2.3 fallback version string.
const UnknownVersion = "UNKNOWN"

const contentScanLines = 50

// pathTable maps a path fragment to an SPDX short identifier. The
// heuristic tables are data, not code, so tests can extend them without
// touching the probes.
var pathTable = []struct {
	fragment string
	spdx     string
}{
	{"/openssl", "Apache-2.0"},
	{"libssl", "Apache-2.0"},
	{"libcrypto", "Apache-2.0"},
	{"/zlib", "Zlib"},
	{"/bzip2", "BSD-3-Clause"},
	{"/curl", "MIT"},
	{"/boost", "BSL-1.0"},
	{"/gnu/", "GPL-3.0-only"},
	{"/glibc", "LGPL-2.1-only"},
}

// symbolTable maps a distinctive symbol-name prefix to an SPDX short
// identifier.
var symbolTable = []struct {
	prefix string
	spdx   string
}{
	{"SSL_", "Apache-2.0"},
	{"EVP_", "Apache-2.0"},
	{"BZ2_", "BSD-3-Clause"},
	{"curl_", "MIT"},
	{"gz", "Zlib"},
}

// normaliseTable maps whatever licensecheck or the tables above produce
// to a small set of well-known SPDX short identifiers. Anything absent
// maps to NOASSERTION.
var normaliseTable = map[string]string{
	"MIT":             "MIT",
	"Apache-2.0":      "Apache-2.0",
	"GPL-3.0":         "GPL-3.0-only",
	"GPL-3.0-only":    "GPL-3.0-only",
	"GPL-2.0":         "GPL-2.0-only",
	"GPL-2.0-only":    "GPL-2.0-only",
	"LGPL-3.0":        "LGPL-3.0-only",
	"LGPL-3.0-only":   "LGPL-3.0-only",
	"LGPL-2.1":        "LGPL-2.1-only",
	"LGPL-2.1-only":   "LGPL-2.1-only",
	"BSD-3-Clause":  "BSD-3-Clause",
	"Zlib":          "NOASSERTION", // not in the normalised short-id set
	"BSL-1.0":       "NOASSERTION",
}

func normalise(id string) string {
	if v, ok := normaliseTable[id]; ok {
		return v
	}
	return NOASSERTION
}

// Heuristic runs the three ordered probes.
type Heuristic struct{}

// New builds a Heuristic using licensecheck's built-in license corpus.
func New() *Heuristic {
	return &Heuristic{}
}

// DetectLicense runs content, then path, then symbol probes in order and
// returns the first non-empty match, normalised to a valid SPDX short
// identifier (or NOASSERTION).
func (h *Heuristic) DetectLicense(path string, symbols []string) string {
	if id := h.scanContent(path); id != "" {
		return normalise(id)
	}
	if id := matchPath(path); id != "" {
		return normalise(id)
	}
	if id := matchSymbols(symbols); id != "" {
		return normalise(id)
	}
	return NOASSERTION
}

func (h *Heuristic) scanContent(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var b strings.Builder
	sc := bufio.NewScanner(f)
	lines := 0
	for sc.Scan() && lines < contentScanLines {
		b.WriteString(sc.Text())
		b.WriteByte('\n')
		lines++
	}
	text := b.String()
	if !looksLikeLicenseText(text) {
		return ""
	}
	if m := spdxTagRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	cov := licensecheck.Scan([]byte(text))
	if len(cov.Match) == 0 {
		return ""
	}
	return cov.Match[0].ID
}

var licenseHintRe = regexp.MustCompile(`(?i)copyright|\(c\)|©|@author|license|spdx-license-identifier`)

// spdxTagRe captures the identifier of an explicit SPDX-License-Identifier
// tag, which the content probe takes as-is before consulting licensecheck.
var spdxTagRe = regexp.MustCompile(`(?i)SPDX-License-Identifier:\s*([A-Za-z0-9.+-]+)`)

func looksLikeLicenseText(s string) bool {
	return licenseHintRe.MatchString(s)
}

func matchPath(path string) string {
	lower := strings.ToLower(path)
	for _, e := range pathTable {
		if strings.Contains(lower, e.fragment) {
			return e.spdx
		}
	}
	return ""
}

func matchSymbols(symbols []string) string {
	for _, s := range symbols {
		for _, e := range symbolTable {
			if strings.HasPrefix(s, e.prefix) {
				return e.spdx
			}
		}
	}
	return ""
}
