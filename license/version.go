package license

import "regexp"

// versionRe matches dotted version numbers embedded in file names, path
// segments, or symbol names (e.g. "libfoo.so.1.2.3", "foo-1.2.3").
var versionRe = regexp.MustCompile(`\d+(?:\.\d+){1,3}`)

// DetectVersion runs the version probes over the file name, path
// segments, then symbol names, in that order. spdx3 selects the fallback
// when nothing matches ("NOASSERTION" for SPDX 3 output, "UNKNOWN" for
// SPDX 2.3/CycloneDX).
func DetectVersion(fileName, path string, symbols []string, spdx3 bool) string {
	if v := versionRe.FindString(fileName); v != "" {
		return v
	}
	if v := versionRe.FindString(path); v != "" {
		return v
	}
	for _, s := range symbols {
		if v := versionRe.FindString(s); v != "" {
			return v
		}
	}
	if spdx3 {
		return NOASSERTION
	}
	return UnknownVersion
}
