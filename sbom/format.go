package sbom

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	"github.com/Heimdall-SBOM/heimdall-sub003/internal/herrors"
	log "github.com/Heimdall-SBOM/heimdall-sub003/internal/obslog"
	"github.com/Heimdall-SBOM/heimdall-sub003/sbom/cyclonedx"
	"github.com/Heimdall-SBOM/heimdall-sub003/sbom/spdx23"
	"github.com/Heimdall-SBOM/heimdall-sub003/sbom/spdx3"
)

// Format selects the output family.
type Format string

const (
	FormatSPDX23    Format = "spdx-2.3"
	FormatSPDX3     Format = "spdx-3.0"
	FormatCycloneDX Format = "cyclonedx"
)

// VersionSelection carries the per-family version string set via
// heimdall_set_spdx_version / heimdall_set_cyclonedx_version.
type VersionSelection struct {
	SPDX      string
	CycloneDX string
}

// ParseFormatString parses a heimdall_set_format value
// ("spdx", "spdx-2.3", "spdx-3.0", "spdx-3.0.0", "spdx-3.0.1",
// "cyclonedx", "cyclonedx-1.4", "cyclonedx-1.6") into a Format and,
// when the string carries a version suffix, that version. Returns
// ok=false for anything unrecognised.
func ParseFormatString(s string) (Format, string, bool) {
	switch {
	case s == "spdx" || s == "spdx-2.3":
		return FormatSPDX23, "2.3", true
	case s == "spdx-3.0" || s == "spdx-3.0.0":
		return FormatSPDX3, "3.0.0", true
	case s == "spdx-3.0.1":
		return FormatSPDX3, "3.0.1", true
	case s == "cyclonedx":
		return FormatCycloneDX, "", true
	case s == "cyclonedx-1.4":
		return FormatCycloneDX, "1.4", true
	case s == "cyclonedx-1.6":
		return FormatCycloneDX, "1.6", true
	default:
		return "", "", false
	}
}

// SelectFormat infers a format family from an output path's extension
// when heimdall_set_format was never called: ".spdx" is SPDX 2.3; a
// ".json" path with "spdx" in the name is SPDX 3; anything else falls
// through to CycloneDX.
func SelectFormat(path string) (Format, bool) {
	if path == "" {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.ToLower(filepath.Base(path))
	switch {
	case ext == ".spdx":
		return FormatSPDX23, true
	case ext == ".json" && strings.Contains(base, "spdx"):
		return FormatSPDX3, true
	default:
		return FormatCycloneDX, true
	}
}

// Write renders components under format/versions and writes exactly one
// file to path. An unrecognised version string falls back to the
// default (SPDX 2.3, or the newest supported version within the
// selected family) with a warning; a write failure is an OutputError
// surfaced to the caller.
func Write(path string, format Format, versions VersionSelection, components []*component.ComponentInfo) error {
	if path == "" {
		return herrors.New(herrors.OutputError, "sbom.Write", path, errEmptyOutputPath)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return herrors.New(herrors.OutputError, "sbom.Write", path, err)
	}
	defer f.Close()

	switch format {
	case FormatSPDX3:
		v := versions.SPDX
		if v != "3.0.0" && v != "3.0.1" {
			log.Default.Warnf("sbom: unrecognised SPDX 3 version %q, using 3.0.1", v)
			v = "3.0.1"
		}
		return wrapOutputError(spdx3.Write(f, v, components), path)
	case FormatCycloneDX:
		v := versions.CycloneDX
		if v != "1.4" && v != "1.6" {
			log.Default.Warnf("sbom: unrecognised CycloneDX version %q, using 1.6", v)
			v = "1.6"
		}
		return wrapOutputError(cyclonedx.Write(f, v, components), path)
	default:
		return wrapOutputError(spdx23.Write(f, components), path)
	}
}

func wrapOutputError(err error, path string) error {
	if err == nil {
		return nil
	}
	return herrors.New(herrors.OutputError, "sbom.Write", path, err)
}

var errEmptyOutputPath = outputPathError{}

type outputPathError struct{}

func (outputPathError) Error() string { return "output path is empty" }
