// Package plugin holds the process-wide state record and dispatch logic
// behind the linker plugin ABI. The C-exported entry points themselves
// live in cmd/heimdallplugin, a package main built with
// -buildmode=c-shared (cgo's //export requires package main); this
// package is the pure-Go, unit-testable logic those thin wrappers call
// into.
//
// Plugin entry points are plain C functions with no user-data parameter,
// so exactly one process-wide state record, guarded by scoped
// initialisation at onload, is threaded through every entry point — no
// hidden singleton beyond State itself.
package plugin

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	log "github.com/Heimdall-SBOM/heimdall-sub003/internal/obslog"
	"github.com/Heimdall-SBOM/heimdall-sub003/linkevents"
	"github.com/Heimdall-SBOM/heimdall-sub003/sbom"
	"github.com/Heimdall-SBOM/heimdall-sub003/sidecar"
)

// State is the single process-wide record the ABI routes through.
type State struct {
	mu sync.Mutex

	Adapter *linkevents.Adapter
	Loader  *sidecar.Loader

	format      sbom.Format
	spdxVersion string
	cdxVersion  string
	outputPath  string
	sidecarDir  string
}

// New builds a State with a Gold-style adapter (deferred enrichment)
// and SPDX 2.3 as the default format, the same fallback used for an
// unrecognised format string.
func New() *State {
	adapter := linkevents.NewGoldAdapter()
	return &State{
		Adapter:     adapter,
		Loader:      sidecar.NewLoader(adapter.Store),
		format:      sbom.FormatSPDX23,
		spdxVersion: "2.3",
		sidecarDir:  defaultSidecarDir(),
	}
}

// SetFormat parses s (e.g. "spdx", "spdx-3.0.1", "cyclonedx-1.6") and
// selects the output family and, if the string carries a version suffix,
// that version too. Unknown values fall back to SPDX 2.3 with a warning
// instead of failing.
func (s *State) SetFormat(raw string) bool {
	family, version, ok := sbom.ParseFormatString(strings.ToLower(strings.TrimSpace(raw)))
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		log.Default.Warnf("plugin: unrecognised format %q, falling back to spdx-2.3", raw)
		s.format = sbom.FormatSPDX23
		s.spdxVersion = "2.3"
		return true
	}
	s.format = family
	switch family {
	case sbom.FormatSPDX23, sbom.FormatSPDX3:
		if version != "" {
			s.spdxVersion = version
		}
	case sbom.FormatCycloneDX:
		if version != "" {
			s.cdxVersion = version
		}
	}
	return true
}

// SetSPDXVersion selects the SPDX version explicitly.
func (s *State) SetSPDXVersion(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spdxVersion = v
	return true
}

// SetCycloneDXVersion selects the CycloneDX version explicitly.
func (s *State) SetCycloneDXVersion(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cdxVersion = v
	return true
}

// SetOutputPath sets the destination file. An empty path is rejected.
func (s *State) SetOutputPath(path string) bool {
	if path == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputPath = path
	if s.format == "" {
		if f, ok := sbom.SelectFormat(path); ok {
			s.format = f
		}
	}
	return true
}

// SetVerbose toggles the shared logging facade between error-only and
// debug-level output.
func (s *State) SetVerbose(verbose bool) {
	log.SetVerbose(verbose)
}

// ProcessInputFile enrols path as an input object/archive/binary.
func (s *State) ProcessInputFile(path string) bool {
	_, err := s.Adapter.ProcessInputFile(path)
	if err != nil {
		log.Default.Errorf("plugin: process_input_file %s: %v", path, err)
		return false
	}
	return true
}

// ProcessLibrary enrols path as a library, resolving its dependencies.
func (s *State) ProcessLibrary(path string) bool {
	_, err := s.Adapter.ProcessLibrary(path)
	if err != nil {
		log.Default.Errorf("plugin: process_library %s: %v", path, err)
		return false
	}
	return true
}

// Finalize loads any compiler sidecars discovered since onload, runs
// deferred enrichment, and writes exactly one SBOM file to the configured
// output path. Returns false on any OutputError; a failure after the
// output file was opened can leave it truncated or partly written.
func (s *State) Finalize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Loader.Load(s.sidecarDir); err != nil {
		log.Default.Warnf("plugin: sidecar scan: %v", err)
	}

	components := s.Adapter.Finalize()

	format := s.format
	if format == "" {
		if f, ok := sbom.SelectFormat(s.outputPath); ok {
			format = f
		} else {
			format = sbom.FormatSPDX23
		}
	}

	err := sbom.Write(s.outputPath, format, sbom.VersionSelection{
		SPDX:      s.spdxVersion,
		CycloneDX: s.cdxVersion,
	}, components)
	if err != nil {
		log.Default.Errorf("plugin: finalize: %v", err)
		return false
	}

	s.Loader.CleanupLoaded()
	return true
}

// defaultSidecarDir is where compiler plugins drop their metadata when
// no directory was configured, consulting TMPDIR/TMP/TEMP before
// falling back to the system temp dir.
func defaultSidecarDir() string {
	base := os.Getenv("TMPDIR")
	if base == "" {
		base = os.Getenv("TMP")
	}
	if base == "" {
		base = os.Getenv("TEMP")
	}
	if base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "heimdall-metadata-"+strconv.Itoa(os.Getpid()))
}
