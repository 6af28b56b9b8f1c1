// Package sidecar loads compiler plugin metadata. It scans a directory
// for files matching heimdall_*.json, each written by a compiler plugin
// for one compilation unit, reconstructs CompilerMetadata/FileComponent
// records, and enrols one component per FileComponent into the
// component store. A bad sidecar is logged and skipped, never fatal to
// the scan.
package sidecar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	"github.com/Heimdall-SBOM/heimdall-sub003/internal/herrors"
	log "github.com/Heimdall-SBOM/heimdall-sub003/internal/obslog"
)

// Hashes mirrors the sidecar "hashes" object.
type Hashes struct {
	SHA256 string `json:"sha256"`
	SHA1   string `json:"sha1"`
	MD5    string `json:"md5"`
	Size   uint64 `json:"file_size"`
}

// LicenseInfo mirrors the sidecar "license" object.
type LicenseInfo struct {
	Name       string  `json:"name"`
	SPDXID     string  `json:"spdxId"`
	Confidence float64 `json:"confidence"`
	Copyright  string  `json:"copyright"`
	Author     string  `json:"author"`
}

// FileComponent is the per-translation-unit record a compiler plugin
// writes, one entry per source or header file it saw.
type FileComponent struct {
	FilePath         string      `json:"file_path"`
	RelativePath     string      `json:"relative_path"`
	FileType         string      `json:"file_type"` // "source", "header", "system_header"
	Hashes           Hashes      `json:"hashes"`
	License          LicenseInfo `json:"license"`
	CopyrightNotice  string      `json:"copyright_notice"`
	Authors          []string    `json:"authors"`
	ModificationTime string      `json:"modification_time"`
	IsSystemFile     bool        `json:"is_system_file"`
	IsGenerated      bool        `json:"is_generated"`
}

// CompilerMetadata is one compilation unit's full sidecar record. The
// loader consumes Sources, Includes and CompilerFlags; the other fields
// are decoded but not used. A value of the wrong JSON type in any field,
// used or not, makes the whole file fail to load.
type CompilerMetadata struct {
	CompilerType    string            `json:"compiler_type"`
	CompilerVersion string            `json:"compiler_version"`
	MainSource      string            `json:"main_source"`
	ObjectFile      string            `json:"object_file"`
	Sources         []FileComponent   `json:"sources"`
	Includes        []FileComponent   `json:"includes"`
	Functions       []string          `json:"functions"`
	Globals         []string          `json:"globals"`
	Macros          []string          `json:"macros"`
	CompilerFlags   map[string]string `json:"compiler_flags"`
	TargetArch      string            `json:"target_architecture"`
	CompiledAt      string            `json:"compiled_at"`
	ProjectRoot     string            `json:"project_root"`
}

// Loader scans a sidecar directory and feeds the Component Store.
type Loader struct {
	Store  *component.Store
	Logger *log.Helper
	// Cleanup, when true, lets CleanupLoaded delete successfully-parsed
	// sidecar files after the SBOM has been emitted. Defaults to false,
	// the safer behaviour.
	Cleanup bool

	loaded []string
}

// NewLoader returns a Loader writing into store.
func NewLoader(store *component.Store) *Loader {
	return &Loader{Store: store, Logger: log.Default}
}

// Load scans dir for heimdall_*.json files in lexicographic order and
// enrols every FileComponent it can parse. A parse failure on one file
// is logged and skipped; Load never returns an error for a single bad
// sidecar — only for a directory it cannot read at all.
func (l *Loader) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return herrors.New(herrors.IoError, "sidecar.Load", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if matchesSidecarName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := l.loadOne(path); err != nil {
			l.Logger.Warnf("sidecar: skipping %s: %v", path, err)
			continue
		}
		l.loaded = append(l.loaded, path)
	}
	return nil
}

// CleanupLoaded removes every sidecar file successfully parsed by Load,
// if l.Cleanup is set. Intended to run after a successful SBOM emit.
// Deletion failures are logged and otherwise ignored — stale sidecars
// left on disk are not a correctness problem for the next run.
func (l *Loader) CleanupLoaded() {
	if !l.Cleanup {
		return
	}
	for _, path := range l.loaded {
		if err := os.Remove(path); err != nil {
			l.Logger.Warnf("sidecar: cleanup failed for %s: %v", path, err)
		}
	}
	l.loaded = nil
}

func matchesSidecarName(name string) bool {
	return strings.HasPrefix(name, "heimdall_") && strings.HasSuffix(name, ".json")
}

func (l *Loader) loadOne(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return herrors.New(herrors.SidecarError, "sidecar.loadOne", path, err)
	}

	var meta CompilerMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return herrors.New(herrors.SidecarError, "sidecar.loadOne", path, err)
	}

	for _, fc := range meta.Sources {
		l.enrol(fc, meta.CompilerFlags)
	}
	for _, fc := range meta.Includes {
		l.enrol(fc, meta.CompilerFlags)
	}
	return nil
}

func (l *Loader) enrol(fc FileComponent, flags map[string]string) {
	c := component.New("", fc.FilePath)
	c.FileType = fileTypeOf(fc.FileType)
	c.Checksum = fc.Hashes.SHA256
	c.FileSize = fc.Hashes.Size
	c.WasProcessed = true
	c.IsSystemLibrary = fc.IsSystemFile

	c.MergeLicense(normaliseSPDX(fc.License.SPDXID), fc.License.Confidence)

	c.SetProperty("hash.sha1", fc.Hashes.SHA1)
	c.SetProperty("hash.md5", fc.Hashes.MD5)
	c.SetProperty("file.size", strconv.FormatUint(fc.Hashes.Size, 10))
	c.SetProperty("license.confidence", strconv.FormatFloat(fc.License.Confidence, 'f', -1, 64))
	c.SetProperty("file.relative_path", fc.RelativePath)
	c.SetProperty("file.modification_time", fc.ModificationTime)

	flagKeys := make([]string, 0, len(flags))
	for k := range flags {
		flagKeys = append(flagKeys, k)
	}
	sort.Strings(flagKeys)
	for _, k := range flagKeys {
		c.SetProperty(k, flags[k])
	}

	l.Store.Enrol(c)
}

func fileTypeOf(s string) component.FileType {
	switch s {
	case "source":
		return component.SourceFile
	case "header", "system_header":
		return component.HeaderFile
	default:
		return component.Unknown
	}
}

// normaliseSPDX passes through whatever the sidecar already recorded; the
// binary heuristic (license package) applies its own normalisation table,
// but sidecar-reported IDs come from the compiler's own license database
// and are trusted as-is, falling back to NOASSERTION when absent.
func normaliseSPDX(id string) string {
	if id == "" {
		return "NOASSERTION"
	}
	return id
}
