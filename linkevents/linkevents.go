// Package linkevents receives the hosting linker's stream of
// process_input_file/process_library events and routes each through
// format classification, object reading, hashing, and dependency
// resolution before enrolment into the component store.
//
// The Gold, LLD, and Enhanced adapters all share one enrol/finalize
// contract and differ only in how eagerly they run the license heuristic
// and DWARF reader. That is modeled as one capability set (Adapter) with
// constructors selecting enrichment eagerness, not an interface
// hierarchy.
package linkevents

import (
	"os"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	"github.com/Heimdall-SBOM/heimdall-sub003/depresolver"
	"github.com/Heimdall-SBOM/heimdall-sub003/dwarfreader"
	"github.com/Heimdall-SBOM/heimdall-sub003/hashservice"
	"github.com/Heimdall-SBOM/heimdall-sub003/internal/herrors"
	log "github.com/Heimdall-SBOM/heimdall-sub003/internal/obslog"
	"github.com/Heimdall-SBOM/heimdall-sub003/license"
	"github.com/Heimdall-SBOM/heimdall-sub003/objectreader"
)

// eagerness controls when an Adapter runs the license heuristic and DWARF
// extraction relative to enrolment.
type eagerness int

const (
	// deferred runs license/DWARF enrichment once, at Finalize.
	deferred eagerness = iota
	// eager runs license/DWARF enrichment immediately on every enrol call.
	eager
)

// Adapter is the LinkerHostAdapter capability set: enrol an input file,
// enrol a library, and finalize. Gold and LLD share the deferred
// enrichment strategy; Enhanced runs eagerly.
type Adapter struct {
	Store    *component.Store
	Objects  *objectreader.Reader
	Hashes   *hashservice.Service
	Deps     *depresolver.Resolver
	DWARF    *dwarfreader.Reader
	Licenses *license.Heuristic
	Logger   *log.Helper

	mode    eagerness
	pending []*component.ComponentInfo
}

func newAdapter(mode eagerness) *Adapter {
	return &Adapter{
		Store:    component.NewStore(),
		Objects:  objectreader.New(),
		Hashes:   hashservice.New(),
		Deps:     depresolver.New(),
		DWARF:    dwarfreader.New(),
		Licenses: license.New(),
		Logger:   log.Default,
		mode:     mode,
	}
}

// NewGoldAdapter returns an Adapter matching the plain Gold linker plugin's
// behaviour: enrichment deferred to Finalize.
func NewGoldAdapter() *Adapter { return newAdapter(deferred) }

// NewLLDAdapter returns an Adapter matching the LLD linker plugin's
// behaviour, identical in enrichment timing to Gold (the original's LLD
// adapter shares Gold's deferred strategy and differs only in the ABI
// glue, which is out of scope for this capability set).
func NewLLDAdapter() *Adapter { return newAdapter(deferred) }

// NewEnhancedAdapter returns an Adapter matching EnhancedGoldAdapter: it
// runs the license heuristic and DWARF reader immediately for every
// enrolled component instead of waiting for Finalize.
func NewEnhancedAdapter() *Adapter { return newAdapter(eager) }

// ProcessInputFile implements the heimdall_process_input_file ABI
// operation: classify, read, hash, enrol. Returns the enrolled (possibly
// merged) component.
func (a *Adapter) ProcessInputFile(path string) (*component.ComponentInfo, error) {
	return a.process(path, false)
}

// ProcessLibrary implements heimdall_process_library. Beyond
// ProcessInputFile it also resolves and recursively enrols the library's
// own DT_NEEDED/LC_LOAD_DYLIB/import-table dependencies.
func (a *Adapter) ProcessLibrary(path string) (*component.ComponentInfo, error) {
	return a.process(path, true)
}

func (a *Adapter) process(path string, resolveDeps bool) (*component.ComponentInfo, error) {
	c := component.New("", path)

	info, err := a.Objects.Read(path)
	if err != nil {
		a.Logger.Warnf("linkevents: %s: %v", path, err)
		// A FormatError/UnsupportedFormat file still exists on disk: the
		// component is enrolled with name, path, and checksum. Only an
		// IoError leaves the record bare. An unrecognised format counts
		// as processed: the core is not expected to introspect it.
		if !herrors.Is(err, herrors.IoError) {
			if sum, herr := a.Hashes.HashFile(path, hashservice.SHA256); herr == nil {
				c.Checksum = sum
				c.FileSize = fileSizeOf(path)
			}
			c.WasProcessed = herrors.Is(err, herrors.UnsupportedFormat)
		}
		enrolled := a.Store.Enrol(c)
		return enrolled, nil
	}

	c.FileType = info.FileType
	c.Symbols = info.Symbols
	c.Sections = info.Sections
	c.Supplier = orNoAssertion(info.Supplier)
	c.ContainsDebugInfo = info.HasDebugInfo
	c.IsStripped = info.IsStripped
	c.WasProcessed = true
	if info.Version != "" {
		c.Version = info.Version
	}

	for _, dep := range info.Dependencies {
		c.AddDependency(dep)
	}
	for k, v := range info.VersionInfo {
		c.SetProperty("version."+k, v)
	}
	if info.BuildID != "" {
		c.SetProperty("build_id", info.BuildID)
	}

	if sum, err := a.Hashes.HashFile(path, hashservice.SHA256); err == nil {
		c.Checksum = sum
		c.FileSize = fileSizeOf(path)
	}

	if resolveDeps {
		a.resolveLibraryDeps(c)
	}

	if a.mode == eager {
		a.enrich(c)
	} else {
		a.pending = append(a.pending, c)
	}

	enrolled := a.Store.Enrol(c)
	if resolveDeps {
		enrolled.IsSystemLibrary = enrolled.IsSystemLibrary || a.Deps.IsSystemPath(path)
		for _, token := range c.Dependencies() {
			resolved, ok := c.Property("resolved." + token)
			if !ok {
				continue
			}
			// Libraries already in the store are not re-processed, so
			// dependency cycles terminate.
			id := component.Identity{Name: component.New("", resolved).Name, FilePath: resolved}
			if _, seen := a.Store.Lookup(id); !seen {
				a.process(resolved, true)
			}
		}
	}
	return enrolled, nil
}

// resolveLibraryDeps resolves every recorded dependency token to an
// absolute path via depresolver, recording whichever resolved paths were
// found as component properties. It does not enrol anything itself;
// process enrols each recorded path as a library after c is enrolled.
func (a *Adapter) resolveLibraryDeps(c *component.ComponentInfo) {
	for _, token := range c.Dependencies() {
		if resolved, ok := a.Deps.Resolve(token, nil); ok {
			c.SetProperty("resolved."+token, resolved)
		}
	}
}

// enrich runs the license heuristic, the symmetric version-detection
// probe, and DWARF extraction for c.
func (a *Adapter) enrich(c *component.ComponentInfo) {
	lic := a.Licenses.DetectLicense(c.FilePath, symbolNames(c.Symbols))
	c.MergeLicense(lic, 0)

	if c.Version == "" || c.Version == "UNKNOWN" {
		if v := license.DetectVersion(c.Name, c.FilePath, symbolNames(c.Symbols), false); v != "UNKNOWN" {
			c.Version = v
		}
	}

	if a.DWARF.HasDWARFInfo(c.FilePath) {
		c.ContainsDebugInfo = true
		var sources []string
		if a.DWARF.ExtractSourceFiles(c.FilePath, &sources) {
			for _, s := range sources {
				c.AddSourceFile(s)
			}
		}
		var units []string
		if a.DWARF.ExtractCompileUnits(c.FilePath, &units) {
			for _, u := range units {
				c.AddCompileUnit(u)
			}
		}
		var fns []string
		if a.DWARF.ExtractFunctions(c.FilePath, &fns) {
			for _, fn := range fns {
				c.AddFunction(fn)
			}
		}
	}
}

// Finalize runs deferred enrichment for every component enrolled under a
// deferred-mode Adapter, then returns the Component Store's contents in
// insertion order. It must be called exactly once (component.Store.Iter's
// own contract), after which no further ProcessInputFile/ProcessLibrary
// calls are permitted.
func (a *Adapter) Finalize() []*component.ComponentInfo {
	if a.mode == deferred {
		for _, c := range a.pending {
			a.enrich(c)
		}
	}
	a.pending = nil
	records := a.Store.Iter()
	a.DWARF.Close()
	return records
}

func orNoAssertion(s string) string {
	if s == "" {
		return "NOASSERTION"
	}
	return s
}

func fileSizeOf(path string) uint64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return uint64(fi.Size())
}

func symbolNames(symbols []component.SymbolInfo) []string {
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = s.Name
	}
	return names
}
