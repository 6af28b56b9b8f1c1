// Package cyclonedx renders the component store as CycloneDX 1.4/1.6
// JSON, built on github.com/CycloneDX/cyclonedx-go's BOM/Component/
// Metadata model and its BOMEncoder.
package cyclonedx

import (
	"io"
	"strconv"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
)

const toolVersion = "0.1.0"

// Write renders components as a CycloneDX JSON document of the given
// version ("1.4" or "1.6") to w.
func Write(w io.Writer, version string, components []*component.ComponentInfo) error {
	sv := cdx.SpecVersion1_6
	if version == "1.4" {
		sv = cdx.SpecVersion1_4
	}

	bom := cdx.NewBOM()
	bom.SerialNumber = "urn:uuid:" + uuid.New().String()
	bom.Version = 1
	bom.Metadata = &cdx.Metadata{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Tools: &cdx.ToolsChoice{
			Components: &[]cdx.Component{
				{
					Type:    cdx.ComponentTypeApplication,
					Name:    "SBOM Generator",
					Version: toolVersion,
					Supplier: &cdx.OrganizationalEntity{
						Name: "Heimdall",
					},
				},
			},
		},
	}

	out := make([]cdx.Component, 0, len(components))
	for _, c := range components {
		out = append(out, buildComponent(c, sv))
	}
	bom.Components = &out

	encoder := cdx.NewBOMEncoder(w, cdx.BOMFileFormatJSON)
	encoder.SetPretty(true)
	return encoder.EncodeVersion(bom, sv)
}

func buildComponent(c *component.ComponentInfo, sv cdx.SpecVersion) cdx.Component {
	comp := cdx.Component{
		Type:       cdx.ComponentTypeLibrary,
		Name:       c.Name,
		Version:    componentVersion(c),
		PackageURL: purl(c),
	}

	if c.License != "" && c.License != "NOASSERTION" {
		comp.Licenses = &cdx.Licenses{
			cdx.LicenseChoice{License: &cdx.License{ID: c.License}},
		}
	}

	if c.Checksum != "" {
		comp.Hashes = &[]cdx.Hash{{Algorithm: cdx.HashAlgoSHA256, Value: c.Checksum}}
	}

	if c.Homepage != "" && c.Homepage != "NOASSERTION" {
		comp.ExternalReferences = &[]cdx.ExternalReference{
			{Type: cdx.ERTypeWebsite, URL: c.Homepage},
		}
	}

	props := baseProperties(c)
	if sv >= cdx.SpecVersion1_6 {
		comp.Evidence = buildEvidence(c)
		props = append(props, flagProperties(c)...)
		keys, m := c.Properties()
		for _, k := range keys {
			props = append(props, cdx.Property{Name: k, Value: m[k]})
		}
	}
	if len(props) > 0 {
		comp.Properties = &props
	}

	return comp
}

// componentVersion returns c.Version unless it's the tag-value sentinel
// "UNKNOWN", which CycloneDX output renders as NOASSERTION.
func componentVersion(c *component.ComponentInfo) string {
	if c.Version == "" || c.Version == "UNKNOWN" {
		return "NOASSERTION"
	}
	return c.Version
}

// purl builds a best-effort Package URL. Without a package-manager
// classifier available from binary introspection alone, every component
// uses the "generic" type, CycloneDX's documented fallback for package
// types it cannot otherwise infer.
func purl(c *component.ComponentInfo) string {
	if c.Name == "" {
		return ""
	}
	version := componentVersion(c)
	if version == "NOASSERTION" {
		return "pkg:generic/" + c.Name
	}
	return "pkg:generic/" + c.Name + "@" + version
}

func baseProperties(c *component.ComponentInfo) []cdx.Property {
	var props []cdx.Property
	if len(c.Dependencies()) > 0 {
		for _, d := range c.Dependencies() {
			props = append(props, cdx.Property{Name: "heimdall:dependency", Value: d})
		}
	}
	return props
}

// flagProperties carries the CycloneDX 1.6-only debug/stripped/system
// flags and per-component source-file evidence.
func flagProperties(c *component.ComponentInfo) []cdx.Property {
	props := []cdx.Property{
		{Name: "heimdall:containsDebugInfo", Value: strconv.FormatBool(c.ContainsDebugInfo)},
		{Name: "heimdall:isStripped", Value: strconv.FormatBool(c.IsStripped)},
		{Name: "heimdall:isSystemLibrary", Value: strconv.FormatBool(c.IsSystemLibrary)},
	}
	for _, f := range c.SourceFiles() {
		props = append(props, cdx.Property{Name: "heimdall:sourceFile", Value: f})
	}
	return props
}

func buildEvidence(c *component.ComponentInfo) *cdx.Evidence {
	if c.License == "" || c.License == "NOASSERTION" {
		return nil
	}
	return &cdx.Evidence{
		Licenses: &cdx.Licenses{
			cdx.LicenseChoice{License: &cdx.License{ID: c.License}},
		},
	}
}
