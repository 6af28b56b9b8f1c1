// Package spdx3 renders the component store as SPDX 3.0.0/3.0.1
// JSON-LD. tools-golang (the library spdx23 builds on) has no SPDX 3
// object model, so the document is built as a plain `@graph` of JSON-LD
// elements via encoding/json, following the shape SPDX 3's published
// examples use: one creationInfo element, one SpdxDocument element, one
// File element per component, one synthesizing Package element for the
// whole analysed artifact set, and `contains` relationship elements
// tying the package to its files.
package spdx3

import (
	"encoding/json"
	"io"
	"time"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	"github.com/Heimdall-SBOM/heimdall-sub003/hashservice"
	"github.com/Heimdall-SBOM/heimdall-sub003/sbom/spdxref"
)

const toolVersion = "0.1.0"

var contextURLs = map[string]string{
	"3.0.0": "https://spdx.org/rdf/3.0.0/spdx-context.jsonld",
	"3.0.1": "https://spdx.org/rdf/3.0.1/spdx-context.jsonld",
}

// document is the top-level JSON-LD object.
type document struct {
	Context string           `json:"@context"`
	Graph   []map[string]any `json:"@graph"`
}

// Write renders components as an SPDX 3.0.x JSON-LD document of the given
// version ("3.0.0" or "3.0.1") to w.
func Write(w io.Writer, version string, components []*component.ComponentInfo) error {
	ctx, ok := contextURLs[version]
	if !ok {
		ctx = contextURLs["3.0.1"]
	}

	namespace := "https://spdx.org/spdxdocs/heimdall-" + nowISO8601()
	now := nowISO8601()

	graph := make([]map[string]any, 0, len(components)*2+3)

	graph = append(graph, map[string]any{
		"@id":         "spdx:CreationInfo-1",
		"type":        "CreationInfo",
		"specVersion": version,
		"created":     now,
		"createdBy":   []string{"Tool: Heimdall SBOM Generator-" + toolVersion},
	})

	docID := "spdx:" + spdxref.SanitizeSPDXRef("Document")
	graph = append(graph, map[string]any{
		"@id":          docID,
		"type":         "SpdxDocument",
		"creationInfo": "spdx:CreationInfo-1",
		"name":         "heimdall-sbom",
		"namespace":    namespace,
		"dataLicense":  "CC0-1.0",
	})

	pkgRef := "spdx:" + spdxref.SanitizeSPDXRef("Package")
	graph = append(graph, map[string]any{
		"@id":              pkgRef,
		"type":             "software_Package",
		"creationInfo":     "spdx:CreationInfo-1",
		"name":             "heimdall-sbom",
		"downloadLocation": "NOASSERTION",
	})

	hashes := hashservice.New()

	for _, c := range components {
		ref := "spdx:" + spdxref.SanitizeSPDXRef(c.Name)
		elem := map[string]any{
			"@id":          ref,
			"type":         "software_File",
			"creationInfo": "spdx:CreationInfo-1",
			"name":         c.Name,
			"fileKind":     spdxFileKind(c.FileType),
		}
		if c.Checksum != "" {
			elem["verifiedUsing"] = []map[string]any{
				{"algorithm": "sha256", "hashValue": c.Checksum},
			}
		} else if c.FilePath != "" {
			if sum, err := hashes.HashFile(c.FilePath, hashservice.SHA256); err == nil {
				elem["verifiedUsing"] = []map[string]any{
					{"algorithm": "sha256", "hashValue": sum},
				}
			}
		}
		if c.License != "" && c.License != "NOASSERTION" {
			elem["licenseConcluded"] = c.License
		} else {
			elem["licenseConcluded"] = "NOASSERTION"
		}
		if c.Version != "" {
			elem["software_copyrightText"] = "NOASSERTION"
			elem["software_packageVersion"] = versionOrNoAssertion(c.Version)
		}
		graph = append(graph, elem)

		relID := "spdx:" + spdxref.SanitizeSPDXRef(c.Name+"-contains")
		graph = append(graph, map[string]any{
			"@id":              relID,
			"type":             "Relationship",
			"creationInfo":     "spdx:CreationInfo-1",
			"from":             pkgRef,
			"relationshipType": "contains",
			"to":               []string{ref},
		})
	}

	doc := document{Context: ctx, Graph: graph}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func versionOrNoAssertion(v string) string {
	if v == "" || v == "UNKNOWN" {
		return "NOASSERTION"
	}
	return v
}

func spdxFileKind(t component.FileType) string {
	switch t {
	case component.SourceFile, component.HeaderFile:
		return "source"
	case component.StaticLibrary, component.SharedLibrary, component.Executable, component.Object:
		return "binary"
	default:
		return "other"
	}
}

func nowISO8601() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}
