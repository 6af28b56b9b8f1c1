// Package spdx23 renders the component store as an SPDX 2.3 tag-value
// document, built on github.com/spdx/tools-golang's spdx/v2/v2_3
// document model, spdx/v2/common shared types, and the tagvalue
// writer.
package spdx23

import (
	"io"
	"strings"
	"time"

	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/spdx/v2/common"
	v2_3 "github.com/spdx/tools-golang/spdx/v2/v2_3"
	"github.com/spdx/tools-golang/tagvalue"

	"github.com/Heimdall-SBOM/heimdall-sub003/component"
	"github.com/Heimdall-SBOM/heimdall-sub003/hashservice"
	"github.com/Heimdall-SBOM/heimdall-sub003/sbom/spdxref"
)

// toolVersion identifies this generator in every emitted document's
// creation info.
const toolVersion = "0.1.0"

const documentID = "DOCUMENT"
const packageID = "Package"

// Write renders components as a single SPDX 2.3 tag-value document to w.
func Write(w io.Writer, components []*component.ComponentInfo) error {
	namespace := "https://spdx.org/spdxdocs/heimdall-" + nowISO8601()

	doc := &v2_3.Document{
		SPDXVersion:       spdx.Version,
		DataLicense:       spdx.DataLicense,
		SPDXIdentifier:    common.ElementID(documentID),
		DocumentName:      "heimdall-sbom",
		DocumentNamespace: namespace,
		CreationInfo: &v2_3.CreationInfo{
			Created: nowISO8601(),
			Creators: []common.Creator{
				{CreatorType: "Tool", Creator: "Heimdall-SBOM Generator-" + toolVersion},
			},
		},
	}

	pkg := &v2_3.Package{
		PackageName:             "heimdall-sbom",
		PackageSPDXIdentifier:   common.ElementID(packageID),
		PackageDownloadLocation: "NOASSERTION",
		PackageCopyrightText:    "NOASSERTION",
		FilesAnalyzed:           true,
	}

	hashes := hashservice.New()
	files := make([]*v2_3.File, 0, len(components))
	relationships := make([]*v2_3.Relationship, 0, len(components))
	var includedPaths []string
	var excludedNames []string

	for _, c := range components {
		ref := common.ElementID(sanitizeRefBody(c.Name))
		sha1 := propertyOr(c, "hash.sha1", "")
		if sha1 == "" && c.FilePath != "" {
			if d, err := hashes.HashFile(c.FilePath, hashservice.SHA1); err == nil {
				sha1 = d
			}
		}

		checksums := make([]common.Checksum, 0, 2)
		if sha1 != "" {
			checksums = append(checksums, common.Checksum{Algorithm: common.SHA1, Value: sha1})
		}
		if c.Checksum != "" {
			checksums = append(checksums, common.Checksum{Algorithm: common.SHA256, Value: c.Checksum})
		}

		f := &v2_3.File{
			FileName:           c.FilePath,
			FileSPDXIdentifier: ref,
			FileTypes:          []string{spdxFileType(c.FileType)},
			Checksums:          checksums,
			LicenseConcluded:   orNOASSERTION(c.License),
			LicenseInfoInFiles: []string{orNOASSERTION(c.License)},
			FileCopyrightText:  "NOASSERTION",
			FileComment:        evidenceComment(c),
		}
		files = append(files, f)

		relationships = append(relationships, &v2_3.Relationship{
			RefA:         common.MakeDocElementID("", packageID),
			RefB:         common.MakeDocElementID("", string(ref)),
			Relationship: "CONTAINS",
		})

		if isExcludedFromVerification(c) {
			excludedNames = append(excludedNames, c.Name)
		} else if c.FilePath != "" {
			includedPaths = append(includedPaths, c.FilePath)
		}
	}

	if code, err := hashes.VerificationCode(includedPaths, nil); err == nil {
		pkg.PackageVerificationCode = &common.PackageVerificationCode{
			Value:         code,
			ExcludedFiles: excludedNames,
		}
	}

	doc.Packages = []*v2_3.Package{pkg}
	doc.Files = files
	doc.Relationships = relationships

	return tagvalue.Write(doc, w)
}

func spdxFileType(t component.FileType) string {
	switch t {
	case component.SourceFile, component.HeaderFile:
		return "SOURCE"
	case component.StaticLibrary:
		return "ARCHIVE"
	case component.Object, component.SharedLibrary, component.Executable:
		return "BINARY"
	default:
		return "OTHER"
	}
}

func orNOASSERTION(s string) string {
	if s == "" {
		return "NOASSERTION"
	}
	return s
}

func propertyOr(c *component.ComponentInfo, key, fallback string) string {
	if v, ok := c.Property(key); ok {
		return v
	}
	return fallback
}

// isExcludedFromVerification leaves static-library components from which
// no functions or symbols were extracted out of the verification code
// computation; their names are listed as excluded files. No file is
// excluded by its name.
func isExcludedFromVerification(c *component.ComponentInfo) bool {
	return c.FileType == component.StaticLibrary && len(c.Functions()) == 0 && len(c.Symbols) == 0
}

func evidenceComment(c *component.ComponentInfo) string {
	comment := ""
	if sources := c.SourceFiles(); len(sources) > 0 {
		comment += "source files: "
		for i, s := range sources {
			if i > 0 {
				comment += ", "
			}
			comment += s
		}
	}
	keys, props := c.Properties()
	for _, k := range keys {
		if comment != "" {
			comment += "; "
		}
		comment += k + "=" + props[k]
	}
	return comment
}

// sanitizeRefBody applies the SPDXRef sanitisation rule and strips the
// "SPDXRef-" prefix back off, since common.ElementID already
// represents the bare local identifier — tools-golang's tagvalue writer
// adds the "SPDXRef-" prefix itself when it renders the SPDXID tag.
func sanitizeRefBody(name string) string {
	full := spdxref.SanitizeSPDXRef(name)
	return strings.TrimPrefix(full, "SPDXRef-")
}

func nowISO8601() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}
