// Package spdx renders SPDX 2.3 documents in JSON, tag-value and YAML.
package spdx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"
	"github.com/spdx/tools-golang/tagvalue"
	spdxyaml "github.com/spdx/tools-golang/yaml"

	"github.com/KAWAHARA-souta/alma-sbom/internal/document"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

const (
	spdxVersion     = "SPDX-2.3"
	dataLicense     = "CC0-1.0"
	documentID      = common.ElementID("DOCUMENT")
	noAssertion     = "NOASSERTION"
	annotationOther = "OTHER"
)

// Factory builds SPDX 2.3 documents.
type Factory struct {
	opts document.Options
}

// NewFactory creates a new SPDX factory
func NewFactory(opts document.Options) *Factory {
	return &Factory{opts: opts.WithDefaults()}
}

// Format implements document.Factory.
func (f *Factory) Format() document.Format {
	return document.FormatSPDX
}

// Encodings implements document.Factory.
func (f *Factory) Encodings() []document.Encoding {
	return []document.Encoding{document.EncodingJSON, document.EncodingTagValue, document.EncodingYAML}
}

// Document is an SPDX 2.3 document under construction. Element identifiers
// are allocated from nextID and never shared with another document.
type Document struct {
	doc      *v2_3.Document
	encoding document.Encoding
	opts     document.Options
	created  string
	nextID   int
}

func (f *Factory) newDocument(name string, enc document.Encoding) (*Document, error) {
	if err := document.CheckEncoding(f, enc); err != nil {
		return nil, err
	}

	created := f.opts.Created().Format(time.RFC3339)
	return &Document{
		doc: &v2_3.Document{
			SPDXVersion:       spdxVersion,
			DataLicense:       dataLicense,
			SPDXIdentifier:    documentID,
			DocumentName:      name,
			DocumentNamespace: fmt.Sprintf("%s/%s-%s", f.opts.NamespaceBase, name, f.opts.NewUUID()),
			CreationInfo: &v2_3.CreationInfo{
				Creators: []common.Creator{
					{CreatorType: "Organization", Creator: f.opts.Creator},
					{CreatorType: "Tool", Creator: f.opts.Tool()},
				},
				Created: created,
			},
		},
		encoding: enc,
		opts:     f.opts,
		created:  created,
	}, nil
}

// FromPackage implements document.Factory.
func (f *Factory) FromPackage(pkg *models.Package, enc document.Encoding) (document.Document, error) {
	d, err := f.newDocument(pkg.Identity.String(), enc)
	if err != nil {
		return nil, err
	}
	d.addPackage(pkg)
	return d, nil
}

// FromBuild implements document.Factory. Build properties annotate the
// document itself; every package is described by the document.
func (f *Factory) FromBuild(build *models.Build, enc document.Encoding) (document.Document, error) {
	d, err := f.newDocument(build.Name(), enc)
	if err != nil {
		return nil, err
	}
	anns := d.annotations(documentID, build.Properties())
	for i := range anns {
		d.doc.Annotations = append(d.doc.Annotations, &anns[i])
	}
	for _, pkg := range build.Packages {
		d.addPackage(pkg)
	}
	return d, nil
}

// Encoding implements document.Document.
func (d *Document) Encoding() document.Encoding {
	return d.encoding
}

// Marshal implements document.Document.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	switch d.encoding {
	case document.EncodingJSON:
		if err := spdxjson.Write(d.doc, &buf); err != nil {
			return nil, fmt.Errorf("failed to write SPDX JSON: %w", err)
		}
		var indented bytes.Buffer
		if err := json.Indent(&indented, buf.Bytes(), "", "  "); err != nil {
			return nil, err
		}
		indented.WriteByte('\n')
		return indented.Bytes(), nil
	case document.EncodingTagValue:
		if err := tagvalue.Write(d.doc, &buf); err != nil {
			return nil, fmt.Errorf("failed to write SPDX tag-value: %w", err)
		}
	case document.EncodingYAML:
		if err := spdxyaml.Write(d.doc, &buf); err != nil {
			return nil, fmt.Errorf("failed to write SPDX YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unexpected encoding %q", d.encoding)
	}

	return buf.Bytes(), nil
}

// Raw exposes the underlying model, mainly for inspection in tests.
func (d *Document) Raw() *v2_3.Document {
	return d.doc
}

func (d *Document) allocateID() common.ElementID {
	id := common.ElementID(strconv.Itoa(d.nextID))
	d.nextID++
	return id
}

func (d *Document) addPackage(pkg *models.Package) {
	id := d.allocateID()

	spdxPkg := &v2_3.Package{
		PackageName:               pkg.Identity.Name,
		PackageSPDXIdentifier:     id,
		PackageVersion:            pkg.Identity.VersionString(),
		PackageFileName:           pkg.Identity.String() + ".rpm",
		PackageSupplier:           &common.Supplier{SupplierType: "Organization", Supplier: d.opts.Creator},
		PackageDownloadLocation:   noAssertion,
		FilesAnalyzed:             false,
		IsFilesAnalyzedTagPresent: true,
		PackageLicenseConcluded:   noAssertion,
		PackageLicenseDeclared:    noAssertion,
		PackageCopyrightText:      noAssertion,
		PackageExternalReferences: []*v2_3.PackageExternalReference{
			{Category: "PACKAGE-MANAGER", RefType: "purl", Locator: document.PackageURL(pkg)},
			{Category: "SECURITY", RefType: "cpe23Type", Locator: document.CPE(pkg)},
		},
	}
	if sum, ok := pkg.Hash(models.SHA256); ok {
		spdxPkg.PackageChecksums = []common.Checksum{{Algorithm: common.SHA256, Value: sum}}
	}
	if built, ok := document.LedgerTime(pkg.Timestamp); ok {
		spdxPkg.BuiltDate = built.Format(time.RFC3339)
	}

	// JSON and YAML nest annotations in their element; tag-value lists them
	// at document level with an explicit SPDXREF.
	anns := d.annotations(id, pkg.Properties())
	if d.encoding == document.EncodingTagValue {
		for i := range anns {
			d.doc.Annotations = append(d.doc.Annotations, &anns[i])
		}
	} else {
		spdxPkg.Annotations = anns
	}

	d.doc.Packages = append(d.doc.Packages, spdxPkg)
	d.doc.Relationships = append(d.doc.Relationships, &v2_3.Relationship{
		RefA:         common.MakeDocElementID("", string(documentID)),
		RefB:         common.MakeDocElementID("", string(id)),
		Relationship: "DESCRIBES",
	})
}

// annotations encodes properties as "name=value" annotations, in order.
func (d *Document) annotations(id common.ElementID, props []models.Property) []v2_3.Annotation {
	anns := make([]v2_3.Annotation, 0, len(props))
	for _, p := range props {
		anns = append(anns, v2_3.Annotation{
			Annotator:                common.Annotator{AnnotatorType: "Tool", Annotator: d.opts.Tool()},
			AnnotationDate:           d.created,
			AnnotationType:           annotationOther,
			AnnotationSPDXIdentifier: common.MakeDocElementID("", string(id)),
			AnnotationComment:        fmt.Sprintf("%s=%s", p.Name, p.Value),
		})
	}
	return anns
}
