// Package spdx3 renders SPDX 3.0 documents as JSON-LD.
package spdx3

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KAWAHARA-souta/alma-sbom/internal/document"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

//go:embed context.json
var jsonldContext []byte

const (
	specVersion    = "3.0.1"
	documentID     = "SPDXRef-DOCUMENT"
	creationInfoID = "_:creationinfo"
	dataLicense    = "https://spdx.org/licenses/CC0-1.0"
	buildType      = "https://build.almalinux.org"
)

// Factory builds SPDX3 documents.
type Factory struct {
	opts document.Options
}

// NewFactory creates a new SPDX3 factory
func NewFactory(opts document.Options) *Factory {
	return &Factory{opts: opts.WithDefaults()}
}

// Format implements document.Factory.
func (f *Factory) Format() document.Format {
	return document.FormatSPDX3
}

// Encodings implements document.Factory.
func (f *Factory) Encodings() []document.Encoding {
	return []document.Encoding{document.EncodingJSONLD}
}

// Document is an SPDX3 element graph. Every element except the document
// itself gets an identifier from nextID, in construction order.
type Document struct {
	encoding document.Encoding
	info     creationInfo
	doc      spdxDocument
	elements []interface{}
	ids      []string
	nextID   int
	creator  string
}

func (f *Factory) newDocument(name string, enc document.Encoding) (*Document, error) {
	if err := document.CheckEncoding(f, enc); err != nil {
		return nil, err
	}

	d := &Document{
		encoding: enc,
		doc: spdxDocument{
			elementBase:        elementBase{Type: "SpdxDocument", SpdxID: documentID, CreationInfo: creationInfoID},
			Name:               name,
			DataLicense:        dataLicense,
			ProfileConformance: []string{"core", "software", "build"},
		},
	}

	d.creator = d.allocateID()
	d.info = creationInfo{
		Type:        "CreationInfo",
		ID:          creationInfoID,
		SpecVersion: specVersion,
		Created:     f.opts.Created().Format(time.RFC3339),
		CreatedBy:   []string{d.creator},
	}
	d.add(d.creator, organization{
		elementBase: d.base("Organization", d.creator),
		Name:        f.opts.Creator,
	})

	return d, nil
}

// FromPackage implements document.Factory.
func (f *Factory) FromPackage(pkg *models.Package, enc document.Encoding) (document.Document, error) {
	d, err := f.newDocument(pkg.Identity.String(), enc)
	if err != nil {
		return nil, err
	}
	id := d.addPackage(pkg)
	d.doc.RootElement = []string{id}
	return d, nil
}

// FromBuild implements document.Factory. The build is the root element and
// is linked to its packages through a single hasOutput relationship.
func (f *Factory) FromBuild(b *models.Build, enc document.Encoding) (document.Document, error) {
	d, err := f.newDocument(b.Name(), enc)
	if err != nil {
		return nil, err
	}

	buildID := d.allocateID()
	node := build{
		elementBase: d.base("build_Build", buildID),
		BuildType:   buildType,
		BuildID:     b.ID,
		Extension:   extension(b.Properties()),
	}
	if started, ok := document.LedgerTime(b.Timestamp); ok {
		node.BuildStartTime = started.Format(time.RFC3339)
	}
	d.add(buildID, node)

	outputs := make([]string, 0, len(b.Packages))
	for _, pkg := range b.Packages {
		outputs = append(outputs, d.addPackage(pkg))
	}

	relID := d.allocateID()
	d.add(relID, relationship{
		elementBase:      d.base("Relationship", relID),
		From:             buildID,
		RelationshipType: "hasOutput",
		To:               outputs,
	})

	d.doc.RootElement = []string{buildID}
	return d, nil
}

func (d *Document) addPackage(pkg *models.Package) string {
	id := d.allocateID()

	node := softwarePackage{
		elementBase: d.base("software_Package", id),
		Name:        pkg.Identity.Name,
		SuppliedBy:  d.creator,
		ExternalIdentifier: []externalIdentifier{
			{Type: "ExternalIdentifier", ExternalIdentifierType: "cpe23", Identifier: document.CPE(pkg)},
		},
		PackageVersion: pkg.Identity.VersionString(),
		PackageURL:     document.PackageURL(pkg),
		Extension:      extension(pkg.Properties()),
	}
	for _, h := range pkg.Hashes {
		node.VerifiedUsing = append(node.VerifiedUsing, hash{Type: "Hash", Algorithm: h.Algorithm.String(), HashValue: h.Value})
	}
	if built, ok := document.LedgerTime(pkg.Timestamp); ok {
		node.BuiltTime = built.Format(time.RFC3339)
	}

	d.add(id, node)
	return id
}

func extension(props []models.Property) []propertiesExtension {
	entries := make([]propertyEntry, 0, len(props))
	for _, p := range props {
		entries = append(entries, propertyEntry{Type: "extension_CdxPropertyEntry", Name: p.Name, Value: p.Value})
	}
	return []propertiesExtension{{Type: "extension_CdxPropertiesExtension", Property: entries}}
}

func (d *Document) allocateID() string {
	id := fmt.Sprintf("SPDXRef-%d", d.nextID)
	d.nextID++
	return id
}

func (d *Document) base(typ, id string) elementBase {
	return elementBase{Type: typ, SpdxID: id, CreationInfo: creationInfoID}
}

func (d *Document) add(id string, node interface{}) {
	d.elements = append(d.elements, node)
	d.ids = append(d.ids, id)
	d.doc.Element = append(d.doc.Element, id)
}

// IDs returns the element identifiers in allocation order, document excluded.
func (d *Document) IDs() []string {
	return append([]string(nil), d.ids...)
}

// Encoding implements document.Document.
func (d *Document) Encoding() document.Encoding {
	return d.encoding
}

// Marshal implements document.Document. The graph is flattened as creation
// info, document, then elements in allocation order.
func (d *Document) Marshal() ([]byte, error) {
	graph := make([]interface{}, 0, len(d.elements)+2)
	graph = append(graph, d.info, d.doc)
	graph = append(graph, d.elements...)

	out := struct {
		Context json.RawMessage `json:"@context"`
		Graph   []interface{}   `json:"@graph"`
	}{
		Context: json.RawMessage(bytes.TrimSpace(jsonldContext)),
		Graph:   graph,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to encode SPDX3 JSON-LD: %w", err)
	}
	return buf.Bytes(), nil
}
