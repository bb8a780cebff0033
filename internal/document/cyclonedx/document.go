// Package cyclonedx renders CycloneDX 1.5 BOMs in JSON and XML.
package cyclonedx

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/KAWAHARA-souta/alma-sbom/internal/document"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

// Factory builds CycloneDX documents.
type Factory struct {
	opts document.Options
}

// NewFactory creates a new CycloneDX factory
func NewFactory(opts document.Options) *Factory {
	return &Factory{opts: opts.WithDefaults()}
}

// Format implements document.Factory.
func (f *Factory) Format() document.Format {
	return document.FormatCycloneDX
}

// Encodings implements document.Factory.
func (f *Factory) Encodings() []document.Encoding {
	return []document.Encoding{document.EncodingJSON, document.EncodingXML}
}

// Document is a constructed BOM.
type Document struct {
	bom      *BOM
	encoding document.Encoding
}

func (f *Factory) newBOM() *BOM {
	return &BOM{
		XMLNS:        xmlns,
		BOMFormat:    bomFormat,
		SpecVersion:  specVersion,
		SerialNumber: "urn:uuid:" + f.opts.NewUUID().String(),
		Version:      1,
		Metadata: Metadata{
			Timestamp: f.opts.Created().Format(time.RFC3339),
			Tools: []Tool{
				{Vendor: f.opts.Creator, Name: f.opts.ToolName, Version: f.opts.ToolVersion},
			},
		},
	}
}

// FromPackage implements document.Factory. The package is the BOM subject;
// a re-signed package is the second revision of its BOM.
func (f *Factory) FromPackage(pkg *models.Package, enc document.Encoding) (document.Document, error) {
	if err := document.CheckEncoding(f, enc); err != nil {
		return nil, err
	}

	bom := f.newBOM()
	if pkg.Resigned {
		bom.Version++
	}
	component := f.packageComponent(pkg)
	bom.Metadata.Component = &component

	return &Document{bom: bom, encoding: enc}, nil
}

// FromBuild implements document.Factory. The build is the BOM subject and
// its packages are listed as components in build order.
func (f *Factory) FromBuild(build *models.Build, enc document.Encoding) (document.Document, error) {
	if err := document.CheckEncoding(f, enc); err != nil {
		return nil, err
	}

	bom := f.newBOM()
	bom.Metadata.Component = &Component{
		Type:       "application",
		BOMRef:     build.Name(),
		Supplier:   &OrganizationalEntity{Name: f.opts.Creator},
		Name:       build.Name(),
		Version:    build.ID,
		Properties: properties(build.Properties()),
	}
	for _, pkg := range build.Packages {
		bom.Components = append(bom.Components, f.packageComponent(pkg))
	}

	return &Document{bom: bom, encoding: enc}, nil
}

func (f *Factory) packageComponent(pkg *models.Package) Component {
	purl := document.PackageURL(pkg)

	c := Component{
		Type:       "library",
		BOMRef:     purl,
		Supplier:   &OrganizationalEntity{Name: f.opts.Creator},
		Name:       pkg.Identity.Name,
		Version:    pkg.Identity.VersionString(),
		CPE:        document.CPE(pkg),
		PURL:       purl,
		Properties: properties(pkg.Properties()),
	}
	if sum, ok := pkg.Hash(models.SHA256); ok {
		c.Hashes = []Hash{{Algorithm: "SHA-256", Content: sum}}
	}
	return c
}

func properties(props []models.Property) []Property {
	out := make([]Property, 0, len(props))
	for _, p := range props {
		out = append(out, Property{Name: p.Name, Value: p.Value})
	}
	return out
}

// Encoding implements document.Document.
func (d *Document) Encoding() document.Encoding {
	return d.encoding
}

// BOM returns the wire model.
func (d *Document) BOM() *BOM {
	return d.bom
}

// Marshal implements document.Document.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	switch d.encoding {
	case document.EncodingJSON:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d.bom); err != nil {
			return nil, fmt.Errorf("failed to encode CycloneDX JSON: %w", err)
		}
	case document.EncodingXML:
		buf.WriteString(xml.Header)
		enc := xml.NewEncoder(&buf)
		enc.Indent("", "  ")
		if err := enc.Encode(d.bom); err != nil {
			return nil, fmt.Errorf("failed to encode CycloneDX XML: %w", err)
		}
		buf.WriteByte('\n')
	default:
		return nil, fmt.Errorf("unexpected encoding %q", d.encoding)
	}

	return buf.Bytes(), nil
}
