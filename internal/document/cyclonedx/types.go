package cyclonedx

import "encoding/xml"

const (
	bomFormat   = "CycloneDX"
	specVersion = "1.5"
	xmlns       = "http://cyclonedx.org/schema/bom/1.5"
)

// BOM is the document root.
type BOM struct {
	XMLName      xml.Name    `json:"-" xml:"bom"`
	XMLNS        string      `json:"-" xml:"xmlns,attr"`
	BOMFormat    string      `json:"bomFormat" xml:"-"`
	SpecVersion  string      `json:"specVersion" xml:"-"`
	SerialNumber string      `json:"serialNumber" xml:"serialNumber,attr"`
	Version      int         `json:"version" xml:"version,attr"`
	Metadata     Metadata    `json:"metadata" xml:"metadata"`
	Components   []Component `json:"components,omitempty" xml:"components>component,omitempty"`
}

// Metadata describes the BOM and its subject.
type Metadata struct {
	Timestamp string     `json:"timestamp" xml:"timestamp"`
	Tools     []Tool     `json:"tools" xml:"tools>tool"`
	Component *Component `json:"component,omitempty" xml:"component,omitempty"`
}

// Tool is the generator of the BOM.
type Tool struct {
	Vendor  string `json:"vendor" xml:"vendor"`
	Name    string `json:"name" xml:"name"`
	Version string `json:"version" xml:"version"`
}

// OrganizationalEntity names a supplier.
type OrganizationalEntity struct {
	Name string `json:"name" xml:"name"`
}

// Component is a package or a build. Field order follows the XML schema
// sequence.
type Component struct {
	Type       string                `json:"type" xml:"type,attr"`
	BOMRef     string                `json:"bom-ref,omitempty" xml:"bom-ref,attr,omitempty"`
	Supplier   *OrganizationalEntity `json:"supplier,omitempty" xml:"supplier,omitempty"`
	Name       string                `json:"name" xml:"name"`
	Version    string                `json:"version,omitempty" xml:"version,omitempty"`
	Hashes     []Hash                `json:"hashes,omitempty" xml:"hashes>hash,omitempty"`
	CPE        string                `json:"cpe,omitempty" xml:"cpe,omitempty"`
	PURL       string                `json:"purl,omitempty" xml:"purl,omitempty"`
	Properties []Property            `json:"properties,omitempty" xml:"properties>property,omitempty"`
}

// Hash is an {alg, content} digest pair.
type Hash struct {
	Algorithm string `json:"alg" xml:"alg,attr"`
	Content   string `json:"content" xml:",chardata"`
}

// Property is a {name, value} pair.
type Property struct {
	Name  string `json:"name" xml:"name,attr"`
	Value string `json:"value" xml:",chardata"`
}
