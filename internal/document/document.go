// Package document defines the contract shared by the SBOM format backends.
// Backends live in the spdx, spdx3 and cyclonedx subpackages; each owns its
// element graph and identifier space.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

// Format is an SBOM specification.
type Format string

const (
	FormatSPDX      Format = "spdx"
	FormatSPDX3     Format = "spdx3"
	FormatCycloneDX Format = "cyclonedx"
)

// Encoding is the serialization of a document.
type Encoding string

const (
	EncodingJSON     Encoding = "json"
	EncodingJSONLD   Encoding = "json-ld"
	EncodingTagValue Encoding = "tagvalue"
	EncodingYAML     Encoding = "yaml"
	EncodingXML      Encoding = "xml"
)

// Formats lists every format in a stable order.
var Formats = []Format{FormatSPDX, FormatSPDX3, FormatCycloneDX}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "spdx", "spdx2", "spdx-2":
		return FormatSPDX, nil
	case "spdx3", "spdx-3":
		return FormatSPDX3, nil
	case "cyclonedx", "cdx":
		return FormatCycloneDX, nil
	default:
		return "", models.NewError(models.ErrConfiguration, "sbom-type", "unsupported SBOM format %q (supported: spdx, spdx3, cyclonedx)", s)
	}
}

// ParseEncoding parses an encoding name case-insensitively.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "json":
		return EncodingJSON, nil
	case "json-ld", "jsonld":
		return EncodingJSONLD, nil
	case "tagvalue", "tag-value", "tv", "spdx":
		return EncodingTagValue, nil
	case "yaml", "yml":
		return EncodingYAML, nil
	case "xml":
		return EncodingXML, nil
	default:
		return "", &models.SBOMError{
			Type:    models.ErrConfiguration,
			Subject: "file-format",
			Err:     fmt.Errorf("%w: %q", models.ErrUnsupportedEncoding, s),
		}
	}
}

// Document is a constructed SBOM ready to be serialized.
type Document interface {
	// Encoding returns the encoding Marshal produces
	Encoding() Encoding

	// Marshal serializes the document
	Marshal() ([]byte, error)
}

// Factory constructs documents of one format.
type Factory interface {
	// Format returns the SBOM format this factory produces
	Format() Format

	// Encodings lists the supported encodings, default first
	Encodings() []Encoding

	// FromPackage builds a document describing a single package
	FromPackage(pkg *models.Package, enc Encoding) (Document, error)

	// FromBuild builds a document describing a build and its packages
	FromBuild(build *models.Build, enc Encoding) (Document, error)
}

// CheckEncoding fails with an unsupported-encoding configuration error when
// f cannot produce enc.
func CheckEncoding(f Factory, enc Encoding) error {
	for _, e := range f.Encodings() {
		if e == enc {
			return nil
		}
	}
	return &models.SBOMError{
		Type:    models.ErrConfiguration,
		Subject: string(f.Format()),
		Err:     fmt.Errorf("%w %q (supported: %v)", models.ErrUnsupportedEncoding, enc, f.Encodings()),
	}
}

// Options carry the creation metadata shared by every backend.
type Options struct {
	ToolName    string
	ToolVersion string
	// Creator is the organization named as document author.
	Creator string
	// NamespaceBase prefixes SPDX document namespaces.
	NamespaceBase string

	Now     func() time.Time
	NewUUID func() uuid.UUID
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		ToolName:      "alma-sbom",
		ToolVersion:   "dev",
		Creator:       "AlmaLinux OS Foundation",
		NamespaceBase: "https://security.almalinux.org/sbom/spdx",
		Now:           time.Now,
		NewUUID:       uuid.New,
	}
}

// WithDefaults fills unset fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	def := DefaultOptions()
	if o.ToolName == "" {
		o.ToolName = def.ToolName
	}
	if o.ToolVersion == "" {
		o.ToolVersion = def.ToolVersion
	}
	if o.Creator == "" {
		o.Creator = def.Creator
	}
	if o.NamespaceBase == "" {
		o.NamespaceBase = def.NamespaceBase
	}
	if o.Now == nil {
		o.Now = def.Now
	}
	if o.NewUUID == nil {
		o.NewUUID = def.NewUUID
	}
	return o
}

// Created returns the capture time, truncated to seconds and in UTC.
func (o Options) Created() time.Time {
	return o.Now().UTC().Truncate(time.Second)
}

// Tool renders "name-version".
func (o Options) Tool() string {
	return fmt.Sprintf("%s-%s", o.ToolName, o.ToolVersion)
}
