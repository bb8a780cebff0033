package models

// Property is a namespaced name/value annotation attached to an SBOM element.
type Property struct {
	Name  string
	Value string
}

const (
	SourceTypeGit  = "git"
	SourceTypeSrpm = "srpm"
)

// PackageProperties describe the RPM itself.
type PackageProperties struct {
	Arch      string
	BuildHost string
	Epoch     string
	Release   string
	SourceRPM string
	Timestamp string
	Version   string
}

// Properties returns the package properties in their fixed order.
func (p PackageProperties) Properties() []Property {
	return []Property{
		{Name: "almalinux:package:arch", Value: p.Arch},
		{Name: "almalinux:package:buildhost", Value: p.BuildHost},
		{Name: "almalinux:package:epoch", Value: p.Epoch},
		{Name: "almalinux:package:release", Value: p.Release},
		{Name: "almalinux:package:sourcerpm", Value: p.SourceRPM},
		{Name: "almalinux:package:timestamp", Value: p.Timestamp},
		{Name: "almalinux:package:version", Value: p.Version},
	}
}

// BuildSourceProperties describe where a build took its sources from.
// Implementations are GitSource and SrpmSource.
type BuildSourceProperties interface {
	SourceType() string
	Properties() []Property
}

// GitSource is a build made from a git checkout.
type GitSource struct {
	Commit           string
	CommitLedgerHash string
	Ref              string
	URL              string
}

// SourceType implements BuildSourceProperties.
func (g GitSource) SourceType() string { return SourceTypeGit }

// Properties implements BuildSourceProperties.
func (g GitSource) Properties() []Property {
	return []Property{
		sourceTypeProperty(g),
		{Name: "almalinux:albs:build:source:gitCommit", Value: g.Commit},
		{Name: "almalinux:albs:build:source:gitCommitImmudbHash", Value: g.CommitLedgerHash},
		{Name: "almalinux:albs:build:source:gitRef", Value: g.Ref},
		{Name: "almalinux:albs:build:source:gitURL", Value: g.URL},
	}
}

// SrpmSource is a build made from a source RPM.
type SrpmSource struct {
	URL      string
	Checksum string
	Nevra    string
}

// SourceType implements BuildSourceProperties.
func (s SrpmSource) SourceType() string { return SourceTypeSrpm }

// Properties implements BuildSourceProperties.
func (s SrpmSource) Properties() []Property {
	return []Property{
		sourceTypeProperty(s),
		{Name: "almalinux:albs:build:source:srpmURL", Value: s.URL},
		{Name: "almalinux:albs:build:source:srpmChecksum", Value: s.Checksum},
		{Name: "almalinux:albs:build:source:srpmNEVRA", Value: s.Nevra},
	}
}

func sourceTypeProperty(src BuildSourceProperties) Property {
	return Property{Name: "almalinux:albs:build:source:type", Value: src.SourceType()}
}

// SourceFields carries the raw values a BuildSourceProperties variant may use.
type SourceFields struct {
	GitURL          string
	GitCommit       string
	GitRef          string
	GitCommitLedger string
	SrpmURL         string
	SrpmChecksum    string
	SrpmNevra       string
}

// NewBuildSource selects the variant named by sourceType. Only the fields of
// the selected variant are carried over.
func NewBuildSource(sourceType string, f SourceFields) (BuildSourceProperties, error) {
	switch sourceType {
	case SourceTypeGit:
		return GitSource{
			Commit:           f.GitCommit,
			CommitLedgerHash: f.GitCommitLedger,
			Ref:              f.GitRef,
			URL:              f.GitURL,
		}, nil
	case SourceTypeSrpm:
		return SrpmSource{
			URL:      f.SrpmURL,
			Checksum: f.SrpmChecksum,
			Nevra:    f.SrpmNevra,
		}, nil
	default:
		return nil, NewError(ErrSchema, "source_type", "unknown source_type %q", sourceType)
	}
}

// BuildProperties describe the build that produced a package.
type BuildProperties struct {
	BuildID     string
	BuildURL    string
	Author      string
	PackageType string
	TargetArch  string
	Source      BuildSourceProperties
}

// Properties returns the build properties followed by the source properties.
func (b BuildProperties) Properties() []Property {
	props := []Property{
		{Name: "almalinux:albs:build:ID", Value: b.BuildID},
		{Name: "almalinux:albs:build:URL", Value: b.BuildURL},
		{Name: "almalinux:albs:build:author", Value: b.Author},
		{Name: "almalinux:albs:build:packageType", Value: b.PackageType},
		{Name: "almalinux:albs:build:targetArch", Value: b.TargetArch},
	}
	if b.Source != nil {
		props = append(props, b.Source.Properties()...)
	}
	return props
}

// SBOMProperties tie a document back to the ledger record it came from.
type SBOMProperties struct {
	LedgerHash string
}

// Properties returns the SBOM envelope properties.
func (s SBOMProperties) Properties() []Property {
	return []Property{
		{Name: "almalinux:sbom:immudbHash", Value: s.LedgerHash},
	}
}
