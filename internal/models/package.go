package models

// HashAlgorithm enumerates the digests a package can be identified by
type HashAlgorithm int

const (
	SHA256 HashAlgorithm = iota
)

// String returns the algorithm name as used in log output
func (a HashAlgorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	default:
		return "unknown"
	}
}

// Hash is a digest of a package file
type Hash struct {
	Algorithm HashAlgorithm
	Value     string
}

// Package represents a single RPM as recorded in the ledger
type Package struct {
	Identity  PackageNevra
	SourceRPM string
	Hashes    []Hash
	Timestamp string
	// Resigned is set when the package was signed after it was first
	// recorded.
	Resigned bool

	PackageProperties PackageProperties
	BuildProperties   BuildProperties
	SBOMProperties    SBOMProperties
}

// Properties flattens every property group: package, build (with source),
// then SBOM envelope.
func (p *Package) Properties() []Property {
	props := p.PackageProperties.Properties()
	props = append(props, p.BuildProperties.Properties()...)
	props = append(props, p.SBOMProperties.Properties()...)
	return props
}

// Hash returns the first hash of the given algorithm, if any.
func (p *Package) Hash(alg HashAlgorithm) (string, bool) {
	for _, h := range p.Hashes {
		if h.Algorithm == alg {
			return h.Value, true
		}
	}
	return "", false
}
