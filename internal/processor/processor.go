// Package processor turns raw ledger records into canonical packages and
// builds. Each ledger schema version has its own Processor; a Registry picks
// one by the version stored in the record metadata.
package processor

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/KAWAHARA-souta/alma-sbom/internal/ledger"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

const (
	// apiVersionKey is written by current records.
	apiVersionKey = "sbom_api_ver"
	// legacyAPIVersionKey is what RPM package records historically used.
	// Published records still carry it, so both keys are always checked.
	legacyAPIVersionKey = "sbom_api"
)

// DefaultALBSURL is the public AlmaLinux Build System.
const DefaultALBSURL = "https://build.almalinux.org"

// Processor maps one ledger schema version onto the canonical model.
type Processor interface {
	// APIVersion returns the schema version this processor understands
	APIVersion() string

	// Package builds a canonical package from a record of this version
	Package(rec ledger.Record) (*models.Package, error)
}

// Options configure the built-in processors.
type Options struct {
	ALBSURL string
}

// Registry dispatches records to processors by detected schema version.
type Registry struct {
	processors map[string]Processor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]Processor)}
}

// DefaultRegistry returns a registry with every known schema version.
func DefaultRegistry(opts Options) *Registry {
	if opts.ALBSURL == "" {
		opts.ALBSURL = DefaultALBSURL
	}
	r := NewRegistry()
	r.Register(processor01{})
	r.Register(processor02{albsURL: opts.ALBSURL})
	return r
}

// Register adds p, replacing any processor for the same version.
func (r *Registry) Register(p Processor) {
	r.processors[p.APIVersion()] = p
}

// Versions lists registered schema versions in sorted order.
func (r *Registry) Versions() []string {
	versions := make([]string, 0, len(r.processors))
	for v := range r.processors {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// DetectAPIVersion reads the schema version from the record metadata.
func DetectAPIVersion(rec ledger.Record) (string, error) {
	meta := rec.MetadataBlock()
	if meta == nil {
		return "", models.NewError(models.ErrSchema, rec.Hash, "record has no metadata block")
	}
	for _, key := range []string{apiVersionKey, legacyAPIVersionKey} {
		if v := ledger.String(meta, key); v != "" {
			return v, nil
		}
	}
	return "", models.NewError(models.ErrSchema, rec.Hash, "ledger metadata is malformed, API version cannot be detected")
}

// For returns the processor responsible for rec.
func (r *Registry) For(rec ledger.Record) (Processor, error) {
	version, err := DetectAPIVersion(rec)
	if err != nil {
		return nil, err
	}
	p, ok := r.processors[version]
	if !ok {
		return nil, models.NewError(models.ErrSchema, rec.Hash, "unsupported API version %q (known: %v)", version, r.Versions())
	}
	return p, nil
}

// Package processes a single package record.
func (r *Registry) Package(rec ledger.Record) (*models.Package, error) {
	p, err := r.For(rec)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Processing record %s with API version %s", rec.Hash, p.APIVersion())
	return p.Package(rec)
}

// Build processes every package record of a build. All packages must belong
// to buildID; build-level data is taken from the first one.
func (r *Registry) Build(buildID string, records []ledger.Record) (*models.Build, error) {
	if len(records) == 0 {
		return nil, models.NewError(models.ErrSchema, "build "+buildID, "build has no package records")
	}

	packages := make([]*models.Package, 0, len(records))
	for _, rec := range records {
		pkg, err := r.Package(rec)
		if err != nil {
			return nil, err
		}
		if pkg.BuildProperties.BuildID != buildID {
			return nil, models.NewError(models.ErrSchema, rec.Hash,
				"package belongs to build %q, expected %q", pkg.BuildProperties.BuildID, buildID)
		}
		packages = append(packages, pkg)
	}

	first := packages[0].BuildProperties
	return &models.Build{
		ID:        buildID,
		URL:       first.BuildURL,
		Author:    first.Author,
		Timestamp: earliestTimestamp(packages),
		Source:    first.Source,
		Packages:  packages,
	}, nil
}

// earliestTimestamp compares numerically when every timestamp is a number,
// otherwise keeps the first package's value.
func earliestTimestamp(packages []*models.Package) string {
	best := packages[0].Timestamp
	bestN, err := strconv.ParseFloat(best, 64)
	if err != nil {
		return best
	}
	for _, pkg := range packages[1:] {
		n, err := strconv.ParseFloat(pkg.Timestamp, 64)
		if err != nil {
			return packages[0].Timestamp
		}
		if n < bestN {
			best, bestN = pkg.Timestamp, n
		}
	}
	return best
}

// requireString fetches a mandatory field.
func requireString(m map[string]interface{}, key, subject string) (string, error) {
	v := ledger.String(m, key)
	if v == "" {
		return "", models.NewError(models.ErrSchema, subject, "missing required field %q", key)
	}
	return v, nil
}

// buildSource selects the source variant named by the record's source_type.
func buildSource(meta map[string]interface{}, subject string) (models.BuildSourceProperties, error) {
	sourceType := ledger.String(meta, "source_type")
	src, err := models.NewBuildSource(sourceType, models.SourceFields{
		GitURL:          ledger.String(meta, "git_url"),
		GitCommit:       ledger.String(meta, "git_commit"),
		GitRef:          ledger.String(meta, "git_ref"),
		GitCommitLedger: ledger.String(meta, "alma_commit_sbom_hash"),
		SrpmURL:         ledger.String(meta, "srpm_url"),
		SrpmChecksum:    ledger.String(meta, "srpm_sha256"),
		SrpmNevra:       ledger.String(meta, "srpm_nevra"),
	})
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", subject, err)
	}
	return src, nil
}

// ledgerHash prefers the hash stored inside the payload.
func ledgerHash(rec ledger.Record) string {
	if h := ledger.String(rec.Value, "Hash"); h != "" {
		return h
	}
	return rec.Hash
}

// resigned reports whether the package was signed after it was recorded; the
// ledger then also keeps the hash of the unsigned file.
func resigned(meta map[string]interface{}) bool {
	_, ok := meta["unsigned_hash"]
	return ok
}

// recordTimestamp prefers the lookup timestamp over the payload's own.
func recordTimestamp(rec ledger.Record) string {
	if rec.Timestamp != "" {
		return rec.Timestamp
	}
	return ledger.String(rec.Value, "timestamp")
}
