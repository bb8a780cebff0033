package processor

import (
	"fmt"
	"strings"

	"github.com/KAWAHARA-souta/alma-sbom/internal/ledger"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

// processor02 handles records with the NEVRA stored pre-split in metadata
// and an optional epoch.
type processor02 struct {
	albsURL string
}

func (processor02) APIVersion() string { return "0.2" }

func (p processor02) Package(rec ledger.Record) (*models.Package, error) {
	meta := rec.MetadataBlock()
	hash := ledgerHash(rec)
	if hash == "" {
		return nil, models.NewError(models.ErrSchema, "0.2", "record has no hash")
	}

	var nevra models.PackageNevra
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"name", &nevra.Name},
		{"version", &nevra.Version},
		{"release", &nevra.Release},
		{"arch", &nevra.Arch},
	} {
		v, err := requireString(meta, f.key, hash)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	nevra.Epoch = models.NormalizeEpoch(ledger.String(meta, "epoch"))

	source, err := buildSource(meta, hash)
	if err != nil {
		return nil, err
	}

	buildID := ledger.String(meta, "build_id")
	buildURL := ""
	if buildID != "" {
		buildURL = fmt.Sprintf("%s/build/%s", strings.TrimSuffix(p.albsURL, "/"), buildID)
	}

	sourceRPM := ledger.String(meta, "sourcerpm")
	timestamp := recordTimestamp(rec)
	pkgHash := rec.Hash
	if pkgHash == "" {
		pkgHash = hash
	}

	return &models.Package{
		Identity:  nevra,
		SourceRPM: sourceRPM,
		Hashes:    []models.Hash{{Algorithm: models.SHA256, Value: pkgHash}},
		Timestamp: timestamp,
		Resigned:  resigned(meta),
		PackageProperties: models.PackageProperties{
			Arch:      nevra.Arch,
			BuildHost: ledger.String(meta, "build_host"),
			Epoch:     nevra.Epoch,
			Release:   nevra.Release,
			SourceRPM: sourceRPM,
			Timestamp: timestamp,
			Version:   nevra.Version,
		},
		BuildProperties: models.BuildProperties{
			BuildID:     buildID,
			BuildURL:    buildURL,
			Author:      ledger.String(meta, "built_by"),
			PackageType: "rpm",
			TargetArch:  ledger.String(meta, "build_arch"),
			Source:      source,
		},
		SBOMProperties: models.SBOMProperties{LedgerHash: hash},
	}, nil
}
