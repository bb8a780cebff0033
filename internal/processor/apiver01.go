package processor

import (
	"github.com/KAWAHARA-souta/alma-sbom/internal/ledger"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

// processor01 handles the first schema: the NEVRA is stored pre-joined in
// value.Name without an epoch, and there is no source RPM field.
type processor01 struct{}

func (processor01) APIVersion() string { return "0.1" }

func (processor01) Package(rec ledger.Record) (*models.Package, error) {
	meta := rec.MetadataBlock()
	hash := ledgerHash(rec)
	if hash == "" {
		return nil, models.NewError(models.ErrSchema, "0.1", "record has no hash")
	}

	name, err := requireString(rec.Value, "Name", hash)
	if err != nil {
		return nil, err
	}
	nevra, err := models.ParseNevraWithoutEpoch(name)
	if err != nil {
		return nil, err
	}

	source, err := buildSource(meta, hash)
	if err != nil {
		return nil, err
	}

	timestamp := recordTimestamp(rec)
	pkgHash := rec.Hash
	if pkgHash == "" {
		pkgHash = hash
	}

	return &models.Package{
		Identity:  nevra,
		Hashes:    []models.Hash{{Algorithm: models.SHA256, Value: pkgHash}},
		Timestamp: timestamp,
		Resigned:  resigned(meta),
		PackageProperties: models.PackageProperties{
			Arch:      nevra.Arch,
			BuildHost: ledger.String(meta, "build_host"),
			Release:   nevra.Release,
			Timestamp: timestamp,
			Version:   nevra.Version,
		},
		BuildProperties: models.BuildProperties{
			BuildID: ledger.String(meta, "build_id"),
			// ALBS did not record a usable build URL for this schema
			// (AlmaLinux/build-system#425).
			BuildURL:    "",
			Author:      ledger.String(meta, "built_by"),
			PackageType: "rpm",
			TargetArch:  ledger.String(meta, "build_arch"),
			Source:      source,
		},
		SBOMProperties: models.SBOMProperties{LedgerHash: hash},
	}, nil
}
