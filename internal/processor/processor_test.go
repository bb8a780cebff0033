package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KAWAHARA-souta/alma-sbom/internal/ledger"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

func srpmRecord(apiKey, sourceType string) ledger.Record {
	return ledger.Record{
		Hash:      "e86c3d10",
		Timestamp: "1672531200",
		Value: map[string]interface{}{
			"Name": "bash-5.1.8-6.el9.x86_64",
			"Hash": "e86c3d10",
			"Metadata": map[string]interface{}{
				apiKey:        "0.1",
				"source_type": sourceType,
				"srpm_url":    "https://build.almalinux.org/pulp/bash-5.1.8-6.el9.src.rpm",
				"srpm_sha256": "abc",
				"srpm_nevra":  "bash-5.1.8-6.el9.src",
				"build_id":    float64(4242),
				"build_host":  "x64-builder-01",
				"build_arch":  "x86_64",
				"built_by":    "Jane Doe <jdoe@almalinux.org>",
			},
		},
	}
}

func TestPackageVersion01(t *testing.T) {
	reg := DefaultRegistry(Options{})

	pkg, err := reg.Package(srpmRecord("sbom_api_ver", "srpm"))
	require.NoError(t, err)

	assert.Equal(t, models.PackageNevra{
		Name:    "bash",
		Version: "5.1.8",
		Release: "6.el9",
		Arch:    "x86_64",
	}, pkg.Identity)
	assert.Equal(t, "", pkg.PackageProperties.Epoch)
	assert.Equal(t, "x64-builder-01", pkg.PackageProperties.BuildHost)
	assert.Equal(t, "4242", pkg.BuildProperties.BuildID)
	assert.Equal(t, "", pkg.BuildProperties.BuildURL)
	assert.Equal(t, "rpm", pkg.BuildProperties.PackageType)
	assert.Equal(t, models.SrpmSource{
		URL:      "https://build.almalinux.org/pulp/bash-5.1.8-6.el9.src.rpm",
		Checksum: "abc",
		Nevra:    "bash-5.1.8-6.el9.src",
	}, pkg.BuildProperties.Source)
	assert.Equal(t, "e86c3d10", pkg.SBOMProperties.LedgerHash)
	assert.Equal(t, []models.Hash{{Algorithm: models.SHA256, Value: "e86c3d10"}}, pkg.Hashes)
}

func TestPackageLegacyAPIKey(t *testing.T) {
	pkg, err := DefaultRegistry(Options{}).Package(srpmRecord("sbom_api", "srpm"))
	require.NoError(t, err)
	assert.Equal(t, "bash", pkg.Identity.Name)
}

func TestPackageUnknownSourceType(t *testing.T) {
	pkg, err := DefaultRegistry(Options{}).Package(srpmRecord("sbom_api_ver", "ftp"))
	require.Error(t, err)
	assert.Nil(t, pkg)
	assert.True(t, models.IsType(err, models.ErrSchema))
}

func TestPackageMissingAPIVersion(t *testing.T) {
	rec := srpmRecord("sbom_api_ver", "srpm")
	meta := rec.Value["Metadata"].(map[string]interface{})
	delete(meta, "sbom_api_ver")

	_, err := DefaultRegistry(Options{}).Package(rec)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrSchema))

	_, err = DefaultRegistry(Options{}).Package(ledger.Record{Hash: "x", Value: map[string]interface{}{}})
	assert.True(t, models.IsType(err, models.ErrSchema))
}

func TestPackageUnknownAPIVersion(t *testing.T) {
	rec := srpmRecord("sbom_api_ver", "srpm")
	rec.Value["Metadata"].(map[string]interface{})["sbom_api_ver"] = "9.9"

	_, err := DefaultRegistry(Options{}).Package(rec)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrSchema))
	assert.Contains(t, err.Error(), "9.9")
}

func TestPackageMalformedName(t *testing.T) {
	rec := srpmRecord("sbom_api_ver", "srpm")
	rec.Value["Name"] = "bash"

	_, err := DefaultRegistry(Options{}).Package(rec)
	assert.True(t, models.IsType(err, models.ErrConstruction))
}

func gitRecord02(hash, buildID, timestamp string) ledger.Record {
	return ledger.Record{
		Hash:      hash,
		Timestamp: timestamp,
		Metadata: map[string]interface{}{
			"sbom_api_ver":          "0.2",
			"name":                  "bash",
			"epoch":                 "2",
			"version":               "5.1.8",
			"release":               "6.el9",
			"arch":                  "x86_64",
			"sourcerpm":             "bash-5.1.8-6.el9.src.rpm",
			"source_type":           "git",
			"git_url":               "https://git.almalinux.org/rpms/bash.git",
			"git_commit":            "4f2c1a",
			"git_ref":               "c9",
			"alma_commit_sbom_hash": "cafe",
			"build_id":              buildID,
			"built_by":              "Jane Doe",
		},
		Value: map[string]interface{}{},
	}
}

func TestPackageVersion02(t *testing.T) {
	reg := DefaultRegistry(Options{ALBSURL: "https://albs.example.org/"})

	pkg, err := reg.Package(gitRecord02("h1", "77", "100"))
	require.NoError(t, err)

	assert.Equal(t, "2:bash-5.1.8-6.el9.x86_64", pkg.Identity.String())
	assert.Equal(t, "bash-5.1.8-6.el9.src.rpm", pkg.SourceRPM)
	assert.Equal(t, "2", pkg.PackageProperties.Epoch)
	assert.Equal(t, "https://albs.example.org/build/77", pkg.BuildProperties.BuildURL)
	assert.Equal(t, models.GitSource{
		Commit:           "4f2c1a",
		CommitLedgerHash: "cafe",
		Ref:              "c9",
		URL:              "https://git.almalinux.org/rpms/bash.git",
	}, pkg.BuildProperties.Source)
	assert.Equal(t, "h1", pkg.SBOMProperties.LedgerHash)
}

func TestPackageVersion02ZeroEpoch(t *testing.T) {
	rec := gitRecord02("h1", "77", "100")
	rec.Metadata["epoch"] = float64(0)

	pkg, err := DefaultRegistry(Options{}).Package(rec)
	require.NoError(t, err)

	assert.False(t, pkg.Identity.HasEpoch())
	assert.Equal(t, "5.1.8-6.el9", pkg.Identity.VersionString())
	assert.Equal(t, "bash-5.1.8-6.el9.x86_64", pkg.Identity.String())
	assert.Equal(t, "", pkg.PackageProperties.Epoch)
}

func TestPackageResigned(t *testing.T) {
	reg := DefaultRegistry(Options{})

	rec := gitRecord02("h1", "77", "100")
	pkg, err := reg.Package(rec)
	require.NoError(t, err)
	assert.False(t, pkg.Resigned)

	rec.Metadata["unsigned_hash"] = "0ddba11"
	pkg, err = reg.Package(rec)
	require.NoError(t, err)
	assert.True(t, pkg.Resigned)

	legacy := srpmRecord("sbom_api", "srpm")
	legacy.Value["Metadata"].(map[string]interface{})["unsigned_hash"] = "0ddba11"
	pkg, err = reg.Package(legacy)
	require.NoError(t, err)
	assert.True(t, pkg.Resigned)
}

func TestPackageVersion02MissingField(t *testing.T) {
	rec := gitRecord02("h1", "77", "100")
	delete(rec.Metadata, "release")

	_, err := DefaultRegistry(Options{}).Package(rec)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrSchema))
	assert.Contains(t, err.Error(), "release")
}

func TestBuild(t *testing.T) {
	reg := DefaultRegistry(Options{})

	build, err := reg.Build("77", []ledger.Record{
		gitRecord02("h1", "77", "200"),
		gitRecord02("h2", "77", "150"),
	})
	require.NoError(t, err)

	assert.Equal(t, "77", build.ID)
	assert.Equal(t, "https://build.almalinux.org/build/77", build.URL)
	assert.Equal(t, "Jane Doe", build.Author)
	assert.Equal(t, "150", build.Timestamp)
	require.Len(t, build.Packages, 2)
	assert.Equal(t, "h1", build.Packages[0].SBOMProperties.LedgerHash)
	assert.Equal(t, models.SourceTypeGit, build.Source.SourceType())
}

func TestBuildRejectsForeignPackage(t *testing.T) {
	_, err := DefaultRegistry(Options{}).Build("77", []ledger.Record{
		gitRecord02("h1", "77", "200"),
		gitRecord02("h2", "78", "150"),
	})
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrSchema))

	_, err = DefaultRegistry(Options{}).Build("77", nil)
	assert.True(t, models.IsType(err, models.ErrSchema))
}

type fixedProcessor struct{}

func (fixedProcessor) APIVersion() string { return "0.3" }

func (fixedProcessor) Package(rec ledger.Record) (*models.Package, error) {
	return &models.Package{SBOMProperties: models.SBOMProperties{LedgerHash: rec.Hash}}, nil
}

func TestRegistryRegister(t *testing.T) {
	reg := DefaultRegistry(Options{})
	reg.Register(fixedProcessor{})
	assert.Equal(t, []string{"0.1", "0.2", "0.3"}, reg.Versions())

	pkg, err := reg.Package(ledger.Record{Hash: "z", Metadata: map[string]interface{}{"sbom_api": "0.3"}})
	require.NoError(t, err)
	assert.Equal(t, "z", pkg.SBOMProperties.LedgerHash)
}

func TestEarliestTimestampNonNumeric(t *testing.T) {
	pkgs := []*models.Package{{Timestamp: "2023-01-02"}, {Timestamp: "2023-01-01"}}
	assert.Equal(t, "2023-01-02", earliestTimestamp(pkgs))
}
