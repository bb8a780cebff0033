// Package documenttest provides fixed packages, builds and options for
// exercising the format backends.
package documenttest

import (
	"time"

	"github.com/google/uuid"

	"github.com/KAWAHARA-souta/alma-sbom/internal/document"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

// Created is the capture time used by Options.
var Created = time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)

// SerialUUID is the UUID returned by Options.NewUUID.
var SerialUUID = uuid.MustParse("3e671687-395b-41f5-a30f-a58921a69b79")

// Options returns deterministic creation options.
func Options() document.Options {
	return document.Options{
		ToolName:    "alma-sbom",
		ToolVersion: "0.0.1",
		Now:         func() time.Time { return Created },
		NewUUID:     func() uuid.UUID { return SerialUUID },
	}.WithDefaults()
}

// Package returns a git-sourced package. An empty epoch leaves the identity
// epoch-less.
func Package(name, epoch, version, release, arch string) *models.Package {
	nevra := models.PackageNevra{Name: name, Epoch: epoch, Version: version, Release: release, Arch: arch}
	srpm := name + "-" + version + "-" + release + ".src.rpm"

	return &models.Package{
		Identity:  nevra,
		SourceRPM: srpm,
		Hashes: []models.Hash{
			{Algorithm: models.SHA256, Value: "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"},
		},
		Timestamp: "1710408413",
		PackageProperties: models.PackageProperties{
			Arch:      arch,
			BuildHost: "x64-builder02.almalinux.org",
			Epoch:     epoch,
			Release:   release,
			SourceRPM: srpm,
			Timestamp: "1710408413",
			Version:   version,
		},
		BuildProperties: models.BuildProperties{
			BuildID:     "9427",
			BuildURL:    "https://build.almalinux.org/build/9427",
			Author:      "Jane Builder <jane@almalinux.org>",
			PackageType: "rpm",
			TargetArch:  arch,
			Source: models.GitSource{
				Commit:           "4f3c2b1a",
				CommitLedgerHash: "77aa",
				Ref:              "imports/c9/" + name + "-" + version + "-" + release,
				URL:              "https://git.almalinux.org/rpms/" + name + ".git",
			},
		},
		SBOMProperties: models.SBOMProperties{LedgerHash: "5fd1e0c2"},
	}
}

// Bash is the canonical single-package fixture.
func Bash() *models.Package {
	return Package("bash", "", "5.1.8", "6.el9", "x86_64")
}

// Build returns a two-package build.
func Build() *models.Build {
	bash := Bash()
	docs := Package("bash-doc", "", "5.1.8", "6.el9", "noarch")
	return &models.Build{
		ID:        bash.BuildProperties.BuildID,
		URL:       bash.BuildProperties.BuildURL,
		Author:    bash.BuildProperties.Author,
		Timestamp: bash.Timestamp,
		Source:    bash.BuildProperties.Source,
		Packages:  []*models.Package{bash, docs},
	}
}
