package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propertyNames(props []Property) []string {
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Name)
	}
	return names
}

func TestNewBuildSource(t *testing.T) {
	fields := SourceFields{
		GitURL:          "https://git.almalinux.org/rpms/bash.git",
		GitCommit:       "4f2c1a",
		GitRef:          "c9",
		GitCommitLedger: "deadbeef",
		SrpmURL:         "https://example.org/bash.src.rpm",
		SrpmChecksum:    "abc",
		SrpmNevra:       "bash-5.1.8-6.el9.src",
	}

	git, err := NewBuildSource("git", fields)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"almalinux:albs:build:source:type",
		"almalinux:albs:build:source:gitCommit",
		"almalinux:albs:build:source:gitCommitImmudbHash",
		"almalinux:albs:build:source:gitRef",
		"almalinux:albs:build:source:gitURL",
	}, propertyNames(git.Properties()))
	assert.Equal(t, "git", git.Properties()[0].Value)

	srpm, err := NewBuildSource("srpm", fields)
	require.NoError(t, err)
	assert.Equal(t, []Property{
		{Name: "almalinux:albs:build:source:type", Value: "srpm"},
		{Name: "almalinux:albs:build:source:srpmURL", Value: "https://example.org/bash.src.rpm"},
		{Name: "almalinux:albs:build:source:srpmChecksum", Value: "abc"},
		{Name: "almalinux:albs:build:source:srpmNEVRA", Value: "bash-5.1.8-6.el9.src"},
	}, srpm.Properties())

	_, err = NewBuildSource("ftp", fields)
	require.Error(t, err)
	assert.True(t, IsType(err, ErrSchema))
}

func TestPackagePropertiesOrder(t *testing.T) {
	pkg := &Package{
		PackageProperties: PackageProperties{Arch: "x86_64", Version: "5.1.8", Release: "6.el9"},
		BuildProperties: BuildProperties{
			BuildID:     "1234",
			PackageType: "rpm",
			Source:      SrpmSource{URL: "u", Checksum: "c", Nevra: "n"},
		},
		SBOMProperties: SBOMProperties{LedgerHash: "h"},
	}

	assert.Equal(t, []string{
		"almalinux:package:arch",
		"almalinux:package:buildhost",
		"almalinux:package:epoch",
		"almalinux:package:release",
		"almalinux:package:sourcerpm",
		"almalinux:package:timestamp",
		"almalinux:package:version",
		"almalinux:albs:build:ID",
		"almalinux:albs:build:URL",
		"almalinux:albs:build:author",
		"almalinux:albs:build:packageType",
		"almalinux:albs:build:targetArch",
		"almalinux:albs:build:source:type",
		"almalinux:albs:build:source:srpmURL",
		"almalinux:albs:build:source:srpmChecksum",
		"almalinux:albs:build:source:srpmNEVRA",
		"almalinux:sbom:immudbHash",
	}, propertyNames(pkg.Properties()))
}

func TestBuildProperties(t *testing.T) {
	build := &Build{ID: "42", URL: "https://build.almalinux.org/build/42", Author: "someone", Source: GitSource{Ref: "c9"}}
	props := build.Properties()
	require.Len(t, props, 8)
	assert.Equal(t, Property{Name: "almalinux:albs:build:ID", Value: "42"}, props[0])
	assert.Equal(t, "almalinux:albs:build:source:type", props[3].Name)
	assert.Equal(t, "build-42", build.Name())
}

func TestSBOMErrorFormatting(t *testing.T) {
	err := NewError(ErrSchema, "0.3", "unknown api version")
	assert.Equal(t, "[Schema] 0.3: unknown api version", err.Error())

	wrapped := &SBOMError{Type: ErrConfiguration, Err: ErrUnsupportedEncoding}
	assert.True(t, errors.Is(wrapped, ErrUnsupportedEncoding))
	assert.True(t, IsType(wrapped, ErrConfiguration))
	assert.False(t, IsType(wrapped, ErrSchema))
	assert.False(t, IsType(errors.New("plain"), ErrSchema))
}
