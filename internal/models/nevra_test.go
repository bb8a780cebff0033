package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNevraRoundTrip(t *testing.T) {
	tests := []string{
		"bash-5.1.8-6.el9.x86_64",
		"2:bash-5.1.8-6.el9.x86_64",
		"python3-libs-3.9.16-1.el9_2.1.x86_64",
		"0:kernel-5.14.0-162.12.1.el9_1.x86_64",
		"osbuild-93-1.el9.alma.1.noarch",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			nevra, err := ParseNevra(s)
			require.NoError(t, err)
			assert.Equal(t, s, nevra.String())
		})
	}
}

func TestParseNevraFields(t *testing.T) {
	nevra, err := ParseNevra("bash-5.1.8-6.el9.x86_64")
	require.NoError(t, err)
	assert.Equal(t, PackageNevra{
		Name:    "bash",
		Version: "5.1.8",
		Release: "6.el9",
		Arch:    "x86_64",
	}, nevra)
	assert.False(t, nevra.HasEpoch())

	nevra, err = ParseNevra("2:python3-libs-3.9.16-1.el9.x86_64")
	require.NoError(t, err)
	assert.Equal(t, "2", nevra.Epoch)
	assert.Equal(t, "python3-libs", nevra.Name)
	assert.Equal(t, "3.9.16", nevra.Version)
}

func TestParseNevraRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"bash",
		"bash.x86_64",
		"bash-5.1.8.x86_64",
		"bash-5.1.8-6.el9.",
		"-5.1.8-6.el9.x86_64",
		":bash-5.1.8-6.el9.x86_64",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			_, err := ParseNevra(s)
			require.Error(t, err)
			assert.True(t, IsType(err, ErrConstruction), "got %v", err)
		})
	}
}

func TestParseNevraWithoutEpoch(t *testing.T) {
	nevra, err := ParseNevraWithoutEpoch("bash-5.1.8-6.el9.x86_64")
	require.NoError(t, err)
	assert.Equal(t, "", nevra.Epoch)

	_, err = ParseNevraWithoutEpoch("1:bash-5.1.8-6.el9.x86_64")
	assert.True(t, IsType(err, ErrConstruction))
}

func TestVersionString(t *testing.T) {
	nevra := PackageNevra{Name: "bash", Version: "5.1.8", Release: "6.el9", Arch: "x86_64"}
	assert.Equal(t, "5.1.8-6.el9", nevra.VersionString())

	nevra.Epoch = "2"
	assert.Equal(t, "2:5.1.8-6.el9", nevra.VersionString())
}

func TestNormalizeEpoch(t *testing.T) {
	assert.Equal(t, "", NormalizeEpoch("0"))
	assert.Equal(t, "", NormalizeEpoch(""))
	assert.Equal(t, "2", NormalizeEpoch("2"))
}
