package models

import (
	"fmt"
	"strings"
)

// PackageNevra is the name/epoch/version/release/arch identity of an RPM.
// An empty Epoch means the package has no epoch.
type PackageNevra struct {
	Name    string
	Epoch   string
	Version string
	Release string
	Arch    string
}

// ParseNevra parses both "epoch:name-version-release.arch" and
// "name-version-release.arch".
func ParseNevra(s string) (PackageNevra, error) {
	epoch := ""
	rest := s
	if idx := strings.Index(s, ":"); idx >= 0 {
		epoch = s[:idx]
		rest = s[idx+1:]
		if epoch == "" {
			return PackageNevra{}, NewError(ErrConstruction, s, "empty epoch before ':'")
		}
	}

	nevra, err := splitNVRA(rest)
	if err != nil {
		return PackageNevra{}, &SBOMError{Type: ErrConstruction, Subject: s, Err: err}
	}
	nevra.Epoch = epoch
	return nevra, nil
}

// ParseNevraWithoutEpoch parses "name-version-release.arch". Strings carrying
// an epoch prefix are rejected.
func ParseNevraWithoutEpoch(s string) (PackageNevra, error) {
	if strings.Contains(s, ":") {
		return PackageNevra{}, NewError(ErrConstruction, s, "unexpected epoch in epoch-less NEVRA")
	}
	nevra, err := splitNVRA(s)
	if err != nil {
		return PackageNevra{}, &SBOMError{Type: ErrConstruction, Subject: s, Err: err}
	}
	return nevra, nil
}

// splitNVRA splits from the right: arch after the last '.', then release
// and version after the last two '-'.
func splitNVRA(s string) (PackageNevra, error) {
	dot := strings.LastIndex(s, ".")
	if dot <= 0 || dot == len(s)-1 {
		return PackageNevra{}, fmt.Errorf("missing architecture")
	}
	nvr, arch := s[:dot], s[dot+1:]

	relIdx := strings.LastIndex(nvr, "-")
	if relIdx <= 0 || relIdx == len(nvr)-1 {
		return PackageNevra{}, fmt.Errorf("missing release")
	}
	nv, release := nvr[:relIdx], nvr[relIdx+1:]

	verIdx := strings.LastIndex(nv, "-")
	if verIdx <= 0 || verIdx == len(nv)-1 {
		return PackageNevra{}, fmt.Errorf("missing name or version")
	}

	return PackageNevra{
		Name:    nv[:verIdx],
		Version: nv[verIdx+1:],
		Release: release,
		Arch:    arch,
	}, nil
}

// NormalizeEpoch maps epoch "0" to no epoch; RPM treats the two alike.
func NormalizeEpoch(epoch string) string {
	if epoch == "0" {
		return ""
	}
	return epoch
}

// HasEpoch reports whether the identity carries an epoch.
func (n PackageNevra) HasEpoch() bool {
	return n.Epoch != ""
}

// VersionString renders "epoch:version-release", omitting "epoch:" when
// there is no epoch.
func (n PackageNevra) VersionString() string {
	if n.HasEpoch() {
		return fmt.Sprintf("%s:%s-%s", n.Epoch, n.Version, n.Release)
	}
	return fmt.Sprintf("%s-%s", n.Version, n.Release)
}

// String renders the NEVRA in the same form ParseNevra accepts.
func (n PackageNevra) String() string {
	if n.HasEpoch() {
		return fmt.Sprintf("%s:%s-%s-%s.%s", n.Epoch, n.Name, n.Version, n.Release, n.Arch)
	}
	return fmt.Sprintf("%s-%s-%s.%s", n.Name, n.Version, n.Release, n.Arch)
}
