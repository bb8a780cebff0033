// Package rpm reads identity data from local .rpm files so a package SBOM can
// be requested by file instead of by ledger hash.
package rpm

import (
	"bytes"
	"fmt"
	"io"
	"os"

	rpmutils "github.com/sassoftware/go-rpmutils"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
	"github.com/KAWAHARA-souta/alma-sbom/internal/utils"
)

// RPM packages start with 0xED 0xAB 0xEE 0xDB
var rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}

// Info is what the CLI needs from a local package file.
type Info struct {
	Path      string
	SHA256    string
	Size      int64
	Nevra     models.PackageNevra
	SourceRPM string
	BuildHost string
}

// IsRPM reports whether path starts with the RPM lead magic.
func IsRPM(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(rpmMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(header, rpmMagic), nil
}

// Inspect hashes the file and reads its header. The SHA-256 is the key the
// ledger stores the package record under.
func Inspect(path string) (*Info, error) {
	ok, err := IsRPM(path)
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrFileOp, Subject: path, Err: err}
	}
	if !ok {
		return nil, models.NewError(models.ErrConfiguration, path, "not an RPM package")
	}

	digest, err := utils.DigestFile(path)
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrFileOp, Subject: path, Err: fmt.Errorf("failed to calculate checksum: %w", err)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrFileOp, Subject: path, Err: err}
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrFileOp, Subject: path, Err: fmt.Errorf("failed to read RPM: %w", err)}
	}

	nevra, err := rpm.Header.GetNEVRA()
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrFileOp, Subject: path, Err: fmt.Errorf("failed to read NEVRA: %w", err)}
	}

	return &Info{
		Path:   path,
		SHA256: digest.SHA256,
		Size:   digest.Size,
		Nevra: models.PackageNevra{
			Name:    nevra.Name,
			Epoch:   models.NormalizeEpoch(nevra.Epoch),
			Version: nevra.Version,
			Release: nevra.Release,
			Arch:    nevra.Arch,
		},
		SourceRPM: stringTag(rpm, rpmutils.SOURCERPM),
		BuildHost: stringTag(rpm, rpmutils.BUILDHOST),
	}, nil
}

// Matches compares two identities, treating a missing epoch as epoch 0.
func Matches(a, b models.PackageNevra) bool {
	return a.Name == b.Name &&
		models.NormalizeEpoch(a.Epoch) == models.NormalizeEpoch(b.Epoch) &&
		a.Version == b.Version &&
		a.Release == b.Release &&
		a.Arch == b.Arch
}

// Mismatches lists where the header of a local file disagrees with the
// ledger record for the same hash. Fields the record leaves empty are not
// compared.
func Mismatches(info *Info, pkg *models.Package) []string {
	var out []string
	if !Matches(info.Nevra, pkg.Identity) {
		out = append(out, fmt.Sprintf("nevra %s != %s", info.Nevra.String(), pkg.Identity.String()))
	}
	if pkg.SourceRPM != "" && info.SourceRPM != pkg.SourceRPM {
		out = append(out, fmt.Sprintf("source rpm %q != %q", info.SourceRPM, pkg.SourceRPM))
	}
	if host := pkg.PackageProperties.BuildHost; host != "" && info.BuildHost != host {
		out = append(out, fmt.Sprintf("build host %q != %q", info.BuildHost, host))
	}
	return out
}

// stringTag safely gets a string tag from the header
func stringTag(rpm *rpmutils.Rpm, tag int) string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
