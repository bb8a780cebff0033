package document

import (
	"fmt"
	"strings"

	packageurl "github.com/package-url/packageurl-go"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

const purlNamespace = "almalinux"

// PackageURL renders the purl of an AlmaLinux RPM. The epoch and the source
// RPM go into qualifiers, as the rpm purl type prescribes.
func PackageURL(pkg *models.Package) string {
	qualifiers := map[string]string{
		"arch": pkg.Identity.Arch,
	}
	if pkg.Identity.HasEpoch() {
		qualifiers["epoch"] = pkg.Identity.Epoch
	}
	if pkg.SourceRPM != "" {
		qualifiers["upstream"] = pkg.SourceRPM
	}

	version := fmt.Sprintf("%s-%s", pkg.Identity.Version, pkg.Identity.Release)
	purl := packageurl.NewPackageURL(
		packageurl.TypeRPM,
		purlNamespace,
		pkg.Identity.Name,
		version,
		packageurl.QualifiersFromMap(qualifiers),
		"",
	)
	return purl.ToString()
}

var cpeEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`, "*", `\*`, "?", `\?`)

// CPE renders a CPE 2.3 formatted string for the package.
func CPE(pkg *models.Package) string {
	return fmt.Sprintf("cpe:2.3:a:almalinux:%s:%s:*:*:*:*:*:%s:*",
		cpeEscaper.Replace(pkg.Identity.Name),
		cpeEscaper.Replace(pkg.Identity.VersionString()),
		cpeEscaper.Replace(pkg.Identity.Arch),
	)
}
