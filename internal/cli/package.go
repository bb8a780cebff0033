package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KAWAHARA-souta/alma-sbom/internal/config"
	"github.com/KAWAHARA-souta/alma-sbom/internal/rpm"
)

func newPackageCmd(a *app) *cobra.Command {
	var pc config.PackageConfig

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Generate an SBOM for a single package",
		Long: `Looks up a package record in the ledger, either by its SHA-256 hash or
by hashing a local .rpm file, and writes an SBOM describing it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pc.Validate(); err != nil {
				return err
			}

			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			hash := pc.RPMPackageHash
			var info *rpm.Info
			if pc.RPMPackage != "" {
				info, err = rpm.Inspect(pc.RPMPackage)
				if err != nil {
					return err
				}
				hash = info.SHA256
				logrus.Debugf("%s has SHA-256 %s (%d bytes)", pc.RPMPackage, hash, info.Size)
			}

			ctx := cmd.Context()
			rec, err := s.ledger.Lookup(ctx, hash)
			if err != nil {
				return err
			}

			pkg, err := s.registry.Package(rec)
			if err != nil {
				return err
			}

			if info != nil {
				for _, m := range rpm.Mismatches(info, pkg) {
					logrus.Warnf("Ledger record %s does not match %s: %s", hash, pc.RPMPackage, m)
				}
			}

			return s.generator.Package(ctx, pkg, s.request)
		},
	}

	cmd.Flags().StringVar(&pc.RPMPackageHash, "rpm-package-hash", "", "SHA-256 of the package as recorded in the ledger")
	cmd.Flags().StringVar(&pc.RPMPackage, "rpm-package", "", "Path to a local .rpm file")
	cmd.MarkFlagsMutuallyExclusive("rpm-package-hash", "rpm-package")

	return cmd
}
