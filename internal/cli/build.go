package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KAWAHARA-souta/alma-sbom/internal/config"
	"github.com/KAWAHARA-souta/alma-sbom/internal/ledger"
)

func newBuildCmd(a *app) *cobra.Command {
	var bc config.BuildConfig

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate an SBOM for a build and all packages it produced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bc.Validate(); err != nil {
				return err
			}

			s, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			hashes, err := s.ledger.BuildPackages(ctx, bc.BuildID)
			if err != nil {
				return err
			}
			logrus.Infof("Build %s has %d packages", bc.BuildID, len(hashes))

			records := make([]ledger.Record, 0, len(hashes))
			for _, hash := range hashes {
				rec, err := s.ledger.Lookup(ctx, hash)
				if err != nil {
					return err
				}
				records = append(records, rec)
			}

			build, err := s.registry.Build(bc.BuildID, records)
			if err != nil {
				return err
			}

			return s.generator.Build(ctx, build, s.request)
		},
	}

	cmd.Flags().StringVar(&bc.BuildID, "build-id", "", "ALBS build ID")

	return cmd
}
