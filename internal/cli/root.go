package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KAWAHARA-souta/alma-sbom/internal/config"
)

// app carries the global flag values shared by the subcommands
type app struct {
	version    string
	configPath string
	flags      config.CommonConfig
}

// NewRootCmd creates the root command
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	rootCmd := &cobra.Command{
		Use:   "alma-sbom",
		Short: "Generate SBOMs for AlmaLinux packages and builds",
		Long: `alma-sbom reads package and build records from the AlmaLinux build
ledger and generates Software Bills of Materials for them.

Supported SBOM types:
  - SPDX 2.3 (json, tagvalue, yaml)
  - SPDX 3.0 (json-ld)
  - CycloneDX 1.5 (json, xml)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVarP(&a.flags.OutputFile, "output-file", "o", "", "Output file, s3://bucket/key for S3 (default stdout)")
	flags.StringVar(&a.flags.SBOMType, "sbom-type", "spdx", "SBOM type (spdx, spdx3, cyclonedx)")
	flags.StringVar(&a.flags.FileFormat, "file-format", "", "File format (json, json-ld, tagvalue, yaml, xml; default depends on --sbom-type)")
	flags.StringVar(&a.flags.Compress, "compress", "", "Compress the output (gzip, xz)")
	flags.StringVarP(&a.flags.GPGKey, "gpg-key", "k", "", "Path to GPG private key for a detached signature")
	flags.StringVarP(&a.flags.GPGPassphrase, "gpg-passphrase", "p", "", "GPG key passphrase")
	flags.StringVar(&a.flags.ALBSURL, "albs-url", "", "AlmaLinux Build System URL used for build links")
	flags.StringVar(&a.flags.Creator, "creator", "", "Organization named as SBOM creator")

	// Ledger flags
	flags.StringVar((*string)(&a.flags.Ledger.Backend), "ledger", "", "Ledger backend (file, keydb)")
	flags.StringVar(&a.flags.Ledger.Dir, "ledger-dir", "", "Directory of exported ledger records (file backend)")
	flags.StringVar(&a.flags.Ledger.KeyDB.Addr, "ledger-addr", "", "KeyDB address (keydb backend)")
	flags.StringVar(&a.flags.Ledger.Cache, "ledger-cache", "", "BoltDB file caching ledger records")

	// Add subcommands
	rootCmd.AddCommand(newPackageCmd(a))
	rootCmd.AddCommand(newBuildCmd(a))

	return rootCmd
}

// loadConfig layers the explicitly set flags over the config file and
// environment.
func (a *app) loadConfig(cmd *cobra.Command) (*config.CommonConfig, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		from *string
		to   *string
	}{
		{"output-file", &a.flags.OutputFile, &cfg.OutputFile},
		{"sbom-type", &a.flags.SBOMType, &cfg.SBOMType},
		{"file-format", &a.flags.FileFormat, &cfg.FileFormat},
		{"compress", &a.flags.Compress, &cfg.Compress},
		{"gpg-key", &a.flags.GPGKey, &cfg.GPGKey},
		{"gpg-passphrase", &a.flags.GPGPassphrase, &cfg.GPGPassphrase},
		{"albs-url", &a.flags.ALBSURL, &cfg.ALBSURL},
		{"creator", &a.flags.Creator, &cfg.Creator},
		{"ledger", (*string)(&a.flags.Ledger.Backend), (*string)(&cfg.Ledger.Backend)},
		{"ledger-dir", &a.flags.Ledger.Dir, &cfg.Ledger.Dir},
		{"ledger-addr", &a.flags.Ledger.KeyDB.Addr, &cfg.Ledger.KeyDB.Addr},
		{"ledger-cache", &a.flags.Ledger.Cache, &cfg.Ledger.Cache},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.to = *o.from
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logrus.Debugf("Configuration: type=%s format=%s output=%q ledger=%s", cfg.Format, cfg.FileFormat, cfg.OutputFile, cfg.Ledger.Backend)
	return cfg, nil
}
