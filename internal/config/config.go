// Package config loads and validates alma-sbom settings. Values are layered:
// defaults, then an optional YAML file, then ALMA_SBOM_* environment
// variables; the CLI applies explicit flags last.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/KAWAHARA-souta/alma-sbom/internal/document"
	"github.com/KAWAHARA-souta/alma-sbom/internal/ledger"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
	"github.com/KAWAHARA-souta/alma-sbom/internal/processor"
	"github.com/KAWAHARA-souta/alma-sbom/internal/sink"
	"github.com/KAWAHARA-souta/alma-sbom/internal/utils"
)

const envPrefix = "ALMA_SBOM_"

// CommonConfig holds the settings shared by every subcommand.
type CommonConfig struct {
	OutputFile    string         `yaml:"output_file"`
	SBOMType      string         `yaml:"sbom_type"`
	FileFormat    string         `yaml:"file_format"`
	Compress      string         `yaml:"compress"`
	GPGKey        string         `yaml:"gpg_key"`
	GPGPassphrase string         `yaml:"gpg_passphrase"`
	ALBSURL       string         `yaml:"albs_url"`
	Creator       string         `yaml:"creator"`
	Ledger        ledger.Config  `yaml:"ledger"`
	S3            sink.S3Options `yaml:"s3"`

	// Resolved by Validate.
	Format      document.Format   `yaml:"-"`
	Encoding    document.Encoding `yaml:"-"`
	Compression utils.Compression `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *CommonConfig {
	return &CommonConfig{
		SBOMType: string(document.FormatSPDX),
		ALBSURL:  processor.DefaultALBSURL,
		Ledger: ledger.Config{
			Backend: ledger.BackendFile,
			Dir:     ".",
		},
	}
}

// Load reads path (when non-empty) over the defaults and applies the
// environment.
func Load(path string) (*CommonConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &models.SBOMError{Type: models.ErrConfiguration, Subject: path, Err: fmt.Errorf("failed to read config: %w", err)}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &models.SBOMError{Type: models.ErrConfiguration, Subject: path, Err: fmt.Errorf("failed to parse config: %w", err)}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *CommonConfig) applyEnv() {
	c.OutputFile = envDefault("OUTPUT_FILE", c.OutputFile)
	c.SBOMType = envDefault("SBOM_TYPE", c.SBOMType)
	c.FileFormat = envDefault("FILE_FORMAT", c.FileFormat)
	c.Compress = envDefault("COMPRESS", c.Compress)
	c.GPGKey = envDefault("GPG_KEY", c.GPGKey)
	c.GPGPassphrase = envDefault("GPG_PASSPHRASE", c.GPGPassphrase)
	c.ALBSURL = envDefault("ALBS_URL", c.ALBSURL)
	c.Creator = envDefault("CREATOR", c.Creator)

	c.Ledger.Backend = ledger.Backend(envDefault("LEDGER", string(c.Ledger.Backend)))
	c.Ledger.Dir = envDefault("LEDGER_DIR", c.Ledger.Dir)
	c.Ledger.Cache = envDefault("LEDGER_CACHE", c.Ledger.Cache)
	c.Ledger.KeyDB.Addr = envDefault("LEDGER_ADDR", c.Ledger.KeyDB.Addr)
	c.Ledger.KeyDB.Username = envDefault("LEDGER_USERNAME", c.Ledger.KeyDB.Username)
	c.Ledger.KeyDB.Password = envDefault("LEDGER_PASSWORD", c.Ledger.KeyDB.Password)
	c.Ledger.KeyDB.Database = envInt("LEDGER_DB", c.Ledger.KeyDB.Database)

	c.S3.Region = envDefault("S3_REGION", c.S3.Region)
	c.S3.Endpoint = envDefault("S3_ENDPOINT", c.S3.Endpoint)
}

// Validate parses the format, encoding and compression names and checks
// option combinations. An empty file format leaves Encoding unset so the
// format's default applies.
func (c *CommonConfig) Validate() error {
	format, err := document.ParseFormat(c.SBOMType)
	if err != nil {
		return err
	}
	c.Format = format

	c.Encoding = ""
	if c.FileFormat != "" {
		enc, err := document.ParseEncoding(c.FileFormat)
		if err != nil {
			return err
		}
		c.Encoding = enc
	}

	compression, err := utils.ParseCompression(c.Compress)
	if err != nil {
		return &models.SBOMError{Type: models.ErrConfiguration, Subject: "compress", Err: err}
	}
	c.Compression = compression

	if _, err := ledger.ParseBackend(string(c.Ledger.Backend)); err != nil {
		return err
	}

	if c.GPGKey != "" && sink.IsStdout(c.OutputFile) {
		return models.NewError(models.ErrConfiguration, "gpg-key", "signing requires --output-file")
	}
	if c.GPGPassphrase != "" && c.GPGKey == "" {
		return models.NewError(models.ErrConfiguration, "gpg-passphrase", "passphrase given without --gpg-key")
	}

	return nil
}

// PackageConfig selects a single package, either by ledger hash or by a
// local RPM file.
type PackageConfig struct {
	RPMPackageHash string
	RPMPackage     string
}

// Validate enforces that exactly one selector is set.
func (c PackageConfig) Validate() error {
	switch {
	case c.RPMPackageHash == "" && c.RPMPackage == "":
		return models.NewError(models.ErrConfiguration, "package", "one of --rpm-package-hash or --rpm-package is required")
	case c.RPMPackageHash != "" && c.RPMPackage != "":
		return models.NewError(models.ErrConfiguration, "package", "--rpm-package-hash and --rpm-package are mutually exclusive")
	}
	return nil
}

// BuildConfig selects a build.
type BuildConfig struct {
	BuildID string
}

// Validate requires a build id.
func (c BuildConfig) Validate() error {
	if c.BuildID == "" {
		return models.NewError(models.ErrConfiguration, "build-id", "--build-id is required")
	}
	return nil
}

func envDefault(key, def string) string {
	if val := os.Getenv(envPrefix + key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(envPrefix + key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}
