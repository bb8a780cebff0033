package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KAWAHARA-souta/alma-sbom/internal/document"
	"github.com/KAWAHARA-souta/alma-sbom/internal/ledger"
	"github.com/KAWAHARA-souta/alma-sbom/internal/processor"
	"github.com/KAWAHARA-souta/alma-sbom/internal/sbom"
	"github.com/KAWAHARA-souta/alma-sbom/internal/signer"
)

// session is everything a subcommand needs once configuration is valid
type session struct {
	ledger    ledger.Ledger
	registry  *processor.Registry
	generator *sbom.Generator
	request   sbom.Request
}

// open validates the full request before touching the ledger.
func (a *app) open(cmd *cobra.Command) (*session, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var options []sbom.Option
	if cfg.GPGKey != "" {
		s, err := signer.NewGPGSigner(cfg.GPGKey, cfg.GPGPassphrase)
		if err != nil {
			return nil, err
		}
		options = append(options, sbom.WithSigner(s))
	}

	gen := sbom.NewGenerator(document.Options{
		ToolVersion: a.version,
		Creator:     cfg.Creator,
	}.WithDefaults(), cfg.S3, options...)

	req := sbom.Request{
		Format:      cfg.Format,
		Encoding:    cfg.Encoding,
		Output:      cfg.OutputFile,
		Compression: cfg.Compression,
	}
	if req.Encoding == "" {
		if req.Encoding, err = gen.DefaultEncoding(req.Format); err != nil {
			return nil, err
		}
	}
	if err := gen.Validate(req); err != nil {
		return nil, err
	}

	l, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return nil, err
	}

	return &session{
		ledger:    l,
		registry:  processor.DefaultRegistry(processor.Options{ALBSURL: cfg.ALBSURL}),
		generator: gen,
		request:   req,
	}, nil
}

func (s *session) Close() {
	if err := s.ledger.Close(); err != nil {
		logrus.Warnf("Failed to close ledger: %v", err)
	}
}
