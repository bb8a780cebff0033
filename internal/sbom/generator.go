// Package sbom turns canonical packages and builds into persisted SBOM
// documents: construct, serialize, compress, store and optionally sign.
package sbom

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/KAWAHARA-souta/alma-sbom/internal/document"
	"github.com/KAWAHARA-souta/alma-sbom/internal/document/cyclonedx"
	"github.com/KAWAHARA-souta/alma-sbom/internal/document/spdx"
	"github.com/KAWAHARA-souta/alma-sbom/internal/document/spdx3"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
	"github.com/KAWAHARA-souta/alma-sbom/internal/signer"
	"github.com/KAWAHARA-souta/alma-sbom/internal/sink"
	"github.com/KAWAHARA-souta/alma-sbom/internal/utils"
)

// Request describes one document to generate.
type Request struct {
	Format      document.Format
	Encoding    document.Encoding
	Output      string
	Compression utils.Compression
}

// Location is where the document is stored. A compressed document written to
// a file or object gets the compression suffix unless the name has it.
func (r Request) Location() string {
	ext := r.Compression.Extension()
	if sink.IsStdout(r.Output) || ext == "" || strings.HasSuffix(r.Output, ext) {
		return r.Output
	}
	return r.Output + ext
}

// Generator owns the factories of every format.
type Generator struct {
	factories map[document.Format]document.Factory
	open      sink.Opener
	signer    signer.Signer
}

// Option configures a Generator.
type Option func(*Generator)

// WithSigner makes the generator write a detached signature next to every
// output.
func WithSigner(s signer.Signer) Option {
	return func(g *Generator) {
		g.signer = s
	}
}

// WithOpener replaces the sink resolution, mainly for tests.
func WithOpener(open sink.Opener) Option {
	return func(g *Generator) {
		g.open = open
	}
}

// WithFactory registers or replaces the factory of its format.
func WithFactory(f document.Factory) Option {
	return func(g *Generator) {
		g.factories[f.Format()] = f
	}
}

// NewGenerator creates a generator with the SPDX, SPDX3 and CycloneDX
// backends.
func NewGenerator(opts document.Options, s3opts sink.S3Options, options ...Option) *Generator {
	g := &Generator{
		factories: map[document.Format]document.Factory{},
		open: func(ctx context.Context, location string) (sink.Sink, error) {
			return sink.Open(ctx, location, s3opts)
		},
	}
	for _, f := range []document.Factory{
		spdx.NewFactory(opts),
		spdx3.NewFactory(opts),
		cyclonedx.NewFactory(opts),
	} {
		g.factories[f.Format()] = f
	}
	for _, o := range options {
		o(g)
	}
	return g
}

// Factory returns the factory for f.
func (g *Generator) Factory(f document.Format) (document.Factory, error) {
	factory, ok := g.factories[f]
	if !ok {
		return nil, models.NewError(models.ErrConfiguration, "sbom-type", "unsupported SBOM format %q", f)
	}
	return factory, nil
}

// DefaultEncoding returns the first encoding the format supports.
func (g *Generator) DefaultEncoding(f document.Format) (document.Encoding, error) {
	factory, err := g.Factory(f)
	if err != nil {
		return "", err
	}
	return factory.Encodings()[0], nil
}

// Validate checks that the request can be served before anything is
// looked up or built.
func (g *Generator) Validate(req Request) error {
	factory, err := g.Factory(req.Format)
	if err != nil {
		return err
	}
	if err := document.CheckEncoding(factory, req.Encoding); err != nil {
		return err
	}
	if g.signer != nil && sink.IsStdout(req.Output) {
		return models.NewError(models.ErrConfiguration, "gpg-key", "signing requires --output-file")
	}
	return nil
}

// Package generates a document describing a single package.
func (g *Generator) Package(ctx context.Context, pkg *models.Package, req Request) error {
	if err := g.Validate(req); err != nil {
		return err
	}

	logrus.Infof("Generating %s SBOM for package %s", req.Format, pkg.Identity.String())
	doc, err := g.factories[req.Format].FromPackage(pkg, req.Encoding)
	if err != nil {
		return err
	}
	return g.emit(ctx, doc, req)
}

// Build generates a document describing a build and all of its packages.
func (g *Generator) Build(ctx context.Context, build *models.Build, req Request) error {
	if err := g.Validate(req); err != nil {
		return err
	}

	logrus.Infof("Generating %s SBOM for build %s (%d packages)", req.Format, build.ID, len(build.Packages))
	doc, err := g.factories[req.Format].FromBuild(build, req.Encoding)
	if err != nil {
		return err
	}
	return g.emit(ctx, doc, req)
}

func (g *Generator) emit(ctx context.Context, doc document.Document, req Request) error {
	data, err := doc.Marshal()
	if err != nil {
		return &models.SBOMError{Type: models.ErrConstruction, Subject: string(req.Format), Err: err}
	}

	data, err = utils.Compress(req.Compression, data)
	if err != nil {
		return &models.SBOMError{Type: models.ErrFileOp, Subject: string(req.Compression), Err: fmt.Errorf("failed to compress: %w", err)}
	}

	// Sign first so a signing failure leaves nothing behind.
	var sig []byte
	if g.signer != nil {
		if sig, err = g.signer.SignDetached(data); err != nil {
			return err
		}
	}

	location := req.Location()
	out, err := g.open(ctx, location)
	if err != nil {
		return err
	}
	if err := out.Put(ctx, data); err != nil {
		return err
	}
	logrus.Infof("Wrote %s SBOM (%s, %d bytes, sha256 %s) to %s",
		req.Format, req.Encoding, len(data), utils.SHA256Hex(data), out.Location())

	if sig == nil {
		return nil
	}

	sigOut, err := g.open(ctx, location+signer.SignatureExtension)
	if err != nil {
		return err
	}
	if err := sigOut.Put(ctx, sig); err != nil {
		return err
	}
	logrus.Debugf("Wrote detached signature to %s", sigOut.Location())
	return nil
}
