package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

// FileLedger serves records exported to a directory: <dir>/<hash>.json or
// <dir>/<hash>.yaml, and build indexes under <dir>/builds/<id>.json|.yaml.
type FileLedger struct {
	dir string
}

type buildIndex struct {
	Packages []string `json:"packages" yaml:"packages"`
}

// NewFileLedger creates a ledger reading from dir.
func NewFileLedger(dir string) (*FileLedger, error) {
	if dir == "" {
		return nil, errors.New("ledger directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open ledger directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ledger path %s is not a directory", dir)
	}
	return &FileLedger{dir: dir}, nil
}

// Lookup reads the record stored for hash.
func (l *FileLedger) Lookup(ctx context.Context, hash string) (Record, error) {
	if err := checkKey(hash); err != nil {
		return Record{}, err
	}

	var rec Record
	if err := l.load(ctx, filepath.Join(l.dir, hash), hash, &rec); err != nil {
		return Record{}, err
	}
	if rec.Hash == "" {
		rec.Hash = hash
	}
	return rec, nil
}

// BuildPackages reads the package hash list of a build.
func (l *FileLedger) BuildPackages(ctx context.Context, buildID string) ([]string, error) {
	if err := checkKey(buildID); err != nil {
		return nil, err
	}

	var idx buildIndex
	if err := l.load(ctx, filepath.Join(l.dir, "builds", buildID), "build "+buildID, &idx); err != nil {
		return nil, err
	}
	return idx.Packages, nil
}

// Close implements Ledger.
func (l *FileLedger) Close() error {
	return nil
}

func (l *FileLedger) load(ctx context.Context, base, key string, out interface{}) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := base + ext
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return &models.SBOMError{Type: models.ErrLedger, Subject: key, Err: err}
		}

		logrus.Debugf("Loading ledger record from %s", path)
		if ext == ".json" {
			err = json.Unmarshal(data, out)
		} else {
			err = yaml.Unmarshal(data, out)
		}
		if err != nil {
			return &models.SBOMError{Type: models.ErrLedger, Subject: key, Err: fmt.Errorf("decode %s: %w", path, err)}
		}
		return nil
	}
	return notFound(key)
}
