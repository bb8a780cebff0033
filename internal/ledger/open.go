package ledger

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

// Backend enumerates supported record sources.
type Backend string

const (
	// BackendFile reads records from a directory of JSON/YAML files.
	BackendFile Backend = "file"
	// BackendKeyDB reads records mirrored into KeyDB/Redis.
	BackendKeyDB Backend = "keydb"
)

// Config contains backend selection and nested settings.
type Config struct {
	Backend Backend     `yaml:"backend"`
	Dir     string      `yaml:"dir"`
	KeyDB   KeyDBConfig `yaml:"keydb"`
	// Cache is an optional BoltDB file caching looked up records.
	Cache string `yaml:"cache"`
}

// ParseBackend parses a backend name; "" means file.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(s)) {
	case "", BackendFile:
		return BackendFile, nil
	case BackendKeyDB:
		return BackendKeyDB, nil
	default:
		return "", models.NewError(models.ErrConfiguration, "ledger", "unsupported ledger backend %q (supported: file, keydb)", s)
	}
}

// Open creates the configured ledger, wrapped in a cache when one is set.
func Open(cfg Config) (Ledger, error) {
	backend, err := ParseBackend(string(cfg.Backend))
	if err != nil {
		return nil, err
	}

	var l Ledger
	switch backend {
	case BackendKeyDB:
		logrus.Debugf("Using KeyDB ledger at %s (db %d)", cfg.KeyDB.Addr, cfg.KeyDB.Database)
		l, err = NewKeyDBLedger(cfg.KeyDB)
	default:
		logrus.Debugf("Using file ledger in %s", cfg.Dir)
		l, err = NewFileLedger(cfg.Dir)
	}
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrLedger, Subject: string(backend), Err: err}
	}

	if cfg.Cache == "" {
		return l, nil
	}

	cached, err := NewBoltCache(cfg.Cache, l)
	if err != nil {
		_ = l.Close()
		return nil, &models.SBOMError{Type: models.ErrLedger, Subject: cfg.Cache, Err: fmt.Errorf("failed to open cache: %w", err)}
	}
	return cached, nil
}
