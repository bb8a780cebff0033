package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

const (
	recordKeyPrefix = "ledger:record:"
	buildKeyPrefix  = "ledger:build:"
)

// KeyDBConfig defines KeyDB/Redis connection settings.
type KeyDBConfig struct {
	Addr     string
	Username string
	Password string
	Database int
}

// KeyDBLedger reads records mirrored into KeyDB. Records are stored as JSON
// strings under ledger:record:<hash>; builds as lists of package hashes under
// ledger:build:<id>.
type KeyDBLedger struct {
	client *redis.Client
}

// NewKeyDBLedger connects to KeyDB and verifies the connection.
func NewKeyDBLedger(cfg KeyDBConfig) (*KeyDBLedger, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to keydb: %w", err)
	}

	return &KeyDBLedger{client: client}, nil
}

// Lookup fetches and decodes the record stored for hash.
func (l *KeyDBLedger) Lookup(ctx context.Context, hash string) (Record, error) {
	data, err := l.client.Get(ctx, recordKeyPrefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, notFound(hash)
	}
	if err != nil {
		return Record{}, &models.SBOMError{Type: models.ErrLedger, Subject: hash, Err: err}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, &models.SBOMError{Type: models.ErrLedger, Subject: hash, Err: fmt.Errorf("decode record: %w", err)}
	}
	if rec.Hash == "" {
		rec.Hash = hash
	}
	return rec, nil
}

// BuildPackages returns the package hashes listed for a build, in order.
func (l *KeyDBLedger) BuildPackages(ctx context.Context, buildID string) ([]string, error) {
	key := buildKeyPrefix + buildID
	hashes, err := l.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrLedger, Subject: "build " + buildID, Err: err}
	}
	if len(hashes) == 0 {
		return nil, notFound("build " + buildID)
	}
	return hashes, nil
}

// Put stores a record; used when mirroring ledger entries into KeyDB.
func (l *KeyDBLedger) Put(ctx context.Context, rec Record) error {
	if rec.Hash == "" {
		return errors.New("record hash is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return l.client.Set(ctx, recordKeyPrefix+rec.Hash, data, 0).Err()
}

// PutBuild replaces the package hash list of a build.
func (l *KeyDBLedger) PutBuild(ctx context.Context, buildID string, hashes []string) error {
	key := buildKeyPrefix + buildID
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(hashes) > 0 {
			values := make([]interface{}, len(hashes))
			for i, h := range hashes {
				values[i] = h
			}
			pipe.RPush(ctx, key, values...)
		}
		return nil
	})
	return err
}

// Close releases the client connection.
func (l *KeyDBLedger) Close() error {
	return l.client.Close()
}
