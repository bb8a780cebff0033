// Package ledger retrieves raw build-metadata records from the hash-addressed
// ledger. Records are handed to the processor untouched.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

var (
	// ErrNotFound is returned when the ledger holds no record for a key.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidKey is returned for hashes and build ids that cannot name a
	// single ledger entry.
	ErrInvalidKey = errors.New("invalid ledger key")
)

// Record is a single ledger entry as returned by a lookup.
type Record struct {
	Value     map[string]interface{} `json:"value" yaml:"value"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Timestamp string                 `json:"timestamp" yaml:"timestamp"`
	Hash      string                 `json:"hash" yaml:"hash"`
}

// Ledger looks up package records by content hash and lists the package
// hashes produced by a build.
type Ledger interface {
	Lookup(ctx context.Context, hash string) (Record, error)
	BuildPackages(ctx context.Context, buildID string) ([]string, error)
	Close() error
}

// UnmarshalJSON accepts the timestamp as a string or as a number, which is
// how immudb reports it.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var raw struct {
		plain
		Timestamp interface{} `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record(raw.plain)
	if raw.Timestamp != nil {
		r.Timestamp = toString(raw.Timestamp)
	}
	return nil
}

// MetadataBlock returns the record metadata. Raw immudb payloads keep it
// under value.Metadata rather than at the top level; an empty top-level
// block does not hide it.
func (r Record) MetadataBlock() map[string]interface{} {
	if len(r.Metadata) > 0 {
		return r.Metadata
	}
	if m, ok := r.Value["Metadata"].(map[string]interface{}); ok {
		return m
	}
	return r.Metadata
}

// String returns the field as a string. Numbers are rendered without an
// exponent and nil/missing values become "".
func String(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return toString(v)
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// checkKey rejects keys that would address something other than a single
// entry under the ledger root.
func checkKey(key string) error {
	if key == "" || key == "." || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return &models.SBOMError{Type: models.ErrLedger, Subject: key, Err: ErrInvalidKey}
	}
	return nil
}

func notFound(key string) error {
	return &models.SBOMError{Type: models.ErrLedger, Subject: key, Err: ErrNotFound}
}
