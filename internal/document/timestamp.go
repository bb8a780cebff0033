package document

import (
	"strconv"
	"time"
)

// LedgerTime converts a ledger timestamp (unix seconds, possibly fractional,
// or RFC 3339) into UTC. ok is false when the value cannot be interpreted.
func LedgerTime(ts string) (t time.Time, ok bool) {
	if ts == "" {
		return time.Time{}, false
	}
	if secs, err := strconv.ParseFloat(ts, 64); err == nil {
		return time.Unix(int64(secs), 0).UTC(), true
	}
	if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
		return parsed.UTC(), true
	}
	return time.Time{}, false
}
