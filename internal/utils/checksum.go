package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// FileDigest is the SHA-256 of a file together with its size
type FileDigest struct {
	SHA256 string
	Size   int64
}

// DigestFile streams a file through SHA-256. The ledger addresses package
// records by this digest.
func DigestFile(path string) (*FileDigest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, err
	}

	return &FileDigest{
		SHA256: hex.EncodeToString(h.Sum(nil)),
		Size:   n,
	}, nil
}

// SHA256Hex returns the hex encoded SHA-256 of data
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
