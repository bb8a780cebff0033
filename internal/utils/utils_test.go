package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "sbom.json")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestDigestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkg.rpm")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	digest, err := DigestFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", digest.SHA256)
	assert.Equal(t, int64(3), digest.Size)
	assert.Equal(t, digest.SHA256, SHA256Hex([]byte("abc")))

	_, err = DigestFile(filepath.Join(t.TempDir(), "missing.rpm"))
	assert.Error(t, err)
}

func TestCompressionRoundTrip(t *testing.T) {
	payload := []byte(`{"bomFormat": "CycloneDX", "specVersion": "1.5"}`)

	gz, err := Compress(CompressionGzip, payload)
	require.NoError(t, err)
	out, err := GzipDecompress(gz)
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	xzData, err := Compress(CompressionXZ, payload)
	require.NoError(t, err)
	out, err = XZDecompress(xzData)
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	same, err := Compress(CompressionNone, payload)
	require.NoError(t, err)
	assert.Equal(t, payload, same)
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		input    string
		expected Compression
		ext      string
	}{
		{"", CompressionNone, ""},
		{"none", CompressionNone, ""},
		{"GZIP", CompressionGzip, ".gz"},
		{"xz", CompressionXZ, ".xz"},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
		assert.Equal(t, tt.ext, got.Extension())
	}

	_, err := ParseCompression("zip")
	assert.Error(t, err)
}
