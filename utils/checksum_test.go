package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fileContent    = "Why did the robot bring a ladder to the bar? It heard the drinks were on the house."
	expectedMd5    = "70bd6370a86813f2504020281e4a2e2e"
	expectedSha1   = "8c3578ac814c9f02803001a5d3e5d78a7fd0f9cc"
	expectedSha256 = "093d901b28a59f7d95921f3f4fb97a03fe7a1cf8670507ffb1d6f9a01b3e890a"
)

func TestGetFileChecksums(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "artifact.aar")
	require.NoError(t, os.WriteFile(filePath, []byte(fileContent), 0644))

	// Calculate only sha1 and match
	checksums, err := GetFileChecksums(filePath, SHA1)
	assert.NoError(t, err)
	assert.Len(t, checksums, 1)
	assert.Equal(t, expectedSha1, checksums[SHA1])

	// Calculate all checksums and match
	checksums, err = GetFileChecksums(filePath)
	assert.NoError(t, err)
	assert.Equal(t, expectedMd5, checksums[MD5])
	assert.Equal(t, expectedSha1, checksums[SHA1])
	assert.Equal(t, expectedSha256, checksums[SHA256])
}

func TestWriteChecksumFiles(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "artifact.aar")
	require.NoError(t, os.WriteFile(filePath, []byte(fileContent), 0644))

	checksums, sidecars, err := WriteChecksumFiles(filePath, SidecarAlgorithms...)
	require.NoError(t, err)
	assert.Equal(t, []string{filePath + ".md5", filePath + ".sha1", filePath + ".sha256"}, sidecars)
	assert.Equal(t, expectedSha256, checksums[SHA256])

	content, err := os.ReadFile(filePath + ".sha1")
	require.NoError(t, err)
	assert.Equal(t, expectedSha1, string(content))
}
