package fsx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestPathExists(t *testing.T) {
	fs := afero.NewOsFs()
	tempDir := t.TempDir()

	existingFile := filepath.Join(tempDir, "test.txt")
	err := os.WriteFile(existingFile, []byte("test content"), 0644)
	assert.NoError(t, err)

	// Test existing file
	info, exists := PathExists(fs, existingFile)
	assert.True(t, exists)
	assert.NotNil(t, info)

	// Test non-existing file
	_, exists = PathExists(fs, filepath.Join(tempDir, "nonexistent.txt"))
	assert.False(t, exists)
}

func TestCopy(t *testing.T) {
	fs := afero.NewOsFs()
	tempDir := t.TempDir()

	srcFile := filepath.Join(tempDir, "source.txt")
	destFile := filepath.Join(tempDir, "destination.txt")

	err := os.WriteFile(srcFile, []byte("test content"), 0644)
	assert.NoError(t, err)

	err = Copy(fs, srcFile, destFile, 0644)
	assert.NoError(t, err)

	content, err := os.ReadFile(destFile)
	assert.NoError(t, err)
	assert.Equal(t, "test content", string(content))
}

func TestCopy_MissingSource(t *testing.T) {
	fs := afero.NewMemMapFs()

	err := Copy(fs, "/missing.txt", "/dest.txt", 0644)
	assert.Error(t, err)
}

func TestFileMD5(t *testing.T) {
	fs := afero.NewMemMapFs()

	err := afero.WriteFile(fs, "/test.txt", []byte("test content"), 0644)
	assert.NoError(t, err)

	hash, err := FileMD5(fs, "/test.txt")
	assert.NoError(t, err)
	assert.Equal(t, "9473fdd0d880a43c21b7778d34872157", hash)
}
