// Package fsx provides small filesystem helpers shared by the bulk path
// operations. All helpers operate on an afero.Fs so callers can swap the real
// filesystem for an in-memory one in tests.
package fsx

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// PathExists reports whether the given path exists, returning its FileInfo
// when it does.
func PathExists(fs afero.Fs, filePath string) (os.FileInfo, bool) {
	s, err := fs.Stat(filePath)
	if err != nil {
		return nil, false
	}

	return s, true
}

// Copy copies the contents of src to dst, creating or truncating dst with the
// given permissions.
func Copy(fs afero.Fs, src string, dst string, perm os.FileMode) error {
	inputFile, err := fs.Open(src)
	if err != nil {
		return errors.Wrap(err, "couldn't open source file")
	}
	defer CloseFile(inputFile)

	outputFile, err := fs.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrap(err, "couldn't open destination file")
	}
	defer CloseFile(outputFile)

	if _, err = io.Copy(outputFile, inputFile); err != nil {
		return errors.Wrap(err, "couldn't copy to destination from source")
	}

	if err = outputFile.Sync(); err != nil {
		return errors.Wrap(err, "failed to flush destination file")
	}

	return nil
}

// FileMD5 returns the hex encoded MD5 checksum of the file at filePath.
func FileMD5(fs afero.Fs, filePath string) (string, error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to open file")
	}

	defer CloseFile(file)

	hash := md5.New()
	if _, err = io.Copy(hash, file); err != nil {
		return "", errors.Wrap(err, "failed to compute hash of the file")
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// CloseFile closes the file, ignoring a nil file and swallowing close errors.
func CloseFile(file afero.File) {
	if file == nil {
		return
	}

	_ = file.Close()
}
