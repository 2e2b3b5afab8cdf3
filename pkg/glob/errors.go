package glob

import "github.com/pkg/errors"

// ErrInvalidPattern reports a pattern that failed to compile. The scan call
// carrying the pattern fails as a whole; no partial results are returned.
var ErrInvalidPattern = errors.New("invalid pattern")

// ErrDirectoryRead reports a directory that could not be listed during a
// fail-fast scan. The relaxed default skips the subtree and keeps going.
var ErrDirectoryRead = errors.New("directory read failed")
