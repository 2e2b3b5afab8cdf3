package glob

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
)

// NewRegexScanner compiles the regular expression pattern set for one scan of
// dir. Patterns prefixed with "!" are excludes. Each expression must match
// the whole slash separated relative path. Unlike wildcard mode, an empty
// include set collects nothing, and DefaultExcludes are not applied.
//
// Regex scans are much slower than wildcard scans over large trees because
// every file and directory under dir must be inspected; see Scanner.walk.
func NewRegexScanner(dir string, patterns []string, opts Options) (*Scanner, error) {
	s := newScanner(dir, opts)
	s.regex = true

	includes, excludes := splitPatterns(patterns)
	for _, raw := range includes {
		re, err := compileRegex(raw)
		if err != nil {
			return nil, err
		}
		s.reIncludes = append(s.reIncludes, re)
	}
	for _, raw := range excludes {
		re, err := compileRegex(raw)
		if err != nil {
			return nil, err
		}
		s.reExcludes = append(s.reExcludes, re)
	}

	return s, nil
}

// compileRegex anchors the expression so it must cover the full relative path.
func compileRegex(raw string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + raw + ")$")
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPattern, "regex %q: %v", raw, err)
	}
	return re, nil
}

func (s *Scanner) regexIncluded(rel string) bool {
	for _, re := range s.reIncludes {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// Regex collects all files and directories under dir matching the regular
// expression patterns, with default options.
func Regex(ctx context.Context, dir string, patterns ...string) ([]string, error) {
	s, err := NewRegexScanner(dir, patterns, Options{})
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx)
}
