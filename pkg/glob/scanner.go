// Package glob locates files and directories under a root path using compact
// wildcard patterns ("?", "*", "**") or full regular expressions, combining
// include and exclude patterns into one result set.
//
// Wildcard segments containing "[" are compiled as gobwas/glob expressions,
// so character classes like "[ab]" work within a single path segment. "[" in
// a literal file name must be written as a class of one: "[[]".
//
// Wildcard scans prune: a subtree is never opened when its path is
// structurally incompatible with every include pattern, which makes wildcard
// search asymptotically cheaper than regex search over large trees.
package glob

import (
	"context"
	"os"
	"path"
	"regexp"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/EsotericSoftware/wildcard/pkg/logx"
)

// Options control how a Scanner traverses and matches.
type Options struct {
	// Fs is the filesystem to scan. Defaults to the host filesystem.
	Fs afero.Fs
	// CaseInsensitive folds pattern and path segments before comparison.
	// Literal segment comparison follows this policy instead of hardwiring a
	// host filesystem convention.
	CaseInsensitive bool
	// FailFast aborts the scan on the first unreadable directory instead of
	// skipping it.
	FailFast bool
	// DefaultExcludes are appended to the exclude set of every wildcard scan
	// built from these options. Regex scans are not affected.
	DefaultExcludes []string
}

// Scanner resolves one include/exclude pattern set against one root
// directory. A Scanner is built per scan call and discarded once the match
// list is produced; it is not reused.
type Scanner struct {
	id   string
	fs   afero.Fs
	opts Options

	root     string // original root, slash separated
	scanRoot string // physical traversal root after literal-prefix narrowing
	prefix   string // literal prefix consumed by narrowing, "" when none

	includes []*Pattern
	excludes []*Pattern

	reIncludes []*regexp.Regexp
	reExcludes []*regexp.Regexp
	regex      bool

	skipped int
}

// NewScanner compiles the wildcard pattern set for one scan of dir. Patterns
// prefixed with "!" are excludes. An empty or exclude-only pattern set gains
// the implicit "**" include, collecting everything not excluded.
func NewScanner(dir string, patterns []string, opts Options) (*Scanner, error) {
	s := newScanner(dir, opts)

	includes, excludes := splitPatterns(patterns)
	if len(includes) == 0 {
		includes = []string{"**"}
	}
	excludes = append(excludes, opts.DefaultExcludes...)

	for _, raw := range includes {
		p, err := Compile(raw, opts.CaseInsensitive)
		if err != nil {
			return nil, err
		}
		s.includes = append(s.includes, p)
	}
	for _, raw := range excludes {
		p, err := Compile(raw, opts.CaseInsensitive)
		if err != nil {
			return nil, err
		}
		s.excludes = append(s.excludes, p)
	}

	s.narrowRoot()
	return s, nil
}

func newScanner(dir string, opts Options) *Scanner {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	root := NormalizeRoot(dir)
	return &Scanner{
		id:       "scan-" + uuid.NewString()[:8],
		fs:       opts.Fs,
		opts:     opts,
		root:     root,
		scanRoot: root,
	}
}

// Root returns the normalized original root directory of the scan.
func (s *Scanner) Root() string {
	return s.root
}

// Skipped returns the number of directories skipped because they could not
// be read. Always zero when FailFast is set, since the first failure aborts.
func (s *Scanner) Skipped() int {
	return s.skipped
}

func splitPatterns(patterns []string) (includes, excludes []string) {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if p[0] == '!' {
			excludes = append(excludes, p[1:])
		} else {
			includes = append(includes, p)
		}
	}
	return includes, excludes
}

// narrowRoot moves the physical traversal root down by the literal prefix
// shared by every include pattern. This is a pure optimization: traversal
// still behaves as if rooted at the original root, since reported paths keep
// the consumed prefix and excludes match against the full relative path.
func (s *Scanner) narrowRoot() {
	if s.opts.CaseInsensitive {
		// The literal anchor would have to match directory names on disk
		// exactly; under folding that cannot be guaranteed.
		return
	}

	anchor := s.includes[0].anchor()
	for _, p := range s.includes[1:] {
		if len(anchor) == 0 {
			return
		}
		other := p.anchor()
		if len(other) < len(anchor) {
			anchor = anchor[:len(other)]
		}
		for i := range anchor {
			if anchor[i] != other[i] {
				anchor = anchor[:i]
				break
			}
		}
	}
	if len(anchor) == 0 {
		return
	}

	s.prefix = path.Join(anchor...)
	s.scanRoot = path.Join(s.root, s.prefix)
	for i, p := range s.includes {
		s.includes[i] = p.trim(len(anchor))
	}
}

// Scan walks the tree and returns the relative paths matching the pattern
// set: every entry that matches at least one include and no exclude. Results
// are slash separated, relative to the original root, in depth-first order
// with each directory's entries sorted by name. This deliberately diverges
// from raw directory-listing order, which is not stable across filesystems:
// an identical scan of an unchanged tree must yield an identical sequence.
// A missing root yields an empty result, not an error.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	if s.regex && len(s.reIncludes) == 0 {
		// Regex mode has no implicit "**": an empty include set collects nothing.
		return nil, nil
	}

	if _, err := s.fs.Stat(s.scanRoot); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "stat scan root %s", s.scanRoot)
	}

	logx.As().Debug().
		Str("scanner", s.id).
		Str("root", s.root).
		Str("scan_root", s.scanRoot).
		Bool("regex", s.regex).
		Msg("Starting scan")

	var matches []string
	states := make([][]int, len(s.includes))
	for i, p := range s.includes {
		states[i] = p.start()
	}

	if err := s.walk(ctx, s.scanRoot, "", states, &matches); err != nil {
		return nil, err
	}

	logx.As().Debug().
		Str("scanner", s.id).
		Int("matches", len(matches)).
		Int("skipped_dirs", s.skipped).
		Msg("Scan finished")

	return matches, nil
}

// walk recursively enumerates dir. rel is the path relative to the physical
// scan root; states carries each include pattern's surviving NFA states for
// the path built so far (wildcard mode only).
func (s *Scanner) walk(ctx context.Context, dir string, rel string, states [][]int, matches *[]string) error {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if s.opts.FailFast {
			return errors.Wrapf(ErrDirectoryRead, "%s: %v", dir, err)
		}
		s.skipped++
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		full := childRel
		if s.prefix != "" {
			full = s.prefix + "/" + childRel
		}

		var next [][]int
		var matched, descend bool
		if s.regex {
			matched = s.regexIncluded(full)
			// A regular expression cannot generally be decomposed per path
			// segment, so there is no cheap prefix test: always descend.
			descend = true
		} else {
			next = make([][]int, len(s.includes))
			for i, p := range s.includes {
				next[i] = p.advance(states[i], name)
				if p.accepts(next[i]) {
					matched = true
				}
				if len(next[i]) > 0 {
					descend = true
				}
			}
		}

		if matched && s.excluded(full) {
			matched = false
		}
		if matched {
			*matches = append(*matches, full)
		}

		if entry.IsDir() && descend {
			if err := s.walk(ctx, path.Join(dir, name), childRel, next, matches); err != nil {
				return err
			}
		}
	}

	return nil
}

// excluded reports whether the relative path matches any exclude pattern.
// Excludes never prune traversal: an exclude can be narrower than the
// directory it lives in, so directories are still visited for siblings.
func (s *Scanner) excluded(rel string) bool {
	if s.regex {
		for _, re := range s.reExcludes {
			if re.MatchString(rel) {
				return true
			}
		}
		return false
	}
	for _, p := range s.excludes {
		if p.Matches(rel) {
			return true
		}
	}
	return false
}

// Glob collects all files and directories under dir matching the wildcard
// patterns, with default options. See NewScanner for the pattern convention.
func Glob(ctx context.Context, dir string, patterns ...string) ([]string, error) {
	s, err := NewScanner(dir, patterns, Options{})
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx)
}

// GlobPipe is the pipe-delimited form of Glob: "dir|pattern1|pattern2".
func GlobPipe(ctx context.Context, arg string) ([]string, error) {
	dir, patterns := Split(arg)
	return Glob(ctx, dir, patterns...)
}
