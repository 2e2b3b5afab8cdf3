// Package paths collects filesystem paths matched by wildcard or regular
// expression patterns, preserving the directory structure, and offers bulk
// copy, delete and zip operations over the collected set.
package paths

import (
	"context"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/EsotericSoftware/wildcard/pkg/glob"
)

// Entry is one collected path: the scan root it came from plus the name
// relative to that root, slash separated. Keeping the pair instead of a
// flattened absolute string lets bulk operations re-root entries or reorder
// them without re-scanning the filesystem.
type Entry struct {
	Root string
	Name string
}

// Absolute returns the joined root and relative name.
func (e Entry) Absolute() string {
	return path.Join(e.Root, e.Name)
}

// Base returns the last element of the entry name.
func (e Entry) Base() string {
	return path.Base(e.Name)
}

// Paths is an ordered, duplicate tolerant collection of entries. The
// collection is append-only; derived views (files only, dirs only, arbitrary
// filters) are produced by filtering into a new collection rather than
// removing in place.
type Paths struct {
	fs      afero.Fs
	opts    glob.Options
	entries []Entry
}

// New returns an empty collection scanning the host filesystem.
func New() *Paths {
	return NewWithOptions(glob.Options{})
}

// NewWithOptions returns an empty collection. opts applies to every scan the
// collection runs, which is also how a shared default-exclude list is
// carried into all wildcard scans instead of living in ambient global state.
func NewWithOptions(opts glob.Options) *Paths {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return &Paths{fs: opts.Fs, opts: opts}
}

// Glob collects all files and directories under dir matching the wildcard
// patterns and appends them to the collection. Patterns prefixed with "!"
// exclude; an empty pattern set collects everything under dir.
func (p *Paths) Glob(ctx context.Context, dir string, patterns ...string) error {
	s, err := glob.NewScanner(dir, patterns, p.opts)
	if err != nil {
		return err
	}
	return p.appendScan(ctx, s)
}

// GlobPipe is the pipe-delimited form of Glob: "dir|pattern1|pattern2".
func (p *Paths) GlobPipe(ctx context.Context, arg string) error {
	dir, patterns := glob.Split(arg)
	return p.Glob(ctx, dir, patterns...)
}

// Regex collects all files and directories under dir matching the regular
// expression patterns and appends them to the collection. Unlike Glob, an
// empty pattern set collects nothing.
func (p *Paths) Regex(ctx context.Context, dir string, patterns ...string) error {
	s, err := glob.NewRegexScanner(dir, patterns, p.opts)
	if err != nil {
		return err
	}
	return p.appendScan(ctx, s)
}

func (p *Paths) appendScan(ctx context.Context, s *glob.Scanner) error {
	matches, err := s.Scan(ctx)
	if err != nil {
		return err
	}
	for _, m := range matches {
		p.entries = append(p.entries, Entry{Root: s.Root(), Name: m})
	}
	return nil
}

// Add appends a single entry.
func (p *Paths) Add(root, name string) {
	p.entries = append(p.entries, Entry{Root: glob.NormalizeRoot(root), Name: name})
}

// AddAll appends every entry of the other collection.
func (p *Paths) AddAll(other *Paths) {
	p.entries = append(p.entries, other.entries...)
}

// Len returns the number of collected entries.
func (p *Paths) Len() int {
	return len(p.entries)
}

// Entries returns a copy of the collected entries in order.
func (p *Paths) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// RelativePaths returns the relative names in order.
func (p *Paths) RelativePaths() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Name
	}
	return out
}

// AbsolutePaths returns the root-joined paths in order.
func (p *Paths) AbsolutePaths() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Absolute()
	}
	return out
}

// Names returns the entries' base names in order.
func (p *Paths) Names() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Base()
	}
	return out
}

// Filter returns a new collection holding the entries for which keep is true.
func (p *Paths) Filter(keep func(Entry) bool) *Paths {
	out := NewWithOptions(p.opts)
	for _, e := range p.entries {
		if keep(e) {
			out.entries = append(out.entries, e)
		}
	}
	return out
}

// FilesOnly returns a new collection holding only the entries that are
// regular files.
func (p *Paths) FilesOnly() *Paths {
	return p.Filter(func(e Entry) bool {
		info, err := p.fs.Stat(e.Absolute())
		return err == nil && !info.IsDir()
	})
}

// DirsOnly returns a new collection holding only the entries that are
// directories.
func (p *Paths) DirsOnly() *Paths {
	return p.Filter(func(e Entry) bool {
		info, err := p.fs.Stat(e.Absolute())
		return err == nil && info.IsDir()
	})
}

// Delimited returns the absolute paths joined by the given delimiter.
func (p *Paths) Delimited(delimiter string) string {
	return strings.Join(p.AbsolutePaths(), delimiter)
}

// String returns the absolute paths delimited by commas.
func (p *Paths) String() string {
	return p.Delimited(", ")
}
