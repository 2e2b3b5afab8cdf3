package glob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates the given slash separated relative paths under root.
// Entries ending in "/" become empty directories, everything else a small
// file.
func writeTree(t *testing.T, root string, entries []string) {
	t.Helper()
	for _, e := range entries {
		full := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(e, "/")))
		if strings.HasSuffix(e, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(e), 0o644))
	}
}

func TestGlob_DoubleStarCollectsAtEveryDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"stuff.jpg",
		"otherstuff.gif",
		"animals/cat.jpg",
		"animals/dog.jpg",
		"animals/giraffe.tga",
	})

	matches, err := Glob(context.Background(), root, "**/*.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"animals/cat.jpg", "animals/dog.jpg", "stuff.jpg"}, matches)
}

func TestGlob_SingleStarStaysInOneSegment(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"stuff.jpg",
		"animals/cat.jpg",
	})

	matches, err := Glob(context.Background(), root, "*.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"stuff.jpg"}, matches)
}

func TestGlob_QuestionMark(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a", "b", "ab", "c/d"})

	matches, err := Glob(context.Background(), root, "?")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, matches)
}

func TestGlob_TrailingDoubleStarMatchesDirItself(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a/x.txt", "b/y.txt"})

	matches, err := Glob(context.Background(), root, "a/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/x.txt"}, matches)
}

func TestGlob_TrailingDoubleStarRunMatchesAnchoredDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a/x.txt", "a/b/y.txt"})

	// Root narrowing must never change the result set: "a" and "a/b" match
	// these patterns and have to survive the literal prefix moving into the
	// scan root.
	matches, err := Glob(context.Background(), root, "a/**/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/b", "a/b/y.txt", "a/x.txt"}, matches)

	matches, err = Glob(context.Background(), root, "a/b/**/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b", "a/b/y.txt"}, matches)
}

func TestGlob_ExcludeWinsOverInclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"images/one.jpg",
		"images/.svn/two.jpg",
		"images/a/b/c/d/e/f/g/h/.svn/deep.jpg",
		"images/a/real.jpg",
	})

	matches, err := Glob(context.Background(), root, "images/**/*.jpg", "!**/.svn/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"images/a/real.jpg", "images/one.jpg"}, matches)
}

func TestGlob_NoPatternsCollectsEverything(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a.txt", "sub/b.txt"})

	matches, err := Glob(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "sub", "sub/b.txt"}, matches)
}

func TestGlob_OnlyExcludesImpliesDoubleStar(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a.txt", "b.log", "sub/c.txt"})

	matches, err := Glob(context.Background(), root, "!**/*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.log", "sub"}, matches)
}

func TestGlob_MissingRootIsEmptyNotError(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	matches, err := Glob(context.Background(), root, "**")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestGlob_PipeForm(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a.png", "b.gif", "sub/c.png"})

	direct, err := Glob(context.Background(), root, "**/*.png")
	require.NoError(t, err)

	piped, err := GlobPipe(context.Background(), root+"|**/*.png")
	require.NoError(t, err)

	assert.Equal(t, direct, piped)
	assert.Equal(t, []string{"a.png", "sub/c.png"}, piped)
}

func TestGlob_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a/x", "a/y", "b/z", "top"})

	first, err := Glob(context.Background(), root, "**")
	require.NoError(t, err)
	second, err := Glob(context.Background(), root, "**")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGlob_RootNarrowingIsTransparent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a/b/x", "a/b/y/z", "a/other", "elsewhere"})

	// A literal prefix in the pattern must behave exactly like scanning the
	// prefixed directory, apart from the trailing "**" matching the anchored
	// directory itself.
	narrowed, err := Glob(context.Background(), root, "a/b/**")
	require.NoError(t, err)

	inner, err := Glob(context.Background(), filepath.Join(root, "a", "b"), "**")
	require.NoError(t, err)

	want := []string{"a/b"}
	for _, p := range inner {
		want = append(want, "a/b/"+p)
	}
	assert.Equal(t, want, narrowed)
}

func TestGlob_CaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"Animals/Cat.JPG", "Animals/dog.jpg"})

	s, err := NewScanner(root, []string{"animals/*.jpg"}, Options{CaseInsensitive: true})
	require.NoError(t, err)

	matches, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Animals/Cat.JPG", "Animals/dog.jpg"}, matches)
}

func TestGlob_DefaultExcludes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"keep.txt", ".svn/entries", "sub/.svn/entries"})

	s, err := NewScanner(root, []string{"**"}, Options{DefaultExcludes: []string{"**/.svn/**"}})
	require.NoError(t, err)

	matches, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt", "sub"}, matches)
}

func TestGlob_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a.txt"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Glob(ctx, root, "**")
	assert.ErrorIs(t, err, context.Canceled)
}

// countingFs counts Open calls per path, which during a scan happen only for
// directory listings.
type countingFs struct {
	afero.Fs
	opens map[string]int
}

func (c *countingFs) Open(name string) (afero.File, error) {
	c.opens[name]++
	return c.Fs.Open(name)
}

func TestGlob_PrunesIncompatibleSubtrees(t *testing.T) {
	mem := afero.NewMemMapFs()
	for _, f := range []string{
		"/root/a/one.txt",
		"/root/a/two.txt",
		"/root/skip/nested/deep.txt",
		"/root/alsoskip/x.txt",
	} {
		require.NoError(t, afero.WriteFile(mem, f, []byte("x"), 0o644))
	}

	fs := &countingFs{Fs: mem, opens: map[string]int{}}
	s, err := NewScanner("/root", []string{"a/**"}, Options{Fs: fs})
	require.NoError(t, err)

	matches, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/one.txt", "a/two.txt"}, matches)

	assert.Contains(t, fs.opens, "/root")
	assert.Contains(t, fs.opens, "/root/a")
	assert.NotContains(t, fs.opens, "/root/skip")
	assert.NotContains(t, fs.opens, "/root/skip/nested")
	assert.NotContains(t, fs.opens, "/root/alsoskip")
}

// errorFs fails Open for one directory to exercise the unreadable-directory
// policy.
type errorFs struct {
	afero.Fs
	deny string
}

func (e *errorFs) Open(name string) (afero.File, error) {
	if name == e.deny {
		return nil, errors.New("permission denied")
	}
	return e.Fs.Open(name)
}

func TestGlob_UnreadableDirectorySkippedByDefault(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/root/ok/a.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(mem, "/root/locked/b.txt", []byte("x"), 0o644))

	fs := &errorFs{Fs: mem, deny: "/root/locked"}
	s, err := NewScanner("/root", []string{"**"}, Options{Fs: fs})
	require.NoError(t, err)

	matches, err := s.Scan(context.Background())
	require.NoError(t, err)
	// The locked directory itself still matches; only its contents are lost.
	assert.Equal(t, []string{"locked", "ok", "ok/a.txt"}, matches)
	assert.Equal(t, 1, s.Skipped())
}

func TestGlob_UnreadableDirectoryFailFast(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/root/locked/b.txt", []byte("x"), 0o644))

	fs := &errorFs{Fs: mem, deny: "/root/locked"}
	s, err := NewScanner("/root", []string{"**"}, Options{Fs: fs, FailFast: true})
	require.NoError(t, err)

	_, err = s.Scan(context.Background())
	assert.ErrorIs(t, err, ErrDirectoryRead)
}

func TestNewScanner_InvalidPattern(t *testing.T) {
	_, err := NewScanner(t.TempDir(), []string{"a["}, Options{})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = NewScanner(t.TempDir(), []string{"!a["}, Options{})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}
