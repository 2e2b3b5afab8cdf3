package glob

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Pattern is a compiled wildcard pattern: an ordered sequence of path
// segments. Matching is evaluated as an NFA over segment indices so that a
// "**" segment can absorb zero or more whole path elements.
type Pattern struct {
	raw  string
	segs []segment
	fold bool
}

// Compile parses a wildcard pattern. Back-slashes are normalized to forward
// slashes and redundant separators are dropped, so patterns are platform
// independent. "." and ".." are ordinary literal segments.
func Compile(raw string, fold bool) (*Pattern, error) {
	clean := strings.Trim(strings.ReplaceAll(raw, "\\", "/"), "/")

	var segs []segment
	for part := range strings.SplitSeq(clean, "/") {
		if part == "" {
			continue
		}
		sg, err := compileSegment(part, fold)
		if err != nil {
			return nil, err
		}
		segs = append(segs, sg)
	}

	if len(segs) == 0 {
		return nil, errors.Wrapf(ErrInvalidPattern, "empty pattern %q", raw)
	}

	return &Pattern{raw: raw, segs: segs, fold: fold}, nil
}

func (p *Pattern) String() string {
	return p.raw
}

// Size returns the number of pattern segments.
func (p *Pattern) Size() int {
	return len(p.segs)
}

// closure expands a state set with epsilon transitions: a state sitting on a
// "**" segment may also skip it without consuming a path element. A pattern
// whose trailing segments are all "**" therefore accepts the empty remainder,
// which is what lets "a/**" match "a" itself.
func (p *Pattern) closure(states []int) []int {
	for i := 0; i < len(states); i++ {
		s := states[i]
		if s < len(p.segs) && p.segs[s].kind == segmentDoubleStar && !slices.Contains(states, s+1) {
			states = append(states, s+1)
		}
	}
	return states
}

// start returns the initial state set for an incremental match.
func (p *Pattern) start() []int {
	return p.closure([]int{0})
}

// advance consumes one path element and returns the surviving state set. An
// empty result means no suffix of the tree below this path can match, which
// is exactly the pruning condition used by the scanner.
func (p *Pattern) advance(states []int, name string) []int {
	if p.fold {
		name = strings.ToLower(name)
	}

	var next []int
	for _, s := range states {
		if s >= len(p.segs) {
			continue
		}
		sg := p.segs[s]
		if sg.kind == segmentDoubleStar {
			// "**" consumes the element and stays put.
			if !slices.Contains(next, s) {
				next = append(next, s)
			}
			continue
		}
		if sg.match(name) && !slices.Contains(next, s+1) {
			next = append(next, s+1)
		}
	}

	return p.closure(next)
}

// accepts reports whether a state set represents a complete match.
func (p *Pattern) accepts(states []int) bool {
	return slices.Contains(states, len(p.segs))
}

// Matches reports whether the pattern matches the whole slash separated
// relative path.
func (p *Pattern) Matches(rel string) bool {
	states := p.start()
	if rel != "" {
		for name := range strings.SplitSeq(rel, "/") {
			states = p.advance(states, name)
			if len(states) == 0 {
				return false
			}
		}
	}
	return p.accepts(states)
}

// anchor returns the longest prefix of wildcard-free literal segments, usable
// to narrow the physical scan root. At least two trailing segments are always
// kept un-trimmed so that a trailing "**" can still match the anchored
// directory itself and the last literal can still surface as a result. A run
// of trailing "**" segments keeps its preceding segment too: every segment of
// the run absorbs the empty remainder, so trimming that far would consume a
// directory the walk must still report.
func (p *Pattern) anchor() []string {
	run := 0
	for i := len(p.segs) - 1; i >= 0 && p.segs[i].kind == segmentDoubleStar; i-- {
		run++
	}

	limit := len(p.segs) - 2
	if run > 1 {
		limit = len(p.segs) - run - 1
	}

	var out []string
	for i := 0; i < limit; i++ {
		if p.segs[i].kind != segmentLiteral {
			break
		}
		out = append(out, p.segs[i].text)
	}
	return out
}

// trim drops the first n segments, already consumed by root narrowing.
func (p *Pattern) trim(n int) *Pattern {
	if n <= 0 {
		return p
	}
	return &Pattern{raw: p.raw, segs: p.segs[n:], fold: p.fold}
}

// Split splits the pipe-delimited single-string form "dir|pattern1|pattern2"
// into the directory and its patterns.
func Split(arg string) (string, []string) {
	parts := strings.Split(arg, "|")
	return parts[0], parts[1:]
}

// NormalizeRoot converts a root directory path to the slash separated form
// used for all relative-path computations. An empty dir means the current
// directory.
func NormalizeRoot(dir string) string {
	if dir == "" {
		return "."
	}
	dir = strings.ReplaceAll(dir, "\\", "/")
	if len(dir) > 1 {
		dir = strings.TrimRight(dir, "/")
	}
	if dir == "" {
		return "/"
	}
	return dir
}
