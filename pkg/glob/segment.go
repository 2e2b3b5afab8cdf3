package glob

import (
	"strings"

	gglob "github.com/gobwas/glob"
	"github.com/pkg/errors"
)

type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentWildcard
	segmentDoubleStar
)

// segment is one "/"-delimited component of a compiled wildcard pattern:
// a literal name, a single-segment wildcard (contains "*" or "?"), or the
// cross-segment "**".
type segment struct {
	kind segmentKind
	text string // original segment text
	cmp  string // comparison text, lowercased when folding
	g    gglob.Glob
}

func compileSegment(text string, fold bool) (segment, error) {
	if text == "**" {
		return segment{kind: segmentDoubleStar, text: text}, nil
	}

	cmp := text
	if fold {
		cmp = strings.ToLower(text)
	}

	if strings.ContainsAny(text, "*?[") {
		// Compiled without separator runes so "*" spans any characters
		// within this one segment but can never cross a "/".
		g, err := gglob.Compile(cmp)
		if err != nil {
			return segment{}, errors.Wrapf(ErrInvalidPattern, "segment %q: %v", text, err)
		}
		return segment{kind: segmentWildcard, text: text, cmp: cmp, g: g}, nil
	}

	return segment{kind: segmentLiteral, text: text, cmp: cmp}, nil
}

// match reports whether the segment matches a single path element. The name
// must already be folded by the caller when case-insensitive matching is on.
func (s segment) match(name string) bool {
	switch s.kind {
	case segmentDoubleStar:
		return true
	case segmentWildcard:
		return s.g.Match(name)
	default:
		return s.cmp == name
	}
}
