// Package regex adapts a compiled pattern into the resumable, non-backtracking
// "step(chunk, eof) -> Verdict" contract the streaming replacer drives. Two
// strategies back that contract: a plain byte-substring search for patterns
// with no regex metacharacters, and a Pike-VM style NFA simulation over
// regexp/syntax for everything else. Neither ever backtracks, and both carry
// state across calls so a match straddling a buffer boundary is found
// without rescanning bytes already consumed.
package regex

import (
	"fmt"
	"regexp/syntax"
	"strings"
)

// Program is a compiled pattern, ready to drive any number of independent
// VM instances (one per response, one per restart after a match).
type Program struct {
	pattern  string
	flags    Flags
	isLiteral bool
	literal  []byte

	prog     *syntax.Prog
	anchored bool
}

// Compile parses and compiles pattern under flags. It is the only place
// regex errors can occur; callers treat a non-nil error as a fatal
// configuration error (spec.md §7a).
func Compile(pattern string, flags Flags) (*Program, error) {
	if pattern == "" {
		return nil, fmt.Errorf("replace_filter: empty pattern")
	}

	p := &Program{pattern: pattern, flags: flags}

	if !flags.CaseInsensitive && isLiteralPattern(pattern) {
		p.isLiteral = true
		p.literal = []byte(pattern)
		return p, nil
	}

	parseFlags := syntax.Perl
	if flags.CaseInsensitive {
		parseFlags |= syntax.FoldCase
	}
	re, err := syntax.Parse(pattern, parseFlags)
	if err != nil {
		return nil, fmt.Errorf("replace_filter: parse pattern %q: %w", pattern, err)
	}
	re = re.Simplify()
	prog, err := syntax.Compile(re)
	if err != nil {
		return nil, fmt.Errorf("replace_filter: compile pattern %q: %w", pattern, err)
	}
	p.prog = prog
	p.anchored = strings.HasPrefix(pattern, "^")
	return p, nil
}

// Pattern returns the original pattern string.
func (p *Program) Pattern() string { return p.pattern }

// IsLiteral reports whether this program uses the byte-substring fast path.
func (p *Program) IsLiteral() bool { return p.isLiteral }
