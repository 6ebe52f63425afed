package regex

import (
	"fmt"

	"github.com/replacefilter/replacefilter/internal/errors"
)

// Flags holds the parsed letters of a replace_filter flag string.
//
// Only two letters are recognized: i (case-insensitive) and g (global,
// replace every match instead of only the first). Default is first-match
// only, case-sensitive.
type Flags struct {
	CaseInsensitive bool
	Global          bool
}

// ParseFlags parses a replace_filter flag string such as "ig" or "".
// Unrecognised letters are a configuration error.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, r := range s {
		switch r {
		case 'i':
			f.CaseInsensitive = true
		case 'g':
			f.Global = true
		default:
			return Flags{}, fmt.Errorf("%w: %q", errors.ErrUnknownFlag, r)
		}
	}
	return f, nil
}

func (f Flags) String() string {
	s := ""
	if f.CaseInsensitive {
		s += "i"
	}
	if f.Global {
		s += "g"
	}
	return s
}
