package regex

import "strings"

// isLiteralPattern reports whether pattern contains no regex metacharacters,
// meaning it can be matched with a plain byte-substring search instead of
// running it through the VM. Conservative: a pattern is only treated as
// literal when every rune in it is unambiguously literal.
//
// Adapted from the line-filtering literal-pattern optimization used
// elsewhere in this codebase's regex handling, generalized from whole-line
// matching to streaming substring search.
func isLiteralPattern(pattern string) bool {
	const metaChars = `.+*?^$[]{}()|\`
	for _, ch := range pattern {
		if strings.ContainsRune(metaChars, ch) {
			return false
		}
	}
	return true
}
