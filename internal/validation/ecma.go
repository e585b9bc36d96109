package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// ecmaSpaceClass is the body of a character class matching what the browser
// treats as whitespace: \s in a regular expression and the characters
// String.prototype.trim removes. Go's \s and strings.TrimSpace use other sets.
const ecmaSpaceClass = `\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

func isECMASpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

// TrimSpace trims the same characters the browser's trim() does.
func TrimSpace(s string) string { return strings.TrimFunc(s, isECMASpace) }

// compilePattern compiles a rule pattern so that it matches what the same
// text matches in the browser. \s and \S are expanded to the browser's
// whitespace set; \S inside a bracket expression has no RE2 equivalent and
// is rejected.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			next := pattern[i+1]
			i++
			switch {
			case next == 's' && inClass:
				b.WriteString(ecmaSpaceClass)
			case next == 's':
				b.WriteString("[" + ecmaSpaceClass + "]")
			case next == 'S' && inClass:
				return nil, fmt.Errorf("pattern %q: \\S inside a character class is not supported", pattern)
			case next == 'S':
				b.WriteString("[^" + ecmaSpaceClass + "]")
			default:
				b.WriteByte(c)
				b.WriteByte(next)
			}
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return regexp.Compile(b.String())
}
