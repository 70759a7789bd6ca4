package osa

import (
	"fmt"
	"strings"
)

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Quote renders value as an AppleScript string literal.
//
// Backslashes and double quotes are escaped; newlines and every other
// character are kept as-is, which AppleScript accepts inside a literal.
func Quote(value string) string {
	return `"` + quoteReplacer.Replace(value) + `"`
}

// Unquote parses an AppleScript string literal as printed by osascript -s s.
// It accepts the escapes Quote produces plus \n, \r and \t.
func Unquote(literal string) (string, error) {
	s, rest, err := scanString(literal)
	if err != nil {
		return "", err
	}
	if rest != "" {
		return "", fmt.Errorf("unquote: trailing data after literal: %q", rest)
	}
	return s, nil
}

// scanString reads one quoted literal from the start of src and returns the
// decoded value and the remaining input.
func scanString(src string) (string, string, error) {
	if !strings.HasPrefix(src, `"`) {
		return "", src, fmt.Errorf("unquote: literal must start with a double quote")
	}

	var b strings.Builder
	for i := 1; i < len(src); i++ {
		c := src[i]
		switch c {
		case '"':
			return b.String(), src[i+1:], nil
		case '\\':
			if i+1 >= len(src) {
				return "", "", fmt.Errorf("unquote: dangling escape")
			}
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(src[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("unquote: unterminated literal")
}
