package richtext

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// LineBreak is the block-level line break element used between lines and
// between an existing body and appended content.
const LineBreak = "<br/>"

// PlaintextToHTML escapes text and turns each newline into a line break,
// wrapped in a single div.
func PlaintextToHTML(text string) string {
	escaped := htmlEscaper.Replace(text)
	return "<div>" + strings.ReplaceAll(escaped, "\n", LineBreak) + "</div>"
}

// Append joins an existing body with new markup.
func Append(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + LineBreak + addition
}
