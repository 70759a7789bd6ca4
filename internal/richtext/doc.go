// Package richtext converts untrusted plaintext and Markdown into the HTML
// body markup the Notes store accepts.
//
// Both conversions are total: any input string produces well-formed markup
// that contains no live markup from the input. Markdown is sanitized at the
// AST level before rendering (raw HTML demoted to text, images replaced by
// their alt text, links restricted to an allow-listed set of schemes), and
// the rendered HTML passes a bluemonday allow-list as a second gate.
package richtext
