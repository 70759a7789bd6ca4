package richtext

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// ImagePlaceholder replaces images that have no alt text.
const ImagePlaceholder = "[image]"

// AllowedLinkSchemes are the URI schemes kept as live links.
var AllowedLinkSchemes = []string{"http", "https", "mailto", "file"}

var (
	// Unsafe only disables goldmark's own URL filter, which would drop file:
	// links. Raw HTML never reaches the renderer; sanitize demotes it first.
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"div", "p", "br", "hr", "span",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "code",
		"em", "strong", "b", "i", "u", "del", "s",
		"ul", "ol", "li",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes(AllowedLinkSchemes...)
	p.AllowRelativeURLs(true)
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.AllowAttrs("align").Matching(bluemonday.CellAlign).OnElements("th", "td")
	return p
}

// MarkdownToSafeHTML parses source as Markdown, rewrites unsafe nodes and
// renders the result.
func MarkdownToSafeHTML(source string) string {
	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))
	sanitize(doc, src)

	var buf bytes.Buffer
	if err := markdown.Renderer().Render(&buf, src, doc); err != nil {
		// Rendering into a buffer only fails on renderer bugs; degrade to
		// the escaped plaintext form instead of failing the write.
		return PlaintextToHTML(source)
	}
	return policy.Sanitize(buf.String())
}

type replacement struct {
	old ast.Node
	new ast.Node
}

// sanitize rewrites doc in place. Replacements are collected during the walk
// and applied afterwards so the walk never visits a detached node.
func sanitize(doc ast.Node, src []byte) {
	var pending []replacement

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.HTMLBlock:
			p := ast.NewParagraph()
			p.AppendChild(p, literal(strings.TrimRight(htmlBlockText(node, src), "\n")))
			pending = append(pending, replacement{node, p})
			return ast.WalkSkipChildren, nil

		case *ast.RawHTML:
			pending = append(pending, replacement{node, literal(segmentsText(node.Segments, src))})
			return ast.WalkSkipChildren, nil

		case *ast.Image:
			alt := plainText(node, src)
			if alt == "" {
				alt = ImagePlaceholder
			}
			pending = append(pending, replacement{node, literal(alt)})
			return ast.WalkSkipChildren, nil

		case *ast.Link:
			if !allowedDestination(string(node.Destination)) {
				pending = append(pending, replacement{node, literal(plainText(node, src))})
				return ast.WalkSkipChildren, nil
			}

		case *ast.AutoLink:
			if !allowedDestination(string(node.URL(src))) {
				pending = append(pending, replacement{node, literal(string(node.Label(src)))})
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})

	for _, r := range pending {
		if parent := r.old.Parent(); parent != nil {
			parent.ReplaceChild(parent, r.old, r.new)
		}
	}
}

// literal is a text node whose value is HTML-escaped on output, never
// interpreted.
func literal(s string) *ast.String {
	n := ast.NewString([]byte(s))
	n.SetRaw(true)
	return n
}

func htmlBlockText(n *ast.HTMLBlock, src []byte) string {
	s := segmentsText(n.Lines(), src)
	if n.HasClosure() {
		s += string(n.ClosureLine.Value(src))
	}
	return s
}

func segmentsText(segs *text.Segments, src []byte) string {
	var b strings.Builder
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// plainText concatenates the textual content below n.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			case *ast.AutoLink:
				b.Write(t.Label(src))
			case *ast.Image:
				if alt := plainText(t, src); alt != "" {
					b.WriteString(alt)
				} else {
					b.WriteString(ImagePlaceholder)
				}
			case *ast.RawHTML:
				b.WriteString(segmentsText(t.Segments, src))
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// allowedDestination reports whether dest may stay a live link. Destinations
// without a scheme (relative references, fragments) are allowed.
func allowedDestination(dest string) bool {
	scheme, ok := linkScheme(dest)
	if !ok {
		return true
	}
	for _, s := range AllowedLinkSchemes {
		if scheme == s {
			return true
		}
	}
	return false
}

// linkScheme extracts an RFC 3986 scheme: a letter followed by letters,
// digits, '+', '-' or '.', terminated by ':'.
func linkScheme(dest string) (string, bool) {
	colon := strings.IndexByte(dest, ':')
	if colon <= 0 {
		return "", false
	}

	prefix := dest[:colon]
	for i, r := range prefix {
		if i == 0 {
			if !unicode.IsLetter(r) {
				return "", false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '-' && r != '.' {
			return "", false
		}
	}
	return strings.ToLower(prefix), true
}
