package osa

import "strings"

// Kind is the shape of a script result.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindList
	KindRaw
)

// Descriptor is the result of a scripted command, decoded from the
// recompilable source form osascript prints with -s s.
//
// Lists are addressed 1-indexed, matching Apple event descriptor lists.
type Descriptor struct {
	kind  Kind
	text  string
	items []Descriptor
}

// Text returns a text descriptor.
func Text(s string) Descriptor {
	return Descriptor{kind: KindText, text: s}
}

// List returns a list descriptor holding items in order.
func List(items ...Descriptor) Descriptor {
	return Descriptor{kind: KindList, items: items}
}

// Raw returns a descriptor for a value the parser does not model
// (numbers, booleans, object specifiers). Its StringValue is the source text.
func Raw(s string) Descriptor {
	return Descriptor{kind: KindRaw, text: s}
}

func (d Descriptor) Kind() Kind {
	return d.kind
}

// StringValue returns the scalar value, or "" for lists and null.
func (d Descriptor) StringValue() string {
	switch d.kind {
	case KindText, KindRaw:
		return d.text
	default:
		return ""
	}
}

// NumberOfItems returns the list length, or 0 for scalars.
func (d Descriptor) NumberOfItems() int {
	return len(d.items)
}

// AtIndex returns the item at the 1-based index.
func (d Descriptor) AtIndex(i int) (Descriptor, bool) {
	if d.kind != KindList || i < 1 || i > len(d.items) {
		return Descriptor{}, false
	}
	return d.items[i-1], true
}

// Strings unpacks a list-shaped result into its string items, in order.
// A non-empty scalar is treated as a one-item list.
func (d Descriptor) Strings() []string {
	if d.kind == KindList {
		out := make([]string, 0, d.NumberOfItems())
		for i := 1; i <= d.NumberOfItems(); i++ {
			item, _ := d.AtIndex(i)
			if s := item.StringValue(); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := d.StringValue(); s != "" {
		return []string{s}
	}
	return nil
}

// ParseDescriptor decodes osascript -s s output. It never fails: anything
// that is not a string literal or a list of values becomes a Raw descriptor.
func ParseDescriptor(output string) Descriptor {
	src := strings.TrimSpace(output)
	if src == "" {
		return Descriptor{}
	}

	d, rest, ok := parseValue(src)
	if !ok || strings.TrimSpace(rest) != "" {
		return Raw(src)
	}
	return d
}

func parseValue(src string) (Descriptor, string, bool) {
	src = strings.TrimLeft(src, " \t\r\n")
	if src == "" {
		return Descriptor{}, "", false
	}

	switch src[0] {
	case '"':
		s, rest, err := scanString(src)
		if err != nil {
			return Descriptor{}, "", false
		}
		return Text(s), rest, true
	case '{':
		return parseList(src[1:])
	default:
		tok, rest := scanRaw(src)
		if tok == "" {
			return Descriptor{}, "", false
		}
		if tok == "missing value" {
			return Descriptor{}, rest, true
		}
		return Raw(tok), rest, true
	}
}

func parseList(src string) (Descriptor, string, bool) {
	items := []Descriptor{}
	rest := strings.TrimLeft(src, " \t\r\n")
	if strings.HasPrefix(rest, "}") {
		return List(items...), rest[1:], true
	}

	for {
		item, r, ok := parseValue(rest)
		if !ok {
			return Descriptor{}, "", false
		}
		items = append(items, item)

		r = strings.TrimLeft(r, " \t\r\n")
		switch {
		case strings.HasPrefix(r, ","):
			rest = r[1:]
		case strings.HasPrefix(r, "}"):
			return List(items...), r[1:], true
		default:
			return Descriptor{}, "", false
		}
	}
}

// scanRaw reads an unquoted token up to the next top-level ',' or '}'.
// Quoted sections and nested braces inside the token are skipped intact.
func scanRaw(src string) (string, string) {
	depth := 0
	inQuote := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inQuote && c == '\\':
			i++
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case (c == ',' || c == '}') && depth == 0:
			return strings.TrimSpace(src[:i]), src[i:]
		}
	}
	return strings.TrimSpace(src), ""
}
