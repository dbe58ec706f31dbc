package markup

import "strings"

// Span is one delimited markup construct found in a text, such as a
// {{template|...}} or a [[link|...]].
type Span struct {
	Start int    // offset of the opening delimiter
	End   int    // offset just past the closing delimiter
	Inner string // text between the delimiters
}

// Templates returns the {{...}} spans of s. A span ends at the first "}}"
// after its opening braces, so nested templates are not balanced.
func Templates(s string) []Span {
	return scan(s, "{{", "}}", false, nil)
}

// TemplatesNamed is like Templates but only starts spans at "{{name|" for one
// of the given names.
func TemplatesNamed(s string, names ...string) []Span {
	return scan(s, "{{", "}}", false, func(rest string) bool {
		for _, n := range names {
			if strings.HasPrefix(rest, n+"|") {
				return true
			}
		}
		return false
	})
}

// BalancedTemplates returns the outermost {{...}} spans of s with nested
// templates balanced.
func BalancedTemplates(s string) []Span {
	return scan(s, "{{", "}}", true, nil)
}

// Links returns the [[...]] spans of s, each ending at the first "]]".
func Links(s string) []Span {
	return scan(s, "[[", "]]", false, nil)
}

// BalancedLinks returns the outermost [[...]] spans of s whose inner text
// starts with prefix, with nested links balanced.
func BalancedLinks(s, prefix string) []Span {
	return scan(s, "[[", "]]", true, func(rest string) bool {
		return strings.HasPrefix(rest, prefix)
	})
}

func scan(s, open, close string, balanced bool, accept func(rest string) bool) []Span {
	var spans []Span
	i := 0
	for i < len(s) {
		k := strings.Index(s[i:], open)
		if k < 0 {
			break
		}
		start := i + k
		body := start + len(open)
		if accept != nil && !accept(s[body:]) {
			i = start + 1
			continue
		}

		var end int
		if balanced {
			end = matchClose(s, body, open, close)
		} else {
			end = strings.Index(s[body:], close)
			if end >= 0 {
				end += body
			}
		}
		if end < 0 {
			if accept != nil {
				i = start + 1
				continue
			}
			break
		}

		spans = append(spans, Span{Start: start, End: end + len(close), Inner: s[body:end]})
		i = end + len(close)
	}
	return spans
}

// matchClose returns the offset of the close delimiter balancing an opener
// whose body starts at from, or -1.
func matchClose(s string, from int, open, close string) int {
	depth := 1
	for i := from; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], open):
			depth++
			i += len(open)
		case strings.HasPrefix(s[i:], close):
			depth--
			if depth == 0 {
				return i
			}
			i += len(close)
		default:
			i++
		}
	}
	return -1
}

// Fields splits the span body on every pipe.
func (sp Span) Fields() []string {
	return strings.Split(sp.Inner, "|")
}

// NestedFields splits the span body on pipes that are not inside a nested
// [[link]] or {{template}}.
func (sp Span) NestedFields() []string {
	return SplitFields(sp.Inner)
}

// Name is the first field, trimmed.
func (sp Span) Name() string {
	name, _, _ := strings.Cut(sp.Inner, "|")
	return strings.TrimSpace(name)
}

// Param returns the value of the named key=value field.
func (sp Span) Param(key string) (string, bool) {
	for _, f := range sp.NestedFields()[1:] {
		k, v, ok := strings.Cut(f, "=")
		if ok && strings.TrimSpace(k) == key {
			return v, true
		}
	}
	return "", false
}

// SplitFields splits s on pipes at nesting depth zero.
func SplitFields(s string) []string {
	var fields []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{"), strings.HasPrefix(s[i:], "[["):
			depth++
			i++
		case (strings.HasPrefix(s[i:], "}}") || strings.HasPrefix(s[i:], "]]")) && depth > 0:
			depth--
			i++
		case s[i] == '|' && depth == 0:
			fields = append(fields, s[last:i])
			last = i + 1
		}
	}
	return append(fields, s[last:])
}

// replaceSpans rebuilds s with every span substituted by fn(span). Spans must
// be ordered and non-overlapping, as returned by the scanners above.
func replaceSpans(s string, spans []Span, fn func(Span) string) string {
	if len(spans) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, sp := range spans {
		b.WriteString(s[last:sp.Start])
		b.WriteString(fn(sp))
		last = sp.End
	}
	b.WriteString(s[last:])
	return b.String()
}
