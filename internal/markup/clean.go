// Package markup rewrites wiki markup fragments into display text.
//
// Cleaning is an ordered list of pure passes (see Passes). The order is part
// of the contract: links must be collapsed before templates are rewritten,
// and label templates must be handled before the generic template pass.
package markup

import (
	"regexp"
	"strings"
)

var (
	pairedTagRe = regexp.MustCompile(`<\w*>.*?</\w*>`)
	commentRe   = regexp.MustCompile(`<!--.*?-->`)
	emphasisRe  = regexp.MustCompile(`'''(.*?)'''`)
)

// Pass is a single text rewrite step of the cleaner.
type Pass struct {
	Name  string
	Apply func(string) string
}

// Passes is the cleaning pipeline, applied in order by Clean.
var Passes = []Pass{
	{Name: "tags", Apply: StripTags},
	{Name: "links", Apply: CollapseLinks},
	{Name: "comments", Apply: StripComments},
	{Name: "labels", Apply: RewriteLabels},
	{Name: "templates", Apply: RewriteTemplates},
	{Name: "trim", Apply: strings.TrimSpace},
}

// Clean strips templates, links, references and comments from a fragment.
func Clean(s string) string {
	for _, p := range Passes {
		s = p.Apply(s)
	}
	return s
}

// Highlight wraps '''bold''' spans in <em> tags.
func Highlight(s string) string {
	return emphasisRe.ReplaceAllString(s, "<em>${1}</em>")
}

// StripTags removes paired tags together with their content, e.g. <ref>...</ref>.
func StripTags(s string) string {
	return pairedTagRe.ReplaceAllString(s, "")
}

// CollapseLinks replaces [[target|text]] with text and [[word]] with word.
func CollapseLinks(s string) string {
	return replaceSpans(s, Links(s), func(sp Span) string {
		if i := strings.LastIndexByte(sp.Inner, '|'); i >= 0 {
			return sp.Inner[i+1:]
		}
		return sp.Inner
	})
}

// StripComments removes <!-- ... --> comments.
func StripComments(s string) string {
	return commentRe.ReplaceAllString(s, "")
}

// LabelTemplates are the template names treated as context labels.
var LabelTemplates = []string{"label|en", "lb|en", "lbl|en"}

var (
	// commonLabels are dropped from label lists; nearly every word carries them.
	commonLabels = map[string]bool{
		"countable":    true,
		"uncountable":  true,
		"transitive":   true,
		"intransitive": true,
	}
	// forbiddenLabels and forbiddenLabelParts mark label lists that read badly
	// once flattened, e.g. {{lb|en|familiar|_|or|_new}}. Such templates are dropped.
	forbiddenLabels     = map[string]bool{"with": true, "or": true, "the": true, "of": true, "_": true, "and": true, "outside": true}
	forbiddenLabelParts = []string{"'''", "AAVE", "by ", "in "}
)

// RewriteLabels renders {{label|en|a|b}} as "(a, b)", dropping common labels.
func RewriteLabels(s string) string {
	return replaceSpans(s, TemplatesNamed(s, LabelTemplates...), func(sp Span) string {
		fields := sp.Fields()
		if len(fields) <= 2 {
			return ""
		}
		labels := fields[2:]
		for _, l := range labels {
			if forbiddenLabels[l] {
				return ""
			}
			for _, part := range forbiddenLabelParts {
				if strings.Contains(l, part) {
					return ""
				}
			}
		}

		var kept []string
		for _, l := range labels {
			if !commonLabels[l] {
				kept = append(kept, l)
			}
		}
		if len(kept) == 0 {
			return ""
		}
		return "(" + strings.Join(kept, ", ") + ")"
	})
}

// rawTemplates render their value without surrounding parentheses.
var rawTemplates = map[string]bool{
	"l":                    true,
	"ux":                   true,
	"non-gloss definition": true,
}

// RewriteTemplates replaces each remaining template with its last field,
// parenthesized unless the template is one of the raw-value templates.
// Nested templates are rewritten innermost first.
func RewriteTemplates(s string) string {
	return replaceSpans(s, BalancedTemplates(s), func(sp Span) string {
		inner := RewriteTemplates(sp.Inner)
		first := strings.IndexByte(inner, '|')
		if first < 0 {
			return inner
		}
		name := inner[:first]
		value := inner[strings.LastIndexByte(inner, '|')+1:]
		if rawTemplates[name] {
			return value
		}
		return "(" + value + ")"
	})
}
