package extract

import (
	"strings"
	"unicode"

	"github.com/dgallion1/lexgest/internal/dump"
	"github.com/dgallion1/lexgest/internal/parser"
	"github.com/dgallion1/lexgest/internal/rank"
)

// languageWindow is how far into the text the language heading must appear.
const languageWindow = 200

// PageFilter selects dictionary pages out of a raw wiki export.
type PageFilter struct {
	// Language heading that must open the page; parser.DefaultLanguage when empty.
	Language string
	// Oracle, when set, drops pages whose title has no rank.
	Oracle *rank.Oracle
}

// Keep reports whether rec is a common word page in the target language.
// Namespaced titles (Index:Spanish) and titles already in title case
// (proper nouns) are dropped.
func (f PageFilter) Keep(rec dump.Record) bool {
	lang := f.Language
	if lang == "" {
		lang = parser.DefaultLanguage
	}

	head := rec.Text
	if len(head) > languageWindow {
		head = head[:languageWindow]
	}
	if !strings.Contains(head, "=="+lang+"==") {
		return false
	}
	if strings.Contains(rec.Title, ":") || rec.Title == titleCase(rec.Title) {
		return false
	}
	return f.Oracle == nil || f.Oracle.Contains(rec.Title)
}

// titleCase upper-cases the first letter of every run of cased letters and
// lower-cases the rest, so titleCase("o'neil") is "O'Neil".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		if prevCased {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToTitle(r))
		}
		prevCased = unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
	}
	return b.String()
}
