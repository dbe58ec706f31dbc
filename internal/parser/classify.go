package parser

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/lexgest/internal/lexicon"
	"github.com/dgallion1/lexgest/internal/markup"
)

// Pronunciation reads the first IPA transcription and the first audio file.
// Values already on the entry are kept.
type Pronunciation struct{}

func (Pronunciation) Classify(text string, e *lexicon.Entry) {
	for line := range strings.Lines(text) {
		if e.IPA == "" && strings.Contains(line, "IPA|") {
			first := strings.IndexByte(line, '/')
			last := strings.LastIndexByte(line, '/')
			if first >= 0 && last > first {
				e.IPA = line[first : last+1]
			}
		}
		if e.Audio == "" {
			e.Audio = audioFile(line)
		}
	}
}

// audioFile returns the file named by the first {{audio|...}} template of line.
// Both {{audio|File.ogg|...}} and {{audio|en|File.ogg|...}} are understood.
func audioFile(line string) string {
	for _, sp := range markup.TemplatesNamed(line, "audio") {
		fields := sp.Fields()[1:]
		if len(fields) > 1 && !strings.ContainsRune(fields[0], '.') {
			fields = fields[1:]
		}
		if f := strings.TrimSpace(fields[0]); f != "" {
			return f
		}
	}
	return ""
}

// Definitions reads numbered glosses and their quotations into one TypedBlock.
//
// Line forms:
//
//	# gloss           starts a definition (also "#gloss" and "#(label) gloss")
//	#* source         quotation source; a quote-* template's passage= is used
//	#*: quotation     quotation text
//	#: quotation      usage example
//
// Glosses that clean to a lone parenthetical, or that are marked rare or
// obsolete, are dropped together with their quotations.
type Definitions struct {
	WordClass lexicon.WordClass
}

func (d Definitions) Classify(text string, e *lexicon.Entry) {
	block := lexicon.TypedBlock{WordClass: d.WordClass}
	accepting := true

	quote := func(q string) {
		n := len(block.Definitions)
		if !accepting || n == 0 || q == "" {
			return
		}
		block.Definitions[n-1].Quotations = append(block.Definitions[n-1].Quotations, q)
	}

	for raw := range strings.Lines(text) {
		line := strings.TrimSpace(raw)

		switch {
		case line == "#":
		case strings.HasPrefix(line, "# ") || startsBareGloss(line):
			gloss := markup.Clean(line[1:])
			if droppedGloss(gloss) {
				accepting = false
				continue
			}
			accepting = true
			block.Definitions = append(block.Definitions, lexicon.Definition{Text: markup.Highlight(gloss)})
		case strings.HasPrefix(line, "#* "):
			quote(sourceQuotation(line[3:]))
		case strings.HasPrefix(line, "#*: "):
			quote(render(stripItalics(line[4:])))
		case strings.HasPrefix(line, "#: "):
			quote(render(stripItalics(line[3:])))
		}
	}

	e.Types = append(e.Types, block)
}

func render(s string) string {
	return markup.Highlight(markup.Clean(s))
}

// startsBareGloss reports a "#" immediately followed by a letter or "(".
func startsBareGloss(line string) bool {
	if len(line) < 2 || line[0] != '#' {
		return false
	}
	r, _ := utf8.DecodeRuneInString(line[1:])
	return r == '(' || unicode.IsLetter(r)
}

func droppedGloss(gloss string) bool {
	if gloss == "" {
		return true
	}
	if strings.HasPrefix(gloss, "(") && strings.HasSuffix(gloss, ")") && strings.Count(gloss, ")") == 1 {
		return true
	}
	return strings.Contains(gloss, "(rare)") || strings.Contains(gloss, "(obsolete)")
}

// sourceQuotation returns the quotation carried by a "#* " source line: the
// passage of a quote-* template, or the line itself when it is nothing but
// an italic span. Any other source line yields "".
func sourceQuotation(src string) string {
	for _, sp := range markup.BalancedTemplates(src) {
		if !strings.HasPrefix(sp.Name(), "quote-") {
			continue
		}
		if passage, ok := sp.Param("passage"); ok {
			return render(passage)
		}
		return ""
	}

	if !italicOnly(src) {
		return ""
	}
	return render(stripItalics(src))
}

// italicOnly reports whether s is a single ''...'' span.
func italicOnly(s string) bool {
	lead, trail := leadingQuotes(s), trailingQuotes(s)
	if lead >= len(s) || (lead != 2 && lead != 5) || (trail != 2 && trail != 5) {
		return false
	}
	inner := stripItalics(s)
	return !strings.Contains(strings.ReplaceAll(inner, "'''", ""), "''")
}

// stripItalics removes one ''...'' pair around s. Bold (''') delimiters are
// left alone; bold italics (''''') lose their italic part.
func stripItalics(s string) string {
	if n := leadingQuotes(s); n == 2 || n == 5 {
		s = s[2:]
	}
	if n := trailingQuotes(s); n == 2 || n == 5 {
		s = s[:len(s)-2]
	}
	return s
}

func leadingQuotes(s string) int {
	n := 0
	for n < len(s) && s[n] == '\'' {
		n++
	}
	return n
}

func trailingQuotes(s string) int {
	n := 0
	for n < len(s) && s[len(s)-1-n] == '\'' {
		n++
	}
	return n
}

// DefaultTranslationLanguage is the language read from Translations sections.
const DefaultTranslationLanguage = "French"

// Translations reads the target-language translations of the first sense
// group. An entry that already has translations is left untouched.
type Translations struct {
	Language string
}

func (t Translations) Classify(text string, e *lexicon.Entry) {
	if len(e.Translations) > 0 {
		return
	}
	lang := t.Language
	if lang == "" {
		lang = DefaultTranslationLanguage
	}
	prefix := "* " + lang + ": "

	var found []string
	groups := 0
	for raw := range strings.Lines(text) {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "{{trans-top") {
			groups++
			if groups > 1 {
				break
			}
		}
		rest, ok := strings.CutPrefix(line, prefix)
		if !ok {
			continue
		}
		for _, sp := range markup.Templates(rest) {
			if f := sp.Fields(); len(f) >= 3 && f[2] != "" && !slices.Contains(found, f[2]) {
				found = append(found, f[2])
			}
		}
	}

	slices.Sort(found)
	e.Translations = found
}

// synonymSkipMarkers flag lines that point elsewhere instead of naming a synonym.
var synonymSkipMarkers = []string{"''See''", "Wikisaurus", "Thesaurus:"}

// Synonyms reads "* " list lines. An entry that already has synonyms is left
// untouched.
type Synonyms struct{}

func (Synonyms) Classify(text string, e *lexicon.Entry) {
	if len(e.Synonyms) > 0 {
		return
	}
	var found []string
lines:
	for raw := range strings.Lines(text) {
		rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "* ")
		if !ok {
			continue
		}
		s := markup.Clean(rest)
		if s == "" {
			continue
		}
		for _, m := range synonymSkipMarkers {
			if strings.Contains(s, m) {
				continue lines
			}
		}
		found = append(found, s)
	}
	e.Synonyms = found
}
