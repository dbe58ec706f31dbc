package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Section is a block of page text collected under a kept heading.
type Section struct {
	Type string // bare heading name, e.g. "Noun"
	Text string
}

// KeptSections lists the bare heading names whose text is collected, at any
// heading depth.
var KeptSections = map[string]bool{
	"Pronunciation": true,
	"Noun":          true,
	"Verb":          true,
	"Pronoun":       true,
	"Preposition":   true,
	"Prefix":        true,
	"Particle":      true,
	"Interjection":  true,
	"Determiner":    true,
	"Conjunction":   true,
	"Adverb":        true,
	"Adjective":     true,
	"Article":       true,
	"Synonyms":      true,
	"Translations":  true,
}

// DefaultLanguage is the top-level heading read when Segmenter.Language is empty.
const DefaultLanguage = "English"

// subLevelDepth is the depth from which headings no longer clear the
// etymology skip.
const subLevelDepth = 4

var etymologyRe = regexp.MustCompile(`^Etymology (\d+)$`)

// Segmenter splits page text into kept sections.
//
// Only the first etymology of a word is read: an "Etymology N" heading with
// N > 1 suppresses everything below it until a shallower heading.
// Segmentation stops at the first top-level heading for another language.
type Segmenter struct {
	Language string

	// FlushTrailing emits the section still open at the end of the text.
	// When false, a section not closed by a later heading is dropped.
	FlushTrailing bool
}

type heading struct {
	name  string
	depth int
}

// Segment returns the kept sections of text in source order. It never fails;
// unbalanced heading depths just pop whatever is on the stack.
func (s Segmenter) Segment(text string) []Section {
	lang := s.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	var (
		sections  []Section
		stack     []heading
		buf       strings.Builder
		skip      bool
		skipDepth int
	)

	flush := func() {
		if skip || len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if KeptSections[top.name] {
			sections = append(sections, Section{Type: top.name, Text: buf.String()})
			buf.Reset()
		}
	}

	for raw := range strings.Lines(text) {
		line := strings.TrimSpace(raw)

		if !strings.HasPrefix(line, "==") {
			if skip || len(stack) == 0 || !KeptSections[stack[len(stack)-1].name] {
				continue
			}
			buf.WriteString(line)
			buf.WriteByte('\n')
			continue
		}

		h := heading{name: bareName(line), depth: headingDepth(line)}
		flush()

		for len(stack) > 0 && stack[len(stack)-1].depth >= h.depth {
			stack = stack[:len(stack)-1]
		}
		if skip && h.depth < min(subLevelDepth, skipDepth) {
			skip = false
		}
		stack = append(stack, h)

		if stack[0].name != lang {
			break
		}
		if n, ok := etymologyNumber(h.name); ok && n > 1 {
			skip = true
			skipDepth = h.depth
		}
	}

	if s.FlushTrailing {
		flush()
	}
	return sections
}

func headingDepth(line string) int {
	n := 0
	for n < len(line) && line[n] == '=' {
		n++
	}
	return n
}

func bareName(line string) string {
	return strings.Trim(line, " =")
}

func etymologyNumber(name string) (int, bool) {
	m := etymologyRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
