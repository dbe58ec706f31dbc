package lexicon

import (
	"encoding/json"
	"fmt"
)

// WordClass is the part of speech a definition block belongs to.
type WordClass int

const (
	Noun WordClass = iota + 1
	Verb
	Pronoun
	Preposition
	Prefix
	Particle
	Interjection
	Determiner
	Conjunction
	Adverb
	Adjective
	Article
)

var wordClassNames = map[WordClass]string{
	Noun:         "Noun",
	Verb:         "Verb",
	Pronoun:      "Pronoun",
	Preposition:  "Preposition",
	Prefix:       "Prefix",
	Particle:     "Particle",
	Interjection: "Interjection",
	Determiner:   "Determiner",
	Conjunction:  "Conjunction",
	Adverb:       "Adverb",
	Adjective:    "Adjective",
	Article:      "Article",
}

// ParseWordClass maps a section name such as "Noun" to its WordClass.
func ParseWordClass(name string) (WordClass, bool) {
	for wc, n := range wordClassNames {
		if n == name {
			return wc, true
		}
	}
	return 0, false
}

func (wc WordClass) String() string {
	if n, ok := wordClassNames[wc]; ok {
		return n
	}
	return fmt.Sprintf("WordClass(%d)", int(wc))
}

func (wc WordClass) MarshalJSON() ([]byte, error) {
	n, ok := wordClassNames[wc]
	if !ok {
		return nil, fmt.Errorf("unknown word class %d", int(wc))
	}
	return json.Marshal(n)
}

func (wc *WordClass) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseWordClass(name)
	if !ok {
		return fmt.Errorf("unknown word class %q", name)
	}
	*wc = parsed
	return nil
}

// Entry is one assembled dictionary record. Fields are declared in JSON key
// order so the serialized form is stable and diffable.
type Entry struct {
	Audio        string       `json:"audio,omitempty"`
	AudioURL     string       `json:"audioUrl,omitempty"`
	ID           string       `json:"id"`
	Images       []Image      `json:"images"`
	IPA          string       `json:"ipa,omitempty"`
	Rank         int          `json:"rank"`
	Synonyms     []string     `json:"synonyms"`
	Title        string       `json:"title"`
	Translations []string     `json:"translations"`
	Types        []TypedBlock `json:"types"`
}

// TypedBlock groups the definitions found under one word-class heading.
type TypedBlock struct {
	Definitions []Definition `json:"definitions"`
	WordClass   WordClass    `json:"wordClass"`
}

// Definition is a single gloss and the quotations attached to it.
type Definition struct {
	Quotations []string `json:"quotations"`
	Text       string   `json:"text"`
}

// Image is a picture referenced from the page text.
type Image struct {
	Description string `json:"description"`
	Filename    string `json:"filename"`
	ThumbURL    string `json:"thumbUrl"`
	URL         string `json:"url"`
}

// Normalize replaces nil slices with empty ones so consumers always see
// arrays, never nulls.
func (e Entry) Normalize() Entry {
	if e.Images == nil {
		e.Images = []Image{}
	}
	if e.Synonyms == nil {
		e.Synonyms = []string{}
	}
	if e.Translations == nil {
		e.Translations = []string{}
	}
	if e.Types == nil {
		e.Types = []TypedBlock{}
	}
	for i := range e.Types {
		if e.Types[i].Definitions == nil {
			e.Types[i].Definitions = []Definition{}
		}
		for j := range e.Types[i].Definitions {
			if e.Types[i].Definitions[j].Quotations == nil {
				e.Types[i].Definitions[j].Quotations = []string{}
			}
		}
	}
	return e
}
