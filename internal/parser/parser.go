// Package parser turns the markup of one dictionary page into the parts of a
// lexicon entry: kept sections (Segmenter), what each section contributes
// (Classifier), and the images referenced from the page.
package parser

import (
	"fmt"

	"github.com/dgallion1/lexgest/internal/lexicon"
)

// Classifier folds the text of one section into the entry being assembled.
type Classifier interface {
	Classify(text string, e *lexicon.Entry)
}

// Options tunes the classifiers returned by ForSection.
type Options struct {
	// TranslationLanguage selects the "* <Language>: " lines read from
	// Translations sections. Defaults to DefaultTranslationLanguage.
	TranslationLanguage string
}

// ForSection returns the classifier for a kept section type.
func ForSection(sectionType string, opts Options) (Classifier, error) {
	switch sectionType {
	case "Pronunciation":
		return Pronunciation{}, nil
	case "Translations":
		return Translations{Language: opts.TranslationLanguage}, nil
	case "Synonyms":
		return Synonyms{}, nil
	}
	if wc, ok := lexicon.ParseWordClass(sectionType); ok {
		return Definitions{WordClass: wc}, nil
	}
	return nil, fmt.Errorf("unsupported section type: %s", sectionType)
}
