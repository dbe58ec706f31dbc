// Package extract assembles lexicon entries from raw dump records and drives
// a sequential extraction run over a record stream.
package extract

import (
	"github.com/dgallion1/lexgest/internal/dump"
	"github.com/dgallion1/lexgest/internal/lexicon"
	"github.com/dgallion1/lexgest/internal/media"
	"github.com/dgallion1/lexgest/internal/parser"
	"github.com/dgallion1/lexgest/internal/rank"
)

// Assembler turns one record into an Entry.
type Assembler struct {
	Oracle    *rank.Oracle
	Segmenter parser.Segmenter
	Options   parser.Options

	// ThumbWidth is the pixel width of image thumbnails; media.DefaultThumbWidth when zero.
	ThumbWidth int
}

// Assemble ranks the record, classifies its kept sections in order and
// collects its images. A title missing from the oracle yields a
// *rank.NotFoundError and no entry.
func (a *Assembler) Assemble(rec dump.Record) (lexicon.Entry, error) {
	n, err := a.Oracle.Rank(rec.Title)
	if err != nil {
		return lexicon.Entry{}, err
	}

	e := lexicon.Entry{ID: rec.ID, Title: rec.Title, Rank: n}
	for _, sec := range a.Segmenter.Segment(rec.Text) {
		c, err := parser.ForSection(sec.Type, a.Options)
		if err != nil {
			continue
		}
		c.Classify(sec.Text, &e)
	}

	e.Images = parser.Images(rec.Text, a.ThumbWidth)
	if e.Audio != "" {
		e.AudioURL = media.URL(e.Audio)
	}
	return e.Normalize(), nil
}
