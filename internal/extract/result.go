package extract

import (
	"slices"

	"github.com/dgallion1/lexgest/internal/lexicon"
	"github.com/dgallion1/lexgest/internal/rank"
)

// Skipped describes a record that produced no entry.
type Skipped struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// Result accumulates the outcome of one extraction run.
type Result struct {
	Entries []lexicon.Entry

	// Duplicates maps a title produced by more than one record to the ids
	// of all those records, in read order. Every such entry is kept.
	Duplicates map[string][]string

	Skipped  []Skipped
	Read     int // records pulled from the source
	Filtered int // records dropped by the page filter

	ids map[string][]string
}

func NewResult() *Result {
	return &Result{
		Duplicates: make(map[string][]string),
		ids:        make(map[string][]string),
	}
}

// add stores e and reports whether its title was already produced.
func (r *Result) add(e lexicon.Entry) bool {
	r.Entries = append(r.Entries, e)
	ids := append(r.ids[e.Title], e.ID)
	r.ids[e.Title] = ids
	if len(ids) > 1 {
		r.Duplicates[e.Title] = slices.Clone(ids)
		return true
	}
	return false
}

func (r *Result) skip(id, title, reason string) {
	r.Skipped = append(r.Skipped, Skipped{ID: id, Title: title, Reason: reason})
}

// Produced reports whether an entry was produced for title.
func (r *Result) Produced(title string) bool {
	return len(r.ids[title]) > 0
}

// Missing lists the oracle words for which no entry was produced, in oracle order.
func (r *Result) Missing(o *rank.Oracle) []string {
	var missing []string
	for _, w := range o.Words() {
		if !r.Produced(w) {
			missing = append(missing, w)
		}
	}
	return missing
}
