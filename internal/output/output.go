// Package output serializes assembled entries.
package output

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/dgallion1/lexgest/internal/lexicon"
)

// SortByRank orders entries by ascending rank, keeping read order for ties.
func SortByRank(entries []lexicon.Entry) {
	slices.SortStableFunc(entries, func(a, b lexicon.Entry) int {
		return cmp.Compare(a.Rank, b.Rank)
	})
}

// Write encodes entries as an indented JSON array followed by a newline.
// Keys appear in a fixed order and empty lists as [], never null.
func Write(w io.Writer, entries []lexicon.Entry) error {
	out := make([]lexicon.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Normalize()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return nil
}

// WriteFile sorts entries by rank and writes them to path.
func WriteFile(path string, entries []lexicon.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	SortByRank(entries)
	if err := Write(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
