// Package rank loads the word frequency list that orders dictionary entries.
package rank

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// NotFoundError is returned when a title has no rank in the frequency list.
type NotFoundError struct {
	Title string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no frequency rank for %q", e.Title)
}

// Oracle is a read-only word -> rank lookup.
type Oracle struct {
	ranks map[string]int
	words []string // file order
}

// New builds an Oracle from an in-memory mapping. Words() is sorted.
func New(ranks map[string]int) *Oracle {
	o := &Oracle{ranks: make(map[string]int, len(ranks))}
	for w, r := range ranks {
		o.ranks[w] = r
		o.words = append(o.words, w)
	}
	slices.Sort(o.words)
	return o
}

// Load reads a frequency list file. See Read for the format.
func Load(path string) (*Oracle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frequency list: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses "rank,word" rows. A first row whose rank is not a number is
// taken as a header. When a word is listed twice the first rank is kept.
func Read(r io.Reader) (*Oracle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	o := &Oracle{ranks: make(map[string]int)}
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse frequency list: %w", err)
		}

		n, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("parse frequency list: line %d: bad rank %q", line, row[0])
		}
		word := strings.TrimSpace(row[1])
		if _, dup := o.ranks[word]; dup {
			continue
		}
		o.ranks[word] = n
		o.words = append(o.words, word)
	}
	return o, nil
}

// Rank returns the rank of title, matched exactly.
func (o *Oracle) Rank(title string) (int, error) {
	n, ok := o.ranks[title]
	if !ok {
		return 0, &NotFoundError{Title: title}
	}
	return n, nil
}

// Contains reports whether title is in the list.
func (o *Oracle) Contains(title string) bool {
	_, ok := o.ranks[title]
	return ok
}

// Words returns the listed words in file order.
func (o *Oracle) Words() []string {
	return o.words
}

func (o *Oracle) Len() int { return len(o.ranks) }
