// Package dump streams dictionary records out of XML dump files.
//
// Two container shapes are understood: the filtered dictionary file, whose
// records are <entry><id/><title/><text/></entry>, and raw MediaWiki exports,
// whose records are <page> elements with the text nested in a <revision>.
// Only one record is held in memory at a time.
package dump

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one raw page: its id, title, and unparsed markup body.
type Record struct {
	ID    string
	Title string
	Text  string
}

// ErrMissingField is wrapped by ParseError when a record lacks id, title or text.
var ErrMissingField = errors.New("missing field")

// ParseError reports a structural problem in the container.
type ParseError struct {
	Element string // record element being read
	Offset  int64  // input offset where the problem was detected
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dump: <%s> at offset %d: %v", e.Element, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type state int

const (
	stateOutside state = iota
	stateInRecord
	stateInID
	stateInTitle
	stateInText
)

func (s state) String() string {
	switch s {
	case stateOutside:
		return "outside"
	case stateInRecord:
		return "in-record"
	case stateInID:
		return "in-id"
	case stateInTitle:
		return "in-title"
	case stateInText:
		return "in-text"
	}
	return "unknown"
}

// fieldStates maps field element names to the state that collects them.
var fieldStates = map[string]state{
	"id":    stateInID,
	"title": stateInTitle,
	"text":  stateInText,
}

// requiredFields is the order in which missing fields are reported.
var requiredFields = []string{"id", "title", "text"}

// Reader pulls records one by one from an XML container.
type Reader struct {
	dec    *xml.Decoder
	record string
	state  state

	id, title, text strings.Builder
	seen            map[state]bool
}

// NewReader reads a filtered dictionary file made of <entry> records.
func NewReader(r io.Reader) *Reader {
	return newReader(r, "entry")
}

// NewPageReader reads a raw MediaWiki export made of <page> records.
func NewPageReader(r io.Reader) *Reader {
	return newReader(r, "page")
}

func newReader(r io.Reader, record string) *Reader {
	return &Reader{
		dec:    xml.NewDecoder(r),
		record: record,
		seen:   make(map[state]bool, 3),
	}
}

// Next returns the next record, or io.EOF once the container is exhausted.
func (r *Reader) Next() (Record, error) {
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			if r.state != stateOutside {
				return Record{}, r.fail(io.ErrUnexpectedEOF)
			}
			return Record{}, io.EOF
		}
		if err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return Record{}, r.fail(err)
			}
			return Record{}, fmt.Errorf("read dump: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := r.start(t.Name.Local); err != nil {
				return Record{}, err
			}
		case xml.CharData:
			r.chars(t)
		case xml.EndElement:
			done, err := r.end(t.Name.Local)
			if err != nil {
				return Record{}, err
			}
			if done {
				return Record{
					ID:    strings.TrimSpace(r.id.String()),
					Title: strings.TrimSpace(r.title.String()),
					Text:  r.text.String(),
				}, nil
			}
		}
	}
}

func (r *Reader) start(name string) error {
	switch r.state {
	case stateOutside:
		if name == r.record {
			r.reset()
			r.state = stateInRecord
		}
	case stateInRecord:
		if name == r.record {
			return r.fail(fmt.Errorf("nested <%s>", name))
		}
		// The first <id> is the record's own; later ones belong to
		// revisions and contributors.
		if next, ok := fieldStates[name]; ok && !r.seen[next] {
			r.state = next
		}
	default:
		return r.fail(fmt.Errorf("unexpected <%s> in state %s", name, r.state))
	}
	return nil
}

func (r *Reader) chars(data []byte) {
	switch r.state {
	case stateInID:
		r.id.Write(data)
	case stateInTitle:
		r.title.Write(data)
	case stateInText:
		r.text.Write(data)
	}
}

// end reports whether the closing tag completed a record.
func (r *Reader) end(name string) (bool, error) {
	switch r.state {
	case stateInID, stateInTitle, stateInText:
		r.seen[r.state] = true
		r.state = stateInRecord
	case stateInRecord:
		if name != r.record {
			return false, nil
		}
		for _, field := range requiredFields {
			if !r.seen[fieldStates[field]] {
				return false, r.fail(fmt.Errorf("%w <%s>", ErrMissingField, field))
			}
		}
		r.state = stateOutside
		return true, nil
	}
	return false, nil
}

func (r *Reader) reset() {
	r.id.Reset()
	r.title.Reset()
	r.text.Reset()
	clear(r.seen)
}

func (r *Reader) fail(err error) *ParseError {
	return &ParseError{Element: r.record, Offset: r.dec.InputOffset(), Err: err}
}
