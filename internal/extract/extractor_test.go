package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/lexgest/internal/dump"
	"github.com/dgallion1/lexgest/internal/lexicon"
	"github.com/dgallion1/lexgest/internal/media"
	"github.com/dgallion1/lexgest/internal/parser"
	"github.com/dgallion1/lexgest/internal/rank"
)

type sliceSource struct {
	recs []dump.Record
	err  error
}

func (s *sliceSource) Next() (dump.Record, error) {
	if len(s.recs) == 0 {
		if s.err != nil {
			return dump.Record{}, s.err
		}
		return dump.Record{}, io.EOF
	}
	rec := s.recs[0]
	s.recs = s.recs[1:]
	return rec, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAssembler(ranks map[string]int) *Assembler {
	return &Assembler{
		Oracle:    rank.New(ranks),
		Segmenter: parser.Segmenter{FlushTrailing: true},
	}
}

func TestAssemble_EndToEnd(t *testing.T) {
	asm := newAssembler(map[string]int{"book": 42})
	e, err := asm.Assemble(dump.Record{
		ID:    "1",
		Title: "book",
		Text:  "==English==\n===Noun===\n# A bound set of pages.\n#* ''Example sentence.''\n",
	})
	require.NoError(t, err)

	want := lexicon.Entry{
		ID:    "1",
		Title: "book",
		Rank:  42,
		Types: []lexicon.TypedBlock{{
			WordClass: lexicon.Noun,
			Definitions: []lexicon.Definition{{
				Text:       "A bound set of pages.",
				Quotations: []string{"Example sentence."},
			}},
		}},
		Translations: []string{},
		Synonyms:     []string{},
		Images:       []lexicon.Image{},
	}
	assert.Equal(t, want, e)
}

func TestAssemble_QuotePassage(t *testing.T) {
	asm := newAssembler(map[string]int{"book": 1})
	text := "==English==\n===Noun===\n" +
		"# A [[volume]].\n" +
		"#* {{quote-book|en|year=1900|passage=She opened the '''book'''.}}\n" +
		"===Verb===\n"

	e, err := asm.Assemble(dump.Record{ID: "1", Title: "book", Text: text})
	require.NoError(t, err)
	require.Len(t, e.Types, 1)
	require.Len(t, e.Types[0].Definitions, 1)
	assert.Equal(t, []string{"She opened the <em>book</em>."}, e.Types[0].Definitions[0].Quotations)
}

func TestAssemble_FullPage(t *testing.T) {
	asm := newAssembler(map[string]int{"dictionary": 7})
	text := "==English==\n" +
		"[[Image:Dictionary.jpg|thumb|A dictionary]]\n" +
		"===Etymology 1===\n" +
		"From Latin.\n" +
		"===Pronunciation===\n" +
		"* {{IPA|/ˈdɪkʃ(ə)n(ə)ɹɪ/|lang=en}}\n" +
		"* {{IPA|/ˈdɪkʃənɛɹi/|lang=en}}\n" +
		"* {{audio|En-us-dictionary.ogg|Audio (US)|lang=en}}\n" +
		"===Noun===\n" +
		"# A [[reference work]] with a list of words.\n" +
		"# {{lb|en|obsolete}} A book of spells.\n" +
		"====Synonyms====\n" +
		"* [[wordbook]]\n" +
		"====Translations====\n" +
		"{{trans-top|publication}}\n" +
		"* French: {{t+|fr|dictionnaire|m}}\n" +
		"{{trans-bottom}}\n" +
		"===Etymology 2===\n" +
		"===Noun===\n" +
		"# Second etymology noun.\n" +
		"==French==\n" +
		"===Noun===\n" +
		"# dictionnaire\n"

	e, err := asm.Assemble(dump.Record{ID: "99", Title: "dictionary", Text: text})
	require.NoError(t, err)

	assert.Equal(t, 7, e.Rank)
	assert.Equal(t, "/ˈdɪkʃ(ə)n(ə)ɹɪ/", e.IPA)
	assert.Equal(t, "En-us-dictionary.ogg", e.Audio)
	assert.Equal(t, media.URL("En-us-dictionary.ogg"), e.AudioURL)
	assert.Equal(t, []string{"wordbook"}, e.Synonyms)
	assert.Equal(t, []string{"dictionnaire"}, e.Translations)

	require.Len(t, e.Types, 1)
	assert.Equal(t, lexicon.Noun, e.Types[0].WordClass)
	require.Len(t, e.Types[0].Definitions, 1)
	assert.Equal(t, "A reference work with a list of words.", e.Types[0].Definitions[0].Text)
	assert.Equal(t, []string{}, e.Types[0].Definitions[0].Quotations)

	require.Len(t, e.Images, 1)
	assert.Equal(t, "Dictionary.jpg", e.Images[0].Filename)
	assert.Equal(t, "A dictionary", e.Images[0].Description)
	assert.Equal(t, "http://upload.wikimedia.org/wikipedia/commons/5/5a/Dictionary.jpg", e.Images[0].URL)
}

func TestAssemble_MissingRank(t *testing.T) {
	_, err := newAssembler(nil).Assemble(dump.Record{ID: "1", Title: "book", Text: "==English=="})
	var nf *rank.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "book", nf.Title)
}

func TestRun_SkipPolicy(t *testing.T) {
	src := &sliceSource{recs: []dump.Record{
		{ID: "1", Title: "book", Text: "==English==\n===Noun===\n# A book.\n"},
		{ID: "2", Title: "zyzzyva", Text: "==English==\n"},
		{ID: "3", Title: "dog", Text: "==English==\n===Noun===\n# A dog.\n"},
	}}
	x := NewExtractor(newAssembler(map[string]int{"book": 2, "dog": 1, "cat": 3}), PolicySkip, quietLogger())
	x.Stats = NewStats(0)

	var emitted []string
	res, err := x.Run(context.Background(), src, func(e lexicon.Entry) error {
		emitted = append(emitted, e.Title)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"book", "dog"}, emitted)
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, 3, res.Read)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "zyzzyva", res.Skipped[0].Title)
	assert.Equal(t, []string{"cat"}, res.Missing(rank.New(map[string]int{"book": 2, "dog": 1, "cat": 3})))
	assert.Equal(t, 3, x.Stats.Snapshot().Records)
}

func TestRun_AbortPolicy(t *testing.T) {
	src := &sliceSource{recs: []dump.Record{
		{ID: "1", Title: "book", Text: "==English==\n"},
		{ID: "2", Title: "zyzzyva", Text: "==English==\n"},
		{ID: "3", Title: "dog", Text: "==English==\n"},
	}}
	x := NewExtractor(newAssembler(map[string]int{"book": 2, "dog": 1}), PolicyAbort, quietLogger())

	res, err := x.Run(context.Background(), src, nil)
	require.Error(t, err)

	var nf *rank.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "zyzzyva", nf.Title)
	assert.Len(t, res.Entries, 1)
}

func TestRun_Duplicates(t *testing.T) {
	src := &sliceSource{recs: []dump.Record{
		{ID: "10", Title: "book", Text: "==English==\n"},
		{ID: "11", Title: "book", Text: "==English==\n"},
	}}
	x := NewExtractor(newAssembler(map[string]int{"book": 1}), PolicySkip, quietLogger())

	res, err := x.Run(context.Background(), src, nil)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, map[string][]string{"book": {"10", "11"}}, res.Duplicates)
}

func TestRun_ReaderError(t *testing.T) {
	in := `<entries><entry><id>1</id><title>book</title><text>==English==</text></entry><entry><id>2</id></entries>`
	x := NewExtractor(newAssembler(map[string]int{"book": 1}), PolicySkip, quietLogger())

	res, err := x.Run(context.Background(), dump.NewReader(strings.NewReader(in)), nil)
	require.Error(t, err)

	var perr *dump.ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Len(t, res.Entries, 1)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &sliceSource{recs: []dump.Record{
		{ID: "1", Title: "book", Text: "==English==\n"},
		{ID: "2", Title: "dog", Text: "==English==\n"},
	}}
	x := NewExtractor(newAssembler(map[string]int{"book": 1, "dog": 2}), PolicySkip, quietLogger())

	res, err := x.Run(ctx, src, func(lexicon.Entry) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, res.Entries, 1)
}

func TestRun_EmitError(t *testing.T) {
	src := &sliceSource{recs: []dump.Record{{ID: "1", Title: "book", Text: ""}}}
	x := NewExtractor(newAssembler(map[string]int{"book": 1}), PolicySkip, quietLogger())

	boom := errors.New("sink full")
	_, err := x.Run(context.Background(), src, func(lexicon.Entry) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRun_PageFilter(t *testing.T) {
	src := &sliceSource{recs: []dump.Record{
		{ID: "1", Title: "book", Text: "==English==\n===Noun===\n# A book.\n"},
		{ID: "2", Title: "Index:Spanish", Text: "==English==\n"},
		{ID: "3", Title: "livre", Text: "==French==\n"},
	}}
	oracle := rank.New(map[string]int{"book": 1})
	x := NewExtractor(newAssembler(map[string]int{"book": 1}), PolicySkip, quietLogger())
	x.Filter = &PageFilter{Oracle: oracle}

	res, err := x.Run(context.Background(), src, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Read)
	assert.Equal(t, 2, res.Filtered)
	assert.Len(t, res.Entries, 1)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicySkip, p)

	p, err = ParsePolicy("abort")
	require.NoError(t, err)
	assert.Equal(t, PolicyAbort, p)

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}
