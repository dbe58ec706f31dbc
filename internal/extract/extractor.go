package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/lexgest/internal/dump"
	"github.com/dgallion1/lexgest/internal/lexicon"
	"github.com/dgallion1/lexgest/internal/rank"
)

// Policy decides what a run does with a record whose title has no rank.
type Policy string

const (
	PolicySkip  Policy = "skip"
	PolicyAbort Policy = "abort"
)

// ParsePolicy validates a policy name. The empty string means PolicySkip.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyAbort:
		return PolicyAbort, nil
	}
	return "", fmt.Errorf("unknown missing-rank policy %q (want skip or abort)", s)
}

// RecordSource yields records until io.EOF. *dump.Reader implements it.
type RecordSource interface {
	Next() (dump.Record, error)
}

// Extractor runs an Assembler over a record stream, one record at a time.
type Extractor struct {
	asm    *Assembler
	policy Policy
	log    *slog.Logger

	// Filter, when set, drops records before assembly.
	Filter *PageFilter
	// Stats, when set, receives the assembly time of every record.
	Stats *Stats
}

func NewExtractor(asm *Assembler, policy Policy, log *slog.Logger) *Extractor {
	if policy == "" {
		policy = PolicySkip
	}
	return &Extractor{asm: asm, policy: policy, log: log}
}

// Run pulls every record from src, assembling each into an entry and handing
// it to emit (which may be nil). Cancellation is checked between records.
// On error the partial Result is returned alongside it.
func (x *Extractor) Run(ctx context.Context, src RecordSource, emit func(lexicon.Entry) error) (*Result, error) {
	res := NewResult()
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("read record %d: %w", res.Read+1, err)
		}
		res.Read++

		if x.Filter != nil && !x.Filter.Keep(rec) {
			res.Filtered++
			continue
		}

		start := time.Now()
		e, err := x.asm.Assemble(rec)
		if x.Stats != nil {
			x.Stats.Record(time.Since(start))
		}
		if err != nil {
			var nf *rank.NotFoundError
			if errors.As(err, &nf) && x.policy == PolicySkip {
				x.log.Warn("skipping unranked record", "id", rec.ID, "title", rec.Title)
				res.skip(rec.ID, rec.Title, err.Error())
				continue
			}
			return res, fmt.Errorf("record %s: %w", rec.ID, err)
		}

		if res.add(e) {
			x.log.Warn("duplicate title", "title", e.Title, "ids", res.Duplicates[e.Title])
		}
		x.log.Debug("assembled entry", "id", e.ID, "title", e.Title, "types", len(e.Types))

		if emit != nil {
			if err := emit(e); err != nil {
				return res, err
			}
		}
	}
}
