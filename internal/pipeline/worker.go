package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/lexgest/internal/dump"
	"github.com/dgallion1/lexgest/internal/extract"
	"github.com/dgallion1/lexgest/internal/lexicon"
	"github.com/dgallion1/lexgest/internal/output"
	"github.com/dgallion1/lexgest/internal/store"
)

// Worker processes a single dump job.
type Worker struct {
	asm    *extract.Assembler
	filter *extract.PageFilter
	policy extract.Policy
	store  *store.Store
	stats  *extract.Stats
	log    *slog.Logger
}

// NewWorker builds a worker. filter applies to page exports only; st and
// stats may be nil.
func NewWorker(asm *extract.Assembler, filter *extract.PageFilter, policy extract.Policy, st *store.Store, stats *extract.Stats, log *slog.Logger) *Worker {
	return &Worker{
		asm:    asm,
		filter: filter,
		policy: policy,
		store:  st,
		stats:  stats,
		log:    log,
	}
}

// Process runs the full extraction pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "format", job.Format)
	defer job.SetFileData(nil)

	// Phase 1: Read
	job.SetStatus(StatusReading, "reading")
	data := job.FileData()
	job.ContentHash = ContentHashHex(data)

	var src extract.RecordSource
	x := extract.NewExtractor(w.asm, w.policy, log)
	x.Stats = w.stats
	switch job.Format {
	case FormatPage:
		src = dump.NewPageReader(bytes.NewReader(data))
		x.Filter = w.filter
	case FormatEntry, "":
		src = dump.NewReader(bytes.NewReader(data))
	default:
		err := fmt.Errorf("unsupported format %q", job.Format)
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "reading")
		return
	}

	// Phase 2: Extract
	job.SetStatus(StatusExtracting, "extracting")
	res, err := x.Run(ctx, src, func(lexicon.Entry) error {
		job.IncrEntriesProduced()
		return nil
	})
	hadErrors := false
	if err != nil {
		log.Error("extraction stopped", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		hadErrors = true
	}
	output.SortByRank(res.Entries)
	job.SetResult(res)
	log.Info("extraction complete",
		"records", res.Read,
		"entries", len(res.Entries),
		"skipped", len(res.Skipped),
		"filtered", res.Filtered,
		"duplicates", len(res.Duplicates),
	)

	if len(res.Entries) == 0 && hadErrors {
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Phase 3: Store
	if w.store != nil && len(res.Entries) > 0 {
		job.SetStatus(StatusStoring, "storing")
		if err := w.store.SaveEntries(ctx, res.Entries); err != nil {
			log.Error("store failed", "error", err)
			job.AddError(fmt.Sprintf("store: %s", err))
			job.SetStatus(StatusFailed, "storing")
			return
		}
		job.SetEntriesStored(len(res.Entries))
		log.Info("storage complete", "stored", len(res.Entries))
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}
