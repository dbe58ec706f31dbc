// Command extract reads a dictionary dump and a word frequency list and
// writes the ranked entries as a JSON array.
//
// Flags override the config file and environment:
//
//	-config           path to YAML config file
//	-in               dump file ("-" for stdin)
//	-out              output JSON file
//	-freq             frequency list CSV
//	-db               also upsert entries into this SQLite database
//	-format           entry (filtered dump) or page (raw MediaWiki export)
//	-on-missing-rank  skip or abort
//	-trailing         flush or drop an unterminated last section
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/lexgest/internal/config"
	"github.com/dgallion1/lexgest/internal/dump"
	"github.com/dgallion1/lexgest/internal/extract"
	"github.com/dgallion1/lexgest/internal/output"
	"github.com/dgallion1/lexgest/internal/pipeline"
	"github.com/dgallion1/lexgest/internal/rank"
	"github.com/dgallion1/lexgest/internal/store"
)

type options struct {
	In     string
	Out    string
	Format string
}

func main() {
	cfg, opts, err := parseArgs(os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, opts, log); err != nil {
		log.Error("extract failed", "error", err)
		os.Exit(1)
	}
}

// parseArgs reads the config file and environment, applies the flags that
// were set, and validates the result once.
func parseArgs(args []string) (config.Config, options, error) {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	in := fs.String("in", "resources/dictionary.xml", "dump file (- for stdin)")
	out := fs.String("out", "resources/dictionary.json", "output JSON file")
	format := fs.String("format", pipeline.FormatEntry, "dump format: entry or page")
	freq := fs.String("freq", "", "frequency list CSV")
	db := fs.String("db", "", "SQLite database to upsert entries into")
	onMissing := fs.String("on-missing-rank", "", "skip or abort")
	trailing := fs.String("trailing", "", "flush or drop an unterminated last section")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, options{}, err
	}

	cfg, err := config.Read(*configPath)
	if err != nil {
		return config.Config{}, options{}, err
	}

	// CLI flags override config.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "freq":
			cfg.FrequencyListPath = *freq
		case "db":
			cfg.DBPath = *db
		case "on-missing-rank":
			cfg.OnMissingRank = *onMissing
		case "trailing":
			cfg.TrailingSection = *trailing
		}
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, options{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, options{In: *in, Out: *out, Format: *format}, nil
}

func run(ctx context.Context, cfg config.Config, opts options, log *slog.Logger) error {
	oracle, err := rank.Load(cfg.FrequencyListPath)
	if err != nil {
		return err
	}
	log.Info("frequency list loaded", "path", cfg.FrequencyListPath, "words", oracle.Len())

	var r io.Reader = os.Stdin
	if opts.In != "-" {
		f, err := os.Open(opts.In)
		if err != nil {
			return fmt.Errorf("open dump: %w", err)
		}
		defer f.Close()
		r = f
	}

	stats := extract.NewStats(cfg.StatsWindow)
	x := extract.NewExtractor(cfg.Assembler(oracle), cfg.Policy(), log)
	x.Stats = stats

	var src extract.RecordSource
	switch opts.Format {
	case pipeline.FormatEntry, "":
		src = dump.NewReader(r)
	case pipeline.FormatPage:
		src = dump.NewPageReader(r)
		x.Filter = cfg.PageFilter(oracle)
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}

	res, err := x.Run(ctx, src, nil)
	if err != nil {
		return err
	}

	for title, ids := range res.Duplicates {
		log.Warn("duplicate title kept", "title", title, "ids", ids)
	}
	if missing := res.Missing(oracle); len(missing) > 0 {
		log.Info("frequency list words without an entry", "count", len(missing))
		for _, w := range missing {
			log.Debug("missing word", "title", w)
		}
	}

	if err := output.WriteFile(opts.Out, res.Entries); err != nil {
		return err
	}

	if cfg.DBPath != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveEntries(ctx, res.Entries); err != nil {
			return fmt.Errorf("save entries: %w", err)
		}
	}

	log.Info("extraction complete",
		"records", res.Read,
		"entries", len(res.Entries),
		"skipped", len(res.Skipped),
		"filtered", res.Filtered,
		"duplicates", len(res.Duplicates),
		"out", opts.Out,
		"timing", stats.Snapshot(),
	)
	return nil
}
