package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/dgallion1/lexgest/internal/extract"
	"github.com/dgallion1/lexgest/internal/parser"
	"github.com/dgallion1/lexgest/internal/rank"
)

// Trailing section handling.
const (
	TrailingFlush = "flush"
	TrailingDrop  = "drop"
)

type Config struct {
	Port string `yaml:"port" env:"PORT" env-default:"8090"`

	// Auth
	APIKey string `yaml:"api_key" env:"LEXGEST_API_KEY"`

	// Inputs and storage. An empty DBPath disables the entry store.
	FrequencyListPath string `yaml:"frequency_list" env:"FREQUENCY_LIST" env-default:"resources/my_english_frequency_list.csv"`
	DBPath            string `yaml:"db_path" env:"DB_PATH"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count" env:"WORKER_COUNT" env-default:"4"`
	MaxQueueSize int `yaml:"max_queue_size" env:"MAX_QUEUE_SIZE" env-default:"100"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"268435456"`

	// Job state
	JobTTL      time.Duration `yaml:"job_ttl" env:"JOB_TTL" env-default:"1h"`
	StatsWindow time.Duration `yaml:"stats_window" env:"STATS_WINDOW" env-default:"1h"`

	// Extraction
	OnMissingRank       string `yaml:"on_missing_rank" env:"ON_MISSING_RANK" env-default:"skip"`
	TrailingSection     string `yaml:"trailing_section" env:"TRAILING_SECTION" env-default:"flush"`
	Language            string `yaml:"language" env:"ENTRY_LANGUAGE" env-default:"English"`
	TranslationLanguage string `yaml:"translation_language" env:"TRANSLATION_LANGUAGE" env-default:"French"`
	ThumbWidth          int    `yaml:"thumb_width" env:"THUMB_WIDTH" env-default:"600"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from an optional YAML file and the environment,
// then validates it. Priority: ENV > YAML > defaults.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply their own
// overrides before calling Validate.
func Read(path string) (Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings shared by the CLI and the server.
func (c Config) Validate() error {
	var errs []error
	if c.FrequencyListPath == "" {
		errs = append(errs, errors.New("frequency_list is required"))
	}
	if _, err := extract.ParsePolicy(c.OnMissingRank); err != nil {
		errs = append(errs, err)
	}
	if c.TrailingSection != TrailingFlush && c.TrailingSection != TrailingDrop {
		errs = append(errs, fmt.Errorf("trailing_section must be %q or %q, got %q", TrailingFlush, TrailingDrop, c.TrailingSection))
	}
	if c.ThumbWidth <= 0 {
		errs = append(errs, fmt.Errorf("thumb_width must be positive, got %d", c.ThumbWidth))
	}
	if c.WorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("worker_count must be positive, got %d", c.WorkerCount))
	}
	if c.MaxQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("max_queue_size must be positive, got %d", c.MaxQueueSize))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// ValidateServer additionally checks what the HTTP service needs.
func (c Config) ValidateServer() error {
	if c.APIKey == "" {
		return fmt.Errorf("LEXGEST_API_KEY is required")
	}
	return c.Validate()
}

// FlushTrailing reports whether an unterminated last section is kept.
func (c Config) FlushTrailing() bool {
	return c.TrailingSection == TrailingFlush
}

// Policy returns the validated missing-rank policy.
func (c Config) Policy() extract.Policy {
	p, err := extract.ParsePolicy(c.OnMissingRank)
	if err != nil {
		return extract.PolicySkip
	}
	return p
}

// SlogLevel returns the configured log level, Info when unparsable.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Assembler builds an entry assembler from the extraction settings.
func (c Config) Assembler(oracle *rank.Oracle) *extract.Assembler {
	return &extract.Assembler{
		Oracle: oracle,
		Segmenter: parser.Segmenter{
			Language:      c.Language,
			FlushTrailing: c.FlushTrailing(),
		},
		Options:    parser.Options{TranslationLanguage: c.TranslationLanguage},
		ThumbWidth: c.ThumbWidth,
	}
}

// PageFilter builds the raw export filter for the configured language.
func (c Config) PageFilter(oracle *rank.Oracle) *extract.PageFilter {
	return &extract.PageFilter{Language: c.Language, Oracle: oracle}
}
