package project747

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/Michiel29/project747/resources"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to the env tag of every Config field.
const EnvPrefix = "NQA_"

var ErrConfig = errors.New("invalid configuration")

// Config
// Settings shared by the preprocessing and batching commands. Values are
// layered: defaults, then the YAML file, then NQA_ environment variables,
// then command-line flags.
type Config struct {
	Input     string `yaml:"input" env:"INPUT"`
	Summaries string `yaml:"summaries" env:"SUMMARIES"`
	QAPairs   string `yaml:"qaps" env:"QAPS"`
	Documents string `yaml:"documents" env:"DOCUMENTS"`
	Output    string `yaml:"output" env:"OUTPUT"`

	SmallNumber int  `yaml:"small_number" env:"SMALL_NUMBER"`
	SummaryOnly bool `yaml:"summary_only" env:"SUMMARY_ONLY"`
	Interval    int  `yaml:"interval" env:"INTERVAL"`
	Quiet       bool `yaml:"quiet" env:"QUIET"`

	MaxChars        int      `yaml:"max_chars" env:"MAX_CHARS"`
	Parts           int      `yaml:"parts" env:"PARTS"`
	AnonymizeLabels []string `yaml:"anonymize_labels" env:"ANONYMIZE_LABELS"`
	CacheSize       int      `yaml:"cache_size" env:"CACHE_SIZE"`

	BatchSize int `yaml:"batch_size" env:"BATCH_SIZE"`
	Workers   int `yaml:"workers" env:"WORKERS"`
}

func DefaultConfig() *Config {
	return &Config{
		Output:          ".",
		SmallNumber:     -1,
		Interval:        50,
		MaxChars:        DefaultMaxChars,
		Parts:           DefaultParts,
		AnonymizeLabels: append([]string(nil), DefaultAnonymizeLabels...),
		CacheSize:       TOKENIZER_LRU_SZ,
		BatchSize:       32,
		Workers:         runtime.NumCPU(),
	}
}

// LoadConfig
// Starts from the defaults, applies the YAML file at path when path is not
// empty, then the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		contents, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateExtraction checks the settings preprocessing needs.
func (cfg *Config) ValidateExtraction() error {
	if cfg.Summaries == "" || cfg.Documents == "" {
		return fmt.Errorf("summaries and documents tables are required: %w",
			ErrConfig)
	}
	if !cfg.SummaryOnly && (cfg.Input == "" || cfg.QAPairs == "") {
		return fmt.Errorf("input and qaps are required: %w", ErrConfig)
	}
	if cfg.MaxChars <= 0 {
		return fmt.Errorf("max_chars %d: %w", cfg.MaxChars, ErrConfig)
	}
	return nil
}

// ValidateBatching checks the settings batch building needs.
func (cfg *Config) ValidateBatching() error {
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch_size %d: %w", cfg.BatchSize, ErrConfig)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers %d: %w", cfg.Workers, ErrConfig)
	}
	return nil
}

// NewExtractor wires an Extractor backed by prose and the configured
// content source.
func (cfg *Config) NewExtractor() (*Extractor, error) {
	if err := cfg.ValidateExtraction(); err != nil {
		return nil, err
	}
	tokenizer, err := NewProseTokenizer(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	anonymizer := NewAnonymizer(ProseRecognizer{})
	anonymizer.MaxChars = cfg.MaxChars
	anonymizer.Parts = cfg.Parts
	anonymizer.SetLabels(cfg.AnonymizeLabels)
	extractor := &Extractor{
		Tables: TablePaths{
			Summaries: cfg.Summaries,
			QAPairs:   cfg.QAPairs,
			Documents: cfg.Documents,
		},
		Tokenizer:   tokenizer,
		Tagger:      ProseTagger{},
		Anonymizer:  anonymizer,
		SmallNumber: cfg.SmallNumber,
		SummaryOnly: cfg.SummaryOnly,
		Interval:    cfg.Interval,
		Progress:    !cfg.Quiet,
	}
	if !cfg.SummaryOnly {
		if extractor.Source, err = resources.NewContentSource(
			cfg.Input); err != nil {
			return nil, err
		}
	}
	return extractor, nil
}

func (cfg *Config) NewBatchBuilder() (*BatchBuilder, error) {
	if err := cfg.ValidateBatching(); err != nil {
		return nil, err
	}
	return NewBatchBuilder(cfg.BatchSize, cfg.Workers), nil
}

// FlagOverrides
// Registers one flag per Config field on flags. The returned function
// copies every flag that was set on the command line onto a Config, so
// flags override the file and the environment only when given.
func FlagOverrides(flags *flag.FlagSet) func(cfg *Config) {
	shadow := DefaultConfig()
	labels := strings.Join(shadow.AnonymizeLabels, ",")
	flags.StringVar(&shadow.Input, "input", "",
		"content directory or s3://bucket/prefix")
	flags.StringVar(&shadow.Summaries, "summaries", "", "summaries table")
	flags.StringVar(&shadow.QAPairs, "qaps", "", "question answer table")
	flags.StringVar(&shadow.Documents, "documents", "",
		"document metadata table")
	flags.StringVar(&shadow.Output, "output", shadow.Output,
		"dataset directory")
	flags.IntVar(&shadow.SmallNumber, "small", shadow.SmallNumber,
		"cap the run to this many documents")
	flags.BoolVar(&shadow.SummaryOnly, "summary_only", false,
		"only extract summaries")
	flags.IntVar(&shadow.Interval, "interval", shadow.Interval,
		"documents between progress log lines")
	flags.BoolVar(&shadow.Quiet, "quiet", false, "disable the progress bar")
	flags.IntVar(&shadow.MaxChars, "max_chars", shadow.MaxChars,
		"characters above which entity recognition runs in parts")
	flags.IntVar(&shadow.Parts, "parts", shadow.Parts,
		"parts for long documents")
	flags.StringVar(&labels, "labels", labels,
		"comma separated entity labels to anonymize")
	flags.IntVar(&shadow.CacheSize, "cache_size", shadow.CacheSize,
		"tokenizer cache entries")
	flags.IntVar(&shadow.BatchSize, "batch_size", shadow.BatchSize,
		"data points per batch")
	flags.IntVar(&shadow.Workers, "workers", shadow.Workers,
		"batch building workers")

	return func(cfg *Config) {
		flags.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "input":
				cfg.Input = shadow.Input
			case "summaries":
				cfg.Summaries = shadow.Summaries
			case "qaps":
				cfg.QAPairs = shadow.QAPairs
			case "documents":
				cfg.Documents = shadow.Documents
			case "output":
				cfg.Output = shadow.Output
			case "small":
				cfg.SmallNumber = shadow.SmallNumber
			case "summary_only":
				cfg.SummaryOnly = shadow.SummaryOnly
			case "interval":
				cfg.Interval = shadow.Interval
			case "quiet":
				cfg.Quiet = shadow.Quiet
			case "max_chars":
				cfg.MaxChars = shadow.MaxChars
			case "parts":
				cfg.Parts = shadow.Parts
			case "labels":
				cfg.AnonymizeLabels = splitLabels(labels)
			case "cache_size":
				cfg.CacheSize = shadow.CacheSize
			case "batch_size":
				cfg.BatchSize = shadow.BatchSize
			case "workers":
				cfg.Workers = shadow.Workers
			}
		})
	}
}

func splitLabels(labels string) []string {
	split := make([]string, 0)
	for _, label := range strings.Split(labels, ",") {
		if label = strings.TrimSpace(label); label != "" {
			split = append(split, label)
		}
	}
	return split
}
