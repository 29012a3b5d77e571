package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Michiel29/project747"
)

func main() {
	configPath := flag.String("config", "",
		"YAML configuration file, overridden by NQA_* variables and flags")
	applyFlags := project747.FlagOverrides(flag.CommandLine)
	flag.Parse()

	cfg, err := project747.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	applyFlags(cfg)
	if err := cfg.ValidateExtraction(); err != nil {
		flag.Usage()
		log.Fatal(err)
	}

	log.Printf("Content source: %s\n", cfg.Input)
	log.Printf("Dataset output: %s\n", cfg.Output)
	if cfg.SmallNumber > 0 {
		log.Printf("Small dataset of %d documents\n", cfg.SmallNumber)
	}

	extractor, err := cfg.NewExtractor()
	if err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	begin := time.Now()
	corpus, err := extractor.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if err := corpus.Save(cfg.Output); err != nil {
		log.Fatal(err)
	}
	log.Printf("Preprocessed %d documents in %s, %d failed",
		corpus.NumDocuments(), time.Since(begin).Round(time.Second),
		extractor.Failed)
}
