package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/Michiel29/project747"
	"github.com/Michiel29/project747/types"
)

func main() {
	configPath := flag.String("config", "",
		"YAML configuration file, overridden by NQA_* variables and flags")
	splitName := flag.String("split", "train",
		"split to batch [train, valid, test]")
	show := flag.Int("show", -1,
		"decode this example of the first batch back to words")
	vocabPath := flag.String("vocab", "",
		"write the word vocabulary to this file")
	noShuffle := flag.Bool("no_shuffle", false,
		"keep data points in document order")
	applyFlags := project747.FlagOverrides(flag.CommandLine)
	flag.Parse()

	cfg, err := project747.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	applyFlags(cfg)
	split, err := types.ParseSplit(*splitName)
	if err != nil {
		flag.Usage()
		log.Fatal(err)
	}
	builder, err := cfg.NewBatchBuilder()
	if err != nil {
		flag.Usage()
		log.Fatal(err)
	}
	builder.Shuffle = !*noShuffle

	corpus, err := project747.LoadCorpus(cfg.Output, cfg.SmallNumber > 0)
	if err != nil {
		log.Fatal(err)
	}
	indexer := project747.NewIndexer()
	if err := indexer.IndexCorpus(corpus); err != nil {
		log.Fatal(err)
	}
	log.Printf("Vocabulary: %d words, %d NER tags, %d POS tags",
		indexer.Words.Len(), indexer.Ner.Len(), indexer.Pos.Len())
	if *vocabPath != "" {
		if err := project747.SaveVocabulary(*vocabPath,
			indexer.Words); err != nil {
			log.Fatal(err)
		}
	}

	points, err := project747.CorpusDataPoints(corpus.Documents[split])
	if err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	batches, err := builder.Build(ctx, points)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Built %d batches from %d %s data points", len(batches),
		len(points), split)
	for batchIdx, batch := range batches {
		queryWidth := 0
		if batch.Len() > 0 {
			queryWidth = len(batch.Queries[0])
		}
		fmt.Printf("batch %d: %d examples, query width %d\n", batchIdx,
			batch.Len(), queryWidth)
	}
	if *show >= 0 && len(batches) > 0 {
		fmt.Print(batches[0].View(indexer.Words, *show))
	}
}
