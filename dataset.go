package project747

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Michiel29/project747/resources"
	"github.com/Michiel29/project747/types"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
)

// DatasetExt is the suffix of persisted document lists.
const DatasetExt = ".gob.zst"

const smallPrefix = "small_"

var documentFileNames = map[types.Split]string{
	types.SplitTrain: "train_docs",
	types.SplitValid: "validate_docs",
	types.SplitTest:  "test_docs",
}

var summaryFileNames = map[types.Split]string{
	types.SplitTrain: "train_summaries",
	types.SplitValid: "valid_summaries",
	types.SplitTest:  "test_summaries",
}

var allSplits = []types.Split{types.SplitTrain, types.SplitValid,
	types.SplitTest}

// DocumentsPath returns where the documents of split are saved under dir.
func DocumentsPath(dir string, split types.Split, small bool) string {
	return datasetPath(dir, documentFileNames[split], small)
}

// SummariesPath returns where the summaries of split are saved under dir.
func SummariesPath(dir string, split types.Split, small bool) string {
	return datasetPath(dir, summaryFileNames[split], small)
}

func datasetPath(dir string, name string, small bool) string {
	if small {
		name = smallPrefix + name
	}
	return filepath.Join(dir, name+DatasetExt)
}

// SaveDocuments
// Writes docs as one zstd compressed gob stream.
func SaveDocuments(path string, docs []*Document) error {
	file, err := os.OpenFile(path, os.O_TRUNC|os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	buffered := bufio.NewWriter(file)
	compressor, err := zstd.NewWriter(buffered)
	if err != nil {
		file.Close()
		return err
	}
	if encodeErr := gob.NewEncoder(compressor).Encode(docs); encodeErr != nil {
		compressor.Close()
		file.Close()
		return fmt.Errorf("encoding %s: %w", path, encodeErr)
	}
	if err := compressor.Close(); err != nil {
		file.Close()
		return err
	}
	if err := buffered.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadDocuments
// Maps a file written by SaveDocuments and decodes it.
func LoadDocuments(path string) ([]*Document, error) {
	mapped, err := resources.OpenMapped(path)
	if err != nil {
		return nil, err
	}
	defer mapped.Close()
	decompressor, err := zstd.NewReader(mapped.Reader())
	if err != nil {
		return nil, err
	}
	defer decompressor.Close()
	docs := make([]*Document, 0)
	if decodeErr := gob.NewDecoder(decompressor).Decode(&docs); decodeErr != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, decodeErr)
	}
	return docs, nil
}

// Save
// Writes the documents and summaries of every split under dir, using the
// small_ names for a capped corpus. Splits without documents are written
// as empty lists.
func (corpus *Corpus) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, split := range allSplits {
		if err := saveReported(SummariesPath(dir, split, corpus.Small),
			corpus.Summaries[split]); err != nil {
			return err
		}
	}
	for _, split := range allSplits {
		if err := saveReported(DocumentsPath(dir, split, corpus.Small),
			corpus.Documents[split]); err != nil {
			return err
		}
	}
	return nil
}

func saveReported(path string, docs []*Document) error {
	if docs == nil {
		docs = []*Document{}
	}
	if err := SaveDocuments(path, docs); err != nil {
		return err
	}
	if stat, err := os.Stat(path); err == nil {
		log.Printf("Wrote %d documents to %s (%s)", len(docs), path,
			humanize.Bytes(uint64(stat.Size())))
	}
	return nil
}

// LoadCorpus reads back every split Save wrote under dir. A missing
// summaries file leaves that split without summaries.
func LoadCorpus(dir string, small bool) (*Corpus, error) {
	corpus := NewCorpus()
	corpus.Small = small
	for _, split := range allSplits {
		docs, err := LoadDocuments(DocumentsPath(dir, split, small))
		if err != nil {
			return nil, err
		}
		corpus.Documents[split] = docs
		summaries, err := LoadDocuments(SummariesPath(dir, split, small))
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return nil, err
		}
		corpus.Summaries[split] = summaries
	}
	return corpus, nil
}
