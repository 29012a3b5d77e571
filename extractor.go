package project747

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Michiel29/project747/resources"
	"github.com/Michiel29/project747/types"
	"github.com/gosuri/uiprogress"
)

var ErrUnknownDocument = errors.New("content file has no document metadata")

// WordTokenizer splits raw text into word tokens.
type WordTokenizer interface {
	Tokenize(text string) ([]string, error)
}

// Tagger returns per-word IOB entity tags and part-of-speech tags, one of
// each per input word.
type Tagger interface {
	Tag(words []string) (ner []string, pos []string, err error)
}

// TablePaths locates the three NarrativeQA metadata tables.
type TablePaths struct {
	Summaries string
	QAPairs   string
	Documents string
}

// Extractor
// Turns the raw NarrativeQA content files and tables into anonymized
// documents and their summaries, grouped by split.
type Extractor struct {
	Tables     TablePaths
	Source     resources.ContentSource
	Tokenizer  WordTokenizer
	Tagger     Tagger
	Anonymizer *Anonymizer
	// SmallNumber > 0 caps the run to that many documents and summaries.
	SmallNumber int
	SummaryOnly bool
	// Interval is the number of documents between progress log lines.
	Interval int
	Progress bool

	Failed int
}

// extractionTables holds the decoded tables, keyed by document id.
type extractionTables struct {
	documents []DocumentRecord
	metadata  map[string]DocumentRecord
	summaries map[string]SummaryRecord
	qaps      map[string][]QAPairRecord
}

func (extractor *Extractor) readTables() (*extractionTables, error) {
	documents, err := ReadDocumentRecordsFile(extractor.Tables.Documents)
	if err != nil {
		return nil, err
	}
	summaries, err := ReadSummariesFile(extractor.Tables.Summaries)
	if err != nil {
		return nil, err
	}
	tables := &extractionTables{
		documents: documents,
		metadata:  make(map[string]DocumentRecord, len(documents)),
		summaries: make(map[string]SummaryRecord, len(summaries)),
		qaps:      make(map[string][]QAPairRecord, len(documents)),
	}
	for _, record := range documents {
		tables.metadata[record.DocumentId] = record
	}
	for _, record := range summaries {
		tables.summaries[record.DocumentId] = record
	}
	if extractor.SummaryOnly {
		return tables, nil
	}
	qaps, err := ReadQAPairsFile(extractor.Tables.QAPairs)
	if err != nil {
		return nil, err
	}
	for _, record := range qaps {
		tables.qaps[record.DocumentId] = append(
			tables.qaps[record.DocumentId], record)
	}
	log.Printf("Loaded %d documents, %d summaries, %d question answer pairs",
		len(documents), len(summaries), len(qaps))
	return tables, nil
}

// Run
// Reads the tables, collects the summaries, then (unless SummaryOnly)
// extracts, tokenizes and anonymizes every content file of the source. A
// content file without a metadata row aborts the run with
// ErrUnknownDocument; any other per-document failure is logged and the
// document skipped.
func (extractor *Extractor) Run(ctx context.Context) (*Corpus, error) {
	tables, err := extractor.readTables()
	if err != nil {
		return nil, err
	}
	extractor.Failed = 0
	corpus := NewCorpus()
	corpus.Small = extractor.SmallNumber > 0
	extractor.collectSummaries(tables, corpus)
	if extractor.SummaryOnly {
		return corpus, nil
	}

	refs, err := extractor.Source.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if _, ok := tables.metadata[ref.DocumentId]; !ok {
			return nil, fmt.Errorf("%s: %w", ref.Path, ErrUnknownDocument)
		}
	}

	var bar *uiprogress.Bar
	if extractor.Progress {
		uiprogress.Start()
		bar = uiprogress.AddBar(len(refs))
		bar.AppendCompleted()
		bar.PrependElapsed()
		defer uiprogress.Stop()
	}

	processed := 0
	for fileNumber, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if bar != nil {
			bar.Incr()
		}
		meta := tables.metadata[ref.DocumentId]
		qaps, ok := tables.qaps[ref.DocumentId]
		if !ok {
			log.Printf("No question answer pairs for %s, skipping",
				ref.DocumentId)
			continue
		}
		if !extractor.Progress {
			log.Printf("Processing: %s", ref.DocumentId)
		}
		doc, docErr := extractor.ExtractDocument(ctx, ref, meta, qaps)
		if docErr != nil {
			if errors.Is(docErr, context.Canceled) ||
				errors.Is(docErr, context.DeadlineExceeded) {
				return nil, docErr
			}
			extractor.Failed++
			log.Printf("Error in %s extraction of %s: %v", meta.Kind,
				ref.DocumentId, docErr)
			continue
		}
		corpus.Documents[doc.Split] = append(corpus.Documents[doc.Split], doc)
		processed++
		if extractor.Interval > 0 && (fileNumber+1)%extractor.Interval == 0 {
			log.Printf("Processed %d documents", fileNumber+1)
		}
		if extractor.SmallNumber > 0 && processed == extractor.SmallNumber {
			break
		}
	}
	log.Printf("Extracted %d documents, %d failed", processed,
		extractor.Failed)
	return corpus, nil
}

// collectSummaries builds one query-less summary document per metadata row,
// in table order.
func (extractor *Extractor) collectSummaries(tables *extractionTables,
	corpus *Corpus) {
	collected := 0
	for _, meta := range tables.documents {
		record, ok := tables.summaries[meta.DocumentId]
		if !ok {
			log.Printf("No summary for %s, skipping", meta.DocumentId)
			continue
		}
		summary := &Document{
			Id:    meta.DocumentId,
			Split: meta.Split,
			Kind:  meta.Kind,
			Words: append([]string(nil), record.Words...),
		}
		corpus.Summaries[meta.Split] = append(corpus.Summaries[meta.Split],
			summary)
		collected++
		if extractor.SmallNumber > 0 && collected == extractor.SmallNumber {
			break
		}
	}
}

// ExtractDocument
// Reads one content file and builds its anonymized document, with the
// queries and candidates of its question answer pairs attached and tagged.
func (extractor *Extractor) ExtractDocument(ctx context.Context,
	ref resources.ContentRef, meta DocumentRecord,
	qaps []QAPairRecord) (*Document, error) {
	bodyWords, err := extractor.extractBody(ctx, ref, meta)
	if err != nil {
		return nil, err
	}
	words, entities, others, err := extractor.Anonymizer.AnonymizeDocument(
		bodyWords)
	if err != nil {
		return nil, fmt.Errorf("anonymizing: %w", err)
	}
	doc := &Document{
		Id:       meta.DocumentId,
		Split:    meta.Split,
		Kind:     meta.Kind,
		Words:    words,
		Entities: entities,
		Others:   others,
	}
	for _, record := range qaps {
		query := doc.addQuery(record)
		if err := extractor.tagQuery(doc, query); err != nil {
			return nil, err
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (extractor *Extractor) extractBody(ctx context.Context,
	ref resources.ContentRef, meta DocumentRecord) ([]string, error) {
	reader, err := extractor.Source.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	text, readErr := ReadSanitized(reader)
	if closeErr := reader.Close(); closeErr != nil && readErr == nil {
		readErr = closeErr
	}
	if readErr != nil {
		return nil, fmt.Errorf("reading %s: %w", ref.Path, readErr)
	}
	if meta.Kind == types.KindMovie {
		text = CleanScript(text)
	}
	words, err := extractor.Tokenizer.Tokenize(text)
	if err != nil {
		return nil, fmt.Errorf("tokenizing content: %w", err)
	}
	startTag, err := extractor.tokenizeTag(meta.StartTag)
	if err != nil {
		return nil, err
	}
	endTag, err := extractor.tokenizeTag(meta.EndTag)
	if err != nil {
		return nil, err
	}
	body, err := ExtractBody(meta.Kind, strings.Join(words, " "), startTag,
		endTag)
	if err != nil {
		return nil, err
	}
	return extractor.Tokenizer.Tokenize(body)
}

// tokenizeTag runs a boundary tag through the content tokenizer so it can be
// found in the tokenized text.
func (extractor *Extractor) tokenizeTag(tag string) (string, error) {
	tagWords, err := extractor.Tokenizer.Tokenize(SanitizeContent(tag))
	if err != nil {
		return "", fmt.Errorf("tokenizing tag %q: %w", tag, err)
	}
	return strings.Join(tagWords, " "), nil
}

// tagQuery fills the question tags and appends the tags of the query's two
// candidates, keeping the candidate tag lists aligned with Candidates.
func (extractor *Extractor) tagQuery(doc *Document, query *Query) error {
	if extractor.Tagger == nil {
		query.NerTags = fillTags(nil, len(query.QuestionWords), NoEntityTag)
		query.PosTags = fillTags(nil, len(query.QuestionWords), NoPosTag)
		for _, answerIdx := range query.AnswerIndices {
			answerLen := len(doc.Candidates[answerIdx])
			doc.NerCandidates = append(doc.NerCandidates,
				fillTags(nil, answerLen, NoEntityTag))
			doc.PosCandidates = append(doc.PosCandidates,
				fillTags(nil, answerLen, NoPosTag))
		}
		return nil
	}
	var err error
	query.NerTags, query.PosTags, err = extractor.Tagger.Tag(
		query.QuestionWords)
	if err != nil {
		return fmt.Errorf("tagging question: %w", err)
	}
	for _, answerIdx := range query.AnswerIndices {
		ner, pos, tagErr := extractor.Tagger.Tag(doc.Candidates[answerIdx])
		if tagErr != nil {
			return fmt.Errorf("tagging answer: %w", tagErr)
		}
		doc.NerCandidates = append(doc.NerCandidates, ner)
		doc.PosCandidates = append(doc.PosCandidates, pos)
	}
	return nil
}
