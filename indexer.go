package project747

import (
	"errors"
	"fmt"

	"github.com/Michiel29/project747/types"
)

// Tags used for words a tagger produced nothing for.
const (
	NoEntityTag = "O"
	NoPosTag    = "X"
)

var ErrNotIndexed = errors.New("document has not been indexed")

// Indexer
// Converts anonymized documents into vocabulary ids. Words, NER tags and
// POS tags each get their own vocabulary. An Indexer has a single writer.
type Indexer struct {
	Words *Vocabulary
	Ner   *Vocabulary
	Pos   *Vocabulary
}

func NewIndexer() *Indexer {
	return &Indexer{
		Words: NewVocabulary(),
		Ner:   NewVocabulary(),
		Pos:   NewVocabulary(),
	}
}

// IndexDocument
// Applies the document's dictionaries to its tokens (and to the summary
// when one is given) and records their ids, then re-substitutes entities
// into every question and candidate answer, keeping their tags aligned, and
// records their ids. Indexing an already indexed document changes nothing.
func (indexer *Indexer) IndexDocument(doc *Document, summary *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	ReplaceEntities(doc.Words, doc.Entities, doc.Others)
	doc.Tokens = indexer.Words.AddAndGetIndices(doc.Words)
	if summary != nil {
		if summary.Id != doc.Id {
			return fmt.Errorf("summary %s does not belong to document %s",
				summary.Id, doc.Id)
		}
		ReplaceEntities(summary.Words, doc.Entities, doc.Others)
		summary.Tokens = indexer.Words.AddAndGetIndices(summary.Words)
	}

	numCandidates := len(doc.Candidates)
	doc.NerCandidates = resizeTagLists(doc.NerCandidates, doc.Candidates,
		NoEntityTag)
	doc.PosCandidates = resizeTagLists(doc.PosCandidates, doc.Candidates,
		NoPosTag)
	doc.CandidateTokens = make([]types.Tokens, numCandidates)
	doc.NerCandidateTokens = make([]types.Tokens, numCandidates)
	doc.PosCandidateTokens = make([]types.Tokens, numCandidates)

	for _, query := range doc.Queries {
		words, kept := ReplaceEntitiesUsingNgrams(query.QuestionWords,
			doc.Entities, doc.Others)
		query.NerTags = ProjectTags(
			fillTags(query.NerTags, len(query.QuestionWords), NoEntityTag), kept)
		query.PosTags = ProjectTags(
			fillTags(query.PosTags, len(query.QuestionWords), NoPosTag), kept)
		query.QuestionWords = words
		query.QuestionTokens = indexer.Words.AddAndGetIndices(words)
		query.NerTokens = indexer.Ner.AddAndGetIndices(query.NerTags)
		query.PosTokens = indexer.Pos.AddAndGetIndices(query.PosTags)
	}
	for candIdx, candidate := range doc.Candidates {
		words, kept := ReplaceEntitiesUsingNgrams(candidate, doc.Entities,
			doc.Others)
		doc.Candidates[candIdx] = words
		doc.NerCandidates[candIdx] = ProjectTags(doc.NerCandidates[candIdx],
			kept)
		doc.PosCandidates[candIdx] = ProjectTags(doc.PosCandidates[candIdx],
			kept)
		doc.CandidateTokens[candIdx] = indexer.Words.AddAndGetIndices(words)
		doc.NerCandidateTokens[candIdx] = indexer.Ner.AddAndGetIndices(
			doc.NerCandidates[candIdx])
		doc.PosCandidateTokens[candIdx] = indexer.Pos.AddAndGetIndices(
			doc.PosCandidates[candIdx])
	}
	return nil
}

// IndexCorpus indexes every document of corpus in train, valid, test order,
// pairing each with the summary of the same id when one exists.
func (indexer *Indexer) IndexCorpus(corpus *Corpus) error {
	for _, split := range allSplits {
		docs := corpus.Documents[split]
		summaries := make(map[string]*Document, len(corpus.Summaries[split]))
		for _, summary := range corpus.Summaries[split] {
			summaries[summary.Id] = summary
		}
		for _, doc := range docs {
			if err := indexer.IndexDocument(doc, summaries[doc.Id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// DataPoint
// One query ready for batching. The candidate slices are the owning
// document's; they are shared, never copied, and must not be mutated.
type DataPoint struct {
	DocumentId string

	Question    types.Tokens
	QuestionNer types.Tokens
	QuestionPos types.Tokens

	// AnswerIndex is the gold candidate, AnswerIndices the raw pair it came
	// from.
	AnswerIndex   int
	AnswerIndices [2]int

	Candidates   []types.Tokens
	CandidateNer []types.Tokens
	CandidatePos []types.Tokens

	// Metrics holds 1 - unigram overlap with the gold answer, one per
	// candidate.
	Metrics []float64
}

// DataPoints
// Returns one DataPoint per query of an indexed document.
func DataPoints(doc *Document) ([]*DataPoint, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if len(doc.CandidateTokens) != len(doc.Candidates) ||
		len(doc.NerCandidateTokens) != len(doc.Candidates) ||
		len(doc.PosCandidateTokens) != len(doc.Candidates) {
		return nil, fmt.Errorf("document %s: %w", doc.Id, ErrNotIndexed)
	}
	points := make([]*DataPoint, 0, len(doc.Queries))
	for _, query := range doc.Queries {
		gold := doc.CandidateTokens[query.Gold()]
		metrics := make([]float64, len(doc.CandidateTokens))
		for candIdx, candidate := range doc.CandidateTokens {
			metrics[candIdx] = 1 - UnigramOverlap(candidate, gold)
		}
		points = append(points, &DataPoint{
			DocumentId:    doc.Id,
			Question:      query.QuestionTokens,
			QuestionNer:   query.NerTokens,
			QuestionPos:   query.PosTokens,
			AnswerIndex:   query.Gold(),
			AnswerIndices: query.AnswerIndices,
			Candidates:    doc.CandidateTokens,
			CandidateNer:  doc.NerCandidateTokens,
			CandidatePos:  doc.PosCandidateTokens,
			Metrics:       metrics,
		})
	}
	return points, nil
}

// CorpusDataPoints collects the data points of every document, in order.
func CorpusDataPoints(docs []*Document) ([]*DataPoint, error) {
	points := make([]*DataPoint, 0, len(docs))
	for _, doc := range docs {
		docPoints, err := DataPoints(doc)
		if err != nil {
			return nil, err
		}
		points = append(points, docPoints...)
	}
	return points, nil
}

// fillTags returns tags when it has one tag per word, otherwise a copy
// resized to n with missing tags set to fallback.
func fillTags(tags []string, n int, fallback string) []string {
	if len(tags) == n {
		return tags
	}
	filled := make([]string, n)
	for idx := range filled {
		if idx < len(tags) && tags[idx] != "" {
			filled[idx] = tags[idx]
		} else {
			filled[idx] = fallback
		}
	}
	return filled
}

func resizeTagLists(tagLists [][]string, candidates [][]string,
	fallback string) [][]string {
	resized := make([][]string, len(candidates))
	for candIdx, candidate := range candidates {
		var tags []string
		if candIdx < len(tagLists) {
			tags = tagLists[candIdx]
		}
		resized[candIdx] = fillTags(tags, len(candidate), fallback)
	}
	return resized
}
