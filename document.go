package project747

import (
	"errors"
	"fmt"

	"github.com/Michiel29/project747/types"
)

var ErrCandidateCount = errors.New("document must have two candidates per query")
var ErrAnswerIndex = errors.New("answer index outside the candidate list")

// Query is one question about a document. AnswerIndices address the two
// candidate slots of the owning document that answer it; the first one is
// the designated correct candidate.
type Query struct {
	QuestionWords []string
	NerTags       []string
	PosTags       []string

	QuestionTokens types.Tokens
	NerTokens      types.Tokens
	PosTokens      types.Tokens

	AnswerIndices [2]int
}

func (query *Query) Gold() int {
	return query.AnswerIndices[0]
}

// Document
// A book or script body (or a summary, which has no queries) with its
// questions, candidate answers and the entity dictionaries built when it was
// anonymized. Words hold the text form; the Tokens fields are filled by the
// indexing pass.
type Document struct {
	Id    string
	Split types.Split
	Kind  types.Kind

	Words  []string
	Tokens types.Tokens

	Queries []*Query

	Entities *Dictionary
	Others   *Dictionary

	Candidates    [][]string
	NerCandidates [][]string
	PosCandidates [][]string

	CandidateTokens    []types.Tokens
	NerCandidateTokens []types.Tokens
	PosCandidateTokens []types.Tokens
}

// CandidatePair is the two candidate answers of one query.
type CandidatePair [2][]string

// Validate checks the two-candidates-per-query layout.
func (doc *Document) Validate() error {
	if len(doc.Candidates) != 2*len(doc.Queries) {
		return fmt.Errorf("document %s has %d candidates for %d queries: %w",
			doc.Id, len(doc.Candidates), len(doc.Queries), ErrCandidateCount)
	}
	for queryIdx, query := range doc.Queries {
		for _, answerIdx := range query.AnswerIndices {
			if answerIdx < 0 || answerIdx >= len(doc.Candidates) {
				return fmt.Errorf("document %s query %d index %d: %w",
					doc.Id, queryIdx, answerIdx, ErrAnswerIndex)
			}
		}
	}
	return nil
}

// Pairs returns each query's two candidates, one pair per query.
func (doc *Document) Pairs() ([]CandidatePair, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	pairs := make([]CandidatePair, len(doc.Queries))
	for queryIdx, query := range doc.Queries {
		pairs[queryIdx] = CandidatePair{
			doc.Candidates[query.AnswerIndices[0]],
			doc.Candidates[query.AnswerIndices[1]],
		}
	}
	return pairs, nil
}

// addQuery appends a query and its two candidates, returning the query.
func (doc *Document) addQuery(record QAPairRecord) *Query {
	first := len(doc.Candidates)
	doc.Candidates = append(doc.Candidates,
		append([]string(nil), record.Answer1...),
		append([]string(nil), record.Answer2...))
	query := &Query{
		QuestionWords: append([]string(nil), record.Question...),
		AnswerIndices: [2]int{first, first + 1},
	}
	doc.Queries = append(doc.Queries, query)
	return query
}

// Corpus holds extracted documents and summaries by split.
type Corpus struct {
	Documents map[types.Split][]*Document
	Summaries map[types.Split][]*Document
	// Small marks a corpus capped to a sample; it is saved under the small_
	// file names.
	Small bool
}

func NewCorpus() *Corpus {
	return &Corpus{
		Documents: make(map[types.Split][]*Document),
		Summaries: make(map[types.Split][]*Document),
	}
}

func (corpus *Corpus) NumDocuments() int {
	total := 0
	for _, docs := range corpus.Documents {
		total += len(docs)
	}
	return total
}
