package project747

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentAddQuery(t *testing.T) {
	doc := &Document{Id: "d1"}
	first := doc.addQuery(QAPairRecord{
		DocumentId: "d1",
		Question:   []string{"who", "?"},
		Answer1:    []string{"john"},
		Answer2:    []string{"the", "man"},
	})
	second := doc.addQuery(QAPairRecord{
		DocumentId: "d1",
		Question:   []string{"where", "?"},
		Answer1:    []string{"paris"},
		Answer2:    []string{"in", "paris"},
	})
	assert.Equal(t, [2]int{0, 1}, first.AnswerIndices)
	assert.Equal(t, [2]int{2, 3}, second.AnswerIndices)
	assert.Equal(t, 2, second.Gold())
	require.NoError(t, doc.Validate())

	pairs, err := doc.Pairs()
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, CandidatePair{{"paris"}, {"in", "paris"}}, pairs[1])
}

func TestDocumentValidate(t *testing.T) {
	doc := &Document{
		Id:         "d1",
		Queries:    []*Query{{AnswerIndices: [2]int{0, 1}}},
		Candidates: [][]string{{"a"}},
	}
	assert.ErrorIs(t, doc.Validate(), ErrCandidateCount)
	_, err := doc.Pairs()
	assert.ErrorIs(t, err, ErrCandidateCount)

	doc.Candidates = append(doc.Candidates, []string{"b"})
	doc.Queries[0].AnswerIndices = [2]int{0, 2}
	assert.ErrorIs(t, doc.Validate(), ErrAnswerIndex)
}

func TestCorpusNumDocuments(t *testing.T) {
	corpus := NewCorpus()
	assert.Equal(t, 0, corpus.NumDocuments())
	corpus.Documents["train"] = []*Document{{Id: "a"}, {Id: "b"}}
	corpus.Documents["test"] = []*Document{{Id: "c"}}
	assert.Equal(t, 3, corpus.NumDocuments())
}
