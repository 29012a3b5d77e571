package project747

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"time"

	"github.com/Michiel29/project747/types"
	"golang.org/x/sync/errgroup"
)

var ErrBatchSize = errors.New("batch size must be positive")

// CandidateMatrix
// The candidate answers of one example, padded to the example's own longest
// candidate. Sort orders the rows longest first; Unsort restores the
// original order from the sorted one.
type CandidateMatrix struct {
	Answers [][]int
	Lengths []int
	Ner     [][]int
	Pos     [][]int
	Width   int
	Sort    []int
	Unsort  []int
}

// Sorted returns the answer rows and lengths in Sort order.
func (matrix *CandidateMatrix) Sorted() ([][]int, []int) {
	return Permute(matrix.Answers, matrix.Sort),
		Permute(matrix.Lengths, matrix.Sort)
}

// Batch
// Padded model input for one contiguous slice of data points. Queries are
// padded to the longest query of the batch, candidates per example.
type Batch struct {
	Queries      [][]int
	QueryLengths []int
	QueryNer     [][]int
	QueryPos     [][]int

	Candidates    []CandidateMatrix
	AnswerIndices []int
	Metrics       [][]float64
	DocumentIds   []string
}

func (batch *Batch) Len() int {
	return len(batch.Queries)
}

// BuildBatch
// Pads one slice of data points. An empty slice gives an empty batch.
func BuildBatch(points []*DataPoint) *Batch {
	batch := &Batch{
		Queries:       make([][]int, 0, len(points)),
		QueryLengths:  make([]int, 0, len(points)),
		QueryNer:      make([][]int, 0, len(points)),
		QueryPos:      make([][]int, 0, len(points)),
		Candidates:    make([]CandidateMatrix, 0, len(points)),
		AnswerIndices: make([]int, 0, len(points)),
		Metrics:       make([][]float64, 0, len(points)),
		DocumentIds:   make([]string, 0, len(points)),
	}
	queryWidth := 0
	for _, point := range points {
		if len(point.Question) > queryWidth {
			queryWidth = len(point.Question)
		}
	}
	for _, point := range points {
		batch.Queries = append(batch.Queries, PadSequences(
			[]types.Tokens{point.Question}, queryWidth, PadToken)[0])
		batch.QueryLengths = append(batch.QueryLengths, len(point.Question))
		batch.QueryNer = append(batch.QueryNer, PadSequences(
			[]types.Tokens{point.QuestionNer}, queryWidth, PadToken)[0])
		batch.QueryPos = append(batch.QueryPos, PadSequences(
			[]types.Tokens{point.QuestionPos}, queryWidth, PadToken)[0])
		batch.Candidates = append(batch.Candidates, buildCandidateMatrix(point))
		batch.AnswerIndices = append(batch.AnswerIndices, point.AnswerIndex)
		batch.Metrics = append(batch.Metrics, point.Metrics)
		batch.DocumentIds = append(batch.DocumentIds, point.DocumentId)
	}
	return batch
}

func buildCandidateMatrix(point *DataPoint) CandidateMatrix {
	width := MaxLen(point.Candidates)
	lengths := make([]int, len(point.Candidates))
	for candIdx, candidate := range point.Candidates {
		lengths[candIdx] = len(candidate)
	}
	order, unsort := SortByLengthDesc(lengths)
	return CandidateMatrix{
		Answers: PadSequences(point.Candidates, width, PadToken),
		Lengths: lengths,
		Ner:     PadSequences(point.CandidateNer, width, PadToken),
		Pos:     PadSequences(point.CandidatePos, width, PadToken),
		Width:   width,
		Sort:    order,
		Unsort:  unsort,
	}
}

// BatchBuilder
// Cuts data points into batches of BatchSize, building the batches on a pool
// of Workers goroutines. Workers only read the data points.
type BatchBuilder struct {
	BatchSize int
	Workers   int
	Shuffle   bool
	Rand      *rand.Rand
}

func NewBatchBuilder(batchSize int, workers int) *BatchBuilder {
	return &BatchBuilder{
		BatchSize: batchSize,
		Workers:   workers,
		Shuffle:   true,
		Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build
// Shuffles a copy of points (when Shuffle is set), cuts it into
// ceil(len/BatchSize) contiguous slices and builds one batch per slice in
// parallel. Batches are returned in slice order; the last one holds the
// remainder. Empty batches are never returned.
func (builder *BatchBuilder) Build(ctx context.Context,
	points []*DataPoint) ([]*Batch, error) {
	if builder.BatchSize <= 0 {
		return nil, fmt.Errorf("%d: %w", builder.BatchSize, ErrBatchSize)
	}
	ordered := append([]*DataPoint(nil), points...)
	if builder.Shuffle {
		if builder.Rand == nil {
			builder.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		builder.Rand.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	numSlices := (len(ordered) + builder.BatchSize - 1) / builder.BatchSize
	results := make([]*Batch, numSlices)
	workers := builder.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for sliceIdx := 0; sliceIdx < numSlices; sliceIdx++ {
		begin := sliceIdx * builder.BatchSize
		end := begin + builder.BatchSize
		if end > len(ordered) {
			end = len(ordered)
		}
		slot := sliceIdx
		slice := ordered[begin:end]
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[slot] = BuildBatch(slice)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	batches := make([]*Batch, 0, numSlices)
	for _, batch := range results {
		if batch != nil && batch.Len() > 0 {
			batches = append(batches, batch)
		}
	}
	return batches, nil
}

// View
// Decodes one example of the batch back into words: the question, then each
// candidate with its metric, the gold one starred.
func (batch *Batch) View(vocab *Vocabulary, example int) string {
	if example < 0 || example >= batch.Len() {
		return ""
	}
	var view strings.Builder
	view.WriteString(fmt.Sprintf("document: %s\n", batch.DocumentIds[example]))
	question := batch.Queries[example][:batch.QueryLengths[example]]
	view.WriteString("question: " + strings.Join(vocab.GetWords(
		intsToTokens(question)), " ") + "\n")
	matrix := batch.Candidates[example]
	metrics := batch.Metrics[example]
	for candIdx, answer := range matrix.Answers {
		marker := " "
		if candIdx == batch.AnswerIndices[example] {
			marker = "*"
		}
		metric := 0.0
		if candIdx < len(metrics) {
			metric = metrics[candIdx]
		}
		view.WriteString(fmt.Sprintf("%s %3d %.3f %s\n", marker, candIdx,
			metric, strings.Join(vocab.GetWords(
				intsToTokens(answer[:matrix.Lengths[candIdx]])), " ")))
	}
	return view.String()
}

func intsToTokens(ids []int) types.Tokens {
	tokens := make(types.Tokens, len(ids))
	for idx, id := range ids {
		tokens[idx] = types.Token(id)
	}
	return tokens
}
