package project747

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Michiel29/project747/types"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const documentColumns = 10

var ErrMetadataColumns = errors.New("document metadata row must have 10 columns")
var ErrShortRow = errors.New("table row is missing columns")

// SummaryRecord is one row of the summaries table.
type SummaryRecord struct {
	DocumentId string
	Words      []string
}

// QAPairRecord is one row of the question/answer table. The tokenized
// question and answer columns are used.
type QAPairRecord struct {
	DocumentId string
	Question   []string
	Answer1    []string
	Answer2    []string
}

// DocumentRecord is one row of the document metadata table.
type DocumentRecord struct {
	DocumentId string
	Split      types.Split
	Kind       types.Kind
	StartTag   string
	EndTag     string
}

func newTableReader(handle io.Reader) *csv.Reader {
	reader := csv.NewReader(
		transform.NewReader(handle, unicode.UTF8.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false
	return reader
}

// eachRow calls fn with the 0-based row number of every table row.
func eachRow(handle io.Reader, fn func(rowIdx int, row []string) error) error {
	reader := newTableReader(handle)
	for rowIdx := 0; ; rowIdx++ {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err := fn(rowIdx, row); err != nil {
			return err
		}
	}
}

// ReadSummaries
// Columns: document_id, set, summary, summary_tokenized. A leading header
// row is recognized by its document_id column name.
func ReadSummaries(handle io.Reader) ([]SummaryRecord, error) {
	records := make([]SummaryRecord, 0)
	err := eachRow(handle, func(rowIdx int, row []string) error {
		if rowIdx == 0 && len(row) > 0 && row[0] == "document_id" {
			return nil
		}
		if len(row) < 4 {
			return fmt.Errorf("summaries row %d: %w", rowIdx, ErrShortRow)
		}
		records = append(records, SummaryRecord{
			DocumentId: row[0],
			Words:      strings.Fields(row[3]),
		})
		return nil
	})
	return records, err
}

// ReadQAPairs
// Columns: document_id, set, question, answer1, answer2,
// question_tokenized, answer1_tokenized, answer2_tokenized. The first row
// is a header.
func ReadQAPairs(handle io.Reader) ([]QAPairRecord, error) {
	records := make([]QAPairRecord, 0)
	err := eachRow(handle, func(rowIdx int, row []string) error {
		if rowIdx == 0 {
			return nil
		}
		if len(row) < 8 {
			return fmt.Errorf("qaps row %d: %w", rowIdx, ErrShortRow)
		}
		records = append(records, QAPairRecord{
			DocumentId: row[0],
			Question:   strings.Fields(row[5]),
			Answer1:    strings.Fields(row[6]),
			Answer2:    strings.Fields(row[7]),
		})
		return nil
	})
	return records, err
}

// ReadDocumentRecords
// Every row, header included, must have exactly 10 columns; id, split and
// kind are columns 0-2 and the body boundary tags columns 8 and 9.
func ReadDocumentRecords(handle io.Reader) ([]DocumentRecord, error) {
	records := make([]DocumentRecord, 0)
	err := eachRow(handle, func(rowIdx int, row []string) error {
		if len(row) != documentColumns {
			return fmt.Errorf("documents row %d has %d columns: %w",
				rowIdx, len(row), ErrMetadataColumns)
		}
		if rowIdx == 0 {
			return nil
		}
		split, err := types.ParseSplit(row[1])
		if err != nil {
			return fmt.Errorf("documents row %d: %w", rowIdx, err)
		}
		kind, err := types.ParseKind(row[2])
		if err != nil {
			return fmt.Errorf("documents row %d: %w", rowIdx, err)
		}
		records = append(records, DocumentRecord{
			DocumentId: row[0],
			Split:      split,
			Kind:       kind,
			StartTag:   row[8],
			EndTag:     row[9],
		})
		return nil
	})
	return records, err
}

func readTableFile[T any](path string,
	read func(io.Reader) ([]T, error)) ([]T, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer handle.Close()
	records, err := read(handle)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func ReadSummariesFile(path string) ([]SummaryRecord, error) {
	return readTableFile(path, ReadSummaries)
}

func ReadQAPairsFile(path string) ([]QAPairRecord, error) {
	return readTableFile(path, ReadQAPairs)
}

func ReadDocumentRecordsFile(path string) ([]DocumentRecord, error) {
	return readTableFile(path, ReadDocumentRecords)
}
