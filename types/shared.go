package types

import (
	"fmt"
	"strings"
)

type Token uint32
type Tokens []Token
type TokenMap map[string]Token

// Split is the dataset partition a document belongs to.
type Split string

const (
	SplitTrain Split = "train"
	SplitValid Split = "valid"
	SplitTest  Split = "test"
)

// Kind is the source a document was collected from.
type Kind string

const (
	KindGutenberg Kind = "gutenberg"
	KindMovie     Kind = "movie"
)

// ParseSplit
// Validates a split column value from the document metadata table.
func ParseSplit(s string) (Split, error) {
	switch Split(strings.TrimSpace(s)) {
	case SplitTrain:
		return SplitTrain, nil
	case SplitValid:
		return SplitValid, nil
	case SplitTest:
		return SplitTest, nil
	}
	return "", fmt.Errorf("unknown split %q", s)
}

// ParseKind
// Validates a kind column value from the document metadata table.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.TrimSpace(s)) {
	case KindGutenberg:
		return KindGutenberg, nil
	case KindMovie:
		return KindMovie, nil
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}
