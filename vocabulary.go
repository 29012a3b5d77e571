package project747

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/Michiel29/project747/types"
)

const (
	PadWord   = "<pad>"
	UnkWord   = "<unk>"
	StartWord = "<s>"
	EndWord   = "</s>"
)

const (
	PadToken types.Token = iota
	UnkToken
	StartToken
	EndToken
)

// ReservedTokens is the number of sentinel ids every vocabulary starts with.
const ReservedTokens = 4

// Vocabulary
// A bidirectional mapping between words and dense ids, assigned in first-seen
// order. It only ever grows. A Vocabulary has a single writer while the
// corpus is indexed and may be shared read-only afterwards.
type Vocabulary struct {
	Encoder types.TokenMap
	Decoder []string
}

// NewVocabulary
// Returns a Vocabulary holding only the pad, unknown, start and end
// sentinels.
func NewVocabulary() *Vocabulary {
	vocab := &Vocabulary{
		Encoder: make(types.TokenMap),
		Decoder: make([]string, 0, 1024),
	}
	for _, word := range []string{PadWord, UnkWord, StartWord, EndWord} {
		vocab.AddAndGetIndex(word)
	}
	return vocab
}

// AddAndGetIndex
// Returns the id of word, assigning the next id when it is new.
func (vocab *Vocabulary) AddAndGetIndex(word string) types.Token {
	if token, ok := vocab.Encoder[word]; ok {
		return token
	}
	token := types.Token(len(vocab.Decoder))
	vocab.Encoder[word] = token
	vocab.Decoder = append(vocab.Decoder, word)
	return token
}

func (vocab *Vocabulary) AddAndGetIndices(words []string) types.Tokens {
	tokens := make(types.Tokens, len(words))
	for idx, word := range words {
		tokens[idx] = vocab.AddAndGetIndex(word)
	}
	return tokens
}

// GetIndex
// Read-only lookup, unknown words map to UnkToken.
func (vocab *Vocabulary) GetIndex(word string) types.Token {
	if token, ok := vocab.Encoder[word]; ok {
		return token
	}
	return UnkToken
}

func (vocab *Vocabulary) GetIndices(words []string) types.Tokens {
	tokens := make(types.Tokens, len(words))
	for idx, word := range words {
		tokens[idx] = vocab.GetIndex(word)
	}
	return tokens
}

// GetWord
// Inverse lookup. Ids outside the vocabulary decode to the empty string.
func (vocab *Vocabulary) GetWord(token types.Token) string {
	if int(token) >= len(vocab.Decoder) {
		return ""
	}
	return vocab.Decoder[token]
}

func (vocab *Vocabulary) GetWords(tokens types.Tokens) []string {
	words := make([]string, len(tokens))
	for idx, token := range tokens {
		words[idx] = vocab.GetWord(token)
	}
	return words
}

func (vocab *Vocabulary) Len() int {
	return len(vocab.Decoder)
}

// MarshalBinary serializes the id-ordered word list.
func (vocab *Vocabulary) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vocab.Decoder); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary
// Rebuilds both mappings from a serialized word list. Duplicate words mean
// the input was not produced by MarshalBinary.
func (vocab *Vocabulary) UnmarshalBinary(data []byte) error {
	var decoder []string
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&decoder); err != nil {
		return err
	}
	encoder := make(types.TokenMap, len(decoder))
	for idx, word := range decoder {
		if _, dup := encoder[word]; dup {
			return fmt.Errorf("vocabulary word %q appears twice", word)
		}
		encoder[word] = types.Token(idx)
	}
	vocab.Encoder = encoder
	vocab.Decoder = decoder
	return nil
}

func SaveVocabulary(path string, vocab *Vocabulary) error {
	data, err := vocab.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vocab := &Vocabulary{}
	if err := vocab.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("loading vocabulary %s: %w", path, err)
	}
	return vocab, nil
}
