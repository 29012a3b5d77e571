package project747

import (
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jdkato/prose/v2"
)

const TOKENIZER_LRU_SZ = 65536

// Only short strings (questions, answers, tags) are worth caching.
const maxCachedText = 512

// ProseRecognizer finds named entities with prose's averaged perceptron
// model.
type ProseRecognizer struct{}

// Recognize
// prose reports entities without offsets, so each one is located by
// searching forward from the end of the previous one. Entities that cannot
// be located are dropped.
func (ProseRecognizer) Recognize(text string) ([]EntitySpan, error) {
	doc, err := prose.NewDocument(
		text,
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, err
	}
	entities := doc.Entities()
	spans := make([]EntitySpan, 0, len(entities))
	byteCursor, runeCursor := 0, 0
	for _, entity := range entities {
		if entity.Text == "" {
			continue
		}
		found := strings.Index(text[byteCursor:], entity.Text)
		if found < 0 {
			continue
		}
		start := runeCursor + utf8.RuneCountInString(
			text[byteCursor:byteCursor+found])
		end := start + utf8.RuneCountInString(entity.Text)
		spans = append(spans, EntitySpan{
			Start: start,
			End:   end,
			Label: entity.Label,
			Text:  entity.Text,
		})
		byteCursor += found + len(entity.Text)
		runeCursor = end
	}
	return spans, nil
}

// ProseTokenizer
// Word tokenizer backed by prose, with an ARC cache in front of it for the
// short strings that repeat across a corpus.
type ProseTokenizer struct {
	Cache     *lru.ARCCache
	LruHits   int
	LruMisses int
}

func NewProseTokenizer(cacheSize int) (*ProseTokenizer, error) {
	if cacheSize <= 0 {
		cacheSize = TOKENIZER_LRU_SZ
	}
	cache, err := lru.NewARC(cacheSize)
	if err != nil {
		return nil, err
	}
	return &ProseTokenizer{Cache: cache}, nil
}

func (tokenizer *ProseTokenizer) Tokenize(text string) ([]string, error) {
	cacheable := len(text) <= maxCachedText
	if cacheable {
		if cached, ok := tokenizer.Cache.Get(text); ok {
			tokenizer.LruHits++
			return append([]string(nil), cached.([]string)...), nil
		}
		tokenizer.LruMisses++
	}
	doc, err := prose.NewDocument(
		text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}
	proseTokens := doc.Tokens()
	words := make([]string, 0, len(proseTokens))
	for _, token := range proseTokens {
		words = append(words, token.Text)
	}
	if cacheable {
		tokenizer.Cache.Add(text, append([]string(nil), words...))
	}
	return words, nil
}

// ProseTagger tags already tokenized words with prose's part-of-speech tags
// and IOB entity labels.
type ProseTagger struct{}

func (ProseTagger) Tag(words []string) (ner []string, pos []string,
	err error) {
	if len(words) == 0 {
		return []string{}, []string{}, nil
	}
	doc, err := prose.NewDocument(
		strings.Join(words, " "),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, nil, err
	}
	proseTokens := doc.Tokens()
	texts := make([]string, len(proseTokens))
	labels := make([]string, len(proseTokens))
	tags := make([]string, len(proseTokens))
	for idx, token := range proseTokens {
		texts[idx] = token.Text
		labels[idx] = token.Label
		tags[idx] = token.Tag
	}
	return alignTags(words, texts, labels, NoEntityTag),
		alignTags(words, texts, tags, NoPosTag), nil
}

// alignTags
// prose may split a word further than the caller did. Each caller word
// takes the tag of the first provider token that covers it; words past the
// provider's output get fallback.
func alignTags(words []string, texts []string, tags []string,
	fallback string) []string {
	aligned := make([]string, len(words))
	cursor := 0
	for idx, word := range words {
		if cursor >= len(texts) {
			aligned[idx] = fallback
			continue
		}
		aligned[idx] = tags[cursor]
		if aligned[idx] == "" {
			aligned[idx] = fallback
		}
		covered := 0
		for cursor < len(texts) && covered < len(word) {
			covered += len(texts[cursor])
			cursor++
		}
	}
	return aligned
}
