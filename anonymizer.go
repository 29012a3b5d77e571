package project747

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxNgram is the longest token span considered when re-substituting
// entities into questions and answers.
const MaxNgram = 6

const (
	DefaultMaxChars = 1000000
	DefaultParts    = 4
)

var DefaultAnonymizeLabels = []string{"GPE", "PERSON", "ORG", "LOC"}

// EntitySpan is one recognized entity. Start and End are rune offsets into
// the text handed to the recognizer, End exclusive.
type EntitySpan struct {
	Start int
	End   int
	Label string
	Text  string
}

// EntityRecognizer returns the entities of text in document order.
type EntityRecognizer interface {
	Recognize(text string) ([]EntitySpan, error)
}

// Anonymizer
// Replaces named entities in document text with per-document placeholders
// and records the substitutions so they can be re-applied to the questions
// and answers about that document.
type Anonymizer struct {
	Recognizer      EntityRecognizer
	AnonymizeLabels map[string]bool
	// Texts longer than MaxChars runes are recognized in Parts contiguous
	// pieces that share the same dictionaries.
	MaxChars int
	Parts    int
}

func NewAnonymizer(recognizer EntityRecognizer) *Anonymizer {
	anonymizer := &Anonymizer{
		Recognizer: recognizer,
		MaxChars:   DefaultMaxChars,
		Parts:      DefaultParts,
	}
	anonymizer.SetLabels(DefaultAnonymizeLabels)
	return anonymizer
}

func (anonymizer *Anonymizer) SetLabels(labels []string) {
	anonymizer.AnonymizeLabels = make(map[string]bool, len(labels))
	for _, label := range labels {
		anonymizer.AnonymizeLabels[label] = true
	}
}

// Anonymize
// Runs the recognizer over text and rebuilds it left to right. Entities with
// an anonymized label become `@ent<k>~ner:<LABEL>`, where k is the size of
// the entity dictionary when the surface form was first seen; an entity
// whose lowercased form is itself a whitespace token of text is left alone.
// Every other entity is spliced back as `<surface>~ner:<LABEL>`. The output
// is the whitespace tokenization of the rebuilt text.
func (anonymizer *Anonymizer) Anonymize(text string, entities,
	others *Dictionary) ([]string, error) {
	spans, err := anonymizer.Recognizer.Recognize(text)
	if err != nil {
		return nil, err
	}
	runes := []rune(text)
	fields := strings.Fields(text)
	words := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		words[field] = struct{}{}
	}

	var rebuilt strings.Builder
	rebuilt.Grow(len(text) + len(spans)*16)
	cursor := 0
	for _, span := range spans {
		key := strings.ToLower(span.Text)
		var replacement string
		if anonymizer.AnonymizeLabels[span.Label] {
			if _, isWord := words[key]; isWord {
				continue
			}
			replacement = entities.insert(key,
				fmt.Sprintf("@ent%d~ner:%s", entities.Len(), span.Label))
		} else {
			replacement = span.Text + "~ner:" + span.Label
			others.insert(key, replacement)
		}
		rebuilt.WriteString(runeSlice(runes, cursor, span.Start))
		rebuilt.WriteString(replacement)
		rebuilt.WriteByte(' ')
		// The character right after an entity is consumed with it.
		cursor = span.End + 1
	}
	rebuilt.WriteString(runeSlice(runes, cursor, len(runes)))
	return strings.Fields(rebuilt.String()), nil
}

// AnonymizeDocument
// Anonymizes a tokenized document body, returning the new token stream and
// the document's fresh entity and other dictionaries. All-uppercase tokens
// are lowercased first so shouted script text does not read as entities.
func (anonymizer *Anonymizer) AnonymizeDocument(words []string) (
	[]string, *Dictionary, *Dictionary, error) {
	entities := NewDictionary()
	others := NewDictionary()

	titled := make([]string, len(words))
	for idx, word := range words {
		if isUpperWord(word) {
			titled[idx] = strings.ToLower(word)
		} else {
			titled[idx] = word
		}
	}
	text := strings.Join(titled, " ")
	runes := []rune(text)
	if anonymizer.Parts < 2 || len(runes) <= anonymizer.MaxChars {
		tokens, err := anonymizer.Anonymize(text, entities, others)
		return tokens, entities, others, err
	}

	partSize := len(runes) / anonymizer.Parts
	tokens := make([]string, 0, len(words))
	for part := 0; part < anonymizer.Parts; part++ {
		begin := part * partSize
		end := begin + partSize
		if part == anonymizer.Parts-1 {
			end = len(runes)
		}
		partTokens, err := anonymizer.Anonymize(string(runes[begin:end]),
			entities, others)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("part %d: %w", part, err)
		}
		tokens = append(tokens, partTokens...)
	}
	return tokens, entities, others, nil
}

// ReplaceEntities
// Replaces, in place, every token whose lowercased form is a dictionary key.
// The entity dictionary wins over the other dictionary.
func ReplaceEntities(words []string, entities, others *Dictionary) {
	for idx, word := range words {
		key := strings.ToLower(word)
		if replacement, ok := entities.Lookup(key); ok {
			words[idx] = replacement
		} else if replacement, ok := others.Lookup(key); ok {
			words[idx] = replacement
		}
	}
}

// ReplaceEntitiesUsingNgrams
// Re-applies a document's dictionaries to a question or answer. N-grams are
// visited from length MaxNgram down to 1, and by start position within a
// length. A match is taken only when its start position has not been
// claimed by an earlier match; it claims that start and removes the rest of
// its span. Removal is not checked against earlier claims, so overlapping
// matches can drop tokens entirely. kept holds the input index of every
// output token.
func ReplaceEntitiesUsingNgrams(words []string, entities,
	others *Dictionary) (replaced []string, kept []int) {
	numWords := len(words)
	labels := make([]string, numWords)
	marked := make([]bool, numWords)
	removed := make([]bool, numWords)

	for size := MaxNgram; size >= 1; size-- {
		for start := 0; start+size <= numWords; start++ {
			if marked[start] {
				continue
			}
			key := strings.ToLower(strings.Join(words[start:start+size], " "))
			replacement, ok := entities.Lookup(key)
			if !ok {
				replacement, ok = others.Lookup(key)
			}
			if !ok {
				continue
			}
			labels[start] = replacement
			marked[start] = true
			for idx := start + 1; idx < start+size; idx++ {
				removed[idx] = true
			}
		}
	}

	replaced = make([]string, 0, numWords)
	kept = make([]int, 0, numWords)
	for idx := range words {
		if removed[idx] {
			continue
		}
		kept = append(kept, idx)
		if marked[idx] {
			replaced = append(replaced, labels[idx])
		} else {
			replaced = append(replaced, words[idx])
		}
	}
	return replaced, kept
}

// ProjectTags keeps the tags at the kept indices of a re-substituted
// sequence, so side channels stay aligned with their tokens.
func ProjectTags(tags []string, kept []int) []string {
	projected := make([]string, len(kept))
	for idx, from := range kept {
		if from < len(tags) {
			projected[idx] = tags[from]
		}
	}
	return projected
}

// isUpperWord reports whether word has cased runes and all of them are
// uppercase.
func isUpperWord(word string) bool {
	cased := false
	for _, r := range word {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func runeSlice(runes []rune, begin, end int) string {
	if begin < 0 {
		begin = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if begin >= end {
		return ""
	}
	return string(runes[begin:end])
}
