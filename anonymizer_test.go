package project747

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRecognizer tags exact, space delimited occurrences of known surface
// forms, longest first.
type stubRecognizer struct {
	labels map[string]string
	calls  int
}

func (stub *stubRecognizer) Recognize(text string) ([]EntitySpan, error) {
	stub.calls++
	surfaces := make([]string, 0, len(stub.labels))
	for surface := range stub.labels {
		surfaces = append(surfaces, surface)
	}
	sort.Slice(surfaces, func(i, j int) bool {
		return len(surfaces[i]) > len(surfaces[j])
	})
	runes := []rune(text)
	spans := make([]EntitySpan, 0)
	for idx := 0; idx < len(runes); {
		if idx > 0 && runes[idx-1] != ' ' {
			idx++
			continue
		}
		matched := false
		for _, surface := range surfaces {
			end := idx + len([]rune(surface))
			if end > len(runes) || string(runes[idx:end]) != surface {
				continue
			}
			if end < len(runes) && runes[end] != ' ' {
				continue
			}
			spans = append(spans, EntitySpan{
				Start: idx,
				End:   end,
				Label: stub.labels[surface],
				Text:  surface,
			})
			idx = end
			matched = true
			break
		}
		if !matched {
			idx++
		}
	}
	return spans, nil
}

type failingRecognizer struct{}

func (failingRecognizer) Recognize(string) ([]EntitySpan, error) {
	return nil, errors.New("recognizer unavailable")
}

func newStubAnonymizer(labels map[string]string) *Anonymizer {
	return NewAnonymizer(&stubRecognizer{labels: labels})
}

func TestAnonymize(t *testing.T) {
	anonymizer := newStubAnonymizer(map[string]string{
		"Mary":   "PERSON",
		"John":   "PERSON",
		"Paris":  "GPE",
		"Monday": "DATE",
	})
	entities, others := NewDictionary(), NewDictionary()
	tokens, err := anonymizer.Anonymize(
		"Mary met John in Paris on Monday . Mary left .", entities, others)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"@ent0~ner:PERSON", "met", "@ent1~ner:PERSON", "in",
		"@ent2~ner:GPE", "on", "Monday~ner:DATE", ".",
		"@ent0~ner:PERSON", "left", ".",
	}, tokens)
	assert.Equal(t, 3, entities.Len())
	assert.Equal(t, []string{"john", "mary", "paris"}, entities.Keys())
	replacement, ok := others.Lookup("monday")
	assert.True(t, ok)
	assert.Equal(t, "Monday~ner:DATE", replacement)
}

func TestAnonymizeWholeTokenGuard(t *testing.T) {
	anonymizer := newStubAnonymizer(map[string]string{"Apple": "ORG"})
	entities, others := NewDictionary(), NewDictionary()
	tokens, err := anonymizer.Anonymize("Apple sells apple pie", entities,
		others)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "sells", "apple", "pie"}, tokens)
	assert.Equal(t, 0, entities.Len())
	assert.Equal(t, 0, others.Len())
}

func TestAnonymizeRecognizerError(t *testing.T) {
	anonymizer := NewAnonymizer(failingRecognizer{})
	_, _, _, err := anonymizer.AnonymizeDocument([]string{"John"})
	assert.Error(t, err)
}

func TestAnonymizeDocumentConsistency(t *testing.T) {
	anonymizer := newStubAnonymizer(map[string]string{
		"John":  "PERSON",
		"Sarah": "PERSON",
	})
	first := []string{"John", "waved", ".", "John", "left", "."}
	tokens, entities, _, err := anonymizer.AnonymizeDocument(first)
	require.NoError(t, err)
	assert.Equal(t, tokens[0], tokens[3])
	assert.Equal(t, "@ent0~ner:PERSON", tokens[0])
	assert.Equal(t, 1, entities.Len())

	// Same input, same output.
	again, _, _, err := anonymizer.AnonymizeDocument(first)
	require.NoError(t, err)
	assert.Equal(t, tokens, again)

	// A second document starts from empty dictionaries.
	second := []string{"Sarah", "called", "."}
	secondTokens, secondEntities, _, err := anonymizer.AnonymizeDocument(
		second)
	require.NoError(t, err)
	assert.Equal(t, "@ent0~ner:PERSON", secondTokens[0])
	assert.False(t, secondEntities.Contains("john"))
	assert.False(t, entities.Contains("sarah"))
}

func TestAnonymizeDocumentLowercasesShouting(t *testing.T) {
	anonymizer := newStubAnonymizer(map[string]string{"John": "PERSON"})
	tokens, _, _, err := anonymizer.AnonymizeDocument(
		[]string{"MARY", "saw", "John", "AT", "3", "PM"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mary", "saw", "@ent0~ner:PERSON", "at", "3",
		"pm"}, tokens)
}

func TestAnonymizeDocumentParts(t *testing.T) {
	recognizer := &stubRecognizer{labels: map[string]string{
		"John": "PERSON",
		"Mary": "PERSON",
	}}
	anonymizer := NewAnonymizer(recognizer)
	anonymizer.MaxChars = 10
	words := []string{"John", "aaaa", "Mary", "bbbb", "John", "cccc", "Mary",
		"dddd"}
	tokens, entities, _, err := anonymizer.AnonymizeDocument(words)
	require.NoError(t, err)
	assert.Equal(t, 4, recognizer.calls)
	// Parts are cut on rune offsets, so words at a cut are split.
	assert.Equal(t, []string{
		"@ent0~ner:PERSON", "aaaa",
		"@ent1~ner:PERSON", "bbb",
		"b", "@ent0~ner:PERSON", "cc",
		"cc", "@ent1~ner:PERSON", "dddd",
	}, tokens)
	assert.Equal(t, 2, entities.Len())
}

func TestReplaceEntities(t *testing.T) {
	entities, others := NewDictionary(), NewDictionary()
	entities.insert("john", "@ent0~ner:PERSON")
	others.insert("monday", "Monday~ner:DATE")
	others.insert("john", "John~ner:NORP")
	words := []string{"JOHN", "left", "on", "monday"}
	ReplaceEntities(words, entities, others)
	assert.Equal(t, []string{"@ent0~ner:PERSON", "left", "on",
		"Monday~ner:DATE"}, words)
}

func TestReplaceEntitiesUsingNgramsLongestMatch(t *testing.T) {
	entities := NewDictionary()
	entities.insert("new york", "@ent0~ner:GPE")
	words := []string{"i", "live", "in", "new", "york", "city"}
	replaced, kept := ReplaceEntitiesUsingNgrams(words, entities,
		NewDictionary())
	assert.Equal(t, []string{"i", "live", "in", "@ent0~ner:GPE", "city"},
		replaced)
	assert.Equal(t, []int{0, 1, 2, 3, 5}, kept)
	// The input is not modified.
	assert.Len(t, words, 6)
}

func TestReplaceEntitiesUsingNgramsPrecedence(t *testing.T) {
	entities, others := NewDictionary(), NewDictionary()
	entities.insert("new york city", "@ent0~ner:GPE")
	entities.insert("york", "@ent1~ner:GPE")
	others.insert("new york city", "New York City~ner:FAC")
	others.insert("city", "City~ner:ORG")

	replaced, _ := ReplaceEntitiesUsingNgrams(
		strings.Fields("to New York City now"), entities, others)
	assert.Equal(t, []string{"to", "@ent0~ner:GPE", "now"}, replaced)

	// Overlapping matches are both taken; the second one starts on a
	// position the first already removed.
	entities = NewDictionary()
	entities.insert("a b", "X")
	entities.insert("b c", "Y")
	replaced, kept := ReplaceEntitiesUsingNgrams([]string{"a", "b", "c"},
		entities, NewDictionary())
	assert.Equal(t, []string{"X"}, replaced)
	assert.Equal(t, []int{0}, kept)
}

func TestProjectTags(t *testing.T) {
	tags := []string{"O", "O", "O", "B-GPE", "I-GPE", "O"}
	assert.Equal(t, []string{"O", "O", "O", "B-GPE", "O"},
		ProjectTags(tags, []int{0, 1, 2, 3, 5}))
	assert.Equal(t, []string{""}, ProjectTags(tags[:1], []int{4}))
}
