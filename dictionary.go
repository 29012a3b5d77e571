package project747

import "sort"

// Dictionary
// Maps lowercased entity surface forms to their replacement token for one
// document. Only the Anonymizer writes to it; the first replacement recorded
// for a surface form is kept for the life of the document.
type Dictionary struct {
	Entries map[string]string
}

func NewDictionary() *Dictionary {
	return &Dictionary{Entries: make(map[string]string)}
}

// insert records replacement for key unless key is already present, and
// returns the replacement now associated with key.
func (dict *Dictionary) insert(key, replacement string) string {
	if existing, ok := dict.Entries[key]; ok {
		return existing
	}
	dict.Entries[key] = replacement
	return replacement
}

// Lookup expects an already lowercased key.
func (dict *Dictionary) Lookup(key string) (string, bool) {
	if dict == nil {
		return "", false
	}
	replacement, ok := dict.Entries[key]
	return replacement, ok
}

func (dict *Dictionary) Contains(key string) bool {
	_, ok := dict.Lookup(key)
	return ok
}

func (dict *Dictionary) Len() int {
	if dict == nil {
		return 0
	}
	return len(dict.Entries)
}

// Keys returns the surface forms in sorted order.
func (dict *Dictionary) Keys() []string {
	if dict == nil {
		return nil
	}
	keys := make([]string, 0, len(dict.Entries))
	for key := range dict.Entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
