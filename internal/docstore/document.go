// Package docstore implements the collection-style document store used for
// users and interview histories.
package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"interview-coach/internal/domain"
)

// Encode converts a value into a Document through its JSON form. Every value
// held by a collection goes through Encode so that field comparisons see the
// same representation no matter which Go type produced them.
func Encode(v any) (domain.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("docstore: value is not a JSON object: %w", err)
	}
	if doc == nil {
		doc = domain.Document{}
	}
	return doc, nil
}

// Decode fills out from doc.
func Decode(doc domain.Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	return nil
}

// Clone returns a deep copy of doc.
func Clone(doc domain.Document) domain.Document {
	out, err := Encode(doc)
	if err != nil {
		// doc already came out of Encode, so it always re-encodes.
		panic(err)
	}
	return out
}

// Matches reports whether doc has every query field with an equal value.
// The query must already be normalised with Encode.
func Matches(doc, query domain.Document) bool {
	for field, want := range query {
		got, ok := doc[field]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// ApplySet merges set into doc and reports whether the stored JSON changed.
// The document ID cannot be overwritten.
func ApplySet(doc, set domain.Document) (domain.Document, bool, error) {
	before, err := json.Marshal(doc)
	if err != nil {
		return nil, false, fmt.Errorf("docstore: update: %w", err)
	}
	updated := Clone(doc)
	for field, value := range set {
		if field == domain.DocumentIDField {
			continue
		}
		updated[field] = value
	}
	after, err := json.Marshal(updated)
	if err != nil {
		return nil, false, fmt.Errorf("docstore: update: %w", err)
	}
	return updated, !bytes.Equal(before, after), nil
}

// ID returns the generated identifier of a stored document.
func ID(doc domain.Document) string {
	id, _ := doc[domain.DocumentIDField].(string)
	return id
}
