// internal/support/faqstore/store_test.go
package faqstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKB = `{
	"records": [
		{
			"id": 1,
			"category": "return_policy",
			"question": "What is the return policy?",
			"answer": "Items can be returned within 30 days of purchase.",
			"keywords": ["return", "policy", "refund"]
		},
		{
			"id": 2,
			"category": "shipping",
			"question": "Do you ship internationally?",
			"answer": "Yes, we ship to over 50 countries worldwide.",
			"keywords": ["international", "shipping"]
		},
		{
			"id": 3,
			"category": "shipping",
			"question": "Can I change my shipping address?",
			"answer": "Only within 2 hours of placing the order.",
			"keywords": ["shipping", "address", "change"]
		}
	]
}`

func TestParse_Valid(t *testing.T) {
	store, err := Parse([]byte(validKB))
	require.NoError(t, err)

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, "What is the return policy?", store.All()[0].Question)
	assert.Equal(t, []string{"return", "policy", "refund"}, store.All()[0].Keywords)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "missing records key",
			raw:  `{"faqs": []}`,
		},
		{
			name: "record missing answer",
			raw:  `{"records": [{"id": 1, "category": "x", "question": "q", "keywords": []}]}`,
		},
		{
			name: "empty question",
			raw:  `{"records": [{"id": 1, "category": "x", "question": "", "answer": "a", "keywords": []}]}`,
		},
		{
			name: "not json",
			raw:  `{records`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faq.json")
	require.NoError(t, os.WriteFile(path, []byte(validKB), 0o644))

	store, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestStore_Categories(t *testing.T) {
	store, err := Parse([]byte(validKB))
	require.NoError(t, err)

	assert.Equal(t, []string{"return_policy", "shipping"}, store.Categories())
}

func TestStore_ByCategory(t *testing.T) {
	store, err := Parse([]byte(validKB))
	require.NoError(t, err)

	shipping := store.ByCategory("shipping")
	require.Len(t, shipping, 2)
	assert.Equal(t, 2, shipping[0].ID)
	assert.Equal(t, 3, shipping[1].ID)

	assert.Empty(t, store.ByCategory("warranty"))
}
