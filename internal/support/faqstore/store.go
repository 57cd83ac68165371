// internal/support/faqstore/store.go

// Package faqstore loads and serves the FAQ knowledge base.
package faqstore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"support-chat/internal/common/errors"
	"support-chat/internal/models"
)

// knowledgeBaseSchema is enforced at load time so a malformed FAQ file
// fails fast at startup rather than producing empty search results.
const knowledgeBaseSchema = `{
	"type": "object",
	"required": ["records"],
	"properties": {
		"records": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "category", "question", "answer", "keywords"],
				"properties": {
					"id": {"type": "integer"},
					"category": {"type": "string", "minLength": 1},
					"question": {"type": "string", "minLength": 1},
					"answer": {"type": "string", "minLength": 1},
					"keywords": {
						"type": "array",
						"items": {"type": "string"}
					}
				}
			}
		}
	}
}`

type knowledgeBase struct {
	Records []models.FAQRecord `json:"records"`
}

// Store holds the FAQ records in memory. Records never change after load,
// so reads need no locking.
type Store struct {
	records []models.FAQRecord
}

// Load reads and validates a knowledge base JSON file.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates raw JSON against the knowledge base schema and builds a
// Store from it.
func Parse(raw []byte) (*Store, error) {
	schemaLoader := gojsonschema.NewStringLoader(knowledgeBaseSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, errors.NewKnowledgeBaseInvalidError(err.Error())
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, errors.NewKnowledgeBaseInvalidError(fmt.Sprintf("%v", errs))
	}

	var kb knowledgeBase
	if err := json.Unmarshal(raw, &kb); err != nil {
		return nil, errors.NewKnowledgeBaseInvalidError(err.Error())
	}

	return &Store{records: kb.Records}, nil
}

// All returns every record in original file order.
func (s *Store) All() []models.FAQRecord {
	return s.records
}

// Len reports the record count.
func (s *Store) Len() int {
	return len(s.records)
}

// Categories returns the distinct categories in first-seen order.
func (s *Store) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, rec := range s.records {
		if !seen[rec.Category] {
			seen[rec.Category] = true
			categories = append(categories, rec.Category)
		}
	}
	return categories
}

// ByCategory returns the records in a category, in original order.
func (s *Store) ByCategory(category string) []models.FAQRecord {
	var out []models.FAQRecord
	for _, rec := range s.records {
		if rec.Category == category {
			out = append(out, rec)
		}
	}
	return out
}
