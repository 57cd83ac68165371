// internal/support/handlers/faq/search.go
package faq

import (
	"sort"
	"strings"

	"support-chat/internal/models"
)

// Fuzzy-match thresholds for keyword and question-word scoring.
const (
	strongSimilarity = 0.8
	weakSimilarity   = 0.6
)

// scoredRecord pairs a record with its relevance score during ranking.
type scoredRecord struct {
	score  int
	record models.FAQRecord
}

// Search ranks records against the query and returns the top k. Exact
// keyword substrings weigh most, then fuzzy keyword matches, then word
// overlap with the question and answer text. Ties keep original record
// order so identical inputs always produce identical rankings.
func Search(records []models.FAQRecord, query string, topK int) []models.FAQRecord {
	queryLower := strings.ToLower(query)
	queryWords := strings.Fields(queryLower)

	var scored []scoredRecord
	for _, record := range records {
		score := scoreRecord(record, queryLower, queryWords)
		if score > 0 {
			scored = append(scored, scoredRecord{score: score, record: record})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	out := make([]models.FAQRecord, len(scored))
	for i, s := range scored {
		out[i] = s.record
	}
	return out
}

func scoreRecord(record models.FAQRecord, queryLower string, queryWords []string) int {
	score := 0

	// Exact keyword substring matches weigh most.
	for _, keyword := range record.Keywords {
		if strings.Contains(queryLower, strings.ToLower(keyword)) {
			score += 3
		}
	}

	// Fuzzy keyword matches.
	for _, keyword := range record.Keywords {
		keywordLower := strings.ToLower(keyword)
		for _, queryWord := range queryWords {
			similarity := Similarity(keywordLower, queryWord)
			if similarity >= strongSimilarity {
				score += 2
			} else if similarity >= weakSimilarity {
				score += 1
			}
		}
	}

	// Word overlap with question and answer text.
	questionWords := strings.Fields(strings.ToLower(record.Question))
	answerWords := strings.Fields(strings.ToLower(record.Answer))

	for _, queryWord := range queryWords {
		if containsWord(questionWords, queryWord) {
			score += 2
		}
		if containsWord(answerWords, queryWord) {
			score += 1
		}

		for _, word := range questionWords {
			if Similarity(word, queryWord) >= strongSimilarity {
				score += 1
			}
		}
	}

	return score
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}
