// internal/support/classify/result.go

// Package classify decides the intent category for a chat turn by combining
// a deterministic keyword classifier with an optional AI classifier.
package classify

import "support-chat/internal/models"

// Source identifies which classifier produced the final category.
type Source string

const (
	SourceRuleOnly Source = "rule"
	SourceAI       Source = "ai"
)

// Result is a single classification outcome with its carried confidence.
type Result struct {
	Category   models.Category
	Confidence float64
	Reasoning  string
	NextAction string
	Source     Source
}
