// internal/support/handlers/faq/fuzzy_test.go
package faq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{
			name:     "identical strings",
			a:        "warranty",
			b:        "warranty",
			expected: 1.0,
		},
		{
			name:     "completely different",
			a:        "abc",
			b:        "xyz",
			expected: 0.0,
		},
		{
			name:     "both empty",
			a:        "",
			b:        "",
			expected: 1.0,
		},
		{
			name:     "one empty",
			a:        "refund",
			b:        "",
			expected: 0.0,
		},
		{
			name: "single character typo",
			a:    "shipping",
			b:    "shippin",
			// 7 matched runes of 15 total
			expected: 14.0 / 15.0,
		},
		{
			name: "transposed halves",
			a:    "abcd",
			b:    "cdab",
			// longest block "ab" or "cd" (2) plus no further overlap
			expected: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	// ratio magnitude should not depend on argument order for these pairs
	pairs := [][2]string{
		{"warranty", "warrantee"},
		{"policy", "police"},
		{"dimension", "dimensions"},
	}
	for _, p := range pairs {
		assert.InDelta(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), 1e-9)
	}
}

func TestSimilarity_ThresholdBehavior(t *testing.T) {
	// near-identical words clear the strong threshold
	assert.GreaterOrEqual(t, Similarity("dimensions", "dimension"), 0.8)
	assert.GreaterOrEqual(t, Similarity("warranty", "warrenty"), 0.8)

	// related but distinct words land in the weak band
	s := Similarity("policy", "police")
	assert.GreaterOrEqual(t, s, 0.6)
	assert.Less(t, s, 0.9)

	// unrelated words stay below the weak threshold
	assert.Less(t, Similarity("shipping", "refund"), 0.6)
}
