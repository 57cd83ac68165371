// internal/support/classify/parser.go
package classify

import (
	"strings"

	"support-chat/internal/models"
)

// confidenceLabels maps the model's verbal confidence to a numeric score.
// Anything unrecognized lands in the middle at 0.5.
var confidenceLabels = map[string]float64{
	"high":   0.8,
	"medium": 0.6,
	"low":    0.4,
}

// ParsedReply holds the fields recovered from a completion reply before
// category validation.
type ParsedReply struct {
	Category   string
	Confidence float64
	Reasoning  string
	NextAction string

	HasCategory   bool
	HasConfidence bool
}

// ParseReply reads a loose "Key: value" line protocol. The first colon on a
// line separates key from value, key matching is case-insensitive, and
// unrecognized lines are skipped. Confidence labels are converted to their
// numeric score here so the rest of the pipeline only sees numbers.
func ParseReply(reply string) ParsedReply {
	parsed := ParsedReply{Confidence: 0.5}

	for _, line := range strings.Split(reply, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])

		switch key {
		case "category":
			parsed.Category = strings.ToLower(value)
			parsed.HasCategory = true
		case "confidence":
			parsed.Confidence = NormalizeConfidence(value)
			parsed.HasConfidence = true
		case "reasoning":
			parsed.Reasoning = value
		case "next action":
			parsed.NextAction = value
		}
	}

	return parsed
}

// NormalizeConfidence converts a verbal confidence label to its numeric
// score, defaulting to 0.5 for anything it does not recognize.
func NormalizeConfidence(label string) float64 {
	if score, ok := confidenceLabels[strings.ToLower(label)]; ok {
		return score
	}
	return 0.5
}

// toResult converts a parsed reply into a Result. The category is passed
// through as-is; validity is the reconciler's concern.
func (p ParsedReply) toResult() *Result {
	return &Result{
		Category:   models.Category(p.Category),
		Confidence: p.Confidence,
		Reasoning:  p.Reasoning,
		NextAction: p.NextAction,
		Source:     SourceAI,
	}
}
