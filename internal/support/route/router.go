// internal/support/route/router.go

// Package route selects the specialist handler for a classified turn.
package route

import (
	"strings"

	"support-chat/internal/models"
)

// confidenceThreshold gates the direct category-based routes.
const confidenceThreshold = 0.6

// tieBreakConfidence is assigned when the keyword tie-break decides.
const tieBreakConfidence = 0.7

// Indicator vocabularies for the keyword tie-break. These are separate
// from the classifier keyword sets and must stay that way.
var (
	refundIndicators = []string{"refund", "return", "money back", "inv", "invoice"}
	faqIndicators    = []string{"how", "what", "policy", "specification", "dimension"}
)

// Decision is the routing outcome for one turn.
type Decision struct {
	Target     models.RouteTarget
	Confidence float64
}

// Route picks a target handler. A confident category routes directly;
// otherwise indicator-word counts break the tie, and if neither side has
// evidence the turn falls through to the triage handler.
func Route(category models.Category, confidence float64, text string) Decision {
	if category == models.CategoryRefund && confidence > confidenceThreshold {
		return Decision{Target: models.TargetRefund, Confidence: confidence}
	}
	if category == models.CategoryFAQ && confidence > confidenceThreshold {
		return Decision{Target: models.TargetFAQ, Confidence: confidence}
	}

	refundStrength := indicatorStrength(text, refundIndicators)
	faqStrength := indicatorStrength(text, faqIndicators)

	if refundStrength > faqStrength && refundStrength > 0 {
		return Decision{Target: models.TargetRefund, Confidence: tieBreakConfidence}
	}
	if faqStrength > refundStrength && faqStrength > 0 {
		return Decision{Target: models.TargetFAQ, Confidence: tieBreakConfidence}
	}

	return Decision{Target: models.TargetTriage, Confidence: confidence}
}

func indicatorStrength(text string, indicators []string) int {
	lower := strings.ToLower(text)

	count := 0
	for _, indicator := range indicators {
		if strings.Contains(lower, indicator) {
			count++
		}
	}
	return count
}
