// internal/support/classify/reconcile.go
package classify

import (
	"strings"

	"support-chat/internal/models"
)

// refundOverrideKeywords gate the rule-over-AI refund override. This set is
// intentionally distinct from both the classifier and router vocabularies.
var refundOverrideKeywords = []string{
	"refund", "return", "money back", "cancel", "invoice",
}

// Reconcile merges the AI classifier's verdict with the rule category.
//
// The rule category wins outright when the AI abstained or produced an
// unknown category. When the rule says refund, the AI disagrees, and the
// text carries explicit refund vocabulary, refund wins anyway: a dropped
// refund costs far more than a misrouted question. The override is
// deliberately asymmetric and applies to no other category.
func Reconcile(aiResult *Result, ruleCategory models.Category, text string) Result {
	if aiResult == nil {
		return Result{
			Category:   ruleCategory,
			Confidence: 0.6,
			Reasoning:  "Rule-based classification (API not available)",
			Source:     SourceRuleOnly,
		}
	}

	if !aiResult.Category.Valid() {
		return Result{
			Category:   ruleCategory,
			Confidence: aiResult.Confidence,
			Reasoning:  aiResult.Reasoning,
			NextAction: aiResult.NextAction,
			Source:     SourceRuleOnly,
		}
	}

	if ruleCategory == models.CategoryRefund && aiResult.Category != models.CategoryRefund {
		if containsAny(strings.ToLower(text), refundOverrideKeywords) {
			return Result{
				Category:   models.CategoryRefund,
				Confidence: aiResult.Confidence,
				Reasoning:  aiResult.Reasoning,
				NextAction: aiResult.NextAction,
				Source:     SourceRuleOnly,
			}
		}
	}

	out := *aiResult
	out.Source = SourceAI
	return out
}

func containsAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
