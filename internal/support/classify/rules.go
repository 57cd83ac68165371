// internal/support/classify/rules.go
package classify

import (
	"strings"

	"support-chat/internal/models"
)

// Keyword vocabularies for the rule-based classifier. These deliberately
// differ from the router's indicator lists, which evolved separately.
var (
	refundKeywords = []string{
		"refund", "return", "money back", "cancel order",
		"invoice", "inv", "receipt", "transaction",
	}

	faqKeywords = []string{
		"product", "specification", "specs", "dimension",
		"feature", "how to", "compatible", "warranty",
		"shipping", "payment", "policy",
	}

	partnershipKeywords = []string{
		"partnership", "business", "wholesale", "bulk",
		"distributor", "reseller", "collaborate",
	}
)

// ClassifyRule scores the text against each keyword set by counting every
// occurrence of every keyword, then picks the strictly highest scorer.
// Ties and all-zero scores resolve to other. Pure function of its input.
func ClassifyRule(text string) models.Category {
	lower := strings.ToLower(text)

	refund := countOccurrences(lower, refundKeywords)
	faq := countOccurrences(lower, faqKeywords)
	partnership := countOccurrences(lower, partnershipKeywords)

	switch {
	case refund > faq && refund > partnership:
		return models.CategoryRefund
	case faq > refund && faq > partnership:
		return models.CategoryFAQ
	case partnership > refund && partnership > faq:
		return models.CategoryPartnership
	default:
		return models.CategoryOther
	}
}

func countOccurrences(lower string, keywords []string) int {
	total := 0
	for _, keyword := range keywords {
		total += strings.Count(lower, keyword)
	}
	return total
}
