// internal/support/handlers/triage/handler.go

// Package triage produces the fallback responses used when a turn cannot be
// routed to a specialist handler with enough confidence.
package triage

import (
	"context"

	"support-chat/internal/common/logger"
	"support-chat/internal/models"
)

const (
	refundCompleteResponse = "I can help you with your refund request..."

	refundMissingInfoResponse = "I'd be happy to help with your refund request. Please provide your Invoice Number (format: INV####) and Customer ID (format: CUST###) so I can look up your transaction."

	faqHandoffResponse = "I'll help you find the information you're looking for. Let me search our knowledge base for you."

	clarificationResponse = "Thank you for contacting us! I'd be happy to help you. Could you please provide more specific details about what you need assistance with? For example:\n- Product questions or technical support\n- Refund or return requests\n- Account or order inquiries"
)

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"handler": "triage"}),
	}
}

// Handle builds a category-appropriate holding response. Partnership has no
// specialist handler and shares the generic clarification path with other.
func (h *Handler) Handle(ctx context.Context, turn *models.Turn) (*models.HandlerResult, error) {
	switch turn.Category {
	case models.CategoryRefund:
		if turn.Entities.Complete() {
			return &models.HandlerResult{
				Response:      refundCompleteResponse,
				Resolved:      false,
				Category:      models.CategoryRefund,
				Confidence:    turn.Confidence,
				NeedsFollowup: true,
				Metadata: map[string]interface{}{
					"extracted_info": map[string]interface{}{
						"invoice_no":  turn.Entities.InvoiceNo,
						"customer_id": turn.Entities.CustomerID,
					},
				},
			}, nil
		}
		return &models.HandlerResult{
			Response:      refundMissingInfoResponse,
			Resolved:      false,
			Category:      models.CategoryRefund,
			Confidence:    turn.Confidence,
			NeedsMoreInfo: true,
		}, nil

	case models.CategoryFAQ:
		return &models.HandlerResult{
			Response:   faqHandoffResponse,
			Resolved:   false,
			Category:   models.CategoryFAQ,
			Confidence: turn.Confidence,
		}, nil

	default:
		return &models.HandlerResult{
			Response:   clarificationResponse,
			Resolved:   false,
			Category:   turn.Category,
			Confidence: turn.Confidence,
			Metadata:   map[string]interface{}{"needs_clarification": true},
		}, nil
	}
}
