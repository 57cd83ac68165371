// internal/support/handlers/refund/handler.go

// Package refund runs the multi-turn refund flow: collect identifiers,
// verify the transaction, collect a reason, then emit the refund request.
package refund

import (
	"context"
	"fmt"
	"strings"

	"support-chat/internal/common/logger"
	"support-chat/internal/models"
	"support-chat/internal/support/classify"
	"support-chat/internal/support/entities"
	"support-chat/internal/support/transaction"
)

const systemPrompt = `You are a customer service specialist handling refund requests. Follow these steps:

1. VERIFICATION: Confirm transaction details match our records
2. REASON: Ask for and document the refund reason
3. POLICY: Apply our 30-day return policy
4. PROCESS: Guide customer through next steps

REFUND POLICY:
- Items can be returned within 30 days of purchase
- Original receipt/invoice required
- Refunds processed to original payment method
- Processing time: 5-7 business days

TONE: Professional, empathetic, and solution-oriented`

// Indicator words that introduce a refund reason in free text.
var reasonIndicators = []string{
	"because", "reason", "due to", "since", "as", "defective",
	"broken", "not working", "wrong", "mistake", "changed mind",
}

// Handler owns the refund state machine for a single turn.
type Handler struct {
	finder    transaction.Finder
	completer classify.Completer
	cache     *classify.ResponseCache
	logger    logger.Logger
}

func NewHandler(finder transaction.Finder, completer classify.Completer, cache *classify.ResponseCache, log logger.Logger) *Handler {
	return &Handler{
		finder:    finder,
		completer: completer,
		cache:     cache,
		logger:    log.WithFields(map[string]interface{}{"handler": "refund"}),
	}
}

// Handle advances the refund flow by one turn. Session context carries
// identifiers and the reason across turns; the engine persists the
// mutations made here.
func (h *Handler) Handle(ctx context.Context, turn *models.Turn) (*models.HandlerResult, error) {
	ids := entities.Merge(turn.Entities, contextEntities(turn.Context))

	if !ids.Complete() {
		return h.requestIdentifiers(turn, ids), nil
	}

	h.logger.Debug("verifying transaction", map[string]interface{}{
		"sessionId":  turn.SessionID,
		"invoiceNo":  ids.InvoiceNo,
		"customerId": ids.CustomerID,
		"state":      string(StateNeedVerification),
	})
	record, err := h.finder.Find(ctx, ids.InvoiceNo, ids.CustomerID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return h.transactionNotFound(ids), nil
	}

	// Identifiers verified: remember them for later turns.
	turn.Context.CurrentContext[ctxKeyExtractedInfo] = map[string]interface{}{
		"invoice_no":  ids.InvoiceNo,
		"customer_id": ids.CustomerID,
	}

	reason := ExtractReason(turn.Text)
	if reason == "" && awaitingReason(turn.Context) {
		// The previous turn asked for a reason, so the reply itself is one.
		reason = strings.TrimSpace(turn.Text)
	}
	if reason == "" {
		reason = turn.Context.ContextString(ctxKeyRefundReason)
	}
	if reason == "" {
		return h.requestReason(turn, record), nil
	}

	if msg, ok := validateReason(reason); !ok {
		return &models.HandlerResult{
			Response:      fmt.Sprintf("Please provide a more detailed refund reason. %s", msg),
			Resolved:      false,
			Category:      models.CategoryRefund,
			Confidence:    turn.Confidence,
			NeedsMoreInfo: true,
			Metadata:      map[string]interface{}{"state": string(StateNeedReason)},
		}, nil
	}

	return h.completeRefund(ctx, turn, record, reason), nil
}

func awaitingReason(sc *models.SessionContext) bool {
	if sc == nil || !sc.AwaitingInfo {
		return false
	}
	for _, field := range sc.RequiredFields {
		if field == ctxKeyRefundReason {
			return true
		}
	}
	return false
}

func (h *Handler) requestIdentifiers(turn *models.Turn, ids models.ExtractedEntities) *models.HandlerResult {
	var missing []string
	if ids.InvoiceNo == "" {
		missing = append(missing, "Invoice Number (format: INV####)")
	}
	if ids.CustomerID == "" {
		missing = append(missing, "Customer ID (format: CUST###)")
	}

	response := "To process your refund request, I need the following information:\n"
	response += strings.Join(prefixBullets(missing), "\n")
	response += " and please tell us the reason of return.\n\nYou can find these details in your order confirmation email or receipt."

	turn.Context.AwaitingInfo = true
	turn.Context.RequiredFields = missing

	return &models.HandlerResult{
		Response:      response,
		Resolved:      false,
		Category:      models.CategoryRefund,
		Confidence:    turn.Confidence,
		NeedsMoreInfo: true,
		Metadata: map[string]interface{}{
			"state":          string(StateNeedIdentifiers),
			"missing_fields": missing,
		},
	}
}

func (h *Handler) transactionNotFound(ids models.ExtractedEntities) *models.HandlerResult {
	response := fmt.Sprintf(`I couldn't find a transaction matching:
- Invoice Number: %s
- Customer ID: %s

Please double-check these details. Common issues:
- Make sure the invoice number includes 'INV' (e.g., INV1001)
- Verify the customer ID format (e.g., CUST123)
- Check if you're using details from the correct order

If you're certain the details are correct, please contact our customer service team for further assistance.`, ids.InvoiceNo, ids.CustomerID)

	return &models.HandlerResult{
		Response:      response,
		Resolved:      false,
		Category:      models.CategoryRefund,
		Confidence:    0.9,
		NeedsFollowup: true,
		Metadata: map[string]interface{}{
			"state":             string(StateNotFound),
			"transaction_found": false,
		},
	}
}

func (h *Handler) requestReason(turn *models.Turn, record *models.TransactionRecord) *models.HandlerResult {
	response := fmt.Sprintf(`Great! I found your transaction:

**Product**: %s
**SKU ID**: %s
**Purchase Date**: %s
**Amount**: $%.2f x %d

To complete your refund request, please tell me the reason for the return. For example:
- Product defective or damaged
- Wrong item received
- Changed mind about purchase
- Product doesn't meet expectations
- Other reason (please specify)`,
		record.Description, record.StockCode, record.InvoiceDate, record.UnitPrice, record.Quantity)

	turn.Context.AwaitingInfo = true
	turn.Context.RequiredFields = []string{ctxKeyRefundReason}

	return &models.HandlerResult{
		Response:      response,
		Resolved:      false,
		Category:      models.CategoryRefund,
		Confidence:    turn.Confidence,
		NeedsMoreInfo: true,
		Metadata: map[string]interface{}{
			"state":                string(StateNeedReason),
			"transaction_verified": true,
			"awaiting_reason":      true,
		},
	}
}

func (h *Handler) completeRefund(ctx context.Context, turn *models.Turn, record *models.TransactionRecord, reason string) *models.HandlerResult {
	response := ""
	if h.completer != nil {
		if reply, err := h.aiRefundResponse(ctx, record, reason); err == nil {
			response = reply
		} else {
			h.logger.Warn("completion failed, using standard response", map[string]interface{}{
				"sessionId": turn.SessionID,
				"error":     err.Error(),
			})
		}
	}
	if response == "" {
		response = standardRefundResponse(record, reason)
	}

	turn.Context.CurrentContext[ctxKeyRefundReason] = reason
	turn.Context.AwaitingInfo = false
	turn.Context.RequiredFields = nil

	return &models.HandlerResult{
		Response:   response,
		Resolved:   true,
		Category:   models.CategoryRefund,
		Confidence: 0.9,
		Metadata: map[string]interface{}{
			"state":                string(StateComplete),
			"transaction_verified": true,
		},
		RefundData: &models.RefundData{
			CustomerID:         record.CustomerID,
			InvoiceNo:          record.InvoiceNo,
			StockCode:          record.StockCode,
			ProductDescription: record.Description,
			Quantity:           record.Quantity,
			UnitPrice:          record.UnitPrice,
			RefundReason:       reason,
		},
	}
}

func (h *Handler) aiRefundResponse(ctx context.Context, record *models.TransactionRecord, reason string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nTransaction Details: %+v", systemPrompt, *record)
	input := fmt.Sprintf("Refund request for %s. Reason: %s", record.Description, reason)

	if h.cache == nil {
		return h.completer.Complete(ctx, prompt, input)
	}

	key := h.cache.Key(prompt, input, nil)
	if cached, ok := h.cache.Get(key); ok {
		return cached, nil
	}

	reply, err := h.completer.Complete(ctx, prompt, input)
	if err != nil {
		return "", err
	}
	h.cache.Put(key, reply)
	return reply, nil
}

// ExtractReason pulls a refund reason out of free text. The substring
// after the first indicator word wins when it is long enough; otherwise
// any substantial input is taken whole. Either way the reason is capped
// at the maximum length.
func ExtractReason(text string) string {
	lower := strings.ToLower(text)

	for _, indicator := range reasonIndicators {
		idx := strings.Index(lower, indicator)
		if idx < 0 {
			continue
		}
		candidate := strings.TrimSpace(lower[idx+len(indicator):])
		if len(candidate) > minReasonLength {
			return truncate(candidate, maxReasonLength)
		}
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 20 {
		return truncate(trimmed, maxReasonLength)
	}

	return ""
}

func validateReason(reason string) (string, bool) {
	if len(strings.TrimSpace(reason)) < minReasonLength {
		return "Please provide a detailed reason (at least 10 characters).", false
	}
	if len(reason) > maxReasonLength {
		return "Reason is too long (maximum 500 characters).", false
	}
	return "", true
}

func standardRefundResponse(record *models.TransactionRecord, reason string) string {
	return fmt.Sprintf(`Thank you for providing the refund details. I've processed your refund request:

**Product**: %s
**Invoice**: %s
**Reason**: %s
**Refund Amount**: $%.2f

**Next Steps**:
1. Your refund request has been submitted to our processing team
2. You'll receive a confirmation email within 2 business hours
3. Refund will be processed to your original payment method
4. Expected processing time: 5-7 business days

**Return Instructions** (if applicable):
- Package the item securely in original packaging
- Use the return label that will be emailed to you
- Drop off at any authorized shipping location

Is there anything else I can help you with regarding this refund?`,
		record.Description, record.InvoiceNo, reason,
		record.UnitPrice*float64(record.Quantity))
}

func contextEntities(sc *models.SessionContext) models.ExtractedEntities {
	raw, ok := sc.CurrentContext[ctxKeyExtractedInfo].(map[string]interface{})
	if !ok {
		return models.ExtractedEntities{}
	}

	out := models.ExtractedEntities{}
	if v, ok := raw["invoice_no"].(string); ok {
		out.InvoiceNo = v
	}
	if v, ok := raw["customer_id"].(string); ok {
		out.CustomerID = v
	}
	return out
}

func prefixBullets(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "- " + item
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
