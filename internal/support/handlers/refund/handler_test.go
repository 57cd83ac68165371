// internal/support/handlers/refund/handler_test.go
package refund

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chat/internal/common/logger"
	"support-chat/internal/models"
	"support-chat/internal/support/classify"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

// captureLogger records the state tags emitted on debug lines.
type captureLogger struct {
	testLogger
	states []string
}

func (cl *captureLogger) Debug(msg string, fields map[string]interface{}) {
	if s, ok := fields["state"].(string); ok {
		cl.states = append(cl.states, s)
	}
	cl.testLogger.Debug(msg, fields)
}

func (cl *captureLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return cl
}

type mockCompleter struct {
	reply string
	err   error
	calls int
}

func (m *mockCompleter) Complete(ctx context.Context, systemPrompt, userInput string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type mockFinder struct {
	record *models.TransactionRecord
	err    error
	calls  int
}

func (m *mockFinder) Find(ctx context.Context, invoiceNo, customerID string) (*models.TransactionRecord, error) {
	m.calls++
	return m.record, m.err
}

func testRecord() *models.TransactionRecord {
	return &models.TransactionRecord{
		InvoiceNo:   "INV1001",
		StockCode:   "SKU100",
		Description: "Wireless Mouse",
		Quantity:    2,
		InvoiceDate: "2024-01-15",
		UnitPrice:   24.50,
		CustomerID:  "CUST123",
	}
}

func newTurn(text string, ents models.ExtractedEntities) *models.Turn {
	return &models.Turn{
		SessionID:  "sess-1",
		Text:       text,
		Entities:   ents,
		Category:   models.CategoryRefund,
		Confidence: 0.8,
		Context:    models.NewSessionContext(),
	}
}

// ==========================
// Identifier Collection Tests
// ==========================

func TestHandleRequestsMissingIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		entities models.ExtractedEntities
		wantIn   []string
	}{
		{
			name:     "both missing",
			entities: models.ExtractedEntities{},
			wantIn:   []string{"Invoice Number (format: INV####)", "Customer ID (format: CUST###)"},
		},
		{
			name:     "customer ID missing",
			entities: models.ExtractedEntities{InvoiceNo: "INV1001"},
			wantIn:   []string{"Customer ID (format: CUST###)"},
		},
		{
			name:     "invoice missing",
			entities: models.ExtractedEntities{CustomerID: "CUST123"},
			wantIn:   []string{"Invoice Number (format: INV####)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &mockFinder{}
			h := NewHandler(finder, nil, nil, &testLogger{t: t})

			turn := newTurn("I want a refund", tt.entities)
			result, err := h.Handle(context.Background(), turn)
			require.NoError(t, err)

			assert.False(t, result.Resolved)
			assert.True(t, result.NeedsMoreInfo)
			assert.Equal(t, models.CategoryRefund, result.Category)
			for _, want := range tt.wantIn {
				assert.Contains(t, result.Response, want)
			}
			assert.Equal(t, string(StateNeedIdentifiers), result.Metadata["state"])
			assert.True(t, turn.Context.AwaitingInfo)
			assert.Zero(t, finder.calls, "no lookup until both identifiers present")
		})
	}
}

func TestHandleReadsIdentifiersFromContext(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	turn := newTurn("short", models.ExtractedEntities{})
	turn.Context.CurrentContext[ctxKeyExtractedInfo] = map[string]interface{}{
		"invoice_no":  "INV1001",
		"customer_id": "CUST123",
	}

	result, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)

	assert.Equal(t, 1, finder.calls)
	assert.True(t, result.NeedsMoreInfo)
	assert.Contains(t, result.Response, "Wireless Mouse")
}

// ==========================
// Transaction Verification Tests
// ==========================

func TestHandleTransactionNotFound(t *testing.T) {
	finder := &mockFinder{record: nil}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	turn := newTurn("refund please", models.ExtractedEntities{InvoiceNo: "INV9999", CustomerID: "CUST999"})
	result, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)

	assert.False(t, result.Resolved)
	assert.True(t, result.NeedsFollowup)
	assert.Contains(t, result.Response, "INV9999")
	assert.Contains(t, result.Response, "CUST999")
	assert.Contains(t, result.Response, "couldn't find a transaction")
	assert.Equal(t, string(StateNotFound), result.Metadata["state"])
	assert.Nil(t, result.RefundData)
}

func TestHandleLogsVerificationStep(t *testing.T) {
	cl := &captureLogger{testLogger: testLogger{t: t}}
	finder := &mockFinder{record: testRecord()}
	h := NewHandler(finder, nil, nil, cl)

	turn := newTurn("INV1001 CUST123", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	_, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)

	require.NotEmpty(t, cl.states)
	assert.Equal(t, string(StateNeedVerification), cl.states[0])
}

func TestHandleFinderError(t *testing.T) {
	finder := &mockFinder{err: errors.New("connection reset")}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	turn := newTurn("refund", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	result, err := h.Handle(context.Background(), turn)
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestHandleRequestsReason(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	turn := newTurn("INV1001 CUST123", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	result, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)

	assert.False(t, result.Resolved)
	assert.True(t, result.NeedsMoreInfo)
	assert.Contains(t, result.Response, "**Product**: Wireless Mouse")
	assert.Contains(t, result.Response, "**SKU ID**: SKU100")
	assert.Contains(t, result.Response, "$24.50 x 2")
	assert.Equal(t, string(StateNeedReason), result.Metadata["state"])
	assert.Equal(t, true, result.Metadata["transaction_verified"])

	// identifiers are carried for the next turn
	info, ok := turn.Context.CurrentContext[ctxKeyExtractedInfo].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "INV1001", info["invoice_no"])
	assert.True(t, turn.Context.AwaitingInfo)
}

// ==========================
// Reason Validation Tests
// ==========================

func TestHandleRejectsShortReasonWhenAsked(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	// First turn verifies the transaction and asks for a reason.
	turn := newTurn("INV1001 CUST123", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	first, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)
	require.True(t, first.NeedsMoreInfo)

	// The reply is treated as the reason and rejected for being too short.
	turn2 := newTurn("bad", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	turn2.Context = turn.Context
	result, err := h.Handle(context.Background(), turn2)
	require.NoError(t, err)

	assert.False(t, result.Resolved)
	assert.True(t, result.NeedsMoreInfo)
	assert.Contains(t, result.Response, "Please provide a more detailed refund reason.")
	assert.Contains(t, result.Response, "at least 10 characters")
	assert.Equal(t, string(StateNeedReason), result.Metadata["state"])
}

func TestHandleExtractsReasonFromFollowUp(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	turn := newTurn("INV1001 CUST123", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	first, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)
	require.True(t, first.NeedsMoreInfo)

	// Indicator extraction still applies to the follow-up reply.
	turn2 := newTurn("because it arrived broken", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	turn2.Context = turn.Context
	result, err := h.Handle(context.Background(), turn2)
	require.NoError(t, err)

	assert.True(t, result.Resolved)
	require.NotNil(t, result.RefundData)
	assert.Equal(t, "it arrived broken", result.RefundData.RefundReason)
}

func TestHandlePreservesCaseOfPlainReply(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	turn := newTurn("INV1001 CUST123", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	_, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)

	// No indicator and under the whole-input threshold, so the reply is
	// taken verbatim.
	turn2 := newTurn("ITEM DAMAGED IN BOX", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	turn2.Context = turn.Context
	result, err := h.Handle(context.Background(), turn2)
	require.NoError(t, err)

	assert.True(t, result.Resolved)
	require.NotNil(t, result.RefundData)
	assert.Equal(t, "ITEM DAMAGED IN BOX", result.RefundData.RefundReason)
}

func TestHandleCapsOverlongReasonWhenAsked(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	turn := newTurn("INV1001 CUST123", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	_, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)

	long := ""
	for i := 0; i < 60; i++ {
		long += "0123456789"
	}
	turn2 := newTurn(long, models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	turn2.Context = turn.Context
	result, err := h.Handle(context.Background(), turn2)
	require.NoError(t, err)

	assert.True(t, result.Resolved)
	require.NotNil(t, result.RefundData)
	assert.Len(t, result.RefundData.RefundReason, 500)
}

// ==========================
// Completion Tests
// ==========================

func TestHandleCompletesRefund(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	turn := newTurn("refund because the scroll wheel stopped working after a week",
		models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	result, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)

	assert.True(t, result.Resolved)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, string(StateComplete), result.Metadata["state"])

	require.NotNil(t, result.RefundData)
	assert.Equal(t, "CUST123", result.RefundData.CustomerID)
	assert.Equal(t, "INV1001", result.RefundData.InvoiceNo)
	assert.Equal(t, "the scroll wheel stopped working after a week", result.RefundData.RefundReason)

	// standard template carries the computed refund amount
	assert.Contains(t, result.Response, "**Refund Amount**: $49.00")
	assert.Contains(t, result.Response, "5-7 business days")

	assert.Equal(t, "the scroll wheel stopped working after a week",
		turn.Context.ContextString(ctxKeyRefundReason))
	assert.False(t, turn.Context.AwaitingInfo)
}

func TestHandleUsesReasonFromContext(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	h := NewHandler(finder, nil, nil, &testLogger{t: t})

	turn := newTurn("ok", models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	turn.Context.CurrentContext[ctxKeyRefundReason] = "item was defective on arrival"

	result, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, "item was defective on arrival", result.RefundData.RefundReason)
}

func TestHandleAIResponsePreferred(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	comp := &mockCompleter{reply: "Your refund for the Wireless Mouse has been approved."}
	cache := classify.NewResponseCache(time.Minute, 10)
	h := NewHandler(finder, comp, cache, &testLogger{t: t})

	turn := newTurn("refund because it never charged properly",
		models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	result, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)

	assert.True(t, result.Resolved)
	assert.Equal(t, comp.reply, result.Response)
	assert.Equal(t, 1, comp.calls)

	// second identical completion is served from cache
	turn2 := newTurn("refund because it never charged properly",
		models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	_, err = h.Handle(context.Background(), turn2)
	require.NoError(t, err)
	assert.Equal(t, 1, comp.calls)
}

func TestHandleAIFailureFallsBackToTemplate(t *testing.T) {
	finder := &mockFinder{record: testRecord()}
	comp := &mockCompleter{err: errors.New("rate limited")}
	h := NewHandler(finder, comp, nil, &testLogger{t: t})

	turn := newTurn("refund because the packaging arrived crushed",
		models.ExtractedEntities{InvoiceNo: "INV1001", CustomerID: "CUST123"})
	result, err := h.Handle(context.Background(), turn)
	require.NoError(t, err)

	assert.True(t, result.Resolved)
	assert.Contains(t, result.Response, "**Next Steps**")
	require.NotNil(t, result.RefundData)
}

// ==========================
// Reason Extraction Tests
// ==========================

func TestExtractReason(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "after because",
			text: "I want a refund because the item stopped working",
			want: "the item stopped working",
		},
		{
			name: "after due to",
			text: "Returning this due to a cracked screen on arrival",
			want: "a cracked screen on arrival",
		},
		{
			name: "first matching indicator wins",
			text: "this arrived broken sadly and I am unhappy",
			want: "sadly and i am unhappy",
		},
		{
			name: "short input without indicator",
			text: "refund now",
			want: "",
		},
		{
			name: "long input without indicator taken whole",
			text: "The product quality did not match the listing photos",
			want: "The product quality did not match the listing photos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractReason(tt.text))
		})
	}
}

func TestExtractReasonCapsLength(t *testing.T) {
	long := "because "
	for i := 0; i < 60; i++ {
		long += "qualityissue "
	}
	got := ExtractReason(long)
	assert.Len(t, got, maxReasonLength)
}

func TestValidateReason(t *testing.T) {
	msg, ok := validateReason("short")
	assert.False(t, ok)
	assert.Contains(t, msg, "at least 10 characters")

	long := ""
	for i := 0; i < 60; i++ {
		long += "0123456789"
	}
	msg, ok = validateReason(long)
	assert.False(t, ok)
	assert.Contains(t, msg, "maximum 500 characters")

	_, ok = validateReason("item arrived damaged")
	assert.True(t, ok)
}
