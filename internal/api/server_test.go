// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chat/internal/common/logger"
	"support-chat/internal/common/observability"
	"support-chat/internal/models"
	"support-chat/internal/support/convlog"
	"support-chat/internal/support/engine"
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

type mockEngine struct {
	result    *engine.TurnResult
	err       error
	lastID    string
	lastRaw   string
	forgotten []string
}

func (m *mockEngine) ProcessTurn(ctx context.Context, sessionID, raw string) (*engine.TurnResult, error) {
	m.lastID = sessionID
	m.lastRaw = raw
	if m.err != nil {
		return nil, m.err
	}
	result := *m.result
	result.SessionID = sessionID
	return &result, nil
}

func (m *mockEngine) ForgetSession(sessionID string) {
	m.forgotten = append(m.forgotten, sessionID)
}

type mockCleaner struct {
	deleted []string
	err     error
}

func (m *mockCleaner) DeleteSession(ctx context.Context, sessionID string) error {
	m.deleted = append(m.deleted, sessionID)
	return m.err
}

type mockLogReader struct {
	logs       []convlog.LogEntry
	refunds    []convlog.RefundEntry
	cleaned    []string
	logsErr    error
	refundsErr error
	cleanupErr error
}

func (m *mockLogReader) SessionLogs(ctx context.Context, sessionID string) ([]convlog.LogEntry, error) {
	return m.logs, m.logsErr
}

func (m *mockLogReader) RefundRequests(ctx context.Context, sessionID string) ([]convlog.RefundEntry, error) {
	return m.refunds, m.refundsErr
}

func (m *mockLogReader) CleanupSession(ctx context.Context, sessionID string) error {
	m.cleaned = append(m.cleaned, sessionID)
	return m.cleanupErr
}

func setupServer(t *testing.T) (*mockEngine, *mockCleaner, *mockLogReader, http.Handler) {
	eng := &mockEngine{
		result: &engine.TurnResult{
			Response:   "handled",
			Category:   models.CategoryFAQ,
			Confidence: 0.9,
			Resolved:   true,
		},
	}
	cleaner := &mockCleaner{}
	reader := &mockLogReader{}
	server := NewServer(eng, cleaner, reader, &observability.Observability{}, &testLogger{t: t})
	return eng, cleaner, reader, server.Routes()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// ==========================
// Chat Endpoint Tests
// ==========================

func TestChatWithSessionID(t *testing.T) {
	eng, _, _, handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/chat",
		`{"session_id": "sess-1", "message": "what is the return policy"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-1", eng.lastID)
	assert.Equal(t, "what is the return policy", eng.lastRaw)

	var result engine.TurnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "sess-1", result.SessionID)
	assert.Equal(t, "handled", result.Response)
}

func TestChatMintsSessionID(t *testing.T) {
	eng, _, _, handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/chat", `{"message": "hello there"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, eng.lastID)

	var result engine.TurnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, eng.lastID, result.SessionID, "minted id is returned to the caller")
}

func TestChatRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"message": `},
		{name: "empty message", body: `{"session_id": "sess-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, handler := setupServer(t)
			rec := doJSON(t, handler, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChatEngineError(t *testing.T) {
	eng, _, _, handler := setupServer(t)
	eng.err = errors.New("redis down")

	rec := doJSON(t, handler, http.MethodPost, "/api/chat",
		`{"session_id": "sess-1", "message": "hello there"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ==========================
// Export Endpoint Tests
// ==========================

func TestSessionLogsExport(t *testing.T) {
	_, _, reader, handler := setupServer(t)
	reader.logs = []convlog.LogEntry{
		{
			Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			UserInput:     "what is the return policy",
			AgentResponse: "30 days",
			Category:      "faq",
			Resolved:      true,
		},
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/sess-1/logs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		SessionID string            `json:"session_id"`
		Logs      []convlog.LogEntry `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "sess-1", payload.SessionID)
	require.Len(t, payload.Logs, 1)
	assert.Equal(t, "faq", payload.Logs[0].Category)
}

func TestSessionRefundsExport(t *testing.T) {
	_, _, reader, handler := setupServer(t)
	reader.refunds = []convlog.RefundEntry{
		{InvoiceNo: "INV1001", CustomerID: "CUST123", Status: "pending"},
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/sess-1/refunds", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Refunds []convlog.RefundEntry `json:"refunds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Refunds, 1)
	assert.Equal(t, "INV1001", payload.Refunds[0].InvoiceNo)
}

func TestSessionExportErrors(t *testing.T) {
	_, _, reader, handler := setupServer(t)
	reader.logsErr = errors.New("db down")

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/sess-1/logs", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ==========================
// Session Delete Tests
// ==========================

func TestDeleteSession(t *testing.T) {
	eng, cleaner, reader, handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodDelete, "/api/sessions/sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"sess-1"}, cleaner.deleted)
	assert.Equal(t, []string{"sess-1"}, reader.cleaned)
	assert.Equal(t, []string{"sess-1"}, eng.forgotten)
}

func TestDeleteSessionStoreError(t *testing.T) {
	eng, cleaner, _, handler := setupServer(t)
	cleaner.err = errors.New("redis down")

	rec := doJSON(t, handler, http.MethodDelete, "/api/sessions/sess-1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, eng.forgotten)
}

// ==========================
// Health Tests
// ==========================

func TestHealthz(t *testing.T) {
	_, _, _, handler := setupServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
