// internal/support/convlog/convlog.go

// Package convlog persists the audit trail: one row per conversation
// exchange plus the refund requests a session produced.
package convlog

import (
	"context"
	"database/sql"
	"time"

	apperrors "support-chat/internal/common/errors"
	"support-chat/internal/common/logger"
	"support-chat/internal/models"
)

// LogEntry is one recorded conversation exchange.
type LogEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	UserInput     string    `json:"user_input"`
	AgentResponse string    `json:"agent_response"`
	Category      string    `json:"category"`
	Resolved      bool      `json:"resolved"`
	NeedsFollowup bool      `json:"needs_followup"`
}

// RefundEntry is one recorded refund request.
type RefundEntry struct {
	Timestamp          time.Time `json:"timestamp"`
	CustomerID         string    `json:"customer_id"`
	InvoiceNo          string    `json:"invoice_no"`
	StockCode          string    `json:"stock_code"`
	ProductDescription string    `json:"product_description"`
	Quantity           int       `json:"quantity"`
	UnitPrice          float64   `json:"unit_price"`
	RefundReason       string    `json:"refund_reason"`
	Status             string    `json:"status"`
}

// Store writes and reads the conversation audit trail.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "convlog"}),
	}
}

// EnsureSchema creates the audit tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS conversation_logs (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
			user_input TEXT NOT NULL,
			agent_response TEXT NOT NULL,
			category TEXT NOT NULL,
			resolved BOOLEAN NOT NULL,
			needs_followup BOOLEAN NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS refund_requests (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
			customer_id TEXT NOT NULL,
			invoice_no TEXT NOT NULL,
			stock_code TEXT NOT NULL,
			product_description TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL,
			refund_reason TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_logs_session ON conversation_logs (session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_refund_requests_session ON refund_requests (session_id)`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// LogConversation records one exchange. Failures are logged and swallowed:
// the audit trail is best-effort and never fails a turn.
func (s *Store) LogConversation(ctx context.Context, sessionID string, result *models.HandlerResult, userInput string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_logs
			(session_id, user_input, agent_response, category, resolved, needs_followup)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sessionID, userInput, result.Response, string(result.Category), result.Resolved, result.NeedsFollowup)
	if err != nil {
		s.logger.Error("failed to log conversation", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}
}

// LogRefundRequest records a completed refund request with status pending.
func (s *Store) LogRefundRequest(ctx context.Context, sessionID string, data *models.RefundData) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refund_requests
			(session_id, customer_id, invoice_no, stock_code,
			 product_description, quantity, unit_price, refund_reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')`,
		sessionID, data.CustomerID, data.InvoiceNo, data.StockCode,
		data.ProductDescription, data.Quantity, data.UnitPrice, data.RefundReason)
	if err != nil {
		s.logger.Error("failed to log refund request", map[string]interface{}{
			"sessionId": sessionID,
			"invoiceNo": data.InvoiceNo,
			"error":     err.Error(),
		})
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// SessionLogs returns the conversation history for export, oldest first.
func (s *Store) SessionLogs(ctx context.Context, sessionID string) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, user_input, agent_response, category, resolved, needs_followup
		FROM conversation_logs
		WHERE session_id = $1
		ORDER BY timestamp`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Timestamp, &e.UserInput, &e.AgentResponse, &e.Category, &e.Resolved, &e.NeedsFollowup); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RefundRequests returns the refund requests a session produced, oldest first.
func (s *Store) RefundRequests(ctx context.Context, sessionID string) ([]RefundEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, customer_id, invoice_no, stock_code,
		       product_description, quantity, unit_price, refund_reason, status
		FROM refund_requests
		WHERE session_id = $1
		ORDER BY timestamp`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RefundEntry
	for rows.Next() {
		var e RefundEntry
		if err := rows.Scan(&e.Timestamp, &e.CustomerID, &e.InvoiceNo, &e.StockCode,
			&e.ProductDescription, &e.Quantity, &e.UnitPrice, &e.RefundReason, &e.Status); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CleanupSession deletes all rows tied to the session. Used by the privacy
// endpoint; the deletes run in one transaction so a partial wipe cannot
// leak rows.
func (s *Store) CleanupSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, stmt := range []string{
		"DELETE FROM conversation_logs WHERE session_id = $1",
		"DELETE FROM refund_requests WHERE session_id = $1",
	} {
		if _, err := tx.ExecContext(ctx, stmt, sessionID); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
