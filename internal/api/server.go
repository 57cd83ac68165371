// internal/api/server.go

// Package api exposes the chat engine over HTTP JSON.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"support-chat/internal/common/logger"
	"support-chat/internal/common/observability"
	"support-chat/internal/support/convlog"
	"support-chat/internal/support/engine"
)

const maxBodyBytes = 64 * 1024

// TurnProcessor runs one chat turn. Satisfied by *engine.Engine.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, sessionID, raw string) (*engine.TurnResult, error)
	ForgetSession(sessionID string)
}

// SessionCleaner clears per-session redis state. Satisfied by *session.Store.
type SessionCleaner interface {
	DeleteSession(ctx context.Context, sessionID string) error
}

// LogReader exports and clears persisted conversation records. Satisfied by
// *convlog.Store.
type LogReader interface {
	SessionLogs(ctx context.Context, sessionID string) ([]convlog.LogEntry, error)
	RefundRequests(ctx context.Context, sessionID string) ([]convlog.RefundEntry, error)
	CleanupSession(ctx context.Context, sessionID string) error
}

type Server struct {
	engine   TurnProcessor
	sessions SessionCleaner
	logs     LogReader
	obs      *observability.Observability
	logger   logger.Logger
}

func NewServer(eng TurnProcessor, sessions SessionCleaner, logs LogReader, obs *observability.Observability, log logger.Logger) *Server {
	return &Server{
		engine:   eng,
		sessions: sessions,
		logs:     logs,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Routes builds the HTTP mux for the chat API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/sessions/{id}/logs", s.handleSessionLogs)
	mux.HandleFunc("GET /api/sessions/{id}/refunds", s.handleSessionRefunds)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	start := time.Now()
	result, err := s.engine.ProcessTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		s.obs.RecordTurnProcessed(r.Context(), "error")
		s.logger.Error("turn failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, "turn processing failed")
		return
	}
	s.obs.RecordTurnProcessed(r.Context(), "ok")
	s.obs.RecordTurnDuration(r.Context(), time.Since(start), "ok")

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSessionLogs(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	entries, err := s.logs.SessionLogs(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("log export failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, "log export failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"logs":       entries,
	})
}

func (s *Server) handleSessionRefunds(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	entries, err := s.logs.RefundRequests(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("refund export failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, "refund export failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"refunds":    entries,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := s.sessions.DeleteSession(r.Context(), sessionID); err != nil {
		s.logger.Error("session delete failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, "session delete failed")
		return
	}
	if err := s.logs.CleanupSession(r.Context(), sessionID); err != nil {
		s.logger.Error("session log cleanup failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, "session cleanup failed")
		return
	}
	s.engine.ForgetSession(sessionID)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"deleted":    true,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
