// internal/support/engine/engine.go

// Package engine runs the turn pipeline: quota, normalization, entity
// extraction, classification, reconciliation, routing, handler dispatch and
// persistence. One turn in, one response out; the pipeline never crashes the
// caller.
package engine

import (
	"context"
	"sync"
	"time"

	"support-chat/internal/common/logger"
	"support-chat/internal/common/metrics"
	"support-chat/internal/models"
	"support-chat/internal/support/classify"
	"support-chat/internal/support/entities"
	"support-chat/internal/support/normalize"
	"support-chat/internal/support/notify"
	"support-chat/internal/support/route"
	"support-chat/internal/support/session"
)

const fallbackResponse = "I'm sorry, I'm having trouble processing your request. Please try again."

// Handler is a specialist that owns one routed turn.
type Handler interface {
	Handle(ctx context.Context, turn *models.Turn) (*models.HandlerResult, error)
}

// ConversationSink persists turn outcomes. Writes are best effort except
// refund requests, whose failure is surfaced in the turn metadata.
type ConversationSink interface {
	LogConversation(ctx context.Context, sessionID string, result *models.HandlerResult, userInput string)
	LogRefundRequest(ctx context.Context, sessionID string, data *models.RefundData) error
}

// Escalator notifies the CRM team about turns needing human follow-up.
type Escalator interface {
	Escalate(ctx context.Context, esc *notify.Escalation) (*notify.Receipt, error)
}

// TurnResult is what the chat surface renders for one processed turn.
type TurnResult struct {
	SessionID     string                 `json:"session_id"`
	Response      string                 `json:"response"`
	Category      models.Category        `json:"category"`
	Confidence    float64                `json:"confidence"`
	Resolved      bool                   `json:"resolved"`
	NeedsFollowup bool                   `json:"needs_followup"`
	NeedsMoreInfo bool                   `json:"needs_more_info"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type Engine struct {
	classifier *classify.AIClassifier
	store      *session.Store
	quota      *session.Quota
	handlers   map[models.RouteTarget]Handler
	sink       ConversationSink
	escalator  Escalator
	aiTimeout  time.Duration
	logger     logger.Logger

	// per-session serialization: the context read-then-write is not atomic
	locks sync.Map
}

type Options struct {
	Classifier *classify.AIClassifier
	Store      *session.Store
	Quota      *session.Quota
	Handlers   map[models.RouteTarget]Handler
	Sink       ConversationSink
	Escalator  Escalator
	AITimeout  time.Duration
}

func New(opts Options, log logger.Logger) *Engine {
	aiTimeout := opts.AITimeout
	if aiTimeout <= 0 {
		aiTimeout = 10 * time.Second
	}
	return &Engine{
		classifier: opts.Classifier,
		store:      opts.Store,
		quota:      opts.Quota,
		handlers:   opts.Handlers,
		sink:       opts.Sink,
		escalator:  opts.Escalator,
		aiTimeout:  aiTimeout,
		logger:     log.WithFields(map[string]interface{}{"component": "engine"}),
	}
}

// ProcessTurn runs one customer message through the full pipeline. Any panic
// or handler error inside the turn resolves to a fixed apologetic response
// rather than an error to the caller.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, raw string) (result *TurnResult, err error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("turn panicked", map[string]interface{}{
				"sessionId": sessionID,
				"panic":     r,
			})
			metrics.TurnsFailed.WithLabelValues("PANIC").Inc()
			result = e.failedTurn(sessionID)
			err = nil
		}
	}()

	allowed, quotaErr := e.quota.Allow(ctx, sessionID)
	if quotaErr != nil {
		e.logger.Warn("quota check failed, allowing turn", map[string]interface{}{
			"sessionId": sessionID,
			"error":     quotaErr.Error(),
		})
		allowed = true
	}
	if !allowed {
		metrics.QuotaRejections.Inc()
		return &TurnResult{
			SessionID:  sessionID,
			Response:   session.LimitMessage,
			Category:   models.CategoryOther,
			Confidence: 1.0,
			Metadata:   map[string]interface{}{"quota_exceeded": true},
		}, nil
	}
	if consumeErr := e.quota.Consume(ctx, sessionID); consumeErr != nil {
		e.logger.Warn("quota increment failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     consumeErr.Error(),
		})
	}

	text, normErr := normalize.Normalize(raw)
	if normErr != nil {
		if ve, ok := normErr.(*normalize.ValidationError); ok {
			return &TurnResult{
				SessionID:     sessionID,
				Response:      ve.Message,
				Category:      models.CategoryOther,
				Confidence:    1.0,
				NeedsMoreInfo: true,
				Metadata:      map[string]interface{}{"validation_error": ve.Code},
			}, nil
		}
		metrics.TurnsFailed.WithLabelValues("NORMALIZE_FAILED").Inc()
		return e.failedTurn(sessionID), nil
	}

	sctx, ctxErr := e.store.GetContext(ctx, sessionID)
	if ctxErr != nil {
		e.logger.Warn("context load failed, starting fresh", map[string]interface{}{
			"sessionId": sessionID,
			"error":     ctxErr.Error(),
		})
		sctx = models.NewSessionContext()
	}

	ents := entities.Extract(text)
	ruleCategory := classify.ClassifyRule(text)

	var aiResult *classify.Result
	if e.classifier.Available() {
		aiCtx, cancel := context.WithTimeout(ctx, e.aiTimeout)
		aiResult = e.classifier.Classify(aiCtx, text)
		cancel()
	}

	final := classify.Reconcile(aiResult, ruleCategory, text)
	decision := route.Route(final.Category, final.Confidence, text)
	metrics.RouteDecisions.WithLabelValues(string(decision.Target)).Inc()

	turn := &models.Turn{
		SessionID:  sessionID,
		Text:       text,
		Entities:   ents,
		Category:   final.Category,
		Confidence: decision.Confidence,
		Context:    sctx,
	}

	handler, ok := e.handlers[decision.Target]
	if !ok {
		e.logger.Error("no handler for route target", map[string]interface{}{
			"target": string(decision.Target),
		})
		metrics.TurnsFailed.WithLabelValues("NO_HANDLER").Inc()
		return e.failedTurn(sessionID), nil
	}

	hr, handleErr := handler.Handle(ctx, turn)
	if handleErr != nil {
		e.logger.Error("handler failed", map[string]interface{}{
			"sessionId": sessionID,
			"target":    string(decision.Target),
			"error":     handleErr.Error(),
		})
		metrics.TurnsFailed.WithLabelValues("HANDLER_FAILED").Inc()
		return e.failedTurn(sessionID), nil
	}

	e.finishTurn(ctx, sessionID, text, turn, hr)

	metrics.TurnsProcessed.WithLabelValues(string(hr.Category)).Inc()
	metrics.TurnDuration.WithLabelValues(string(hr.Category)).Observe(time.Since(start).Seconds())

	return &TurnResult{
		SessionID:     sessionID,
		Response:      hr.Response,
		Category:      hr.Category,
		Confidence:    hr.Confidence,
		Resolved:      hr.Resolved,
		NeedsFollowup: hr.NeedsFollowup,
		NeedsMoreInfo: hr.NeedsMoreInfo,
		Metadata:      hr.Metadata,
	}, nil
}

// finishTurn runs the write-back side of the pipeline. Everything here is
// best effort: a persistence failure degrades the record, not the response.
func (e *Engine) finishTurn(ctx context.Context, sessionID, text string, turn *models.Turn, hr *models.HandlerResult) {
	next := hr.Context
	if next == nil {
		next = turn.Context
	}
	if putErr := e.store.PutContext(ctx, sessionID, next); putErr != nil {
		e.logger.Warn("context write failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     putErr.Error(),
		})
	}

	if e.sink != nil {
		e.sink.LogConversation(ctx, sessionID, hr, text)
		if hr.RefundData != nil {
			if refundErr := e.sink.LogRefundRequest(ctx, sessionID, hr.RefundData); refundErr != nil {
				e.logger.Error("refund request write failed", map[string]interface{}{
					"sessionId": sessionID,
					"invoiceNo": hr.RefundData.InvoiceNo,
					"error":     refundErr.Error(),
				})
				if hr.Metadata == nil {
					hr.Metadata = map[string]interface{}{}
				}
				hr.Metadata["refund_persisted"] = false
			}
		}
	}

	if e.escalator != nil && hr.NeedsFollowup {
		if _, escErr := e.escalator.Escalate(ctx, &notify.Escalation{
			SessionID: sessionID,
			Category:  hr.Category,
			UserInput: text,
			Response:  hr.Response,
			Reason:    "needs_followup",
		}); escErr != nil {
			e.logger.Warn("escalation failed", map[string]interface{}{
				"sessionId": sessionID,
				"error":     escErr.Error(),
			})
		}
	}
}

func (e *Engine) failedTurn(sessionID string) *TurnResult {
	return &TurnResult{
		SessionID:     sessionID,
		Response:      fallbackResponse,
		Category:      models.CategoryOther,
		Confidence:    0.4,
		NeedsFollowup: true,
	}
}

func (e *Engine) lockFor(sessionID string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// ForgetSession drops per-session engine state. Called when a session is
// deleted so the lock map does not grow without bound.
func (e *Engine) ForgetSession(sessionID string) {
	e.locks.Delete(sessionID)
}
