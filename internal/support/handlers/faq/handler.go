// internal/support/handlers/faq/handler.go

// Package faq answers product and policy questions from the knowledge base.
package faq

import (
	"context"
	"fmt"
	"strings"

	"support-chat/internal/common/logger"
	"support-chat/internal/models"
	"support-chat/internal/support/classify"
	"support-chat/internal/support/faqstore"
)

const systemPrompt = `You are a knowledgeable customer support specialist. Your role is to:

1. Answer customer questions using the provided FAQ information
2. Be helpful, accurate, and comprehensive
3. If information isn't available, politely acknowledge limitations
4. Suggest contacting support for complex issues

RESPONSE GUIDELINES:
- Use the exact information from FAQ database when available
- Be conversational but professional
- Break down complex information into easy-to-understand points
- Offer additional help when appropriate
- If you can't answer definitively, be honest about limitations

TONE: Friendly, helpful, and professional`

const noMatchResponse = `I don't have specific information about your question in our current FAQ database.

However, I'd be happy to help you in other ways:
- Contact our customer support team for detailed assistance
- Check our website's help section for additional resources
- Let me know if you have other questions I might be able to answer

Is there anything else I can help you with today?`

// Terms whose presence suggests the reply carried concrete information.
var resolutionIndicators = []string{
	"specifications", "policy", "days", "warranty", "shipping",
	"payment", "return", "compatible", "dimensions", "price",
	"size", "weight", "material", "color", "model", "version",
}

// Phrases that mark a reply as inconclusive no matter how long it is.
var uncertaintyPhrases = []string{
	"i don't have", "not available", "contact support",
	"check our website", "i'm not sure", "unable to find",
}

type Config struct {
	TopK int
}

// Handler serves FAQ turns. The completion capability is optional: without
// it answers are assembled directly from the matched records.
type Handler struct {
	config    *Config
	store     *faqstore.Store
	completer classify.Completer
	cache     *classify.ResponseCache
	logger    logger.Logger
}

func NewHandler(config *Config, store *faqstore.Store, completer classify.Completer, cache *classify.ResponseCache, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		store:     store,
		completer: completer,
		cache:     cache,
		logger:    log.WithFields(map[string]interface{}{"handler": "faq"}),
	}
}

// Handle searches the knowledge base and assembles an answer.
func (h *Handler) Handle(ctx context.Context, turn *models.Turn) (*models.HandlerResult, error) {
	matches := Search(h.store.All(), turn.Text, h.config.TopK)

	if len(matches) == 0 {
		h.logger.Info("no FAQ match", map[string]interface{}{
			"sessionId": turn.SessionID,
		})
		return &models.HandlerResult{
			Response:      noMatchResponse,
			Resolved:      false,
			Category:      models.CategoryFAQ,
			Confidence:    turn.Confidence,
			NeedsFollowup: true,
			Metadata: map[string]interface{}{
				"faq_found":        false,
				"suggested_action": "contact_support",
			},
		}, nil
	}

	if h.completer != nil {
		if result := h.aiResponse(ctx, turn, matches); result != nil {
			return result, nil
		}
	}

	return h.directResponse(matches), nil
}

// aiResponse asks the completion capability to answer with the matched
// records as grounding. Returns nil on failure so Handle can fall back to
// the direct template.
func (h *Handler) aiResponse(ctx context.Context, turn *models.Turn, matches []models.FAQRecord) *models.HandlerResult {
	prompt := h.groundedPrompt(matches)

	reply, err := h.completeWithCache(ctx, prompt, turn.Text)
	if err != nil {
		h.logger.Warn("completion failed, falling back to direct answer", map[string]interface{}{
			"sessionId": turn.SessionID,
			"error":     err.Error(),
		})
		return nil
	}

	resolved := AssessResolution(reply)

	return &models.HandlerResult{
		Response:      reply,
		Resolved:      resolved,
		Category:      models.CategoryFAQ,
		Confidence:    0.8,
		NeedsFollowup: !resolved,
		Metadata: map[string]interface{}{
			"faq_found":    true,
			"matched_faqs": recordIDs(matches),
			"source":       "ai_enhanced",
		},
	}
}

// directResponse builds the answer from the matched records alone.
func (h *Handler) directResponse(matches []models.FAQRecord) *models.HandlerResult {
	best := matches[0]

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n%s", best.Question, best.Answer)

	if len(matches) > 1 {
		sb.WriteString("\n\n**Related Information:**\n")
		for _, rec := range matches[1:] {
			answer := rec.Answer
			if len(answer) > 100 {
				answer = answer[:100] + "..."
			}
			fmt.Fprintf(&sb, "- %s: %s\n", rec.Question, answer)
		}
	}

	sb.WriteString("\n\nIs there anything else I can help you with regarding this topic?")

	return &models.HandlerResult{
		Response:   sb.String(),
		Resolved:   true,
		Category:   models.CategoryFAQ,
		Confidence: 0.9,
		Metadata: map[string]interface{}{
			"faq_found":    true,
			"matched_faqs": recordIDs(matches),
			"source":       "direct_faq",
		},
	}
}

func (h *Handler) groundedPrompt(matches []models.FAQRecord) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nRELEVANT FAQ INFORMATION:\n\n")
	for i, rec := range matches {
		fmt.Fprintf(&sb, "%d. Q: %s\n", i+1, rec.Question)
		fmt.Fprintf(&sb, "   A: %s\n", rec.Answer)
		fmt.Fprintf(&sb, "   Category: %s\n\n", rec.Category)
	}
	return sb.String()
}

func (h *Handler) completeWithCache(ctx context.Context, prompt, input string) (string, error) {
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

// AssessResolution estimates whether a generated answer settled the
// question. An uncertainty phrase always marks it unresolved; otherwise a
// substantial answer naming at least two domain terms counts as resolved.
func AssessResolution(response string) bool {
	lower := strings.ToLower(response)

	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	if len(response) <= 100 {
		return false
	}

	count := 0
	for _, indicator := range resolutionIndicators {
		if strings.Contains(lower, indicator) {
			count++
		}
	}
	return count >= 2
}

func recordIDs(records []models.FAQRecord) []int {
	ids := make([]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}
