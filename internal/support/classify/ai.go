// internal/support/classify/ai.go
package classify

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"support-chat/internal/common/config"
	apperrors "support-chat/internal/common/errors"
	"support-chat/internal/common/logger"
)

var (
	ErrEmptyCompletion = errors.New("EMPTY_COMPLETION")
)

// Completer is the minimal text-completion capability the classifier and
// handlers depend on. Implementations must return an error rather than a
// partial reply on failure.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userInput string) (string, error)
}

// OpenAICompleter implements Completer on the OpenAI chat completions API.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAICompleter(cfg config.OpenAIConfig) *OpenAICompleter {
	return &OpenAICompleter{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt, userInput string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userInput,
			},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperrors.NewCompletionTimeoutError()
		}
		return "", apperrors.NewCompletionFailedError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// AIClassifier wraps a Completer with caching and reply parsing.
// A nil Completer means the capability is not configured.
type AIClassifier struct {
	completer Completer
	cache     *ResponseCache
	logger    logger.Logger
}

func NewAIClassifier(completer Completer, cache *ResponseCache, log logger.Logger) *AIClassifier {
	return &AIClassifier{
		completer: completer,
		cache:     cache,
		logger:    log.WithFields(map[string]interface{}{"component": "ai-classifier"}),
	}
}

// Available reports whether the completion capability is configured.
func (a *AIClassifier) Available() bool {
	return a != nil && a.completer != nil
}

// Classify asks the completion capability to categorize text. Any failure,
// including an unconfigured capability, yields nil: the AI layer abstains
// and the reconciler falls back to the rule category.
func (a *AIClassifier) Classify(ctx context.Context, text string) *Result {
	if !a.Available() {
		return nil
	}

	reply, err := a.completeWithCache(ctx, TriageSystemPrompt, text)
	if err != nil {
		a.logger.Warn("completion failed, abstaining", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	parsed := ParseReply(reply)
	if !parsed.HasCategory {
		a.logger.Warn("no category in completion reply, abstaining", map[string]interface{}{
			"replyLength": len(reply),
		})
		return nil
	}

	return parsed.toResult()
}

func (a *AIClassifier) completeWithCache(ctx context.Context, prompt, input string) (string, error) {
	key := a.cache.Key(prompt, input, nil)
	if cached, ok := a.cache.Get(key); ok {
		a.logger.Debug("cache hit", map[string]interface{}{"key": key})
		return cached, nil
	}

	reply, err := a.completer.Complete(ctx, prompt, input)
	if err != nil {
		return "", err
	}

	a.cache.Put(key, reply)
	return reply, nil
}
