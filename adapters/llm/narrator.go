package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketintel/domain/core"
	"marketintel/domain/insights"
	"marketintel/internal"
	"marketintel/internal/config"
	"marketintel/ports"
)

// Completer sends one prompt to a language model and returns its reply
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// chatCompleter adapts an LLMClient to Completer
type chatCompleter struct {
	client    ports.LLMClient
	model     string
	maxTokens int
}

func (c chatCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return c.client.ChatCompletion(ctx, c.model, prompt, c.maxTokens)
}

// NewChatCompleter wraps a chat-completion client
func NewChatCompleter(client ports.LLMClient, model string, maxTokens int) Completer {
	return chatCompleter{client: client, model: model, maxTokens: maxTokens}
}

// Narrator writes executive summaries with a language model
type Narrator struct {
	name    string
	model   Completer
	timeout time.Duration
	logger  *internal.Logger
}

var _ ports.NarrativeGenerator = (*Narrator)(nil)

// NewNarrator creates a narrator around any Completer
func NewNarrator(name string, model Completer, timeout time.Duration, logger *internal.Logger) *Narrator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Narrator{name: name, model: model, timeout: timeout, logger: logger}
}

func (n *Narrator) Name() string { return n.name }

// Summarize returns the model's executive summary of the rows. An empty
// table short-circuits to EmptyStatsMessage without calling the model.
func (n *Narrator) Summarize(ctx context.Context, rows []insights.StatsRow) (string, error) {
	if len(rows) == 0 {
		return EmptyStatsMessage, nil
	}
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := n.model.Complete(ctx, BuildSummaryPrompt(rows))
	if err != nil {
		return "", fmt.Errorf("%s narrative failed: %w", n.name, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%s narrative failed: %w: empty reply", n.name, core.ErrMalformedResponse)
	}
	n.logger.Info("[Narrator] %s summarized %d metrics in %v", n.name, len(rows), time.Since(start).Round(time.Millisecond))
	return reply, nil
}

// NewFromConfig builds the configured model-backed narrator. The heuristic
// provider has no model and is built by the caller.
func NewFromConfig(ctx context.Context, cfg config.NarrativeConfig, logger *internal.Logger) (*Narrator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		return NewNarrator(client.Name(), client, cfg.Timeout, logger), nil
	case config.ProviderOpenAI:
		client, err := newLLMClient(Config{
			Model:       cfg.OpenAIModel,
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return NewNarrator("openai:"+cfg.OpenAIModel, NewChatCompleter(client, cfg.OpenAIModel, cfg.MaxTokens), cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("no model-backed narrator for provider %q", cfg.Provider)
	}
}
