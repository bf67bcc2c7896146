// Package llm provides the language-model backend capability used by the
// report generator, judge, and translator.
package llm

import (
	"context"
	"strings"
	"time"
)

// Message is one chat message in an ordered conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a language-model backend: an ordered message sequence in,
// generated text out. Invocation failures are returned as errors, never
// embedded in the content.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, messages []Message) (string, error)
}

// ProviderConfig carries the per-provider connection settings.
type ProviderConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Select returns the provider named by name. Unknown names fall back to the
// Doubao provider rather than failing; the fallback is an explicit branch,
// not a catch-all.
func Select(name string, openAI, doubao ProviderConfig) Provider {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "OPENAI":
		return NewOpenAIProvider(openAI)
	case "DOUBAO":
		return NewDoubaoProvider(doubao)
	default:
		// Default provider for unrecognized configuration values.
		return NewDoubaoProvider(doubao)
	}
}
