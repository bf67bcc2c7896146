// Package translate renders the accepted Traditional Chinese report into
// British English. Two engines are available: the language-model backend
// (default) and Google Cloud Translate.
package translate

import (
	"context"
	"fmt"
	"strings"

	"rmreport/internal/llm"
	"rmreport/internal/postprocess"
)

// FailedMarker is the artifact content used when translation fails; the
// Chinese original is always persisted separately, so the run still
// completes.
const FailedMarker = "Translation failed. Original Chinese text preserved."

// Translator renders a final report into the secondary target language.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text string) (string, error)
}

// Select returns the translator for the configured engine name. Unknown
// engines take the default branch: the LLM engine.
func Select(engine string, provider llm.Provider, credentials string) Translator {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "google":
		return NewGoogleTranslator(credentials)
	case "llm":
		return NewLLMTranslator(provider)
	default:
		return NewLLMTranslator(provider)
	}
}

// LLMTranslator makes a single non-iterative backend call with a fixed
// translation instruction.
type LLMTranslator struct {
	provider llm.Provider
}

func NewLLMTranslator(provider llm.Provider) *LLMTranslator {
	return &LLMTranslator{provider: provider}
}

func (t *LLMTranslator) Name() string {
	return "llm"
}

func (t *LLMTranslator) Translate(ctx context.Context, text string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: "You are a professional translator specializing in financial and wealth management content."},
		{Role: "user", Content: fmt.Sprintf("Translate the following Traditional Chinese text to British English, maintaining the professional tone and all formatting (including bullet points and section headers).\n\n%s", text)},
	}

	translated, err := t.provider.Invoke(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	return postprocess.Clean(translated), nil
}
