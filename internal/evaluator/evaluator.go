// Package evaluator scores report drafts through the language-model backend
// and extracts the judge's score and feedback from its free-text reply.
//
// The reply grammar is deliberately narrow and must not be widened:
//
//	Score: <integer 1-5>        -- first line containing "Score:"
//	Feedback: <free text>       -- everything after the first "Feedback:"
//
// Parse failures never abort the loop: a missing or unparseable score
// defaults to the lowest score so the loop keeps refining, and missing
// feedback is replaced by a fixed placeholder.
package evaluator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rmreport/internal/llm"
)

// DefaultScore is the fail-safe score used when the judge's reply carries no
// parseable score line.
const DefaultScore = 1

// NoFeedback is the placeholder used when the reply has no Feedback section.
const NoFeedback = "No specific feedback provided"

const systemPrompt = `You are a senior quality assessor specializing in wealth management reports.
You evaluate reports based on:
- Completeness of all three sections (Customer Profile, Wealth Portfolio, Market News)
- Accuracy and relevance of insights
- Professional presentation and formatting
- Language quality (Traditional Chinese in Cantonese tone & British English)
You rate reports on a scale of 1-5.`

// Request carries one draft to be judged.
type Request struct {
	Profile   string
	News      string
	Draft     string
	Iteration int
}

// Evaluation is the judge's verdict on one draft. Raw preserves the full
// backend reply for the transcript.
type Evaluation struct {
	Score    int
	Feedback string
	Raw      string
}

// Evaluator is a stateless draft judge.
type Evaluator struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Evaluator {
	return &Evaluator{provider: provider}
}

// Evaluate sends the rubric prompt and parses the reply. Backend failures
// are returned as errors; parse failures are not errors (see package doc).
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (Evaluation, error) {
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildRubricPrompt(req)},
	}

	raw, err := e.provider.Invoke(ctx, messages)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluation failed: %w", err)
	}

	return Evaluation{
		Score:    ParseScore(raw),
		Feedback: ParseFeedback(raw),
		Raw:      raw,
	}, nil
}

func buildRubricPrompt(req Request) string {
	return fmt.Sprintf(`Evaluate this wealth management report (iteration %d).

Check for:
1. THREE complete sections: [Customer Profile], [Wealth Portfolio], [Market News]
2. Customer Profile: Insightful analysis with actionable recommendations (in Traditional Chinese)
3. Wealth Portfolio: Personalized investment suggestions (in Traditional Chinese)
4. Market News: 3 relevant items with clear relevance to customer (in Traditional Chinese)
5. Professional formatting with bullet points
6. Language quality and appropriateness

The original content:
customer_profile:
================================================================
%s
================================================================

market_news:
================================================================
%s
================================================================

The report to evaluate:
%s

Format your response as:
Score: [1-5]
Feedback: [Specific improvements needed if score < 5]

Score criteria:
5 = All sections complete, excellent insights, perfect language use
4 = All sections present, good insights, minor language issues
3 = Missing elements or weak insights
2 = Major omissions or poor quality
1 = Incomplete or unusable`, req.Iteration, req.Profile, req.News, req.Draft)
}

// ParseScore extracts the score from a judge reply: the first line containing
// "Score:", the token after the colon, parsed as a leading integer. Any
// failure yields DefaultScore.
func ParseScore(raw string) int {
	for _, line := range strings.Split(raw, "\n") {
		idx := strings.Index(line, "Score:")
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(line[idx+len("Score:"):])
		token, _, _ := strings.Cut(rest, " ")
		score, err := strconv.Atoi(leadingDigits(token))
		if err != nil {
			return DefaultScore
		}
		return score
	}
	return DefaultScore
}

// leadingDigits returns the run of decimal digits at the start of s, so
// tokens like "4/5" or "5." still parse.
func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// ParseFeedback returns the trimmed text after the first "Feedback:" marker,
// or NoFeedback when the marker is absent.
func ParseFeedback(raw string) string {
	idx := strings.Index(raw, "Feedback:")
	if idx < 0 {
		return NoFeedback
	}
	feedback := strings.TrimSpace(raw[idx+len("Feedback:"):])
	if feedback == "" {
		return NoFeedback
	}
	return feedback
}
