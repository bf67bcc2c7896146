// Package generator produces wealth management report drafts through the
// language-model backend.
package generator

import (
	"context"
	"fmt"

	"rmreport/internal/llm"
	"rmreport/internal/postprocess"
)

// systemPrompt frames the backend as the report-writing agent.
const systemPrompt = `You are an expert wealth management advisor with years of experience in:
- Customer profiling and behavioral analysis
- Investment portfolio management and optimization
- Market analysis and trend identification
You excel at creating personalized, actionable insights for Relationship Managers.
You are fluent in both Traditional Chinese (Cantonese tone) and British English.`

// Request carries everything one draft needs. PriorDraft and PriorFeedback
// are empty on the first iteration and required afterwards.
type Request struct {
	Profile       string
	News          string
	PriorDraft    string
	PriorFeedback string
	Iteration     int
}

// Generator is a stateless draft producer; all per-invocation context comes
// in through the Request.
type Generator struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Produce asks the backend for one report draft. The prompt is built
// deterministically from the request; no structural validation of the reply
// is performed here; the evaluator is the only structural gate. Backend
// failures are returned as errors for the loop to handle.
func (g *Generator) Produce(ctx context.Context, req Request) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: BuildPrompt(req)},
	}

	draft, err := g.provider.Invoke(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("report generation failed: %w", err)
	}
	return postprocess.Clean(draft), nil
}

// BuildPrompt renders the task description. Iteration 1 uses the first-pass
// template; later iterations embed the prior draft and the judge's feedback.
func BuildPrompt(req Request) string {
	if req.Iteration <= 1 {
		return fmt.Sprintf(`Generate a comprehensive wealth management report for a Relationship Manager meeting.

Below is the customer profile
================================================================
%s
================================================================

Below is the latest market news
================================================================
%s
================================================================

IMPORTANT REQUIREMENTS:
1. Create THREE distinct sections: [Customer Profile], [Wealth Portfolio], [Market News]
2. Use bullet points for clarity
3. Write [Customer Profile], [Wealth Portfolio] and [Market News] in Traditional Chinese (Cantonese tone)
4. Keep content professional and actionable

Structure your output EXACTLY as follows:

[Customer Profile]
• [Analyse customer data and provide key insights]
• [Include actionable recommendations]

[Wealth Portfolio]
• [Personalised investment recommendations based on customer profile]
• [Asset allocation adjustment suggestions]
• [Portfolio optimisation opportunities]

[Market News]
• [Select 3 most relevant market news items]
• [Brief summary with relevance to customer]
• [Include actionable insights]
`, req.Profile, req.News)
	}

	return fmt.Sprintf(`You are on iteration %d of improving the wealth management report.

Your previous report:
%s

Judge's feedback:
%s

Please create an improved report addressing the feedback while maintaining the three-section structure.

customer profile
================================================================
%s
================================================================

latest market news
================================================================
%s
================================================================

Remember to:
1. Maintain THREE sections: [Customer Profile], [Wealth Portfolio], [Market News]
2. Use bullet points
3. [Customer Profile], [Wealth Portfolio] and [Market News] in Traditional Chinese (Cantonese tone)
4. Address all feedback points`, req.Iteration, req.PriorDraft, req.PriorFeedback, req.Profile, req.News)
}
