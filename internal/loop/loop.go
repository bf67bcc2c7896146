// Package loop drives the iterative generate-evaluate-refine cycle for one
// customer report: produce a draft, judge it, and either accept it or feed
// the judge's feedback into the next draft, until the score threshold is met
// or the iteration budget runs out.
package loop

import (
	"context"
	"fmt"
	"time"

	"rmreport/internal/evaluator"
	"rmreport/internal/generator"
)

// TerminationReason states why the loop stopped.
type TerminationReason string

const (
	// ScoreMet means a draft reached the configured score threshold.
	ScoreMet TerminationReason = "score_met"
	// BudgetExhausted means the iteration budget ran out before any draft
	// reached the threshold; the last draft stands as final.
	BudgetExhausted TerminationReason = "budget_exhausted"
)

// Producer generates one report draft.
type Producer interface {
	Produce(ctx context.Context, req generator.Request) (string, error)
}

// Judge scores one report draft.
type Judge interface {
	Evaluate(ctx context.Context, req evaluator.Request) (evaluator.Evaluation, error)
}

// Iteration is one completed generate/evaluate cycle. Never mutated after
// creation. Error carries any backend failure that was degraded into content
// during the cycle, for the transcript.
type Iteration struct {
	Index         int
	Draft         string
	Score         int
	Feedback      string
	RawEvaluation string
	Error         string
	Timestamp     time.Time
}

// Sink receives each completed iteration and must make it durable before
// returning, so partial progress survives a crash between cycles.
type Sink interface {
	AppendIteration(it Iteration) error
}

// Result summarizes a finished run. FinalDraft is always the draft of the
// last executed iteration, whether or not it met the threshold.
type Result struct {
	FinalDraft    string
	FinalScore    int
	IterationsRun int
	Reason        TerminationReason
}

// Input is the immutable per-customer context fed into every cycle.
type Input struct {
	Profile string
	News    string
}

// Config bounds and gates the loop.
type Config struct {
	MaxIterations  int
	ScoreThreshold int
}

// Controller owns the loop state machine. Stateless across runs; one Run per
// customer.
type Controller struct {
	producer Producer
	judge    Judge
	sink     Sink
	cfg      Config
}

func New(producer Producer, judge Judge, sink Sink, cfg Config) *Controller {
	return &Controller{producer: producer, judge: judge, sink: sink, cfg: cfg}
}

// Run executes generate/evaluate cycles until the score threshold is met or
// MaxIterations cycles have run. Backend failures degrade rather than abort:
// a failed generation leaves a failure notice as the draft, a failed
// evaluation scores the lowest score, and in both cases the loop continues.
// The only returned errors are sink failures, because losing the transcript
// violates the durability contract.
func (c *Controller) Run(ctx context.Context, in Input) (Result, error) {
	var (
		priorDraft    string
		priorFeedback string
		last          Iteration
	)

	for index := 1; ; index++ {
		it := Iteration{Index: index}

		draft, err := c.producer.Produce(ctx, generator.Request{
			Profile:       in.Profile,
			News:          in.News,
			PriorDraft:    priorDraft,
			PriorFeedback: priorFeedback,
			Iteration:     index,
		})
		if err != nil {
			// Degrade: keep the cycle alive with a failure notice so the
			// judge and transcript still see content.
			draft = fmt.Sprintf("Report generation failed: %v", err)
			it.Error = err.Error()
		}
		it.Draft = draft

		eval, err := c.judge.Evaluate(ctx, evaluator.Request{
			Profile:   in.Profile,
			News:      in.News,
			Draft:     draft,
			Iteration: index,
		})
		if err != nil {
			eval = evaluator.Evaluation{
				Score:    evaluator.DefaultScore,
				Feedback: fmt.Sprintf("Evaluation failed: %v", err),
				Raw:      "",
			}
			if it.Error != "" {
				it.Error += "; "
			}
			it.Error += err.Error()
		}

		it.Score = eval.Score
		it.Feedback = eval.Feedback
		it.RawEvaluation = eval.Raw
		it.Timestamp = time.Now()
		last = it

		if c.sink != nil {
			if err := c.sink.AppendIteration(it); err != nil {
				return Result{}, fmt.Errorf("failed to persist iteration %d: %w", index, err)
			}
		}

		if it.Score >= c.cfg.ScoreThreshold {
			return c.result(last, ScoreMet), nil
		}
		if index == c.cfg.MaxIterations {
			return c.result(last, BudgetExhausted), nil
		}

		priorDraft = it.Draft
		priorFeedback = it.Feedback
	}
}

func (c *Controller) result(last Iteration, reason TerminationReason) Result {
	return Result{
		FinalDraft:    last.Draft,
		FinalScore:    last.Score,
		IterationsRun: last.Index,
		Reason:        reason,
	}
}
