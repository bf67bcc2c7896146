package loop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"rmreport/internal/evaluator"
	"rmreport/internal/generator"
)

type scriptedProducer struct {
	drafts []string
	errs   []error
	calls  []generator.Request
}

func (p *scriptedProducer) Produce(ctx context.Context, req generator.Request) (string, error) {
	p.calls = append(p.calls, req)
	i := len(p.calls) - 1
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.drafts) {
		return p.drafts[i], nil
	}
	return fmt.Sprintf("draft %d", i+1), nil
}

type scriptedJudge struct {
	scores   []int
	feedback []string
	errs     []error
	calls    []evaluator.Request
}

func (j *scriptedJudge) Evaluate(ctx context.Context, req evaluator.Request) (evaluator.Evaluation, error) {
	j.calls = append(j.calls, req)
	i := len(j.calls) - 1
	if i < len(j.errs) && j.errs[i] != nil {
		return evaluator.Evaluation{}, j.errs[i]
	}
	score := 1
	if i < len(j.scores) {
		score = j.scores[i]
	}
	fb := "needs work"
	if i < len(j.feedback) {
		fb = j.feedback[i]
	}
	return evaluator.Evaluation{Score: score, Feedback: fb, Raw: fmt.Sprintf("Score: %d\nFeedback: %s", score, fb)}, nil
}

type memorySink struct {
	iterations []Iteration
	err        error
}

func (s *memorySink) AppendIteration(it Iteration) error {
	if s.err != nil {
		return s.err
	}
	s.iterations = append(s.iterations, it)
	return nil
}

func run(t *testing.T, p *scriptedProducer, j *scriptedJudge, s *memorySink, maxIter, threshold int) Result {
	t.Helper()
	c := New(p, j, s, Config{MaxIterations: maxIter, ScoreThreshold: threshold})
	res, err := c.Run(context.Background(), Input{Profile: "profile", News: "news"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func TestRun_ScoreMetOnSecondCycle(t *testing.T) {
	p := &scriptedProducer{}
	j := &scriptedJudge{scores: []int{3, 5}}
	s := &memorySink{}

	res := run(t, p, j, s, 3, 5)

	if res.Reason != ScoreMet {
		t.Errorf("expected ScoreMet, got %s", res.Reason)
	}
	if res.IterationsRun != 2 {
		t.Errorf("expected 2 iterations, got %d", res.IterationsRun)
	}
	if res.FinalScore != 5 {
		t.Errorf("expected final score 5, got %d", res.FinalScore)
	}
	if res.FinalDraft != "draft 2" {
		t.Errorf("expected final draft to be the last produced, got %q", res.FinalDraft)
	}
}

func TestRun_FirstCycleBelowThresholdContinues(t *testing.T) {
	// A perfect first score must not be required: the loop keeps iterating
	// below the threshold instead of stopping after cycle one.
	p := &scriptedProducer{}
	j := &scriptedJudge{scores: []int{4, 4, 5}}

	res := run(t, p, j, &memorySink{}, 5, 5)

	if res.IterationsRun != 3 {
		t.Errorf("expected 3 iterations, got %d", res.IterationsRun)
	}
	if res.Reason != ScoreMet {
		t.Errorf("expected ScoreMet, got %s", res.Reason)
	}
}

func TestRun_BudgetExhausted(t *testing.T) {
	p := &scriptedProducer{}
	j := &scriptedJudge{scores: []int{2, 3}}
	s := &memorySink{}

	res := run(t, p, j, s, 2, 5)

	if res.Reason != BudgetExhausted {
		t.Errorf("expected BudgetExhausted, got %s", res.Reason)
	}
	if res.IterationsRun != 2 {
		t.Errorf("expected exactly 2 iterations, got %d", res.IterationsRun)
	}
	if res.FinalScore != 3 {
		t.Errorf("expected last score as final, got %d", res.FinalScore)
	}
	if len(p.calls) != 2 {
		t.Errorf("expected 2 generate calls, got %d", len(p.calls))
	}
}

func TestRun_ThresholdMetImmediately(t *testing.T) {
	p := &scriptedProducer{}
	j := &scriptedJudge{scores: []int{5}}

	res := run(t, p, j, &memorySink{}, 3, 5)

	if res.Reason != ScoreMet || res.IterationsRun != 1 {
		t.Errorf("expected ScoreMet after 1 iteration, got %s after %d", res.Reason, res.IterationsRun)
	}
}

func TestRun_FeedbackFlowsToNextGeneration(t *testing.T) {
	p := &scriptedProducer{drafts: []string{"first draft", "second draft"}}
	j := &scriptedJudge{scores: []int{2, 5}, feedback: []string{"expand the portfolio section", "done"}}

	run(t, p, j, &memorySink{}, 3, 5)

	if len(p.calls) != 2 {
		t.Fatalf("expected 2 generate calls, got %d", len(p.calls))
	}
	first, second := p.calls[0], p.calls[1]

	if first.PriorDraft != "" || first.PriorFeedback != "" {
		t.Error("first cycle must not carry prior draft or feedback")
	}
	if second.PriorDraft != "first draft" {
		t.Errorf("expected prior draft from cycle 1, got %q", second.PriorDraft)
	}
	if second.PriorFeedback != "expand the portfolio section" {
		t.Errorf("expected feedback from cycle 1, got %q", second.PriorFeedback)
	}
	if second.Iteration != 2 {
		t.Errorf("expected iteration index 2, got %d", second.Iteration)
	}
}

func TestRun_TranscriptMatchesIterationsRun(t *testing.T) {
	p := &scriptedProducer{}
	j := &scriptedJudge{scores: []int{1, 1, 1, 1}}
	s := &memorySink{}

	res := run(t, p, j, s, 4, 5)

	if len(s.iterations) != res.IterationsRun {
		t.Errorf("transcript length %d != iterationsRun %d", len(s.iterations), res.IterationsRun)
	}
	for i, it := range s.iterations {
		if it.Index != i+1 {
			t.Errorf("iteration %d has index %d; indices must be strictly increasing from 1", i, it.Index)
		}
		if it.Timestamp.IsZero() {
			t.Errorf("iteration %d missing timestamp", i+1)
		}
	}
}

func TestRun_GenerationFailureDegrades(t *testing.T) {
	p := &scriptedProducer{errs: []error{errors.New("connection refused")}}
	j := &scriptedJudge{scores: []int{1, 5}}
	s := &memorySink{}

	res := run(t, p, j, s, 3, 5)

	if res.IterationsRun != 2 {
		t.Fatalf("expected loop to continue past the failure, ran %d", res.IterationsRun)
	}
	first := s.iterations[0]
	if !strings.Contains(first.Draft, "Report generation failed") {
		t.Errorf("expected failure notice as draft, got %q", first.Draft)
	}
	if first.Error == "" {
		t.Error("expected the backend error recorded on the iteration")
	}
	// The degraded draft is still what the judge saw.
	if j.calls[0].Draft != first.Draft {
		t.Error("expected judge to evaluate the degraded draft")
	}
}

func TestRun_EvaluationFailureScoresLowest(t *testing.T) {
	p := &scriptedProducer{}
	j := &scriptedJudge{errs: []error{errors.New("timeout")}, scores: []int{0, 5}}
	s := &memorySink{}

	res := run(t, p, j, s, 3, 5)

	first := s.iterations[0]
	if first.Score != evaluator.DefaultScore {
		t.Errorf("expected default score on evaluation failure, got %d", first.Score)
	}
	if !strings.Contains(first.Feedback, "Evaluation failed") {
		t.Errorf("expected failure feedback, got %q", first.Feedback)
	}
	if first.Error == "" {
		t.Error("expected the backend error recorded on the iteration")
	}
	if res.IterationsRun != 2 {
		t.Errorf("expected loop to continue, ran %d", res.IterationsRun)
	}
}

func TestRun_SinkFailureAborts(t *testing.T) {
	p := &scriptedProducer{}
	j := &scriptedJudge{scores: []int{5}}
	s := &memorySink{err: errors.New("disk full")}

	c := New(p, j, s, Config{MaxIterations: 3, ScoreThreshold: 5})
	_, err := c.Run(context.Background(), Input{})
	if err == nil {
		t.Error("expected error when the transcript cannot be persisted")
	}
}

func TestRun_NilSinkAllowed(t *testing.T) {
	p := &scriptedProducer{}
	j := &scriptedJudge{scores: []int{5}}

	c := New(p, j, nil, Config{MaxIterations: 1, ScoreThreshold: 5})
	res, err := c.Run(context.Background(), Input{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Reason != ScoreMet {
		t.Errorf("expected ScoreMet, got %s", res.Reason)
	}
}
