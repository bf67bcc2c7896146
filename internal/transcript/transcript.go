// Package transcript persists the per-customer iteration history and the
// final report artifacts as timestamp-named text files.
//
// The iteration file is strictly append-only and every write is flushed
// before the next loop cycle starts, so a crash mid-run leaves a truncated
// but valid history.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rmreport/internal/loop"
)

const divider = "=================================================="

// Writer records one customer run. Create with New, which also writes the
// opening header block.
type Writer struct {
	dir       string
	path      string
	timestamp string
}

// New creates the customer output directory and the iteration file, writing
// the header and original customer data block.
func New(outputDir, customer, customerData string) (*Writer, error) {
	dir := filepath.Join(outputDir, customer)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := time.Now().Format("20060102_150405")
	w := &Writer{
		dir:       dir,
		path:      filepath.Join(dir, fmt.Sprintf("wealth_report_iterations_for_%s_%s.txt", customer, ts)),
		timestamp: ts,
	}

	var sb strings.Builder
	sb.WriteString("WEALTH MANAGEMENT REPORT GENERATION\n")
	sb.WriteString(divider + "\n")
	sb.WriteString("Customer Data:\n")
	sb.WriteString(customerData)
	sb.WriteString("\n\n")

	if err := os.WriteFile(w.path, []byte(sb.String()), 0644); err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}
	return w, nil
}

// Path returns the iteration file path.
func (w *Writer) Path() string {
	return w.path
}

// AppendIteration durably appends one completed cycle. Implements loop.Sink.
func (w *Writer) AppendIteration(it loop.Iteration) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n%s\n", divider))
	sb.WriteString(fmt.Sprintf("ITERATION %d - Score: %d/5\n", it.Index, it.Score))
	sb.WriteString(fmt.Sprintf("%s\n", divider))
	sb.WriteString(fmt.Sprintf("\nGenerated Report:\n%s\n", it.Draft))
	sb.WriteString(fmt.Sprintf("\nJudge Evaluation:\n%s\n", it.RawEvaluation))
	if it.Error != "" {
		sb.WriteString(fmt.Sprintf("\nBackend Error:\n%s\n", it.Error))
	}
	return w.append(sb.String())
}

// WriteFinal appends the closing section stating the termination reason and
// the accepted draft.
func (w *Writer) WriteFinal(res loop.Result) error {
	var verdict string
	switch res.Reason {
	case loop.ScoreMet:
		verdict = fmt.Sprintf("Score threshold met. Final score: %d/5", res.FinalScore)
	case loop.BudgetExhausted:
		verdict = fmt.Sprintf("Maximum iterations reached. Final score: %d/5", res.FinalScore)
	default:
		verdict = fmt.Sprintf("Final score: %d/5", res.FinalScore)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n%s\n", divider))
	sb.WriteString(fmt.Sprintf("FINAL RESULT: %s\n", verdict))
	sb.WriteString(fmt.Sprintf("%s\n", divider))
	sb.WriteString(fmt.Sprintf("\nFINAL REPORT:\n%s\n", res.FinalDraft))
	return w.append(sb.String())
}

// SaveFinalReports writes the two final artifacts: the accepted draft in
// Traditional Chinese and its English rendering. Returns the two paths.
func (w *Writer) SaveFinalReports(chinese, english string) (string, string, error) {
	zhPath := filepath.Join(w.dir, fmt.Sprintf("final_report_in_traditional_chinese_%s.txt", w.timestamp))
	enPath := filepath.Join(w.dir, fmt.Sprintf("final_report_in_english_%s.txt", w.timestamp))

	if err := os.WriteFile(zhPath, []byte(chinese+"\n"), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write Chinese report: %w", err)
	}
	if err := os.WriteFile(enPath, []byte(english+"\n"), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write English report: %w", err)
	}
	return zhPath, enPath, nil
}

// append opens, writes, syncs, and closes so each block is durable on its
// own.
func (w *Writer) append(block string) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("failed to append to transcript: %w", err)
	}
	return f.Sync()
}
