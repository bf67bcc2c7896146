/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rmreport/internal/config"
	"rmreport/internal/evaluator"
	"rmreport/internal/generator"
	"rmreport/internal/langcheck"
	"rmreport/internal/llm"
	"rmreport/internal/loop"
	"rmreport/internal/news"
	"rmreport/internal/profile"
	"rmreport/internal/schema"
	"rmreport/internal/store"
	"rmreport/internal/transcript"
	"rmreport/internal/translate"
)

var (
	configFile   string
	withInsights bool
	noStore      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate reports for every customer in the configured input file",
	Long: `Generate a wealth management report for each customer row in the configured
customer file. Customers are processed strictly one at a time in input order;
a failure for one customer is reported and does not stop the rest.

For each customer the command:
  1. Formats the raw record into a categorized profile using the data schema
  2. Runs the iterative draft/judge loop until the score threshold is met
     or the iteration budget is exhausted
  3. Translates the accepted draft to British English
  4. Saves the transcript and both final reports, and records the run in
     the history database`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx := context.Background()

		catalog, err := schema.Load(cfg.SchemaFile)
		if err != nil {
			return err
		}

		marketNews, err := news.Load(cfg.NewsDir)
		if err != nil {
			return err
		}

		provider := llm.Select(cfg.LLMProvider,
			llm.ProviderConfig{BaseURL: cfg.OpenAIAPIBase, APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel},
			llm.ProviderConfig{BaseURL: cfg.DoubaoAPIEndpoint, APIKey: cfg.DoubaoAPIKey, Model: cfg.DoubaoModel},
		)
		fmt.Fprintf(os.Stderr, "Using %s backend\n", provider.Name())

		var db *store.Store
		if !noStore {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			db, err = store.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
		}

		header, rows, err := readCustomerFile(cfg.CustomerFile)
		if err != nil {
			return err
		}

		translator := translate.Select(cfg.TranslatorEngine, provider, cfg.GoogleCredentials)
		checker := langcheck.New()

		failures := 0
		for _, row := range rows {
			identity := customerIdentity(row)
			fmt.Fprintf(os.Stderr, "\nProcessing customer %s\n", identity)

			if err := processCustomer(ctx, cfg, provider, translator, checker, db, catalog, marketNews, identity, header, row); err != nil {
				// One customer's failure never aborts the rest of the batch.
				fmt.Fprintf(os.Stderr, "Customer %s failed: %v\n", identity, err)
				failures++
			}
		}

		fmt.Printf("Processed %d customers, %d failed\n", len(rows), failures)
		if failures == len(rows) && len(rows) > 0 {
			return fmt.Errorf("all customers failed")
		}
		return nil
	},
}

// readCustomerFile splits the customer source into its header line and the
// non-empty data rows.
func readCustomerFile(path string) (string, []string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read customer file: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	var header string
	var rows []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if header == "" {
			header = line
			continue
		}
		rows = append(rows, line)
	}

	if header == "" {
		return "", nil, fmt.Errorf("customer file %s is empty", path)
	}
	return header, rows, nil
}

func customerIdentity(row string) string {
	identity, _, _ := strings.Cut(row, ",")
	return strings.TrimSpace(identity)
}

func processCustomer(
	ctx context.Context,
	cfg config.Config,
	provider llm.Provider,
	translator translate.Translator,
	checker *langcheck.Checker,
	db *store.Store,
	catalog schema.Catalog,
	marketNews, identity, header, row string,
) error {
	rec := profile.ParseRecord(header, row)
	formatted := profile.Format(rec, catalog, withInsights).String()

	tw, err := transcript.New(cfg.OutputDir, identity, formatted)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	if db != nil {
		if err := db.SaveRun(ctx, store.Run{
			ID:             runID,
			Customer:       identity,
			Provider:       provider.Name(),
			ScoreThreshold: cfg.ScoreThreshold,
			MaxIterations:  cfg.MaxIterations,
			CreatedAt:      time.Now(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
		}
	}

	controller := loop.New(
		generator.New(provider),
		evaluator.New(provider),
		&runSink{transcript: tw, db: db, runID: runID, ctx: ctx},
		loop.Config{MaxIterations: cfg.MaxIterations, ScoreThreshold: cfg.ScoreThreshold},
	)

	result, err := controller.Run(ctx, loop.Input{Profile: formatted, News: marketNews})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Final score %d/5 after %d iterations (%s)\n",
		result.FinalScore, result.IterationsRun, result.Reason)

	if err := tw.WriteFinal(result); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Translating report to English...\n")
	english, err := translator.Translate(ctx, result.FinalDraft)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		english = translate.FailedMarker
	}

	if !checker.IsChinese(result.FinalDraft) {
		fmt.Fprintf(os.Stderr, "Warning: accepted draft does not appear to be Chinese\n")
	}
	if english != translate.FailedMarker && !checker.IsEnglish(english) {
		fmt.Fprintf(os.Stderr, "Warning: translated report does not appear to be English\n")
	}

	zhPath, enPath, err := tw.SaveFinalReports(result.FinalDraft, english)
	if err != nil {
		return err
	}

	if db != nil {
		if err := db.SaveFinal(ctx, runID, english, result); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record final report: %v\n", err)
		}
	}

	fmt.Printf("Customer %s: transcript %s\n", identity, tw.Path())
	fmt.Printf("Customer %s: reports %s, %s\n", identity, zhPath, enPath)
	return nil
}

// runSink fans each completed iteration out to the transcript file and the
// history database. The transcript write is the durability contract and must
// succeed; history writes are best-effort.
type runSink struct {
	transcript *transcript.Writer
	db         *store.Store
	runID      string
	ctx        context.Context
}

func (s *runSink) AppendIteration(it loop.Iteration) error {
	if err := s.transcript.AppendIteration(it); err != nil {
		return err
	}
	if s.db != nil {
		if err := s.db.SaveIteration(s.ctx, s.runID, it); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record iteration %d: %v\n", it.Index, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&configFile, "config", "c", "config.json", "Path to the JSON configuration file")
	runCmd.Flags().BoolVar(&withInsights, "insights", false, "Append derived key insights to the formatted profile")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "Disable the run history database")
}
