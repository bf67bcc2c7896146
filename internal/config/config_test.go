package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() map[string]interface{} {
	return map[string]interface{}{
		"OPENAI_API_BASE":             "https://api.openai.com/v1",
		"OPENAI_API_KEY":              "sk-test",
		"OPENAI_MODEL":                "gpt-4o",
		"DOUBAO_API_ENDPOINT":         "https://ark.cn-beijing.volces.com/api/v3/chat/completions",
		"DOUBAO_API_KEY":              "db-test",
		"DOUBAO_MODEL":                "doubao-seed-1-6-250615",
		"LLM_PROVIDER":                "DOUBAO",
		"MAX_ITERATIONS":              3,
		"SCORE":                       5,
		"INPUT_CUSTOMER_PROFILE_FILE": "customer_data/customers.csv",
	}
}

func writeConfig(t *testing.T, data map[string]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLMProvider != "DOUBAO" {
		t.Errorf("unexpected provider %q", cfg.LLMProvider)
	}
	if cfg.MaxIterations != 3 {
		t.Errorf("expected MaxIterations=3, got %d", cfg.MaxIterations)
	}
	if cfg.ScoreThreshold != 5 {
		t.Errorf("expected ScoreThreshold=5, got %d", cfg.ScoreThreshold)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig()))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.NewsDir != "input_docs" {
		t.Errorf("expected default news dir, got %q", cfg.NewsDir)
	}
	if cfg.OutputDir != "outputs" {
		t.Errorf("expected default output dir, got %q", cfg.OutputDir)
	}
	if cfg.TranslatorEngine != "llm" {
		t.Errorf("expected default translator engine, got %q", cfg.TranslatorEngine)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_MissingRequiredKeys(t *testing.T) {
	data := validConfig()
	delete(data, "DOUBAO_API_KEY")
	delete(data, "SCORE")

	_, err := Load(writeConfig(t, data))
	if err == nil {
		t.Fatal("expected error for missing keys")
	}
	msg := err.Error()
	if !strings.Contains(msg, "DOUBAO_API_KEY") || !strings.Contains(msg, "SCORE") {
		t.Errorf("expected all missing keys named, got %q", msg)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"zero iterations", "MAX_ITERATIONS", 0},
		{"negative iterations", "MAX_ITERATIONS", -1},
		{"negative score", "SCORE", -2},
		{"empty customer file", "INPUT_CUSTOMER_PROFILE_FILE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validConfig()
			data[tt.key] = tt.value
			if _, err := Load(writeConfig(t, data)); err == nil {
				t.Errorf("expected validation error for %s=%v", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
