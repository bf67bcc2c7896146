// Package config loads and validates the run configuration. Loading fails
// fast: a missing required key, a non-positive iteration budget, or a
// negative score threshold aborts before any customer run starts. The
// resulting Config value is immutable and passed explicitly to every
// component that needs it.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the validated run configuration.
type Config struct {
	OpenAIAPIBase string
	OpenAIAPIKey  string
	OpenAIModel   string

	DoubaoAPIEndpoint string
	DoubaoAPIKey      string
	DoubaoModel       string

	LLMProvider    string
	MaxIterations  int
	ScoreThreshold int

	CustomerFile string
	SchemaFile   string
	NewsDir      string
	OutputDir    string
	DBPath       string

	TranslatorEngine  string
	GoogleCredentials string
}

// requiredKeys must all be present in the configuration file.
var requiredKeys = []string{
	"OPENAI_API_BASE",
	"OPENAI_API_KEY",
	"OPENAI_MODEL",
	"DOUBAO_API_ENDPOINT",
	"DOUBAO_API_KEY",
	"DOUBAO_MODEL",
	"LLM_PROVIDER",
	"MAX_ITERATIONS",
	"SCORE",
	"INPUT_CUSTOMER_PROFILE_FILE",
}

// Load reads the JSON configuration file at path and validates it.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("SCHEMA_FILE", "customer_data/data_schema.txt")
	v.SetDefault("NEWS_DIR", "input_docs")
	v.SetDefault("OUTPUT_DIR", "outputs")
	v.SetDefault("DB_PATH", "./data/rmreport.db")
	v.SetDefault("TRANSLATOR_ENGINE", "llm")
	v.SetDefault("GOOGLE_CREDENTIALS", "")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var missing []string
	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required config keys: %s", strings.Join(missing, ","))
	}

	cfg := Config{
		OpenAIAPIBase:     v.GetString("OPENAI_API_BASE"),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIModel:       v.GetString("OPENAI_MODEL"),
		DoubaoAPIEndpoint: v.GetString("DOUBAO_API_ENDPOINT"),
		DoubaoAPIKey:      v.GetString("DOUBAO_API_KEY"),
		DoubaoModel:       v.GetString("DOUBAO_MODEL"),
		LLMProvider:       v.GetString("LLM_PROVIDER"),
		MaxIterations:     v.GetInt("MAX_ITERATIONS"),
		ScoreThreshold:    v.GetInt("SCORE"),
		CustomerFile:      v.GetString("INPUT_CUSTOMER_PROFILE_FILE"),
		SchemaFile:        v.GetString("SCHEMA_FILE"),
		NewsDir:           v.GetString("NEWS_DIR"),
		OutputDir:         v.GetString("OUTPUT_DIR"),
		DBPath:            v.GetString("DB_PATH"),
		TranslatorEngine:  v.GetString("TRANSLATOR_ENGINE"),
		GoogleCredentials: v.GetString("GOOGLE_CREDENTIALS"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("MAX_ITERATIONS must be greater than 0")
	}
	if c.ScoreThreshold < 0 {
		return fmt.Errorf("SCORE must be non-negative")
	}
	if c.CustomerFile == "" {
		return fmt.Errorf("INPUT_CUSTOMER_PROFILE_FILE cannot be empty")
	}
	return nil
}
