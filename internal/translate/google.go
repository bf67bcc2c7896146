package translate

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleTranslator renders the report through Google Cloud Translate instead
// of the language-model backend.
type GoogleTranslator struct {
	credentials string
}

func NewGoogleTranslator(credentials string) *GoogleTranslator {
	return &GoogleTranslator{credentials: credentials}
}

func (t *GoogleTranslator) Name() string {
	return "google"
}

func (t *GoogleTranslator) Translate(ctx context.Context, text string) (string, error) {
	opts := []option.ClientOption{}
	if t.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(t.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{text}, language.BritishEnglish, &translate.Options{
		Source: language.TraditionalChinese,
		Format: translate.Text,
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return translations[0].Text, nil
}
