// Package langcheck verifies that the final report artifacts are written in
// their expected languages: the accepted draft in Chinese, the translated
// rendering in English. Mismatches are advisory: callers warn, never fail.
package langcheck

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// minLength is the minimum rune count required to attempt detection.
// Shorter texts produce unreliable results and are accepted without checking.
const minLength = 20

// Checker wraps the language detector. Building the detector is expensive;
// reuse one instance across customers.
type Checker struct {
	detector lingua.LanguageDetector
}

// New creates a Checker restricted to the two languages the reports use,
// which keeps detection fast and unambiguous.
func New() *Checker {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Chinese, lingua.English).
		Build()
	return &Checker{detector: detector}
}

// IsChinese reports whether text appears to be written in Chinese. Texts too
// short to classify pass.
func (c *Checker) IsChinese(text string) bool {
	return c.matches(text, lingua.Chinese)
}

// IsEnglish reports whether text appears to be written in English. Texts too
// short to classify pass.
func (c *Checker) IsEnglish(text string) bool {
	return c.matches(text, lingua.English)
}

func (c *Checker) matches(text string, want lingua.Language) bool {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minLength {
		return true
	}
	detected, ok := c.detector.DetectLanguageOf(text)
	if !ok {
		// Ambiguous text cannot be checked, pass it through.
		return true
	}
	return detected == want
}
