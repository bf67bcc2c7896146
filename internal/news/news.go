// Package news loads the market-news corpus from a directory of text files.
package news

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// NoNews is returned when the corpus directory holds no usable content. An
// empty corpus is not an error; the report simply notes the absence.
const NoNews = "No market news available."

// Load reads every *.txt and *.md file under dir in sorted order, skipping
// dotfiles and README.md, and joins the non-empty contents under per-file
// source banners.
func Load(dir string) (string, error) {
	var files []string
	for _, pattern := range []string{"*.txt", "*.md"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", fmt.Errorf("failed to scan news directory: %w", err)
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return NoNews, nil
	}
	sort.Strings(files)

	var parts []string
	for _, path := range files {
		name := filepath.Base(path)
		if strings.HasPrefix(name, ".") || name == "README.md" {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			// A single unreadable file does not sink the corpus.
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			continue
		}

		text := strings.TrimSpace(string(content))
		if text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("=== Source: %s ===", name), text, "")
	}

	if len(parts) == 0 {
		return NoNews, nil
	}
	return strings.Join(parts, "\n"), nil
}
