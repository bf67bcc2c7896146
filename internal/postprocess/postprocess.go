// Package postprocess removes common LLM artifacts from generated report text.
//
// It is applied to the raw text returned by the backend before a draft is
// evaluated, persisted, or translated.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text and returns the trimmed result:
//  1. Thinking / reasoning block removal
//  2. Code-fence wrapping removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeFenceWrapping(text)
	return strings.TrimSpace(text)
}

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
// Flags: i = case-insensitive, s = dot matches newline.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// removeFenceWrapping strips a markdown code fence when the entire text is
// wrapped in one (a common artifact when models are asked for plain text).
func removeFenceWrapping(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 7 {
		return text
	}
	body := strings.TrimSuffix(trimmed, "```")
	if idx := strings.Index(body, "\n"); idx >= 0 {
		return strings.TrimSpace(body[idx+1:])
	}
	return text
}
