package coach

import (
	"fmt"
	"strings"
)

// extractJSON pulls the JSON payload out of a model response. Reasoning
// models may wrap it in <think> blocks and chat models in prose or fences.
func extractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)

	for {
		start := strings.Index(cleaned, "<think>")
		if start == -1 {
			break
		}
		end := strings.Index(cleaned[start:], "</think>")
		if end == -1 {
			break
		}
		cleaned = strings.TrimSpace(cleaned[:start] + cleaned[start+end+len("</think>"):])
	}

	objStart := strings.Index(cleaned, "{")
	arrStart := strings.Index(cleaned, "[")
	open, close := "{", "}"
	start := objStart
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		open, close = "[", "]"
		start = arrStart
	}
	end := strings.LastIndex(cleaned, close)
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON %s...%s found in model response: %q", open, close, truncate(cleaned, 200))
	}
	return cleaned[start : end+1], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
