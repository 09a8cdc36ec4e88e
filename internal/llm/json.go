package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON isolates the JSON object in a model response. Models often
// wrap JSON in markdown fences or surround it with prose, so we strip
// fences and take everything between the first { and the last }.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("invalid JSON object in response")
	}

	return text[startIdx : endIdx+1], nil
}

// CompleteJSON runs a completion and unmarshals the JSON object in the
// response into v
func CompleteJSON(ctx context.Context, c Completer, system, prompt string, v any) error {
	text, err := c.Complete(ctx, system, prompt)
	if err != nil {
		return fmt.Errorf("completing: %w", err)
	}

	jsonText, err := extractJSON(text)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(jsonText), v); err != nil {
		return fmt.Errorf("unmarshaling json: %w", err)
	}

	return nil
}
