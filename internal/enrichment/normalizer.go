package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pantrykit/pantry-tracker/internal/llm"
)

// Normalizer maps a raw receipt item name to a canonical food name
type Normalizer interface {
	// Normalize never fails; when normalization is unavailable it returns
	// the receipt name unchanged
	Normalize(ctx context.Context, receiptName string) string
}

const normalizeSystemPrompt = "You are a helpful assistant that converts receipt item names into clean, general food item names. Return only the normalized name, nothing else."

// LLMNormalizer implements Normalizer using a text-completion model
type LLMNormalizer struct {
	completer llm.Completer
}

// NewLLMNormalizer creates a new LLMNormalizer
func NewLLMNormalizer(completer llm.Completer) *LLMNormalizer {
	return &LLMNormalizer{completer: completer}
}

// Normalize asks the model for a clean food name, falling back to the raw
// receipt name on any failure. One call per item, no retries.
func (n *LLMNormalizer) Normalize(ctx context.Context, receiptName string) string {
	prompt := fmt.Sprintf("Convert this receipt item to a general food name: %s", receiptName)

	name, err := n.completer.Complete(ctx, normalizeSystemPrompt, prompt)
	if err != nil {
		slog.Warn("Failed to normalize item name, using receipt name",
			"receipt_name", receiptName,
			"error", err,
		)
		return receiptName
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return receiptName
	}
	return name
}
