package llm

import "context"

// Completer defines the interface for single-shot text completion
type Completer interface {
	// Complete sends a system instruction and prompt, returning the raw
	// text of the response
	Complete(ctx context.Context, system, prompt string) (string, error)
	// Close closes the completer and releases resources
	Close() error
}
