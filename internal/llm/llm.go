// Package llm wraps the language model backends used to generate and
// summarize news content.
package llm

import "context"

// Client sends one system + user prompt pair and returns the model's text.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
