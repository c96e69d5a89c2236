package provider

import (
	"context"
	"log/slog"
	"strings"

	"github.com/0x0BSoD/newsfeed/internal/llm"
)

const summarizeSystemPrompt = "Summarize this tech article in 2-3 sentences, focusing on key insights."

const excerptLength = 200

// Summarizer condenses long article text. It never fails: when the model is
// unavailable it falls back to a plain excerpt.
type Summarizer struct {
	client llm.Client
}

// NewSummarizer accepts a nil client, in which case only excerpts are produced.
func NewSummarizer(client llm.Client) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Summarize(ctx context.Context, content string) string {
	if s != nil && s.client != nil {
		summary, err := s.client.Complete(ctx, summarizeSystemPrompt, content)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary)
		}
		if err != nil {
			slog.Warn("failed to summarize, using excerpt", "err", err)
		}
	}
	return excerpt(content, excerptLength)
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
