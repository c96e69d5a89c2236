package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"

	"github.com/0x0BSoD/newsfeed/internal/model"
)

// generatedItem is the JSON shape requested from the language model.
type generatedItem struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Trending  bool     `json:"trending"`
	Timestamp string   `json:"timestamp"`
	Source    string   `json:"source"`
	Tags      []string `json:"tags"`
	URL       string   `json:"url"`
}

// parseItems decodes a model answer into raw items. Models like to wrap JSON
// in markdown fences or chatter around it, so only the outermost array is
// decoded.
func parseItems(answer string) ([]model.RawItem, error) {
	start := strings.Index(answer, "[")
	end := strings.LastIndex(answer, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in model answer")
	}

	var generated []generatedItem
	if err := json.Unmarshal([]byte(answer[start:end+1]), &generated); err != nil {
		return nil, fmt.Errorf("decode model answer: %w", err)
	}

	return lo.Map(generated, func(g generatedItem, _ int) model.RawItem {
		return model.RawItem{
			Title:     g.Title,
			Summary:   g.Summary,
			Content:   g.Content,
			Category:  g.Category,
			Trending:  g.Trending,
			Timestamp: parseTimestamp(g.Timestamp),
			Source:    g.Source,
			Tags:      g.Tags,
			URL:       g.URL,
		}
	}), nil
}

// parseTimestamp returns the zero time for anything it cannot read, which
// the store later replaces with the merge time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
