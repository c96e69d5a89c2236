package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/0x0BSoD/newsfeed/internal/llm"
	"github.com/0x0BSoD/newsfeed/internal/model"
)

const generateSystemPrompt = "You are a tech news editor. Answer with a valid JSON array only, no prose."

const generatePromptFormat = `Generate %d realistic and current tech news items for %s as of %s. Focus on very recent developments (within the last 30 days). Each item should include:
- title: A compelling headline
- summary: 2-3 sentence summary (keep it concise for card display)
- content: Detailed 4-5 paragraph article content
- category: One of [%s]
- trending: boolean indicating if it's trending
- timestamp: Current timestamp
- source: Realistic tech publication name
- tags: Array of relevant tags
- url: Generate a realistic URL slug based on the title

Return as valid JSON array.`

// DefaultBatchSize is the number of items requested per generation.
const DefaultBatchSize = 5

// Generator asks a language model to write a batch of news items.
type Generator struct {
	client    llm.Client
	name      string
	batchSize int
	now       func() time.Time
}

func NewGenerator(client llm.Client, name string, batchSize int) *Generator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Generator{
		client:    client,
		name:      name,
		batchSize: batchSize,
		now:       time.Now,
	}
}

func (g *Generator) Generate(ctx context.Context, category string) ([]model.RawItem, error) {
	if category == "" {
		category = DefaultCategory
	}

	answer, err := g.client.Complete(ctx, generateSystemPrompt, g.prompt(category))
	if err != nil {
		return nil, Errorf(g.name, err, "generate %q", category)
	}

	items, err := parseItems(answer)
	if err != nil {
		return nil, Errorf(g.name, err, "generate %q", category)
	}

	slog.Debug("generated news items", "provider", g.name, "category", category, "count", len(items))

	return items, nil
}

func (g *Generator) prompt(category string) string {
	return fmt.Sprintf(
		generatePromptFormat,
		g.batchSize,
		category,
		g.now().Format(time.DateOnly),
		strings.Join(model.Categories, ", "),
	)
}
