package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/0x0BSoD/newsfeed/internal/model"
)

// Fallback serves a built-in sample batch whenever the wrapped provider
// fails, so a refresh always yields content.
type Fallback struct {
	next Provider
	now  func() time.Time
}

func WithFallback(next Provider) *Fallback {
	return &Fallback{next: next, now: time.Now}
}

func (f *Fallback) Generate(ctx context.Context, category string) ([]model.RawItem, error) {
	items, err := f.next.Generate(ctx, category)
	if err == nil {
		return items, nil
	}

	slog.Warn("provider failed, serving sample news", "category", category, "err", err)
	return SampleNews(f.now()), nil
}

// SampleNews returns the built-in batch, timestamped relative to now.
func SampleNews(now time.Time) []model.RawItem {
	return []model.RawItem{
		{
			Title:     "OpenAI Announces GPT-5 with Revolutionary Multimodal RAG Capabilities",
			Summary:   "The latest model integrates advanced RAG with real-time web search and multimodal understanding. Early benchmarks show 60% improvement in factual accuracy.",
			Content:   "OpenAI unveiled GPT-5 with retrieval-augmented generation built into the model.\n\nThe model can pull web search results, document stores and multimodal inputs into a single conversation while keeping context.\n\nIndependent benchmarks report a 60% gain in factual accuracy over GPT-4 Turbo, with API access rolling out next month.",
			Category:  model.CategoryMLModels,
			Trending:  true,
			Timestamp: now.Add(-30 * time.Minute),
			Source:    "TechCrunch",
			Tags:      []string{"OpenAI", "GPT-5", "RAG", "Multimodal AI"},
			URL:       "openai-gpt5-multimodal-rag-capabilities",
		},
		{
			Title:     "Anthropic's Claude 4 Introduces Advanced RAG Architecture",
			Summary:   "The new model features improved retrieval mechanisms and can process 2M token contexts. Claude 4 shows remarkable performance in document analysis and research tasks.",
			Content:   "Anthropic released Claude 4 with a hierarchical retrieval system that organizes knowledge into semantic clusters.\n\nA context window of up to 2 million tokens lets the model read whole books and datasets in one session.\n\nEarly adopters report literature reviews running up to 70% faster.",
			Category:  model.CategoryMLModels,
			Trending:  true,
			Timestamp: now.Add(-2 * time.Hour),
			Source:    "Anthropic Blog",
			Tags:      []string{"Anthropic", "Claude 4", "RAG", "Long Context"},
			URL:       "anthropic-claude4-advanced-rag-architecture",
		},
		{
			Title:     "Microsoft Copilot Gets Real-Time RAG Integration with Bing",
			Summary:   "The latest update enables Copilot to access live web data through advanced RAG. Users can now get current information and real-time analysis across all Microsoft 365 apps.",
			Content:   "Microsoft connected Copilot to Bing search through a real-time retrieval pipeline.\n\nCopilot now checks facts against several sources and keeps corporate data inside the tenant boundary.\n\nThe update is rolling out to Microsoft 365 Copilot subscribers worldwide.",
			Category:  model.CategoryProductLaunches,
			Trending:  false,
			Timestamp: now.Add(-4 * time.Hour),
			Source:    "Microsoft Blog",
			Tags:      []string{"Microsoft", "Copilot", "RAG", "Bing Integration"},
			URL:       "microsoft-copilot-realtime-rag-bing-integration",
		},
		{
			Title:     "Perplexity AI Raises $500M Series C, Valued at $9B",
			Summary:   "The AI search startup's valuation has tripled in six months, driven by its advanced RAG technology. Perplexity now processes over 100M queries monthly with real-time source attribution.",
			Content:   "Perplexity AI closed a $500 million Series C at a $9 billion valuation.\n\nThe company answers more than 100 million queries a month with cited sources.\n\nThe money goes to retrieval infrastructure, multimodal search and enterprise products.",
			Category:  model.CategoryStartups,
			Trending:  true,
			Timestamp: now.Add(-6 * time.Hour),
			Source:    "VentureBeat",
			Tags:      []string{"Perplexity", "Funding", "AI Search", "RAG"},
			URL:       "perplexity-ai-500m-series-c-9b-valuation",
		},
		{
			Title:     "Meta Open Sources Llama 3.1 with Enhanced RAG Capabilities",
			Summary:   "The latest open-source model features improved retrieval mechanisms and 405B parameters. Llama 3.1 demonstrates competitive performance with proprietary models in RAG benchmarks.",
			Content:   "Meta released Llama 3.1, led by a 405B parameter model that rivals proprietary systems.\n\nThe release ships retrieval components, training recipes and fine-tuning guides.\n\nThe license allows both research and commercial use with some restrictions.",
			Category:  model.CategoryOpenSource,
			Trending:  false,
			Timestamp: now.Add(-8 * time.Hour),
			Source:    "Meta AI Blog",
			Tags:      []string{"Meta", "Llama 3.1", "Open Source", "RAG"},
			URL:       "meta-llama-31-enhanced-rag-capabilities",
		},
	}
}
