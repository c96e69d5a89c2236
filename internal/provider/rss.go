package provider

import (
	"cmp"
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/SlyMarbo/rss"
	"github.com/go-shiori/go-readability"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/0x0BSoD/newsfeed/internal/model"
)

// contextTransport injects a context into every outgoing request so that
// context cancellation and deadlines propagate through the rss library.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// Defaults for RSSConfig.
const (
	DefaultMaxSummaries   = 10
	DefaultSummaryWorkers = 4
)

type RSSConfig struct {
	Feeds          []string
	FilterKeywords []string
	TrendingWindow time.Duration
	Insecure       bool
	Timeout        time.Duration
	// MaxSummaries caps model summaries per batch; the rest get excerpts.
	MaxSummaries   int
	SummaryWorkers int
}

// RSS builds news batches out of regular RSS/Atom feeds.
type RSS struct {
	cfg        RSSConfig
	summarizer *Summarizer
	now        func() time.Time
}

func NewRSS(cfg RSSConfig, summarizer *Summarizer) *RSS {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxSummaries <= 0 {
		cfg.MaxSummaries = DefaultMaxSummaries
	}
	if cfg.SummaryWorkers <= 0 {
		cfg.SummaryWorkers = DefaultSummaryWorkers
	}
	cfg.FilterKeywords = lo.Map(cfg.FilterKeywords, func(k string, _ int) string {
		return strings.ToLower(strings.TrimSpace(k))
	})
	return &RSS{cfg: cfg, summarizer: summarizer, now: time.Now}
}

type feedResult struct {
	title string
	items []*rss.Item
	err   error
}

func (s *RSS) Generate(ctx context.Context, category string) ([]model.RawItem, error) {
	if len(s.cfg.Feeds) == 0 {
		return nil, &Error{Provider: "rss", Message: "no feeds configured"}
	}

	results := make([]feedResult, len(s.cfg.Feeds))

	var wg sync.WaitGroup
	for i, url := range s.cfg.Feeds {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()

			feed, err := s.loadFeed(ctx, url)
			if err != nil {
				slog.Error("failed to fetch feed", "url", url, "err", err)
				results[i] = feedResult{err: err}
				return
			}
			results[i] = feedResult{title: feed.Title, items: feed.Items}
		}(i, url)
	}
	wg.Wait()

	failed := lo.CountBy(results, func(r feedResult) bool { return r.err != nil })
	if failed == len(results) {
		return nil, Errorf("rss", results[0].err, "all %d feeds failed", failed)
	}

	var items []model.RawItem
	for _, res := range results {
		for _, item := range res.items {
			if strings.TrimSpace(item.Title) == "" || s.itemMustSkipped(item) {
				continue
			}
			raw := s.toRawItem(res.title, item)
			if !inCategory(raw, category) {
				continue
			}
			items = append(items, raw)
		}
	}

	slices.SortStableFunc(items, func(a, b model.RawItem) int {
		return cmp.Compare(b.Timestamp.Unix(), a.Timestamp.Unix())
	})

	s.summarize(ctx, items)

	return items, nil
}

// summarize fills in summaries for items that lack their own. Only the
// newest MaxSummaries go to the model; the rest get a plain excerpt.
func (s *RSS) summarize(ctx context.Context, items []model.RawItem) {
	var g errgroup.Group
	g.SetLimit(s.cfg.SummaryWorkers)

	requested := 0
	for i := range items {
		item := &items[i]
		if item.Content == "" || (item.Summary != "" && item.Summary != item.Content) {
			continue
		}
		if requested >= s.cfg.MaxSummaries {
			item.Summary = excerpt(item.Content, excerptLength)
			continue
		}
		requested++

		g.Go(func() error {
			item.Summary = s.summarizer.Summarize(ctx, item.Content)
			return nil
		})
	}

	_ = g.Wait()
}

func (s *RSS) toRawItem(feedTitle string, item *rss.Item) model.RawItem {
	content := plainText(itemText(item))
	summary := plainText(strings.TrimSpace(item.Summary))

	return model.RawItem{
		Title:     item.Title,
		Summary:   summary,
		Content:   content,
		Category:  categoryOf(item.Categories),
		Trending:  !item.Date.IsZero() && s.now().Sub(item.Date) <= s.cfg.TrendingWindow,
		Timestamp: item.Date,
		Source:    feedTitle,
		Tags:      item.Categories,
		URL:       slugify(item.Title),
	}
}

// itemText returns the richest available text for an item.
// Content (full body) is preferred over Summary (short excerpt).
func itemText(item *rss.Item) string {
	if c := strings.TrimSpace(item.Content); c != "" {
		return c
	}
	return strings.TrimSpace(item.Summary)
}

func (s *RSS) itemMustSkipped(item *rss.Item) bool {
	title := strings.ToLower(item.Title)
	categories := lo.Map(item.Categories, func(c string, _ int) string { return strings.ToLower(c) })

	return lo.SomeBy(s.cfg.FilterKeywords, func(keyword string) bool {
		return keyword != "" && (strings.Contains(title, keyword) || lo.Contains(categories, keyword))
	})
}

// categoryOf maps feed categories onto a known category; the first feed
// category is kept as-is when none matches.
func categoryOf(categories []string) string {
	for _, c := range categories {
		if known, ok := lo.Find(model.Categories, func(k string) bool {
			return strings.EqualFold(k, strings.TrimSpace(c))
		}); ok {
			return known
		}
	}
	if len(categories) > 0 {
		return strings.TrimSpace(categories[0])
	}
	return ""
}

func inCategory(item model.RawItem, category string) bool {
	switch category {
	case "", DefaultCategory, model.CategoryAll:
		return true
	}
	return item.Category == category
}

// plainText reduces HTML to readable text; input without markup is returned
// untouched.
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := readability.FromReader(strings.NewReader(s), nil)
	if err == nil && strings.TrimSpace(doc.TextContent) != "" {
		return strings.TrimSpace(doc.TextContent)
	}
	return stripTags(s)
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func slugify(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}

func (s *RSS) loadFeed(ctx context.Context, url string) (*rss.Feed, error) {
	base := http.DefaultTransport
	if s.cfg.Insecure {
		base = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}
	client := &http.Client{
		Transport: contextTransport{ctx: ctx, base: base},
		Timeout:   s.cfg.Timeout,
	}
	return rss.FetchByClient(url, client)
}
