// Package model defines the data structures used in the newsfeed application: RawItem as produced by content providers and Item as held by the feed store.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// CategoryAll is the selector that disables category filtering.
const CategoryAll = "All"

const (
	CategoryMLModels        = "ML Models"
	CategoryStartups        = "Startups"
	CategoryOpenSource      = "Open Source"
	CategoryResearch        = "Research"
	CategoryProductLaunches = "Product Launches"
	CategoryAIEthics        = "AI Ethics"
)

// Categories lists the known categories in display order.
var Categories = []string{
	CategoryMLModels,
	CategoryStartups,
	CategoryOpenSource,
	CategoryResearch,
	CategoryProductLaunches,
	CategoryAIEthics,
}

// KnownCategory reports whether c is one of the fixed categories.
func KnownCategory(c string) bool {
	return lo.Contains(Categories, c)
}

var ErrInvalidItem = errors.New("invalid item")

// RawItem is a provider record for one fetch cycle. It carries no ID;
// a zero Timestamp means the provider omitted it.
type RawItem struct {
	Title     string
	Summary   string
	Content   string
	Category  string
	Trending  bool
	Timestamp time.Time
	Source    string
	Tags      []string
	URL       string
}

// Item is a feed entry owned by the feed store. Items are created only by
// the store's merge and never mutated afterwards.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content,omitempty"`
	Category  string    `json:"category"`
	Trending  bool      `json:"trending"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Tags      []string  `json:"tags"`
	URL       string    `json:"url,omitempty"`
}

const fillerBody = "Full coverage of this story is not available yet. " +
	"Check back after the next refresh or follow the source for details."

// Body returns the long-form text of the item, substituting a generic
// paragraph when the provider sent no content.
func (i Item) Body() string {
	if i.Content != "" {
		return i.Content
	}
	return fillerBody
}

// Normalize trims text fields and cleans up tags. Title casing and
// punctuation are kept intact since the title is the dedup key.
func (r RawItem) Normalize() RawItem {
	r.Title = strings.TrimSpace(r.Title)
	r.Summary = strings.TrimSpace(r.Summary)
	r.Content = strings.TrimSpace(r.Content)
	r.Category = strings.TrimSpace(r.Category)
	r.Source = strings.TrimSpace(r.Source)
	r.URL = strings.TrimSpace(r.URL)

	tags := lo.FilterMap(r.Tags, func(t string, _ int) (string, bool) {
		t = strings.TrimSpace(t)
		return t, t != ""
	})
	r.Tags = lo.Uniq(tags)

	return r
}

func (r RawItem) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidItem)
	}
	return nil
}

// ValidateBatch normalizes every record of a batch. A single invalid record
// rejects the whole batch, so a cycle merges either everything or nothing.
func ValidateBatch(batch []RawItem) ([]RawItem, error) {
	out := make([]RawItem, 0, len(batch))
	for idx, raw := range batch {
		raw = raw.Normalize()
		if err := raw.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", idx, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

// NewItem turns a raw record into an Item with the given id. A missing
// timestamp defaults to now.
func NewItem(id string, raw RawItem, now time.Time) Item {
	ts := raw.Timestamp
	if ts.IsZero() {
		ts = now
	}

	tags := make([]string, len(raw.Tags))
	copy(tags, raw.Tags)

	return Item{
		ID:        id,
		Title:     raw.Title,
		Summary:   raw.Summary,
		Content:   raw.Content,
		Category:  raw.Category,
		Trending:  raw.Trending,
		Timestamp: ts,
		Source:    raw.Source,
		Tags:      tags,
		URL:       raw.URL,
	}
}

// CategoryStyle is the presentation treatment of a category.
type CategoryStyle struct {
	Emoji   string
	Hashtag string
}

var categoryStyles = map[string]CategoryStyle{
	CategoryMLModels:        {Emoji: "🧠", Hashtag: "MLModels"},
	CategoryStartups:        {Emoji: "🚀", Hashtag: "Startups"},
	CategoryOpenSource:      {Emoji: "🔓", Hashtag: "OpenSource"},
	CategoryResearch:        {Emoji: "🔬", Hashtag: "Research"},
	CategoryProductLaunches: {Emoji: "📦", Hashtag: "ProductLaunches"},
	CategoryAIEthics:        {Emoji: "⚖️", Hashtag: "AIEthics"},
}

// StyleFor returns the style of a category. Unknown categories get the
// default treatment.
func StyleFor(category string) CategoryStyle {
	if s, ok := categoryStyles[category]; ok {
		return s
	}
	return CategoryStyle{Emoji: "📰", Hashtag: "News"}
}
