// Package view derives the filtered and trending projections of a feed
// snapshot. All functions are pure: they return new slices and never touch
// their input.
package view

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"

	"github.com/0x0BSoD/newsfeed/internal/model"
)

// ProminentTrending is how many trending items get highlighted.
const ProminentTrending = 2

func ByCategory(items []model.Item, category string) []model.Item {
	if category == "" || category == model.CategoryAll {
		return clone(items)
	}
	return lo.Filter(items, func(item model.Item, _ int) bool {
		return item.Category == category
	})
}

// BySearch keeps items whose title, summary or any tag contains term,
// ignoring case.
func BySearch(items []model.Item, term string) []model.Item {
	if term == "" {
		return clone(items)
	}
	needle := strings.ToLower(term)
	return lo.Filter(items, func(item model.Item, _ int) bool {
		return matches(item, needle)
	})
}

func matches(item model.Item, needle string) bool {
	if strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Summary), needle) {
		return true
	}
	return lo.ContainsBy(item.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), needle)
	})
}

// Filter applies the category filter, then the search filter.
func Filter(items []model.Item, category, term string) []model.Item {
	return BySearch(ByCategory(items, category), term)
}

func Trending(items []model.Item) []model.Item {
	return lo.Filter(items, func(item model.Item, _ int) bool {
		return item.Trending
	})
}

// Prominent returns the leading trending items that get highlighted.
func Prominent(trending []model.Item) []model.Item {
	if len(trending) > ProminentTrending {
		return clone(trending[:ProminentTrending])
	}
	return clone(trending)
}

func clone(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}

// MemoSize bounds the number of memoized filter results.
const MemoSize = 64

type memoKey struct {
	category string
	term     string
}

// Projector memoizes Filter results for one snapshot version at a time,
// keeping at most MemoSize recently used parameter pairs.
type Projector struct {
	mu      sync.Mutex
	version uint64
	cache   *lru.Cache[memoKey, []model.Item]
}

func NewProjector() *Projector {
	cache, err := lru.New[memoKey, []model.Item](MemoSize)
	if err != nil {
		panic(err)
	}
	return &Projector{cache: cache}
}

// Filter returns Filter(items, category, term), reusing the previous result
// when the snapshot version and parameters are unchanged.
func (p *Projector) Filter(version uint64, items []model.Item, category, term string) []model.Item {
	p.mu.Lock()
	defer p.mu.Unlock()

	if version != p.version {
		p.version = version
		p.cache.Purge()
	}

	key := memoKey{category: category, term: term}
	if cached, ok := p.cache.Get(key); ok {
		return clone(cached)
	}

	result := Filter(items, category, term)
	p.cache.Add(key, result)
	return clone(result)
}

// Len reports how many results are memoized.
func (p *Projector) Len() int {
	return p.cache.Len()
}
