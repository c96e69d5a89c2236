// Package bot implements the Telegram commands that read and refresh the feed.
package bot

import (
	"strings"

	"github.com/samber/lo"

	"github.com/0x0BSoD/newsfeed/internal/feedstore"
	"github.com/0x0BSoD/newsfeed/internal/model"
)

const parseModeMarkdownV2 = "MarkdownV2"

// maxListed bounds how many items one /news reply shows.
const maxListed = 10

type Feed interface {
	Snapshot() feedstore.Snapshot
	View(category, term string) (feedstore.Snapshot, []model.Item)
	Trending(filtered []model.Item) []model.Item
	Item(key string) (model.Item, bool)
}

type Refresher interface {
	RefreshNow(category string)
}

// parseNewsArgs reads "/news [category] [| search]". Without a pipe the
// argument is a category when it names one, and a search term otherwise.
func parseNewsArgs(args string) (category, term string) {
	args = strings.TrimSpace(args)

	if left, right, ok := strings.Cut(args, "|"); ok {
		category = strings.TrimSpace(left)
		if known, ok := resolveCategory(category); ok {
			category = known
		}
		if category == "" {
			category = model.CategoryAll
		}
		return category, strings.TrimSpace(right)
	}

	if known, ok := resolveCategory(args); ok {
		return known, ""
	}
	return model.CategoryAll, args
}

func resolveCategory(s string) (string, bool) {
	if strings.EqualFold(s, model.CategoryAll) {
		return model.CategoryAll, true
	}
	return lo.Find(model.Categories, func(c string) bool {
		return strings.EqualFold(c, s)
	})
}

// itemKey is what users pass to /item.
func itemKey(item model.Item) string {
	if item.URL != "" {
		return item.URL
	}
	return item.ID
}
