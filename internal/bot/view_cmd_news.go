package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/0x0BSoD/newsfeed/internal/botkit"
	"github.com/0x0BSoD/newsfeed/internal/botkit/markup"
	"github.com/0x0BSoD/newsfeed/internal/model"
	"github.com/0x0BSoD/newsfeed/internal/view"
)

func ViewCmdNews(feed Feed) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		category, term := parseNewsArgs(update.Message.CommandArguments())

		snap, filtered := feed.View(category, term)

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, renderNews(view.StateOf(snap), snap.LastError, filtered, feed.Trending(filtered)))
		reply.ParseMode = parseModeMarkdownV2
		reply.DisableWebPagePreview = true

		if _, err := bot.Send(reply); err != nil {
			return err
		}

		return nil
	}
}

func renderNews(state view.State, lastError string, filtered, trending []model.Item) string {
	switch state {
	case view.StateLoading:
		return markup.EscapeForMarkdown("⏳ Loading news...")
	case view.StateError:
		return markup.EscapeForMarkdown("⚠️ Could not load news: " + lastError)
	case view.StateEmpty:
		return markup.EscapeForMarkdown("No news yet. Try /refresh.")
	}

	if len(filtered) == 0 {
		return markup.EscapeForMarkdown("Nothing matches your filters.")
	}

	var sb strings.Builder

	prominent := view.Prominent(trending)
	if len(prominent) > 0 {
		sb.WriteString("*🔥 Trending*\n\n")
		for _, item := range prominent {
			writeNewsLine(&sb, item)
		}
	}

	shown := lo.SliceToMap(prominent, func(item model.Item) (string, bool) { return item.ID, true })
	rest := lo.Filter(filtered, func(item model.Item, _ int) bool { return !shown[item.ID] })
	if limit := maxListed - len(prominent); len(rest) > limit {
		rest = rest[:limit]
	}

	if len(rest) > 0 {
		sb.WriteString("*Latest*\n\n")
		for _, item := range rest {
			writeNewsLine(&sb, item)
		}
	}

	if more := len(filtered) - len(prominent) - len(rest); more > 0 {
		sb.WriteString(markup.EscapeForMarkdown(fmt.Sprintf("...and %d more", more)))
	}

	return strings.TrimSpace(sb.String())
}

func writeNewsLine(sb *strings.Builder, item model.Item) {
	style := model.StyleFor(item.Category)

	fmt.Fprintf(sb, "%s *%s*\n", style.Emoji, markup.EscapeForMarkdown(item.Title))
	if item.Summary != "" {
		fmt.Fprintf(sb, "%s\n", markup.EscapeForMarkdown(item.Summary))
	}
	fmt.Fprintf(sb, "_%s_ \\#%s `/item %s`\n\n",
		markup.EscapeForMarkdown(item.Source),
		markup.EscapeForMarkdown(style.Hashtag),
		codeEscaper.Replace(itemKey(item)),
	)
}

var codeEscaper = strings.NewReplacer("\\", "\\\\", "`", "\\`")
