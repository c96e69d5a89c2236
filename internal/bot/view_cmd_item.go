package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/0x0BSoD/newsfeed/internal/botkit"
	"github.com/0x0BSoD/newsfeed/internal/botkit/markup"
	"github.com/0x0BSoD/newsfeed/internal/model"
)

// telegram rejects messages over 4096 characters; the limit applies to the
// escaped body
const maxBodyRunes = 3000

func ViewCmdItem(feed Feed) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		key := strings.TrimSpace(update.Message.CommandArguments())

		item, ok := feed.Item(key)
		if !ok {
			reply := tgbotapi.NewMessage(update.Message.Chat.ID, "Item not found. Use /news to list current items.")
			_, err := bot.Send(reply)
			return err
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, renderItem(item))
		reply.ParseMode = parseModeMarkdownV2

		if _, err := bot.Send(reply); err != nil {
			return err
		}

		return nil
	}
}

func renderItem(item model.Item) string {
	style := model.StyleFor(item.Category)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *%s*\n", style.Emoji, markup.EscapeForMarkdown(item.Title))
	fmt.Fprintf(&sb, "_%s_\n\n", markup.EscapeForMarkdown(fmt.Sprintf(
		"%s · %s · %s",
		item.Source,
		lo.Ternary(item.Category != "", item.Category, "Uncategorized"),
		item.Timestamp.Format(time.RFC822),
	)))

	sb.WriteString(truncateEscaped(markup.EscapeForMarkdown(item.Body()), maxBodyRunes))

	if len(item.Tags) > 0 {
		tags := lo.Map(item.Tags, func(tag string, _ int) string {
			return markup.EscapeForMarkdown("#" + strings.Join(strings.Fields(tag), ""))
		})
		sb.WriteString("\n\n" + strings.Join(tags, " "))
	}

	return sb.String()
}

// truncateEscaped cuts MarkdownV2 text to at most limit runes plus an
// escaped ellipsis, without splitting an escape sequence.
func truncateEscaped(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := runes[:limit]
	trailing := 0
	for i := len(cut) - 1; i >= 0 && cut[i] == '\\'; i-- {
		trailing++
	}
	if trailing%2 == 1 {
		cut = cut[:len(cut)-1]
	}

	return string(cut) + markup.EscapeForMarkdown("...")
}
