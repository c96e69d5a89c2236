package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/0x0BSoD/newsfeed/internal/botkit"
	"github.com/0x0BSoD/newsfeed/internal/model"
)

func ViewCmdRefresh(refresher Refresher) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		category := strings.TrimSpace(update.Message.CommandArguments())
		if known, ok := resolveCategory(category); ok {
			category = lo.Ternary(known == model.CategoryAll, "", known)
		}

		refresher.RefreshNow(category)

		msgText := "Refresh started."
		if category != "" {
			msgText = fmt.Sprintf("Refresh started for %q.", category)
		}

		if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, msgText)); err != nil {
			return err
		}

		return nil
	}
}
