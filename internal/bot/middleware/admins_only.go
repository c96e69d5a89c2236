package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/newsfeed/internal/botkit"
)

// AdminsOnly lets a command through only for administrators of channelID.
func AdminsOnly(channelID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		admins, err := bot.GetChatAdministrators(
			tgbotapi.ChatAdministratorsConfig{
				ChatConfig: tgbotapi.ChatConfig{ChatID: channelID},
			},
		)
		if err != nil {
			return err
		}

		if from := update.Message.From; from != nil {
			for _, admin := range admins {
				if admin.User != nil && admin.User.ID == from.ID {
					return next(ctx, bot, update)
				}
			}
		}

		if _, err := bot.Send(tgbotapi.NewMessage(
			update.Message.Chat.ID,
			"You are not allowed to run this command.",
		)); err != nil {
			return err
		}

		return nil
	}
}
