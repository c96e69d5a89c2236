// Package botkit is a small command router on top of the Telegram bot API.
package botkit

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the subset of *tgbotapi.BotAPI used by views.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
}

type ViewFunc func(ctx context.Context, bot API, update tgbotapi.Update) error

type Bot struct {
	api      *tgbotapi.BotAPI
	cmdViews map[string]ViewFunc
}

func New(api *tgbotapi.BotAPI) *Bot {
	return &Bot{api: api}
}

func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	if b.cmdViews == nil {
		b.cmdViews = make(map[string]ViewFunc)
	}

	b.cmdViews[cmd] = view
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			updateCtx, updateCancel := context.WithTimeout(ctx, 5*time.Minute)
			Dispatch(updateCtx, b.api, b.cmdViews, update)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Dispatch routes a command update to its view. Errors and panics are
// logged and answered with a generic message.
func Dispatch(ctx context.Context, api API, views map[string]ViewFunc, update tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[ERROR] panic recovered: %v\n%s", p, string(debug.Stack()))
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	view, ok := views[update.Message.Command()]
	if !ok {
		return
	}

	if err := view(ctx, api, update); err != nil {
		log.Printf("[ERROR] failed to handle /%s: %v", update.Message.Command(), err)

		if _, err := api.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "internal error")); err != nil {
			log.Printf("[ERROR] failed to send error message: %v", err)
		}
	}
}
