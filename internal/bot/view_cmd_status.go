package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/newsfeed/internal/botkit"
	"github.com/0x0BSoD/newsfeed/internal/feedstore"
)

func ViewCmdStatus(feed Feed) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		reply := tgbotapi.NewMessage(update.Message.Chat.ID, renderStatus(feed.Snapshot()))
		if _, err := bot.Send(reply); err != nil {
			return err
		}
		return nil
	}
}

func renderStatus(snap feedstore.Snapshot) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Items: %d\n", len(snap.Items))
	fmt.Fprintf(&sb, "Refreshing: %t\n", snap.IsRefreshing)

	if snap.LastRefreshAt.IsZero() {
		sb.WriteString("Last refresh: never\n")
	} else {
		fmt.Fprintf(&sb, "Last refresh: %s\n", snap.LastRefreshAt.Format(time.RFC3339))
	}

	if snap.LastError != "" {
		fmt.Fprintf(&sb, "Last error: %s\n", snap.LastError)
	}

	return strings.TrimSpace(sb.String())
}
