package reporter

import (
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the Telegram bot API the reporter needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Reporter sends failed-refresh notifications to a Telegram admin chat.
// It is nil-safe: if adminID is 0 or the receiver is nil, Notify is a no-op.
// A message identical to the previous one is suppressed for quietPeriod.
type Reporter struct {
	bot         Sender
	adminID     int64
	quietPeriod time.Duration
	now         func() time.Time

	mu       sync.Mutex
	lastMsg  string
	lastSent time.Time
}

func New(bot Sender, adminID int64, quietPeriod time.Duration) *Reporter {
	return &Reporter{
		bot:         bot,
		adminID:     adminID,
		quietPeriod: quietPeriod,
		now:         time.Now,
	}
}

func (r *Reporter) Notify(msg string) {
	if r == nil || r.adminID == 0 || r.bot == nil {
		return
	}

	r.mu.Lock()
	now := r.now()
	if msg == r.lastMsg && now.Sub(r.lastSent) < r.quietPeriod {
		r.mu.Unlock()
		return
	}
	r.lastMsg = msg
	r.lastSent = now
	r.mu.Unlock()

	if _, err := r.bot.Send(tgbotapi.NewMessage(r.adminID, msg)); err != nil {
		slog.Error("failed to send error notification", "err", err)
	}
}
