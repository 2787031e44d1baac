package reporter

import (
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/source"
)

// Reporter sends short error notification messages to a Telegram admin chat.
// It is nil-safe: if adminID is 0, bot is nil or the receiver is nil, Notify
// is a no-op.
type Reporter struct {
	bot     *tgbotapi.BotAPI
	adminID int64

	mu   sync.Mutex
	last string
}

func New(bot *tgbotapi.BotAPI, adminID int64) *Reporter {
	return &Reporter{bot: bot, adminID: adminID}
}

func (r *Reporter) Notify(msg string) {
	if r == nil || r.bot == nil || r.adminID == 0 {
		return
	}
	if _, err := r.bot.Send(tgbotapi.NewMessage(r.adminID, msg)); err != nil {
		slog.Error("failed to send error notification", "err", err)
	}
}

// RefreshFailed reports a background refresh failure. Transient network
// failures are skipped, and so is a repeat of the last reported message.
func (r *Reporter) RefreshFailed(err error) {
	if r == nil || err == nil || source.IsTransient(err) {
		return
	}

	msg := "Background refresh failed: " + err.Error()

	r.mu.Lock()
	if msg == r.last {
		r.mu.Unlock()
		return
	}
	r.last = msg
	r.mu.Unlock()

	r.Notify(msg)
}

// Recovered clears the last reported failure so the next one is sent again.
func (r *Reporter) Recovered() {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.last = ""
	r.mu.Unlock()
}
