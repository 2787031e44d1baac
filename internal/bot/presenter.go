package bot

import (
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/botkit/markup"
	"github.com/0x0BSoD/heroNews/internal/syncer"
)

// Presenter renders engine events into the chat. Handle must be called
// from the engine's event goroutine only.
type Presenter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	engine Engine

	prev syncer.Phase
}

func NewPresenter(bot *tgbotapi.BotAPI, chatID int64, engine Engine) *Presenter {
	return &Presenter{bot: bot, chatID: chatID, engine: engine}
}

// Handle shows the first page after a load finishes, every load error, and
// a hint when a silent refresh brought new headlines. Search results and
// saved-flag flips are answered by the commands themselves.
func (p *Presenter) Handle(ev syncer.Event) {
	var text string

	switch ev.Kind {
	case syncer.EventStateChanged:
		prev := p.prev
		p.prev = ev.State.Phase

		switch {
		case ev.State.Phase == syncer.PhaseError:
			text = "⚠️ " + markup.EscapeForMarkdown(ev.State.Message)
		case ev.State.Phase == syncer.PhaseSuccess && prev == syncer.PhaseLoading:
			text = formatPage(p.engine, 0)
		}
	case syncer.EventNewHeadlines:
		p.prev = ev.State.Phase
		text = markup.EscapeForMarkdown("🆕 New headlines are in. Send /list to see them.")
	}

	if text == "" {
		return
	}

	if err := reply(p.bot, p.chatID, text); err != nil {
		slog.Error("failed to render engine event", "kind", ev.Kind, "err", err)
	}
}
