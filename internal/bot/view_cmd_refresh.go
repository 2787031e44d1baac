package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/botkit"
	"github.com/0x0BSoD/heroNews/internal/botkit/markup"
)

// ViewCmdRefresh starts a full reload. The result is rendered by the
// Presenter once the engine reports it.
func ViewCmdRefresh(engine Engine) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		engine.LoadNews()
		return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown("Refreshing..."))
	}
}
