package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/botkit"
)

// ViewCmdSearch filters the rows: /search <text>. Without text it behaves
// like /clear.
func ViewCmdSearch(engine Engine) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		engine.Search(strings.TrimSpace(update.Message.CommandArguments()))
		return reply(bot, update.Message.Chat.ID, formatPage(engine, 0))
	}
}

func ViewCmdClear(engine Engine) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		engine.Search("")
		return reply(bot, update.Message.Chat.ID, formatPage(engine, 0))
	}
}
