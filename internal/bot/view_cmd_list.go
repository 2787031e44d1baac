package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/botkit"
)

// ViewCmdList shows one page of the displayed rows: /list [page].
func ViewCmdList(engine Engine) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		page, ok := botkit.ParseIndex(update.Message.CommandArguments())
		if !ok {
			page = 0
		}

		return reply(bot, update.Message.Chat.ID, formatPage(engine, page))
	}
}
