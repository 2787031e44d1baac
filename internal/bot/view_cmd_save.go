package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/botkit"
	"github.com/0x0BSoD/heroNews/internal/botkit/markup"
	"github.com/0x0BSoD/heroNews/internal/syncer"
)

const usageSave = "Usage: /save <n>, where n is the row number from /list."

// ViewCmdSave toggles the saved flag of a displayed row: /save <n>.
func ViewCmdSave(engine Engine) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		index, ok := botkit.ParseIndex(update.Message.CommandArguments())
		if !ok {
			return reply(bot, chatID, markup.EscapeForMarkdown(usageSave))
		}

		article, toggle, err := engine.ToggleSaved(ctx, index)
		if err != nil {
			if errors.Is(err, syncer.ErrIndexOutOfRange) {
				return reply(bot, chatID, markup.EscapeForMarkdown(fmt.Sprintf("There is no row %d.", index+1)))
			}
			return reply(bot, chatID, markup.EscapeForMarkdown(
				fmt.Sprintf("Could not update the reading list: %v", errors.Unwrap(err)),
			))
		}

		text := "Saved: "
		if toggle == syncer.Removed {
			text = "Removed from reading list: "
		}

		return reply(bot, chatID, markup.EscapeForMarkdown(text+article.Title))
	}
}
