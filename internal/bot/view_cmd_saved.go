package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/botkit"
	"github.com/0x0BSoD/heroNews/internal/botkit/markup"
)

// ViewCmdSaved lists the reading list in save order.
func ViewCmdSaved(list SavedLister) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		saved, err := list.List(ctx)
		if err != nil {
			return err
		}

		if len(saved) == 0 {
			return reply(bot, update.Message.Chat.ID, markup.EscapeForMarkdown("Your reading list is empty."))
		}

		var b strings.Builder
		b.WriteString("*Reading list*\n")
		for i, a := range saved {
			fmt.Fprintf(&b, "\n%d\\. %s", i+1, markup.EscapeForMarkdown(a.Title))
			if a.Link != "" {
				fmt.Fprintf(&b, "\n%s", markup.EscapeForMarkdown(a.Link))
			}
		}

		return reply(bot, update.Message.Chat.ID, b.String())
	}
}
