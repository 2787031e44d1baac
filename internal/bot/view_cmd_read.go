package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/botkit"
	"github.com/0x0BSoD/heroNews/internal/botkit/markup"
	"github.com/0x0BSoD/heroNews/internal/detail"
	"github.com/0x0BSoD/heroNews/internal/syncer"
)

// Telegram rejects messages over 4096 characters; leave room for escaping.
const maxContentRunes = 3000

// ViewCmdRead shows the detail view of a displayed row: /read <n>.
func ViewCmdRead(engine Engine, reader DetailReader) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		index, ok := botkit.ParseIndex(update.Message.CommandArguments())
		if !ok {
			return reply(bot, chatID, markup.EscapeForMarkdown("Usage: /read <n>"))
		}

		article, err := engine.ArticleAt(index)
		if err != nil {
			if errors.Is(err, syncer.ErrIndexOutOfRange) {
				return reply(bot, chatID, markup.EscapeForMarkdown(fmt.Sprintf("There is no row %d.", index+1)))
			}
			return err
		}

		return reply(bot, chatID, formatDetail(reader.Read(ctx, article)))
	}
}

func formatDetail(page detail.Page) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s*\n", markup.EscapeForMarkdown(page.Title))

	meta := page.Author
	if page.DateText != "" {
		meta += " • " + page.DateText
	}
	if meta != "" {
		fmt.Fprintf(&b, "_%s_\n", markup.EscapeForMarkdown(meta))
	}

	if page.Summary != "" {
		fmt.Fprintf(&b, "\n>%s\n", markup.EscapeForMarkdown(page.Summary))
	}

	if page.Content != "" {
		fmt.Fprintf(&b, "\n%s\n", markup.EscapeForMarkdown(truncate(page.Content, maxContentRunes)))
	}

	if page.Link != "" {
		fmt.Fprintf(&b, "\n%s", markup.EscapeForMarkdown(page.Link))
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
