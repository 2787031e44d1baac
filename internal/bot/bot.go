// Package bot maps Telegram commands onto the sync engine.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/botkit/markup"
	"github.com/0x0BSoD/heroNews/internal/detail"
	"github.com/0x0BSoD/heroNews/internal/model"
	"github.com/0x0BSoD/heroNews/internal/syncer"
	"github.com/0x0BSoD/heroNews/internal/viewmodel"
)

const (
	parseModeMarkdownV2 = "MarkdownV2"

	pageSize = 5
)

// Engine is the part of syncer.Engine the commands drive.
type Engine interface {
	LoadNews()
	Search(query string)
	Query() string
	State() syncer.State
	RowCount() int
	Rows(offset, limit int) []viewmodel.Row
	ArticleAt(index int) (model.Article, error)
	ToggleSaved(ctx context.Context, index int) (model.Article, syncer.Toggle, error)
}

type SavedLister interface {
	List(ctx context.Context) ([]model.Article, error)
}

type DetailReader interface {
	Read(ctx context.Context, article model.Article) detail.Page
}

func reply(bot *tgbotapi.BotAPI, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseModeMarkdownV2
	msg.DisableWebPagePreview = true

	_, err := bot.Send(msg)
	return err
}

// formatPage renders rows page (0-based) of the displayed list.
func formatPage(engine Engine, page int) string {
	total := engine.RowCount()
	if total == 0 {
		if q := engine.Query(); q != "" {
			return markup.EscapeForMarkdown(fmt.Sprintf("Nothing matches %q.", q))
		}
		return markup.EscapeForMarkdown("No headlines yet. Try /refresh.")
	}

	pages := (total + pageSize - 1) / pageSize
	page = min(max(page, 0), pages-1)
	offset := page * pageSize

	var b strings.Builder
	if q := engine.Query(); q != "" {
		fmt.Fprintf(&b, "_%s_\n\n", markup.EscapeForMarkdown(fmt.Sprintf("Results for %q", q)))
	}

	for i, row := range engine.Rows(offset, pageSize) {
		b.WriteString(formatRow(offset+i+1, row))
		b.WriteString("\n\n")
	}

	b.WriteString(markup.EscapeForMarkdown(fmt.Sprintf("Page %d/%d · /list <page> · /read <n> · /save <n>", page+1, pages)))

	return b.String()
}

func formatRow(n int, row viewmodel.Row) string {
	star := ""
	if row.IsSaved {
		star = " ⭐"
	}

	return fmt.Sprintf("%d\\. *%s*%s\n_%s_",
		n,
		markup.EscapeForMarkdown(row.Title),
		star,
		markup.EscapeForMarkdown(row.Meta),
	)
}
