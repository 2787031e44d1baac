// Package notifier posts headlines that a silent refresh brought in to a
// Telegram channel.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/0x0BSoD/heroNews/internal/botkit/markup"
	"github.com/0x0BSoD/heroNews/internal/detail"
	"github.com/0x0BSoD/heroNews/internal/model"
	"github.com/0x0BSoD/heroNews/internal/syncer"
)

type HeadlineProvider interface {
	Subscribe(fn func(syncer.Event)) (unsubscribe func())
	Headlines() []model.Article
}

type DetailReader interface {
	Read(ctx context.Context, article model.Article) detail.Page
}

type Notifier struct {
	headlines HeadlineProvider
	reader    DetailReader
	bot       *tgbotapi.BotAPI
	channelID int64

	mu     sync.Mutex
	posted map[uuid.UUID]struct{}
	seeded bool

	wake chan struct{}
}

func New(headlines HeadlineProvider, reader DetailReader, bot *tgbotapi.BotAPI, channelID int64) *Notifier {
	return &Notifier{
		headlines: headlines,
		reader:    reader,
		bot:       bot,
		channelID: channelID,
		posted:    map[uuid.UUID]struct{}{},
		wake:      make(chan struct{}, 1),
	}
}

// Start listens for engine events until ctx is done. Headlines already
// loaded when Start runs, or brought by the first successful load, are only
// marked as posted; each later batch of new headlines posts the newest
// unseen article.
func (n *Notifier) Start(ctx context.Context) error {
	slog.Info("notifier started", "channel", n.channelID)

	unsubscribe := n.headlines.Subscribe(n.handle)
	defer unsubscribe()

	if len(n.headlines.Headlines()) > 0 {
		n.seed()
	}

	for {
		select {
		case <-n.wake:
			if err := n.SelectAndSendArticle(ctx); err != nil {
				slog.Error("failed to post headline", "err", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (n *Notifier) handle(ev syncer.Event) {
	switch {
	case ev.Kind == syncer.EventStateChanged && ev.State.Phase == syncer.PhaseSuccess:
		n.seed()
	case ev.Kind == syncer.EventNewHeadlines:
		select {
		case n.wake <- struct{}{}:
		default:
		}
	}
}

func (n *Notifier) seed() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.seeded {
		return
	}
	n.seeded = true

	for _, a := range n.headlines.Headlines() {
		n.posted[a.ID] = struct{}{}
	}
}

// SelectAndSendArticle posts the first headline not posted yet, if any.
func (n *Notifier) SelectAndSendArticle(ctx context.Context) error {
	article, ok := n.next()
	if !ok {
		return nil
	}

	slog.Info("posting headline", "title", article.Title)

	page := n.reader.Read(ctx, article)
	if err := n.sendArticle(article, page.Summary); err != nil {
		return err
	}

	n.mu.Lock()
	n.posted[article.ID] = struct{}{}
	n.mu.Unlock()

	return nil
}

func (n *Notifier) next() (model.Article, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.seeded = true

	for _, a := range n.headlines.Headlines() {
		if _, done := n.posted[a.ID]; !done {
			return a, true
		}
	}
	return model.Article{}, false
}

func (n *Notifier) sendArticle(article model.Article, summary string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s*", markup.EscapeForMarkdown(article.Title))
	if summary != "" {
		fmt.Fprintf(&b, "\n\n%s", markup.EscapeForMarkdown(summary))
	}
	if article.Link != "" {
		fmt.Fprintf(&b, "\n\n%s", markup.EscapeForMarkdown(article.Link))
	}
	if tag := hashtag(article.Source); tag != "" {
		fmt.Fprintf(&b, "\n\\#%s", markup.EscapeForMarkdown(tag))
	}

	msg := tgbotapi.NewMessage(n.channelID, b.String())
	msg.ParseMode = "MarkdownV2"

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("sending to channel %d: %w", n.channelID, err)
	}

	return nil
}

func hashtag(source string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, source)
}
