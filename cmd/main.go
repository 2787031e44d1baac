// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/0x0BSoD/heroNews/internal/bot"
	"github.com/0x0BSoD/heroNews/internal/bot/middleware"
	"github.com/0x0BSoD/heroNews/internal/botkit"
	"github.com/0x0BSoD/heroNews/internal/config"
	"github.com/0x0BSoD/heroNews/internal/connectivity"
	"github.com/0x0BSoD/heroNews/internal/detail"
	"github.com/0x0BSoD/heroNews/internal/notifier"
	"github.com/0x0BSoD/heroNews/internal/reporter"
	"github.com/0x0BSoD/heroNews/internal/source"
	"github.com/0x0BSoD/heroNews/internal/storage"
	"github.com/0x0BSoD/heroNews/internal/summary"
	"github.com/0x0BSoD/heroNews/internal/syncer"
)

func main() {
	cfg := config.Get()
	setupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	feed, err := newFeed(cfg)
	if err != nil {
		slog.Error("failed to create feed", "err", err)
		return
	}

	blobs, closeBlobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open reading list backend", "backend", cfg.ReadingListBackend, "err", err)
		return
	}
	defer closeBlobs()

	readingList := storage.OpenReadingList(ctx, blobs, cfg.ReadingListKey)

	summarizer, err := summary.New(cfg.AIType, cfg.AIBaseURL, cfg.AIKey, cfg.AIPrompt, cfg.AIModel, cfg.AITimeout)
	if err != nil {
		slog.Error("failed to create summarizer", "err", err)
		return
	}
	if summarizer != nil {
		slog.Info("using AI summarizer", "type", cfg.AIType, "model", cfg.AIModel)
	}
	reader := detail.NewReader(summarizer, &http.Client{Timeout: cfg.HTTPTimeout})

	var botAPI *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		botAPI, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			slog.Error("failed to create botAPI", "err", err)
			return
		}
	}

	errReporter := reporter.New(botAPI, cfg.TelegramAdminChatID)
	monitor := connectivity.NewMonitor(cfg.ConnectivityProbeURL, cfg.ConnectivityInterval, cfg.HTTPTimeout)

	engine := syncer.New(
		feed,
		readingList,
		monitor,
		syncer.WithRefreshInterval(cfg.RefreshInterval),
		syncer.WithFetchTimeout(cfg.HTTPTimeout),
		syncer.WithRefreshErrorHandler(errReporter.RefreshFailed),
	)
	defer engine.Close()

	engine.Subscribe(func(ev syncer.Event) {
		switch ev.Kind {
		case syncer.EventStateChanged:
			slog.Info("state changed", "state", ev.State.String())
			if ev.State.Phase == syncer.PhaseSuccess {
				errReporter.Recovered()
			}
		case syncer.EventNewHeadlines:
			slog.Info("new headlines", "rows", engine.RowCount())
			errReporter.Recovered()
		}
	})

	// The first probe reports "online" and the engine loads the feed then.
	go func(ctx context.Context) {
		if err := monitor.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("connectivity monitor stopped", "err", err)
		}
	}(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "%s\n", engine.State())
	})
	srv := &http.Server{Addr: cfg.HealthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to run http server", "err", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		slog.Info("http server stopped")
	}()

	if botAPI == nil {
		slog.Info("telegram_bot_token not set, running headless")
		<-ctx.Done()
		return
	}

	restrict, err := middleware.Restrict(cfg.TelegramChatID, cfg.TelegramChannelID)
	if err != nil {
		slog.Warn("telegram bot disabled, every command would be refused; running headless", "err", err)
		<-ctx.Done()
		return
	}

	if cfg.TelegramChannelID != 0 {
		channelNotifier := notifier.New(engine, reader, botAPI, cfg.TelegramChannelID)

		go func(ctx context.Context) {
			if err := channelNotifier.Start(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Error("failed to run notifier", "err", err)
					return
				}

				slog.Info("notifier stopped")
			}
		}(ctx)
	}

	if cfg.TelegramChatID != 0 {
		presenter := bot.NewPresenter(botAPI, cfg.TelegramChatID, engine)
		engine.Subscribe(presenter.Handle)
	}

	newsBot := botkit.New(botAPI)
	newsBot.RegisterCmdView("refresh", restrict(bot.ViewCmdRefresh(engine)))
	newsBot.RegisterCmdView("search", restrict(bot.ViewCmdSearch(engine)))
	newsBot.RegisterCmdView("clear", restrict(bot.ViewCmdClear(engine)))
	newsBot.RegisterCmdView("list", restrict(bot.ViewCmdList(engine)))
	newsBot.RegisterCmdView("save", restrict(bot.ViewCmdSave(engine)))
	newsBot.RegisterCmdView("read", restrict(bot.ViewCmdRead(engine, reader)))
	newsBot.RegisterCmdView("saved", restrict(bot.ViewCmdSaved(readingList)))

	if err := newsBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("failed to run botkit", "err", err)
	}
}

func setupLogger(level, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func newFeed(cfg config.Config) (syncer.Feed, error) {
	switch cfg.FeedKind {
	case "rss":
		if cfg.RSSFeedURL == "" {
			return nil, errors.New("rss_feed_url is required when feed_kind is \"rss\"")
		}
		slog.Info("using rss feed", "url", cfg.RSSFeedURL)
		return source.NewRSSSource(cfg.RSSFeedURL, cfg.RSSFeedName, cfg.HTTPTimeout), nil
	case "newsdata", "":
		if cfg.NewsAPIKey == "" {
			slog.Warn("news_api_key is empty, newsdata.io will reject requests")
		}
		return source.NewNewsDataSource(cfg.NewsAPIBaseURL, cfg.NewsAPIKey, cfg.NewsLanguage, cfg.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("unknown feed_kind %q", cfg.FeedKind)
	}
}

func newBlobStore(ctx context.Context, cfg config.Config) (storage.BlobStore, func(), error) {
	switch cfg.ReadingListBackend {
	case "postgres":
		db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to db: %w", err)
		}

		store := storage.NewPostgresBlobStore(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return storage.NewRedisBlobStore(client, "heronews:"), func() { client.Close() }, nil

	case "file", "":
		store, err := storage.NewFileBlobStore(os.ExpandEnv(cfg.ReadingListDir))
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown reading_list_backend %q", cfg.ReadingListBackend)
	}
}
