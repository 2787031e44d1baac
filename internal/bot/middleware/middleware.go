// Package middleware restricts who may run bot commands.
package middleware

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/heroNews/internal/botkit"
)

// ErrNoAudience means neither a chat nor a channel is configured, so no user
// could ever pass Restrict.
var ErrNoAudience = errors.New("neither telegram_chat_id nor telegram_channel_id is set")

// Restrict picks the access rule for bot commands: the operator chat when
// chatID is set, otherwise the administrators of channelID.
func Restrict(chatID, channelID int64) (func(botkit.ViewFunc) botkit.ViewFunc, error) {
	switch {
	case chatID != 0:
		return func(next botkit.ViewFunc) botkit.ViewFunc { return ChatOnly(chatID, next) }, nil
	case channelID != 0:
		return func(next botkit.ViewFunc) botkit.ViewFunc { return AdminsOnly(channelID, next) }, nil
	default:
		return nil, ErrNoAudience
	}
}

// ChatOnly runs next only for messages sent in chatID.
func ChatOnly(chatID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		if update.Message.Chat.ID != chatID {
			slog.Debug("ignoring command from foreign chat", "chat", update.Message.Chat.ID)
			return nil
		}
		return next(ctx, bot, update)
	}
}

// AdminsOnly runs next only for administrators of channelID.
func AdminsOnly(channelID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		admins, err := bot.GetChatAdministrators(
			tgbotapi.ChatAdministratorsConfig{
				ChatConfig: tgbotapi.ChatConfig{
					ChatID: channelID,
				},
			},
		)
		if err != nil {
			return err
		}

		if update.Message.From == nil {
			return nil
		}

		for _, admin := range admins {
			if admin.User != nil && admin.User.ID == update.Message.From.ID {
				return next(ctx, bot, update)
			}
		}

		if _, err := bot.Send(tgbotapi.NewMessage(
			update.Message.Chat.ID,
			"You don't have permission to run this command.",
		)); err != nil {
			return err
		}

		return nil
	}
}
