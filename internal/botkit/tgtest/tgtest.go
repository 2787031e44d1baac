// Package tgtest runs a fake Telegram Bot API for tests.
package tgtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

type Message struct {
	ChatID    int64
	Text      string
	ParseMode string
}

// Server answers getMe, sendMessage and getChatAdministrators and records
// every sent message.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	sent   []Message
	admins []int64
	notify chan struct{}
}

func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{notify: make(chan struct{}, 64)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// API returns a client talking to the fake server.
func (s *Server) API(t *testing.T) *tgbotapi.BotAPI {
	t.Helper()

	api, err := tgbotapi.NewBotAPIWithClient("test-token", s.URL+"/bot%s/%s", s.Client())
	require.NoError(t, err)

	return api
}

// SetAdmins sets the user ids returned by getChatAdministrators.
func (s *Server) SetAdmins(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins = ids
}

func (s *Server) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

// Notify receives a value after every recorded message.
func (s *Server) Notify() <-chan struct{} {
	return s.notify
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	switch method := path.Base(r.URL.Path); method {
	case "getMe":
		reply(w, map[string]any{"id": 1, "is_bot": true, "first_name": "test", "username": "test_bot"})

	case "sendMessage":
		chatID, _ := strconv.ParseInt(r.Form.Get("chat_id"), 10, 64)
		msg := Message{
			ChatID:    chatID,
			Text:      r.Form.Get("text"),
			ParseMode: r.Form.Get("parse_mode"),
		}

		s.mu.Lock()
		s.sent = append(s.sent, msg)
		s.mu.Unlock()

		select {
		case s.notify <- struct{}{}:
		default:
		}

		reply(w, map[string]any{
			"message_id": len(s.Sent()),
			"date":       0,
			"chat":       map[string]any{"id": chatID, "type": "private"},
			"text":       msg.Text,
		})

	case "getChatAdministrators":
		s.mu.Lock()
		members := make([]map[string]any, 0, len(s.admins))
		for _, id := range s.admins {
			members = append(members, map[string]any{
				"user":   map[string]any{"id": id, "is_bot": false, "first_name": "admin"},
				"status": "administrator",
			})
		}
		s.mu.Unlock()
		reply(w, members)

	default:
		if strings.HasPrefix(method, "get") {
			reply(w, []any{})
			return
		}
		reply(w, true)
	}
}

func reply(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

// Command builds an update carrying a bot command sent by userID in chatID.
func Command(chatID, userID int64, text string) tgbotapi.Update {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmdLen = i
	}

	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 1,
			From:      &tgbotapi.User{ID: userID, FirstName: "user"},
			Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
			Text:      text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: cmdLen},
			},
		},
	}
}
