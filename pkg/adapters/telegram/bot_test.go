package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/tgadmin/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers Bot API calls with canned JSON and records the form params.
type fakeAPI struct {
	mu       sync.Mutex
	calls    map[string][]map[string]string
	editDesc string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	params := map[string]string{}
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}
	f.mu.Lock()
	f.calls[method] = append(f.calls[method], params)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Admin","username":"tgadmin_bot"}}`))
	case "sendMessage":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42,"date":0,"chat":{"id":7,"type":"private"},"text":"x"}}`))
	case "editMessageText":
		if f.editDesc != "" {
			body, _ := json.Marshal(map[string]any{"ok": false, "error_code": 400, "description": f.editDesc})
			_, _ = w.Write(body)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func (f *fakeAPI) last(method string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := f.calls[method]
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{calls: map[string][]map[string]string{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	bot, err := New("TOKEN", WithEndpoint(srv.URL+"/bot%s/%s", srv.Client()))
	require.NoError(t, err)
	return bot, api
}

func TestNew_ReadsIdentity(t *testing.T) {
	bot, _ := newTestBot(t)
	assert.Equal(t, "tgadmin_bot", bot.Username())
}

func TestSend_OneButtonPerRow(t *testing.T) {
	bot, api := newTestBot(t)

	id, err := bot.Send(context.Background(), 7, domain.OutboundMessage{
		Text: "📂 /",
		Buttons: []domain.Button{
			{Label: "{} server", Payload: "g/server"},
			{Label: "port: 80", Payload: "u/port"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	params := api.last("sendMessage")
	require.NotNil(t, params)
	assert.Equal(t, "7", params["chat_id"])
	assert.Equal(t, "📂 /", params["text"])

	var markup tgbotapi.InlineKeyboardMarkup
	require.NoError(t, json.Unmarshal([]byte(params["reply_markup"]), &markup))
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "{} server", markup.InlineKeyboard[0][0].Text)
	require.NotNil(t, markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "u/port", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestSend_PlainText(t *testing.T) {
	bot, api := newTestBot(t)

	_, err := bot.Send(context.Background(), 7, domain.OutboundMessage{Text: "Access denied."})
	require.NoError(t, err)
	_, hasMarkup := api.last("sendMessage")["reply_markup"]
	assert.False(t, hasMarkup)
}

func TestEdit(t *testing.T) {
	tests := []struct {
		name     string
		desc     string
		wantErr  bool
		wantGone bool
	}{
		{name: "ok"},
		{name: "not modified", desc: "Bad Request: message is not modified"},
		{name: "deleted", desc: "Bad Request: message to edit not found", wantErr: true, wantGone: true},
		{name: "too old", desc: "Bad Request: message can't be edited", wantErr: true, wantGone: true},
		{name: "other", desc: "Forbidden: bot was blocked by the user", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot, api := newTestBot(t)
			api.editDesc = tt.desc

			err := bot.Edit(context.Background(), 7, 42, domain.OutboundMessage{
				Text:    "menu",
				Buttons: []domain.Button{{Label: "..", Payload: "g/"}},
			})
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "42", api.last("editMessageText")["message_id"])
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantGone, isEditGone(err))
			if tt.wantGone {
				assert.ErrorIs(t, err, domain.ErrEditFailed)
			} else {
				assert.NotErrorIs(t, err, domain.ErrEditFailed)
			}
		})
	}
}

func TestEventFromUpdate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	chat := &tgbotapi.Chat{ID: 7}
	user := &tgbotapi.User{ID: 99}

	tests := []struct {
		name   string
		update tgbotapi.Update
		want   domain.Event
		ok     bool
	}{
		{
			name: "command with bot mention",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				MessageID: 3, Chat: chat, From: user, Text: "/Admin@tgadmin_bot",
				Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 18}},
			}},
			want: domain.Event{Kind: domain.EventCommand, ChatID: 7, SenderID: 99, MessageID: 3, Command: "admin", ReceivedAt: now},
			ok:   true,
		},
		{
			name: "text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				MessageID: 4, Chat: chat, From: user, Text: "26",
			}},
			want: domain.Event{Kind: domain.EventText, ChatID: 7, SenderID: 99, MessageID: 4, Text: "26", ReceivedAt: now},
			ok:   true,
		},
		{
			name: "button",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID: "cb", From: user, Data: "g/tags",
				Message: &tgbotapi.Message{MessageID: 42, Chat: chat},
			}},
			want: domain.Event{Kind: domain.EventButton, ChatID: 7, SenderID: 99, MessageID: 42, Payload: "g/tags", ReceivedAt: now},
			ok:   true,
		},
		{
			name:   "button on inline message",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb", From: user, Data: "g/"}},
		},
		{
			name:   "photo without text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{MessageID: 5, Chat: chat, From: user}},
		},
		{name: "empty update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EventFromUpdate(tt.update, now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
