package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smart-store-agent/internal/assistant"
	"smart-store-agent/internal/auth"
	"smart-store-agent/internal/storage"
)

type fakeSender struct {
	sent  []string
	modes []string
	chats []int64
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	sw := c.(tgbotapi.MessageConfig)
	f.sent = append(f.sent, sw.Text)
	f.modes = append(f.modes, sw.ParseMode)
	f.chats = append(f.chats, sw.ChatID)
	return tgbotapi.Message{}, nil
}

type fakeHandler struct {
	starts   int
	messages []string
	sessions []string
	reply    string
	err      error
	deadline bool
}

func (f *fakeHandler) OnSessionStart(ctx context.Context, s assistant.Session) error {
	f.starts++
	return s.Send("welcome")
}

func (f *fakeHandler) OnMessage(ctx context.Context, s assistant.Session, text string) error {
	f.messages = append(f.messages, text)
	f.sessions = append(f.sessions, s.ID())
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	return s.Send(f.reply)
}

type memRecorder struct{ events []storage.Event }

func (m *memRecorder) AppendInteraction(ev storage.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *memRecorder) LoadInteractions() ([]storage.Event, error) {
	return m.events, nil
}

func textMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{From: &tgbotapi.User{ID: userID}, Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func commandMessage(userID, chatID int64, text string) *tgbotapi.Message {
	msg := textMessage(userID, chatID, text)
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmdLen = i
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return msg
}

func openAuth(t *testing.T, ids ...int64) *auth.Service {
	t.Helper()
	svc, err := auth.NewWithRepo(nil, ids)
	if err != nil {
		t.Fatalf("auth init: %v", err)
	}
	return svc
}

func TestStartCommand_CallsSessionStart(t *testing.T) {
	fs := &fakeSender{}
	h := &fakeHandler{}
	b := &Bot{s: fs, handler: h, authSvc: openAuth(t)}

	b.handleIncomingMessage(context.Background(), commandMessage(1, 100, "/start"))

	if h.starts != 1 || len(h.messages) != 0 {
		t.Fatalf("unexpected handler calls: %+v", h)
	}
	if len(fs.sent) != 1 || fs.sent[0] != "welcome" || fs.chats[0] != 100 {
		t.Fatalf("unexpected sent: %+v", fs)
	}
}

func TestTextMessage_ForwardedWithChatSession(t *testing.T) {
	fs := &fakeSender{}
	h := &fakeHandler{reply: "**Suggested Product:** Aspirin\n\nPain relief."}
	b := &Bot{s: fs, handler: h, authSvc: openAuth(t), parseMode: "Markdown", timeout: time.Minute}

	b.handleIncomingMessage(context.Background(), textMessage(1, 200, "I have a headache"))

	if len(h.messages) != 1 || h.messages[0] != "I have a headache" || h.sessions[0] != "200" {
		t.Fatalf("unexpected handler input: %+v", h)
	}
	if !h.deadline {
		t.Fatalf("message context has no deadline")
	}
	if len(fs.sent) != 1 || fs.sent[0] != h.reply || fs.modes[0] != "Markdown" {
		t.Fatalf("unexpected sent: %+v", fs)
	}
}

func TestHandlerError_SendsApology(t *testing.T) {
	fs := &fakeSender{}
	h := &fakeHandler{err: errors.New("service down")}
	b := &Bot{s: fs, handler: h}

	b.handleIncomingMessage(context.Background(), textMessage(1, 300, "cough"))

	if len(fs.sent) != 1 || fs.sent[0] != failureText {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}

func TestUnauthorizedUser_IsRejected(t *testing.T) {
	fs := &fakeSender{}
	h := &fakeHandler{}
	b := &Bot{s: fs, handler: h, authSvc: openAuth(t, 10)}

	b.handleIncomingMessage(context.Background(), textMessage(99, 400, "headache"))

	if len(h.messages) != 0 {
		t.Fatalf("handler reached by unauthorized user")
	}
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "Access denied") || !strings.Contains(fs.sent[0], "99") {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}

func TestAdminCommands_RequireAdmin(t *testing.T) {
	fs := &fakeSender{}
	b := &Bot{s: fs, handler: &fakeHandler{}, authSvc: openAuth(t), adminUserID: 1}

	b.handleIncomingMessage(context.Background(), commandMessage(2, 500, "/report"))

	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "administrator only") {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}

func TestAllowAndDenyCommands(t *testing.T) {
	fs := &fakeSender{}
	svc := openAuth(t, 1)
	b := &Bot{s: fs, handler: &fakeHandler{}, authSvc: svc, adminUserID: 1}

	b.handleIncomingMessage(context.Background(), commandMessage(1, 1, "/allow 55"))
	if !svc.IsAllowed(55) {
		t.Fatalf("allow not applied")
	}
	b.handleIncomingMessage(context.Background(), commandMessage(1, 1, "/deny 55"))
	if svc.IsAllowed(55) {
		t.Fatalf("deny not applied")
	}
	b.handleIncomingMessage(context.Background(), commandMessage(1, 1, "/allow nope"))

	if len(fs.sent) != 3 || !strings.HasPrefix(fs.sent[2], "Usage: /allow") {
		t.Fatalf("unexpected sent: %+v", fs.sent)
	}
}

func TestReportCommand_SendsSummary(t *testing.T) {
	fs := &fakeSender{}
	rec := &memRecorder{events: []storage.Event{
		{Timestamp: time.Now().UTC(), Session: "1", Channel: ChannelName, Problem: "headache", Product: "Aspirin", CacheHit: true},
	}}
	b := &Bot{s: fs, handler: &fakeHandler{}, recorder: rec, adminUserID: 1}

	b.handleIncomingMessage(context.Background(), commandMessage(1, 1, "/report"))

	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "Requests: 1") || !strings.Contains(fs.sent[0], "Aspirin (1)") {
		t.Fatalf("unexpected report: %+v", fs.sent)
	}
}

func TestDailyReport_NoRecorder(t *testing.T) {
	b := &Bot{s: &fakeSender{}, adminUserID: 1}
	if err := b.DailyReport(context.Background()); !errors.Is(err, errNoEventLog) {
		t.Fatalf("want errNoEventLog, got %v", err)
	}
	b.adminUserID = 0
	if err := b.DailyReport(context.Background()); err == nil {
		t.Fatalf("expected error without admin")
	}
}
