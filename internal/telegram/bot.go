package telegram

import (
	"context"
	"log"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smart-store-agent/internal/assistant"
	"smart-store-agent/internal/auth"
	"smart-store-agent/internal/storage"
)

const (
	ChannelName = "telegram"

	startCmd  = "start"
	reportCmd = "report"
	allowCmd  = "allow"
	denyCmd   = "deny"

	failureText = "Sorry, something went wrong."
)

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	handler     assistant.Handler
	authSvc     *auth.Service
	recorder    storage.Recorder
	adminUserID int64
	parseMode   string
	timeout     time.Duration
}

func New(
	botToken string,
	handler assistant.Handler,
	authSvc *auth.Service,
	recorder storage.Recorder,
	adminUserID int64,
	parseMode string,
	timeout time.Duration,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	log.Printf("Authorized on Telegram as @%s", api.Self.UserName)
	return &Bot{
		api:         api,
		s:           botAPISender{api: api},
		handler:     handler,
		authSvc:     authSvc,
		recorder:    recorder,
		adminUserID: adminUserID,
		parseMode:   parseMode,
		timeout:     timeout,
	}, nil
}

// Start polls for updates and handles them one at a time until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	if msg.IsCommand() && b.handleAdminCommand(ctx, msg) {
		return
	}

	if b.authSvc != nil && !b.authSvc.IsAllowed(msg.From.ID) {
		log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.reply(msg.Chat.ID, "⛔ Access denied. Ask the administrator to allow your ID: "+strconv.FormatInt(msg.From.ID, 10))
		return
	}

	sess := &chatSession{bot: b, chatID: msg.Chat.ID}

	if msg.IsCommand() && msg.Command() == startCmd {
		if err := b.handler.OnSessionStart(ctx, sess); err != nil {
			log.Printf("failed to start session for chat %d: %v", msg.Chat.ID, err)
		}
		return
	}

	log.Printf("Incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	mctx, cancel := b.messageContext(ctx)
	defer cancel()
	if err := b.handler.OnMessage(mctx, sess, msg.Text); err != nil {
		log.Printf("failed to handle message from %d: %v", msg.From.ID, err)
		b.reply(msg.Chat.ID, failureText)
	}
}

func (b *Bot) messageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout > 0 {
		return context.WithTimeout(ctx, b.timeout)
	}
	return context.WithCancel(ctx)
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseMode
	_, err := b.s.Send(msg)
	return err
}

// reply sends text and only logs delivery failures.
func (b *Bot) reply(chatID int64, text string) {
	if err := b.sendMessage(chatID, text); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

// chatSession adapts a Telegram chat to assistant.Session.
type chatSession struct {
	bot    *Bot
	chatID int64
}

func (c *chatSession) ID() string { return strconv.FormatInt(c.chatID, 10) }

func (c *chatSession) Send(text string) error {
	return c.bot.sendMessage(c.chatID, text)
}
