package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smart-store-agent/internal/analytics"
	"smart-store-agent/internal/auth"
)

var errNoEventLog = errors.New("event log is disabled")

// handleAdminCommand runs admin-only commands and reports whether msg was one.
func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) bool {
	cmd := msg.Command()
	if cmd != reportCmd && cmd != allowCmd && cmd != denyCmd {
		return false
	}
	if b.adminUserID == 0 || msg.From.ID != b.adminUserID {
		b.reply(msg.Chat.ID, "❌ This command is available to the administrator only.")
		return true
	}

	switch cmd {
	case reportCmd:
		if err := b.sendDailyReport(msg.Chat.ID, time.Now()); err != nil {
			log.Printf("❌ Report generation failed: %v", err)
			b.reply(msg.Chat.ID, fmt.Sprintf("❌ Report generation failed: %v", err))
		}
	case allowCmd, denyCmd:
		b.handleAllowlistCommand(msg)
	}
	return true
}

func (b *Bot) handleAllowlistCommand(msg *tgbotapi.Message) {
	if b.authSvc == nil {
		b.reply(msg.Chat.ID, "❌ Allowlist is not configured.")
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("Usage: /%s <user id>", msg.Command()))
		return
	}

	if msg.Command() == allowCmd {
		err = b.authSvc.Allow(auth.User{ID: id})
	} else {
		err = b.authSvc.Deny(id)
	}
	if err != nil {
		log.Printf("failed to update allowlist: %v", err)
		b.reply(msg.Chat.ID, failureText)
		return
	}
	log.Printf("Admin %d ran /%s %d", msg.From.ID, msg.Command(), id)
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ /%s %d done. Allowed users: %d", msg.Command(), id, len(b.authSvc.List())))
}

// DailyReport sends today's usage report to the admin chat. It is meant to be
// run by the scheduler.
func (b *Bot) DailyReport(ctx context.Context) error {
	if b.adminUserID == 0 {
		return errors.New("admin user is not configured")
	}
	return b.sendDailyReport(b.adminUserID, time.Now())
}

func (b *Bot) sendDailyReport(chatID int64, day time.Time) error {
	if b.recorder == nil {
		return errNoEventLog
	}
	events, err := b.recorder.LoadInteractions()
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	stats := analytics.AnalyzeDaily(events, day)
	return b.sendMessage(chatID, stats.Summary())
}
