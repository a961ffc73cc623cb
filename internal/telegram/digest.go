package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"inbox-copilot/internal/analytics"
	"inbox-copilot/internal/history"
)

// SendDailyReport posts today's activity digest to the admin chat.
// Wired to the scheduler's 21:00 UTC job; a no-op without an admin
// chat or without any activity.
func (b *Bot) SendDailyReport(ctx context.Context) error {
	if b.adminChatID == 0 {
		return nil
	}

	// Session files are flushed on every append, so reading them back
	// covers interactions recorded before a restart as well.
	sessions := history.LoadChatSessions(b.historyDir)

	stats := analytics.AnalyzeDaily(sessions, time.Now().UTC(), b.escalationThreshold)
	if stats.TotalQueries == 0 {
		log.Println("no activity today, skipping daily report")
		return nil
	}
	if js, err := stats.ToJSON(); err == nil {
		log.Printf("daily report stats: %s", js)
	}

	if _, err := b.s.Send(tgbotapi.NewMessage(b.adminChatID, stats.GenerateReportSummary())); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}
	return nil
}
