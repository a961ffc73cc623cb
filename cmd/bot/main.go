package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"inbox-copilot/internal/config"
	"inbox-copilot/internal/query"
	"inbox-copilot/internal/scheduler"
	"inbox-copilot/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is required")
	}

	engine, err := query.NewFactory(cfg).CreateClient(cfg.QueryProvider)
	if err != nil {
		log.Fatalf("failed to create query client: %v", err)
	}

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		engine,
		cfg.HistoryDir,
		cfg.AdminChatID,
		cfg.EscalationThreshold,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	if cfg.AdminChatID != 0 {
		sched := scheduler.New()
		sched.SetReportFunction(bot.SendDailyReport)
		if err := sched.Start(); err != nil {
			log.Printf("failed to start scheduler: %v", err)
		} else {
			defer sched.Stop()
		}
	}

	bot.Start(context.Background())
}
