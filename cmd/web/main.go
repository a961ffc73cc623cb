package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"inbox-copilot/internal/config"
	"inbox-copilot/internal/copilot"
	"inbox-copilot/internal/history"
	"inbox-copilot/internal/query"
	"inbox-copilot/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	engine, err := query.NewFactory(cfg).CreateClient(cfg.QueryProvider)
	if err != nil {
		log.Fatalf("failed to create query client: %v", err)
	}
	hist, err := history.New(cfg.HistoryDir)
	if err != nil {
		log.Fatalf("failed to init conversation history: %v", err)
	}

	srv := web.New(cfg.WebAddr, copilot.New(engine, hist))

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	if err := srv.Stop(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
