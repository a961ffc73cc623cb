package telegram

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"inbox-copilot/internal/copilot"
	"inbox-copilot/internal/history"
	"inbox-copilot/internal/query"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type botAPISender struct{ api *tgbotapi.BotAPI }

func (s botAPISender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return s.api.Send(c)
}

func (s botAPISender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return s.api.Request(c)
}

// Bot serves the support copilot over Telegram. Each chat gets its own
// Copilot (and with it its own session store, rooted in a per-chat
// subdirectory), created lazily on first contact and owned by the Bot.
type Bot struct {
	api                 *tgbotapi.BotAPI
	s                   sender
	engine              query.Client
	historyDir          string
	adminChatID         int64
	escalationThreshold float64

	mu       sync.Mutex
	sessions map[int64]*copilot.Copilot
}

func New(botToken string, engine query.Client, historyDir string, adminChatID int64, escalationThreshold float64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:                 api,
		s:                   botAPISender{api: api},
		engine:              engine,
		historyDir:          historyDir,
		adminChatID:         adminChatID,
		escalationThreshold: escalationThreshold,
		sessions:            make(map[int64]*copilot.Copilot),
	}, nil
}

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
			// Handled off the receive loop so one chat's durable
			// write doesn't stall the others.
			if update.Message != nil {
				go b.handleIncomingMessage(ctx, update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				go b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
		}
	}
}

// session returns the chat's copilot, creating it on first use.
func (b *Bot) session(chatID int64) (*copilot.Copilot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.sessions[chatID]; ok {
		return c, nil
	}
	dir := filepath.Join(b.historyDir, fmt.Sprintf("chat_%d", chatID))
	hist, err := history.New(dir)
	if err != nil {
		return nil, fmt.Errorf("init session store for chat %d: %w", chatID, err)
	}
	c := copilot.New(b.engine, hist)
	b.sessions[chatID] = c
	return c, nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
