package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminChatID      int64  `env:"ADMIN_CHAT_ID"`

	// Query engine settings
	QueryProvider    string `env:"QUERY_PROVIDER" envDefault:"openai"`
	QueryEngineURL   string `env:"QUERY_ENGINE_URL"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Storage
	HistoryDir string `env:"HISTORY_DIR" envDefault:"conversation_history"`

	// Escalation
	EscalationThreshold float64 `env:"ESCALATION_THRESHOLD" envDefault:"30"`

	// Web front-end
	WebAddr string `env:"WEB_ADDR" envDefault:":5000"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
