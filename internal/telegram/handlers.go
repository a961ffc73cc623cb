package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"inbox-copilot/internal/copilot"
)

const (
	cbHelpfulYes = "helpful_yes"
	cbHelpfulNo  = "helpful_no"
	cbEscalate   = "escalate"
)

const historyResultsShown = 5

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	chatID := msg.Chat.ID

	sess, err := b.session(chatID)
	if err != nil {
		log.Printf("failed to init session for chat %d: %v", chatID, err)
		b.sendMessage(chatID, "Sorry, something went wrong starting your session. Please try again.")
		return
	}

	// Typing indicator while the query engine works
	if _, err := b.s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Printf("failed to send chat action: %v", err)
	}

	ans, err := sess.Ask(ctx, text)
	if err != nil {
		log.Printf("error processing message from chat %d: %v", chatID, err)
		b.sendMessage(chatID, "❌ Sorry, I encountered an error processing your request.\n\nPlease try rephrasing your question, or use /escalate for human assistance.")
		return
	}

	out := formatAnswer(ans)
	if ans.Confidence < b.escalationThreshold {
		out += "\n\n🤔 Not sure about this answer? Use /escalate to contact human support."
		b.notifyAdminLowConfidence(msg.From, ans)
	}

	reply := tgbotapi.NewMessage(chatID, out)
	reply.ReplyMarkup = b.answerKeyboard(ans)
	reply.DisableWebPagePreview = true
	if _, err := b.s.Send(reply); err != nil {
		log.Printf("failed to send answer: %v", err)
	}

	log.Printf("answered chat %d with confidence %.0f%%", chatID, ans.Confidence)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.sendMessage(chatID, welcomeMessage(msg.From))
		log.Printf("chat %d started the bot", chatID)
	case "help":
		b.sendMessage(chatID, helpMessage)
	case "summary":
		sess, err := b.session(chatID)
		if err != nil {
			b.sendMessage(chatID, "No conversation history found. Start by asking a question!")
			return
		}
		b.sendMessage(chatID, formatSummary(sess.Summary()))
	case "history":
		term := strings.TrimSpace(msg.CommandArguments())
		if term == "" {
			b.sendMessage(chatID, "Please provide a search term.\nExample: /history discord analytics")
			return
		}
		sess, err := b.session(chatID)
		if err != nil {
			b.sendMessage(chatID, "No conversation history found. Start by asking a question!")
			return
		}
		matches := sess.SearchHistory(term, 0)
		if len(matches) == 0 {
			b.sendMessage(chatID, fmt.Sprintf("No previous conversations found about '%s'", term))
			return
		}
		b.sendMessage(chatID, formatHistoryMatches(term, matches))
	case "escalate":
		b.escalate(msg.From, chatID)
	default:
		b.sendMessage(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("failed to ack callback: %v", err)
	}
	chatID := cb.Message.Chat.ID
	switch cb.Data {
	case cbHelpfulYes:
		b.sendMessage(chatID, "✅ Great! Glad I could help!")
	case cbHelpfulNo:
		b.sendMessage(chatID, "❌ Sorry the answer wasn't helpful. Try rephrasing your question or use /escalate for human assistance.")
	case cbEscalate:
		b.escalate(cb.From, chatID)
	}
}

func (b *Bot) escalate(user *tgbotapi.User, chatID int64) {
	b.sendMessage(chatID, escalationMessage)
	if b.adminChatID == 0 {
		return
	}
	text := fmt.Sprintf("🚨 Escalation request\n\nUser: %s (@%s)\nUser ID: %d\nTime: %s\n\nUser requested human assistance.",
		displayName(user), userName(user), userID(user), time.Now().Format("2006-01-02 15:04:05"))
	if _, err := b.s.Send(tgbotapi.NewMessage(b.adminChatID, text)); err != nil {
		log.Printf("failed to notify admin: %v", err)
	}
}

func (b *Bot) notifyAdminLowConfidence(user *tgbotapi.User, ans copilot.Answer) {
	if b.adminChatID == 0 {
		return
	}
	text := fmt.Sprintf("⚠️ Low confidence response alert\n\nUser: %s (@%s)\nQuery: %s\nConfidence: %.0f%%\n\nBot answer: %s\n\nConsider reaching out to provide better assistance.",
		displayName(user), userName(user), ans.Query, ans.Confidence, truncate(ans.Answer, 200))
	if _, err := b.s.Send(tgbotapi.NewMessage(b.adminChatID, text)); err != nil {
		log.Printf("failed to notify admin about low confidence: %v", err)
	}
}

func (b *Bot) answerKeyboard(ans copilot.Answer) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👍 Helpful", cbHelpfulYes),
			tgbotapi.NewInlineKeyboardButtonData("👎 Not Helpful", cbHelpfulNo),
		),
	}
	if ans.Confidence < b.escalationThreshold {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆘 Contact Human Support", cbEscalate),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return "unknown"
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func userName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return u.UserName
}

func userID(u *tgbotapi.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
