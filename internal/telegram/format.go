package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"inbox-copilot/internal/copilot"
	"inbox-copilot/internal/history"
)

const helpMessage = `🤖 Inbox Copilot Help

Available commands:
/start - Welcome message and introduction
/help - Show this help message
/history <search_term> - Search your conversation history
/summary - Get summary of current session
/escalate - Contact human support for complex issues

How to ask questions:
Just type your question naturally! Examples:
• "How do I update Topic Definitions for Discord analytics?"
• "How can I start a Twitter DM campaign?"
• "What are the pricing plans?"

Response features:
• ✅ Confidence scoring (0-100%)
• 📚 Source documentation links
• ⚠️ Low confidence warnings

Need human help?
If my answer isn't helpful, use /escalate to contact the team.`

const escalationMessage = `🆘 Escalation Request

Your request has been noted for human review. A team member will get back to you soon.

In the meantime, you can:
• Check the documentation
• Continue asking me other questions

For urgent issues, contact support directly through the dashboard.`

func welcomeMessage(u *tgbotapi.User) string {
	name := "there"
	if u != nil && u.FirstName != "" {
		name = u.FirstName
	}
	return fmt.Sprintf(`🚀 Welcome to Inbox Copilot!

Hi %s! I'm your AI assistant. I can help you with:

• Product questions: how to use features
• Setup & configuration: getting started with analytics
• Troubleshooting: solving common issues

Just send me your question in plain text.

Commands:
/help - Show help
/history <term> - Search your conversation history
/summary - Get session summary
/escalate - Contact human support

Try asking: "How do I set up Discord analytics?"`, name)
}

func confidenceEmoji(confidence float64) string {
	switch {
	case confidence >= 80:
		return "🟢"
	case confidence >= 50:
		return "🟡"
	default:
		return "🔴"
	}
}

func formatAnswer(ans copilot.Answer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Confidence: %.0f%%\n\n", confidenceEmoji(ans.Confidence), ans.Confidence)
	sb.WriteString(ans.Answer)

	if len(ans.Sources) > 0 {
		sb.WriteString("\n\n📚 Sources:\n")
		for i, src := range ans.Sources {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, truncate(src.Title, 50))
		}
	}
	if ans.Confidence < copilot.LowConfidence {
		sb.WriteString("\n⚠️ Low confidence warning: This answer might not be accurate. Consider asking for clarification or checking the documentation directly.")
	}
	return sb.String()
}

func formatSummary(sum history.Summary) string {
	topics := "None yet"
	if len(sum.Topics) > 0 {
		topics = strings.Join(sum.Topics, ", ")
	}
	return fmt.Sprintf(`📊 Session Summary

Total questions: %d
Average confidence: %v%%
Main topics: %s

Keep asking questions to build your knowledge base!`, sum.TotalQueries, sum.AvgConfidence, topics)
}

func formatHistoryMatches(term string, matches []history.Interaction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 Found %d previous interactions about '%s':\n\n", len(matches), term)
	for i, m := range matches {
		if i >= historyResultsShown {
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, m.Timestamp.Format("2006-01-02 15:04"))
		fmt.Fprintf(&sb, "Q: %s\n", truncate(m.Query, 100))
		if a := copilot.AnswerText(m); a != "" {
			fmt.Fprintf(&sb, "A: %s\n", truncate(a, 150))
		}
		fmt.Fprintf(&sb, "Confidence: %.0f%%\n\n", m.Confidence)
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
