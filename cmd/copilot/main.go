package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"inbox-copilot/internal/config"
	"inbox-copilot/internal/copilot"
	"inbox-copilot/internal/history"
	"inbox-copilot/internal/query"
)

func main() {
	var (
		oneShot     = flag.String("query", "", "ask a single question and exit")
		interactive = flag.Bool("interactive", false, "run the interactive prompt (default when no query is given)")
	)
	flag.StringVar(oneShot, "q", "", "shorthand for -query")
	flag.BoolVar(interactive, "i", false, "shorthand for -interactive")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	fmt.Println("Initializing Inbox Copilot...")
	engine, err := query.NewFactory(cfg).CreateClient(cfg.QueryProvider)
	if err != nil {
		log.Fatalf("failed to create query client: %v", err)
	}
	hist, err := history.New(cfg.HistoryDir)
	if err != nil {
		log.Fatalf("failed to init conversation history: %v", err)
	}
	cop := copilot.New(engine, hist)
	fmt.Println("Inbox Copilot initialized successfully!")

	ctx := context.Background()
	if *oneShot != "" {
		ask(ctx, cop, *oneShot)
		return
	}
	runInteractive(ctx, cop)
}

func runInteractive(ctx context.Context, cop *copilot.Copilot) {
	fmt.Println()
	fmt.Println("Welcome to Inbox Copilot!")
	fmt.Println("Ask me anything about the product's features, setup, or usage.")
	fmt.Println("Commands:")
	fmt.Println("  - Type your question normally")
	fmt.Println("  - 'history <search_term>' - Search conversation history")
	fmt.Println("  - 'summary' - Show session summary")
	fmt.Println("  - 'quit' or 'exit' - Exit the copilot")
	fmt.Println("  - 'help' - Show this help message")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch {
		case input == "quit" || input == "exit" || input == "bye":
			fmt.Println("\nThanks for using Inbox Copilot! Goodbye!")
			return
		case input == "help":
			printHelp()
		case input == "summary":
			printSummary(cop.Summary())
		case strings.HasPrefix(strings.ToLower(input), "history "):
			term := strings.TrimSpace(input[len("history "):])
			if term == "" {
				fmt.Println("Please provide a search term. Example: 'history discord'")
				continue
			}
			printMatches(term, cop.SearchHistory(term, 0))
		default:
			ask(ctx, cop, input)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("read input: %v", err)
	}
}

func ask(ctx context.Context, cop *copilot.Copilot, question string) {
	fmt.Printf("\nProcessing query: %s\n", question)
	ans, err := cop.Ask(ctx, question)
	if err != nil {
		fmt.Printf("\nError: %v\n", err)
		fmt.Println("Please try again or type 'help' for assistance.")
		return
	}

	fmt.Println("\nInbox Copilot Response:")
	fmt.Printf("Answer: %s\n", ans.Answer)
	fmt.Printf("Confidence: %.0f%%\n", ans.Confidence)
	if ans.Confidence < copilot.LowConfidence {
		fmt.Println("Low confidence warning: This answer might not be accurate. Consider asking for clarification or checking the documentation directly.")
	}
	if len(ans.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, src := range ans.Sources {
			fmt.Printf("%d. %s (Score: %.3f)\n", i+1, src.Title, src.Score)
			if src.URL != "" {
				fmt.Printf("   %s\n", src.URL)
			}
		}
	}
}

func printSummary(sum history.Summary) {
	fmt.Println("\nSession Summary:")
	fmt.Printf("Total queries: %d\n", sum.TotalQueries)
	fmt.Printf("Average confidence: %v%%\n", sum.AvgConfidence)
	if len(sum.Topics) > 0 {
		fmt.Printf("Main topics: %s\n", strings.Join(sum.Topics, ", "))
	}
}

func printMatches(term string, matches []history.Interaction) {
	if len(matches) == 0 {
		fmt.Printf("No previous interactions found for '%s'\n", term)
		return
	}
	fmt.Printf("\nFound %d previous interactions about '%s':\n", len(matches), term)
	for i, m := range matches {
		fmt.Printf("%d. Q: %s\n", i+1, m.Query)
		if a := copilot.AnswerText(m); a != "" {
			fmt.Printf("   A: %s\n", shorten(a, 100))
		}
		fmt.Printf("   Confidence: %.0f%%\n", m.Confidence)
		fmt.Printf("   Time: %s\n\n", m.Timestamp.Format("2006-01-02 15:04:05"))
	}
}

func printHelp() {
	fmt.Println("\nHelp:")
	fmt.Println("Just ask me questions about the product! For example:")
	fmt.Println("- 'How do I set up Discord analytics?'")
	fmt.Println("- 'How can I start a Twitter DM campaign?'")
	fmt.Println("- 'What are Topic Definitions?'")
	fmt.Println("- 'How do I update my billing information?'")
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
