package copilot

import (
	"context"
	"encoding/json"
	"fmt"

	"inbox-copilot/internal/history"
	"inbox-copilot/internal/query"
)

// LowConfidence is the score below which front-ends show an accuracy
// warning next to the answer.
const LowConfidence = 50

const maxSources = 3

// Source is a documentation reference shown alongside an answer.
type Source struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
}

// Answer is what a front-end renders for one question.
type Answer struct {
	Query      string   `json:"query"`
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []Source `json:"sources"`
}

// Copilot ties one query engine to one conversation history. Front-ends
// own one Copilot per logical user context: the CLI has a single one,
// the Telegram bot one per chat, the web demo one shared instance.
type Copilot struct {
	engine  query.Client
	history *history.Store
}

func New(engine query.Client, hist *history.Store) *Copilot {
	return &Copilot{engine: engine, history: hist}
}

// Ask forwards the question to the query engine, records the exchange
// durably, and returns the rendered answer with up to three sources.
// A failed history write fails the whole call; the entry stays in the
// in-memory log for the next write.
func (c *Copilot) Ask(ctx context.Context, question string) (Answer, error) {
	resp, err := c.engine.Query(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("query engine: %w", err)
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return Answer{}, fmt.Errorf("encode response payload: %w", err)
	}
	if err := c.history.AddInteraction(question, payload, resp.AIResponse.Confidence); err != nil {
		return Answer{}, fmt.Errorf("record interaction: %w", err)
	}

	out := Answer{
		Query:      question,
		Answer:     resp.AIResponse.Answer,
		Confidence: resp.AIResponse.Confidence,
		Sources:    []Source{},
	}
	for i, r := range resp.TopResults {
		if i >= maxSources {
			break
		}
		out.Sources = append(out.Sources, Source{
			Title:    r.Question,
			URL:      r.URL,
			Score:    r.Score,
			Category: r.Category,
		})
	}
	return out, nil
}

// Recent returns the last limit interactions of the active session.
func (c *Copilot) Recent(limit int) []history.Interaction {
	return c.history.Recent(limit)
}

// Summary returns the active session's aggregate statistics.
func (c *Copilot) Summary() history.Summary {
	return c.history.Summarize()
}

// SearchHistory finds past interactions whose query contains term,
// active session first, then earlier sessions.
func (c *Copilot) SearchHistory(term string, limit int) []history.Interaction {
	return c.history.Search(term, limit)
}

// AnswerText pulls the answer string out of a recorded interaction's
// opaque payload. Returns "" when the payload doesn't parse.
func AnswerText(in history.Interaction) string {
	var resp query.Response
	if err := json.Unmarshal(in.Response, &resp); err != nil {
		return ""
	}
	return resp.AIResponse.Answer
}
