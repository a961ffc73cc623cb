package analytics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"inbox-copilot/internal/history"
)

func in(ts time.Time, query string, confidence float64) history.Interaction {
	return history.Interaction{
		Timestamp:  ts,
		Query:      query,
		Response:   json.RawMessage(`{}`),
		Confidence: confidence,
	}
}

func TestAnalyzeDaily(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	sessions := map[int64][]history.Interaction{
		1: {
			in(day.Add(9*time.Hour), "Discord analytics setup", 90),
			in(day.Add(10*time.Hour), "Discord billing question", 20),
			// previous day, must be excluded
			in(day.Add(-2*time.Hour), "old question", 50),
		},
		2: {
			in(day.Add(14*time.Hour), "Twitter campaign help", 70),
		},
		3: {
			// only activity outside the target day
			in(day.Add(25*time.Hour), "tomorrow question", 80),
		},
	}

	stats := AnalyzeDaily(sessions, day, 30)

	if stats.Date != "2026-08-30" {
		t.Fatalf("unexpected date: %s", stats.Date)
	}
	if stats.TotalQueries != 3 {
		t.Fatalf("want 3 queries, got %d", stats.TotalQueries)
	}
	if stats.ActiveChats != 2 {
		t.Fatalf("want 2 active chats, got %d", stats.ActiveChats)
	}
	if stats.AvgConfidence != 60.0 {
		t.Fatalf("want avg 60.0, got %v", stats.AvgConfidence)
	}
	if stats.LowConfidence != 1 {
		t.Fatalf("want 1 low-confidence answer, got %d", stats.LowConfidence)
	}
	if cs := stats.ChatStats[1]; cs.Queries != 2 || cs.AvgConfidence != 55.0 {
		t.Fatalf("unexpected chat 1 stats: %+v", cs)
	}

	found := false
	for _, topic := range stats.Topics {
		if topic == "discord" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected discord among topics: %v", stats.Topics)
	}
}

func TestAnalyzeDailyEmpty(t *testing.T) {
	stats := AnalyzeDaily(nil, time.Now(), 30)
	if stats.TotalQueries != 0 || stats.ActiveChats != 0 || stats.AvgConfidence != 0 {
		t.Fatalf("unexpected empty stats: %+v", stats)
	}
	if len(stats.Topics) != 0 {
		t.Fatalf("topics should be empty: %v", stats.Topics)
	}
}

func TestToJSON(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	sessions := map[int64][]history.Interaction{
		1: {in(day.Add(time.Hour), "Discord setup", 90)},
	}
	js, err := AnalyzeDaily(sessions, day, 30).ToJSON()
	if err != nil {
		t.Fatalf("serialize stats: %v", err)
	}

	var got DailyStats
	if err := json.Unmarshal([]byte(js), &got); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if got.Date != "2026-08-30" || got.TotalQueries != 1 {
		t.Fatalf("unexpected round-tripped stats: %+v", got)
	}
}

func TestGenerateReportSummary(t *testing.T) {
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	sessions := map[int64][]history.Interaction{
		1: {in(day.Add(time.Hour), "Discord setup", 90)},
	}
	report := AnalyzeDaily(sessions, day, 30).GenerateReportSummary()

	for _, want := range []string{"2026-08-30", "Questions answered: 1", "Chat 1: 1 questions"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}
