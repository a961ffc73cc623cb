package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func mustStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

func addN(t *testing.T, s *Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		q := fmt.Sprintf("question %d", i)
		if err := s.AddInteraction(q, json.RawMessage(`{}`), float64(i)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
}

func TestAddAndRecentOrdering(t *testing.T) {
	s := mustStore(t, t.TempDir())
	addN(t, s, 7)

	got := s.Recent(7)
	if len(got) != 7 {
		t.Fatalf("want 7, got %d", len(got))
	}
	for i, in := range got {
		if in.Query != fmt.Sprintf("question %d", i) {
			t.Fatalf("order mismatch at %d: %q", i, in.Query)
		}
	}

	// default limit is 5, keeping the most recent entries
	recent := s.Recent(0)
	if len(recent) != 5 {
		t.Fatalf("want default 5, got %d", len(recent))
	}
	if recent[0].Query != "question 2" || recent[4].Query != "question 6" {
		t.Fatalf("unexpected window: %q .. %q", recent[0].Query, recent[4].Query)
	}

	// returned slice must not alias internal state
	recent[0].Query = "mutated"
	if s.Recent(5)[0].Query != "question 2" {
		t.Fatalf("internal state mutated via returned slice")
	}
}

func TestRecentEmpty(t *testing.T) {
	s := mustStore(t, t.TempDir())
	if got := s.Recent(5); len(got) != 0 {
		t.Fatalf("want empty, got %d", len(got))
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := mustStore(t, t.TempDir())
	sum := s.Summarize()
	if sum.TotalQueries != 0 || sum.AvgConfidence != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.Topics == nil || len(sum.Topics) != 0 {
		t.Fatalf("topics should be empty, got %#v", sum.Topics)
	}
}

func TestSummarizeAverage(t *testing.T) {
	s := mustStore(t, t.TempDir())
	for _, c := range []float64{90, 80, 70} {
		if err := s.AddInteraction("q", json.RawMessage(`{}`), c); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	sum := s.Summarize()
	if sum.TotalQueries != 3 {
		t.Fatalf("want 3 queries, got %d", sum.TotalQueries)
	}
	if sum.AvgConfidence != 80.0 {
		t.Fatalf("want avg 80.0, got %v", sum.AvgConfidence)
	}
	if sum.SessionFile != s.SessionFile() {
		t.Fatalf("session file mismatch: %q", sum.SessionFile)
	}
}

func TestSummarizeAverageRounding(t *testing.T) {
	s := mustStore(t, t.TempDir())
	for _, c := range []float64{85, 90, 91} {
		if err := s.AddInteraction("q", json.RawMessage(`{}`), c); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if got := s.Summarize().AvgConfidence; got != 88.67 {
		t.Fatalf("want 88.67, got %v", got)
	}
}

func TestSummarizeTopics(t *testing.T) {
	s := mustStore(t, t.TempDir())
	queries := []string{
		"How do I set up Discord analytics?",
		"Discord analytics setup guide",
	}
	for _, q := range queries {
		if err := s.AddInteraction(q, json.RawMessage(`{}`), 90); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	topics := s.Summarize().Topics

	rank := make(map[string]int)
	for i, w := range topics {
		rank[w] = i + 1
	}
	for _, short := range []string{"how", "do", "up", "i"} {
		if _, ok := rank[short]; ok {
			t.Fatalf("short word %q should be excluded: %v", short, topics)
		}
	}
	if _, ok := rank["discord"]; !ok {
		t.Fatalf("missing topic discord: %v", topics)
	}
	if _, ok := rank["analytics"]; !ok {
		t.Fatalf("missing topic analytics: %v", topics)
	}
	if setupRank, ok := rank["setup"]; ok {
		if rank["discord"] > setupRank || rank["analytics"] > setupRank {
			t.Fatalf("twice-seen words must rank above setup: %v", topics)
		}
	}
	if len(topics) > 5 {
		t.Fatalf("topics capped at 5, got %d", len(topics))
	}
}

// writeSession plants a persisted record from a "previous run".
func writeSession(t *testing.T, dir, name string, session []Interaction) {
	t.Helper()
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write session: %v", err)
	}
}

func TestSearchScoping(t *testing.T) {
	dir := t.TempDir()
	s := mustStore(t, dir)
	if err := s.AddInteraction("Discord setup", json.RawMessage(`{}`), 90); err != nil {
		t.Fatalf("add: %v", err)
	}
	writeSession(t, dir, "session_20240101_000000.json", []Interaction{
		{Query: "Discord billing", Response: json.RawMessage(`{}`), Confidence: 70},
	})

	got := s.Search("discord", 10)
	if len(got) != 2 {
		t.Fatalf("want 2 matches, got %d", len(got))
	}
	if got[0].Query != "Discord setup" || got[1].Query != "Discord billing" {
		t.Fatalf("active session must come first: %+v", got)
	}

	// limit 1 never reaches the persisted files
	got = s.Search("discord", 1)
	if len(got) != 1 || got[0].Query != "Discord setup" {
		t.Fatalf("want only the active match, got %+v", got)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := mustStore(t, t.TempDir())
	if err := s.AddInteraction("discord setup", json.RawMessage(`{}`), 90); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := s.Search("DISCORD", 10); len(got) != 1 {
		t.Fatalf("want 1 match, got %d", len(got))
	}
}

func TestSearchCapAfterConcat(t *testing.T) {
	dir := t.TempDir()
	s := mustStore(t, dir)
	for i := 0; i < 3; i++ {
		if err := s.AddInteraction(fmt.Sprintf("discord question %d", i), json.RawMessage(`{}`), 90); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	writeSession(t, dir, "session_20240101_000000.json", []Interaction{
		{Query: "discord history", Response: json.RawMessage(`{}`), Confidence: 70},
	})

	// active matches alone exceed the limit; history never surfaces
	got := s.Search("discord", 2)
	if len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	for _, in := range got {
		if in.Query == "discord history" {
			t.Fatalf("historical match should not surface: %+v", got)
		}
	}
}

func TestSearchSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	s := mustStore(t, dir)
	if err := s.AddInteraction("discord setup", json.RawMessage(`{}`), 90); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "session_20240101_000000.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	writeSession(t, dir, "session_20240102_000000.json", []Interaction{
		{Query: "discord billing", Response: json.RawMessage(`{}`), Confidence: 70},
	})

	got := s.Search("discord", 10)
	if len(got) != 2 {
		t.Fatalf("malformed file should be skipped, want 2 got %d", len(got))
	}
}

func TestSessionFileRoundTrip(t *testing.T) {
	s := mustStore(t, t.TempDir())
	payload := json.RawMessage(`{
		"ai_response": {"answer": "Use the analytics tab.", "confidence": 87},
		"top_results": [
			{"question": "Discord analytics", "url": "https://docs.example.com/a", "score": 0.91, "category": "analytics"},
			{"question": "Setup guide", "url": "https://docs.example.com/b", "score": 0.83, "category": "setup"}
		]
	}`)
	if err := s.AddInteraction("How do I set up Discord analytics?", payload, 87); err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded, err := loadSession(s.SessionFile())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded) != 1 {
		t.Fatalf("want 1 interaction, got %d", len(reloaded))
	}

	var want, got any
	if err := json.Unmarshal(payload, &want); err != nil {
		t.Fatalf("unmarshal original: %v", err)
	}
	if err := json.Unmarshal(reloaded[0].Response, &got); err != nil {
		t.Fatalf("unmarshal reloaded: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("response payload not preserved:\nwant %#v\ngot  %#v", want, got)
	}
	if reloaded[0].Query != "How do I set up Discord analytics?" || reloaded[0].Confidence != 87 {
		t.Fatalf("fields not preserved: %+v", reloaded[0])
	}
}

func TestAddPersistsEveryAppend(t *testing.T) {
	s := mustStore(t, t.TempDir())
	addN(t, s, 2)
	st, err := os.Stat(s.SessionFile())
	if err != nil || st.Size() == 0 {
		t.Fatalf("session file not written: %v", err)
	}
	reloaded, err := loadSession(s.SessionFile())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded) != 2 {
		t.Fatalf("want 2 persisted, got %d", len(reloaded))
	}
}
