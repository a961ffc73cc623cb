package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	ai := parseAnswer(`{"answer": "Use the analytics tab.", "confidence": 87}`)
	if ai.Answer != "Use the analytics tab." || ai.Confidence != 87 {
		t.Fatalf("unexpected answer: %+v", ai)
	}
}

func TestParseAnswerFenced(t *testing.T) {
	ai := parseAnswer("```json\n{\"answer\": \"ok\", \"confidence\": 60}\n```")
	if ai.Answer != "ok" || ai.Confidence != 60 {
		t.Fatalf("unexpected answer: %+v", ai)
	}
}

func TestParseAnswerPlainTextFallback(t *testing.T) {
	ai := parseAnswer("Just use the analytics tab.")
	if ai.Answer != "Just use the analytics tab." || ai.Confidence != 0 {
		t.Fatalf("unexpected fallback: %+v", ai)
	}
}

func TestParseAnswerClampsConfidence(t *testing.T) {
	ai := parseAnswer(`{"answer": "x", "confidence": 250}`)
	if ai.Confidence != 100 {
		t.Fatalf("want clamp to 100, got %v", ai.Confidence)
	}
}

func TestEngineClientQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/query" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req engineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Question != "discord setup" {
			t.Errorf("unexpected question: %q", req.Question)
		}
		_ = json.NewEncoder(w).Encode(Response{
			AIResponse: AIResponse{Answer: "Open the integrations page.", Confidence: 91},
			TopResults: []Source{{Question: "Discord setup", URL: "https://docs.example.com/d", Score: 0.93, Category: "setup"}},
		})
	}))
	defer srv.Close()

	c := NewEngine(srv.URL)
	resp, err := c.Query(context.Background(), "discord setup")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.AIResponse.Confidence != 91 || resp.AIResponse.Answer == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.TopResults) != 1 || resp.TopResults[0].Category != "setup" {
		t.Fatalf("unexpected sources: %+v", resp.TopResults)
	}
}

func TestEngineClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewEngine(srv.URL)
	if _, err := c.Query(context.Background(), "q"); err == nil {
		t.Fatalf("want error on 500")
	}
}

func TestFactoryCreateClient(t *testing.T) {
	f := &Factory{EngineURL: "http://localhost:9000"}

	c, err := f.CreateClient("Engine")
	if err != nil {
		t.Fatalf("engine client: %v", err)
	}
	if _, ok := c.(*EngineClient); !ok {
		t.Fatalf("want *EngineClient, got %T", c)
	}

	if _, err := (&Factory{}).CreateClient(ProviderEngine); err == nil {
		t.Fatalf("engine provider without url must fail")
	}
	if _, err := f.CreateClient("carrier-pigeon"); err == nil {
		t.Fatalf("unknown provider must fail")
	}
}
