package web

import (
	"context"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"inbox-copilot/internal/copilot"
	"inbox-copilot/internal/history"
)

// Server exposes the copilot on a small JSON API plus a demo page.
// All visitors share one copilot; the session store serializes their
// writes internally.
type Server struct {
	cop       *copilot.Copilot
	server    *http.Server
	startTime time.Time
}

func New(addr string, cop *copilot.Copilot) *Server {
	s := &Server{cop: cop, startTime: time.Now()}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/query", s.handleQuery)
	r.Get("/history", s.handleHistory)
	r.Post("/search_history", s.handleSearchHistory)
	r.Get("/status", s.handleStatus)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	log.Printf("starting web interface on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Success    bool             `json:"success"`
	Query      string           `json:"query,omitempty"`
	Answer     string           `json:"answer,omitempty"`
	Confidence float64          `json:"confidence"`
	Sources    []copilot.Source `json:"sources,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, queryResponse{Success: false, Error: "invalid request body"})
		return
	}
	q := strings.TrimSpace(req.Query)
	if q == "" {
		writeJSON(w, queryResponse{Success: false, Error: "Please provide a query"})
		return
	}

	ans, err := s.cop.Ask(r.Context(), q)
	if err != nil {
		log.Printf("query failed: %v", err)
		writeJSON(w, queryResponse{Success: false, Error: "Error processing query: " + err.Error()})
		return
	}
	writeJSON(w, queryResponse{
		Success:    true,
		Query:      q,
		Answer:     ans.Answer,
		Confidence: ans.Confidence,
		Sources:    ans.Sources,
	})
}

type historyResponse struct {
	Success            bool                  `json:"success"`
	RecentInteractions []history.Interaction `json:"recent_interactions,omitempty"`
	Summary            *history.Summary      `json:"summary,omitempty"`
	Error              string                `json:"error,omitempty"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	recent := s.cop.Recent(10)
	sum := s.cop.Summary()
	writeJSON(w, historyResponse{
		Success:            true,
		RecentInteractions: recent,
		Summary:            &sum,
	})
}

type searchRequest struct {
	SearchTerm string `json:"search_term"`
}

type searchResponse struct {
	Success    bool                  `json:"success"`
	SearchTerm string                `json:"search_term,omitempty"`
	Matches    []history.Interaction `json:"matches"`
	Error      string                `json:"error,omitempty"`
}

func (s *Server) handleSearchHistory(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, searchResponse{Success: false, Error: "invalid request body"})
		return
	}
	term := strings.TrimSpace(req.SearchTerm)
	if term == "" {
		writeJSON(w, searchResponse{Success: false, Error: "Please provide a search term"})
		return
	}
	matches := s.cop.SearchHistory(term, 0)
	if matches == nil {
		matches = []history.Interaction{}
	}
	writeJSON(w, searchResponse{Success: true, SearchTerm: term, Matches: matches})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"success":             true,
		"copilot_initialized": s.cop != nil,
		"uptime":              time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		log.Printf("failed to render index: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Inbox Copilot</title>
  <style>
    body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
    textarea { width: 100%; height: 4rem; }
    .answer { white-space: pre-wrap; background: #f4f4f4; padding: 1rem; border-radius: 6px; margin-top: 1rem; }
    .low { color: #b00; }
  </style>
</head>
<body>
  <h1>Inbox Copilot</h1>
  <p>Ask anything about the product. Answers come with a confidence score and sources.</p>
  <textarea id="q" placeholder="How do I set up Discord analytics?"></textarea>
  <p><button onclick="ask()">Ask</button></p>
  <div id="out"></div>
  <script>
    async function ask() {
      const q = document.getElementById('q').value.trim();
      const out = document.getElementById('out');
      if (!q) { out.textContent = 'Please type a question first.'; return; }
      out.textContent = 'Thinking...';
      const res = await fetch('/query', {
        method: 'POST',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify({query: q})
      });
      const data = await res.json();
      if (!data.success) { out.textContent = data.error; return; }
      let html = '<div class="answer"><b>Confidence: ' + data.confidence + '%</b>\n\n' + data.answer;
      if (data.confidence < 50) {
        html += '\n\n<span class="low">Low confidence: this answer might not be accurate.</span>';
      }
      if (data.sources && data.sources.length) {
        html += '\n\nSources:';
        data.sources.forEach((s, i) => { html += '\n' + (i+1) + '. ' + s.title; });
      }
      out.innerHTML = html + '</div>';
    }
  </script>
</body>
</html>
`))
