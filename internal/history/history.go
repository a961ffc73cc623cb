package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Interaction is a single recorded question/answer exchange.
// Response keeps the query engine's payload verbatim so reloading a
// session file yields exactly what was stored. Interactions are never
// mutated after being appended.
type Interaction struct {
	Timestamp  time.Time       `json:"timestamp"`
	Query      string          `json:"query"`
	Response   json.RawMessage `json:"response"`
	Confidence float64         `json:"confidence"`
}

const (
	defaultRecentLimit = 5
	defaultSearchLimit = 10

	sessionPrefix = "session_"
	sessionSuffix = ".json"
)

// Store owns the conversation log of one session: an in-memory ordered
// slice mirrored to a JSON file named after the session's creation
// time. Every successful append is durable before AddInteraction
// returns. The mutex serializes writers when a single store is shared
// across handlers (the web front-end does this).
type Store struct {
	mu          sync.Mutex
	dir         string
	sessionFile string
	session     []Interaction
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	name := sessionPrefix + time.Now().Format("20060102_150405") + sessionSuffix
	return &Store{
		dir:         dir,
		sessionFile: filepath.Join(dir, name),
	}, nil
}

// SessionFile returns the path of this session's durable record.
func (s *Store) SessionFile() string {
	return s.sessionFile
}

// AddInteraction appends a timestamped interaction and rewrites the
// whole session file. On a write failure the interaction stays in the
// in-memory log, so the next successful write re-persists it.
func (s *Store) AddInteraction(query string, response json.RawMessage, confidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = append(s.session, Interaction{
		Timestamp:  time.Now(),
		Query:      query,
		Response:   response,
		Confidence: confidence,
	})
	if err := s.saveUnlocked(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Recent returns the last limit interactions in chronological order.
// A non-positive limit falls back to 5.
func (s *Store) Recent(limit int) []Interaction {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	start := len(s.session) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Interaction, len(s.session)-start)
	copy(out, s.session[start:])
	return out
}

func (s *Store) saveUnlocked() error {
	f, err := os.OpenFile(s.sessionFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s.session)
}

func loadSession(path string) ([]Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	var session []Interaction
	dec := json.NewDecoder(f)
	if err := dec.Decode(&session); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return session, nil
}
