package history

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	topTopics    = 5
	minTopicRune = 4
)

// Summary aggregates a session's log. Topics is a crude keyword pull:
// the most frequent words longer than 3 characters from the lowercased
// queries, no stop-word list, no stemming. Good enough for a "what did
// we talk about" line, nothing more.
type Summary struct {
	TotalQueries  int      `json:"total_queries"`
	AvgConfidence float64  `json:"avg_confidence"`
	Topics        []string `json:"topics"`
	SessionFile   string   `json:"session_file,omitempty"`
}

// Summarize recomputes the summary from the current log on every call.
// An empty session yields {0, 0, []} rather than an error.
func (s *Store) Summarize() Summary {
	s.mu.Lock()
	session := make([]Interaction, len(s.session))
	copy(session, s.session)
	s.mu.Unlock()

	if len(session) == 0 {
		return Summary{Topics: []string{}}
	}

	var sum float64
	for _, in := range session {
		sum += in.Confidence
	}
	avg := sum / float64(len(session))

	return Summary{
		TotalQueries:  len(session),
		AvgConfidence: math.Round(avg*100) / 100,
		Topics:        TopTopics(session, topTopics),
		SessionFile:   s.sessionFile,
	}
}

// TopTopics ranks words of length > 3 from the lowercased queries by
// descending frequency. Ties keep first-encountered order.
func TopTopics(session []Interaction, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, in := range session {
		for _, word := range strings.Fields(strings.ToLower(in.Query)) {
			if utf8.RuneCountInString(word) < minTopicRune {
				continue
			}
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		order = []string{}
	}
	return order
}
