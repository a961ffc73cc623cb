package history

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Search matches term case-insensitively against the query text of
// each interaction. The active session is scanned first and all of its
// matches are collected; only if those come up short are other
// session_*.json files in the history dir scanned, in directory-listing
// order, until limit is reached. The combined result is capped at
// limit, so a session with many active matches shadows historical
// ones. A non-positive limit falls back to 10.
//
// Unreadable or malformed session files are logged and skipped:
// another store may be mid-rewrite of its own file.
func (s *Store) Search(term string, limit int) []Interaction {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	needle := strings.ToLower(term)

	s.mu.Lock()
	session := make([]Interaction, len(s.session))
	copy(session, s.session)
	s.mu.Unlock()

	var matches []Interaction
	for _, in := range session {
		if strings.Contains(strings.ToLower(in.Query), needle) {
			matches = append(matches, in)
		}
	}

	if len(matches) < limit {
		matches = s.searchPersisted(needle, limit, matches)
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (s *Store) searchPersisted(needle string, limit int, matches []Interaction) []Interaction {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("failed to list history dir %s: %v", s.dir, err)
		return matches
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, sessionPrefix) || !strings.HasSuffix(name, sessionSuffix) {
			continue
		}
		path := filepath.Join(s.dir, name)
		if path == s.sessionFile {
			continue
		}
		session, err := loadSession(path)
		if err != nil {
			log.Printf("skipping unreadable session file %s: %v", path, err)
			continue
		}
		for _, in := range session {
			if strings.Contains(strings.ToLower(in.Query), needle) {
				matches = append(matches, in)
			}
			if len(matches) >= limit {
				break
			}
		}
		if len(matches) >= limit {
			break
		}
	}
	return matches
}
