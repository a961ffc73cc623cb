package history

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const chatDirPrefix = "chat_"

// LoadChatSessions reads every chat's persisted session records under
// root (chat_<id>/session_*.json), keyed by chat id. Since every
// append is flushed before returning, the files cover interactions
// from earlier runs of the same process day too. Unreadable or
// malformed files are logged and skipped.
func LoadChatSessions(root string) map[int64][]Interaction {
	entries, err := os.ReadDir(root)
	if err != nil {
		log.Printf("failed to list history root %s: %v", root, err)
		return nil
	}
	out := make(map[int64][]Interaction)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), chatDirPrefix) {
			continue
		}
		chatID, err := strconv.ParseInt(strings.TrimPrefix(entry.Name(), chatDirPrefix), 10, 64)
		if err != nil {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("failed to list session dir %s: %v", dir, err)
			continue
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasPrefix(name, sessionPrefix) || !strings.HasSuffix(name, sessionSuffix) {
				continue
			}
			path := filepath.Join(dir, name)
			session, err := loadSession(path)
			if err != nil {
				log.Printf("skipping unreadable session file %s: %v", path, err)
				continue
			}
			out[chatID] = append(out[chatID], session...)
		}
	}
	return out
}
