package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"inbox-copilot/internal/history"
)

// DailyStats aggregates one day of support conversations across chats.
type DailyStats struct {
	Date          string              `json:"date"`
	TotalQueries  int                 `json:"total_queries"`
	ActiveChats   int                 `json:"active_chats"`
	AvgConfidence float64             `json:"avg_confidence"`
	LowConfidence int                 `json:"low_confidence"`
	Topics        []string            `json:"topics"`
	ChatStats     map[int64]ChatStats `json:"chat_stats"`
}

// ChatStats is the per-chat slice of a day.
type ChatStats struct {
	ChatID        int64   `json:"chat_id"`
	Queries       int     `json:"queries"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// AnalyzeDaily reduces the chats' session logs to the target day's
// stats. lowThreshold marks answers that would have triggered an
// escalation hint.
func AnalyzeDaily(sessions map[int64][]history.Interaction, targetDate time.Time, lowThreshold float64) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		Topics:    []string{},
		ChatStats: make(map[int64]ChatStats),
	}

	var confidenceSum float64
	var dayInteractions []history.Interaction

	for chatID, session := range sessions {
		var chatSum float64
		var chatCount int
		for _, in := range session {
			if in.Timestamp.Before(startOfDay) || !in.Timestamp.Before(endOfDay) {
				continue
			}
			stats.TotalQueries++
			confidenceSum += in.Confidence
			chatSum += in.Confidence
			chatCount++
			if in.Confidence < lowThreshold {
				stats.LowConfidence++
			}
			dayInteractions = append(dayInteractions, in)
		}
		if chatCount > 0 {
			stats.ChatStats[chatID] = ChatStats{
				ChatID:        chatID,
				Queries:       chatCount,
				AvgConfidence: math.Round(chatSum/float64(chatCount)*100) / 100,
			}
		}
	}

	stats.ActiveChats = len(stats.ChatStats)
	if stats.TotalQueries > 0 {
		stats.AvgConfidence = math.Round(confidenceSum/float64(stats.TotalQueries)*100) / 100
		stats.Topics = history.TopTopics(dayInteractions, 5)
	}
	return stats
}

// GenerateReportSummary renders the stats as the admin digest message.
func (ds *DailyStats) GenerateReportSummary() string {
	summary := fmt.Sprintf(`📊 Inbox Copilot daily report for %s

Overall activity:
- Questions answered: %d
- Active chats: %d
- Average confidence: %v%%
- Low-confidence answers: %d

`, ds.Date, ds.TotalQueries, ds.ActiveChats, ds.AvgConfidence, ds.LowConfidence)

	if len(ds.Topics) > 0 {
		summary += "Main topics: "
		for i, topic := range ds.Topics {
			if i > 0 {
				summary += ", "
			}
			summary += topic
		}
		summary += "\n\n"
	}

	if len(ds.ChatStats) > 0 {
		ids := make([]int64, 0, len(ds.ChatStats))
		for id := range ds.ChatStats {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		summary += fmt.Sprintf("Per-chat activity (%d chats):\n", len(ids))
		for _, id := range ids {
			cs := ds.ChatStats[id]
			summary += fmt.Sprintf("- Chat %d: %d questions, avg confidence %v%%\n", cs.ChatID, cs.Queries, cs.AvgConfidence)
		}
	}
	return summary
}

// ToJSON serializes the stats for detailed inspection.
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
