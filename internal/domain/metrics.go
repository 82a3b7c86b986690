package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MetricsSnapshot is the read-only aggregate computed by the ticket API.
type MetricsSnapshot struct {
	TotalTickets   int
	PriorityCounts map[string]int
	TypeCounts     map[string]int
	QueueCounts    map[string]int
	LanguageCounts map[string]int
}

// metricsPayload mirrors the wire shape. Absent or null mappings decode as
// empty.
type metricsPayload struct {
	TotalTickets   int            `json:"total_tickets"`
	PriorityCounts map[string]int `json:"priority_counts"`
	TypeCounts     map[string]int `json:"type_counts"`
	QueueCounts    map[string]int `json:"queue_counts"`
	LanguageCounts map[string]int `json:"language_counts"`
}

// UnmarshalJSON decodes a snapshot. Missing keys count as zero; values of the
// wrong type and negative counts are rejected.
func (m *MetricsSnapshot) UnmarshalJSON(data []byte) error {
	var p metricsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if p.TotalTickets < 0 {
		return fmt.Errorf("metrics: negative total_tickets %d", p.TotalTickets)
	}

	snapshot := MetricsSnapshot{
		TotalTickets:   p.TotalTickets,
		PriorityCounts: nonNil(p.PriorityCounts),
		TypeCounts:     nonNil(p.TypeCounts),
		QueueCounts:    nonNil(p.QueueCounts),
		LanguageCounts: nonNil(p.LanguageCounts),
	}
	for name, counts := range map[string]map[string]int{
		"priority_counts": snapshot.PriorityCounts,
		"type_counts":     snapshot.TypeCounts,
		"queue_counts":    snapshot.QueueCounts,
		"language_counts": snapshot.LanguageCounts,
	} {
		for key, v := range counts {
			if v < 0 {
				return fmt.Errorf("metrics: negative count %s[%q]", name, key)
			}
		}
	}
	*m = snapshot
	return nil
}

// MarshalJSON encodes the snapshot in wire shape.
func (m MetricsSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalTickets   int            `json:"total_tickets"`
		PriorityCounts map[string]int `json:"priority_counts"`
		TypeCounts     map[string]int `json:"type_counts"`
		QueueCounts    map[string]int `json:"queue_counts"`
		LanguageCounts map[string]int `json:"language_counts"`
	}{m.TotalTickets, m.PriorityCounts, m.TypeCounts, m.QueueCounts, m.LanguageCounts})
}

// Count returns counts[key], zero when absent.
func Count(counts map[string]int, key string) int {
	return counts[key]
}

// Percent returns value as a percentage of total, 0 when total is 0.
func Percent(value, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(value) / float64(total) * 100
}

// CategoryCount is one entry of a count mapping.
type CategoryCount struct {
	Name  string
	Count int
}

// TopCounts orders counts by count descending, then name ascending, and keeps
// at most limit entries. limit <= 0 keeps all.
func TopCounts(counts map[string]int, limit int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, CategoryCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
