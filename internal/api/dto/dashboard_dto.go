package dto

import "fmt"

// Dashboard backs the metrics view.
type Dashboard struct {
	TotalTickets int
	HighPriority int
	Priorities   []PriorityBar
	Types        []RankedCount
	Queues       []NamedCount
	Languages    []NamedCount
}

// PriorityBar is one row of the priority distribution.
type PriorityBar struct {
	Name     string
	Count    int
	Percent  float64
	BarClass string
}

// Width renders Percent as a CSS width, kept within 0-100%.
func (b PriorityBar) Width() string {
	return fmt.Sprintf("%.1f%%", min(max(b.Percent, 0), 100))
}

// RankedCount is an entry of a ranked list, starting at rank 1.
type RankedCount struct {
	Rank  int
	Name  string
	Count int
}

// NamedCount is a plain category count.
type NamedCount struct {
	Name  string
	Count int
}
