package domain

import "strconv"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// TicketStatuses lists the selectable statuses in display order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusClosed}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// TicketPriorities lists the selectable priorities in display order.
var TicketPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is a customer support request as served by the ticket API.
// Only Status and Priority are ever changed from this side.
type Ticket struct {
	ID           int            `json:"id"`
	CreatedAt    Timestamp      `json:"created_at"`
	CustomerName string         `json:"customer_name"`
	Channel      string         `json:"channel"`
	Subject      string         `json:"subject"`
	Status       TicketStatus   `json:"status"`
	Priority     TicketPriority `json:"priority"`
}

// Fields returns the string form of every field, used for free-text search.
func (t Ticket) Fields() []string {
	return []string{
		strconv.Itoa(t.ID),
		t.CreatedAt.Raw(),
		t.CustomerName,
		t.Channel,
		t.Subject,
		string(t.Status),
		string(t.Priority),
	}
}

// TicketPatch is a partial update of the mutable ticket fields.
type TicketPatch struct {
	Status   *TicketStatus   `json:"status,omitempty"`
	Priority *TicketPriority `json:"priority,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TicketPatch) Empty() bool {
	return p.Status == nil && p.Priority == nil
}
