package dto

import (
	"github.com/miniinbox/inbox/internal/clock"
	"github.com/miniinbox/inbox/internal/domain"
	"github.com/miniinbox/inbox/internal/editor"
)

const listDateLayout = "02/01/2006"

// TicketRow is one line of the tickets table.
type TicketRow struct {
	ID            int
	CustomerName  string
	Subject       string
	Channel       string
	Status        string
	StatusClass   string
	Priority      string
	PriorityClass string
	Created       string
}

// TicketDetail is the read-only part of the detail view.
type TicketDetail struct {
	ID            int
	Created       string
	CustomerName  string
	Channel       string
	Subject       string
	Status        string
	StatusClass   string
	Priority      string
	PriorityClass string
}

// Option is one selectable button of the edit form.
type Option struct {
	Value    string
	Label    string
	Selected bool
	Class    string
}

// TicketEditor backs the edit form.
type TicketEditor struct {
	Ticket          TicketDetail
	StatusOptions   []Option
	PriorityOptions []Option
	Dirty           bool
	Saving          bool
	CanSave         bool
	CanCancel       bool
}

// NewTicketRows converts tickets for the list view.
func NewTicketRows(tickets []domain.Ticket) []TicketRow {
	rows := make([]TicketRow, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, TicketRow{
			ID:            t.ID,
			CustomerName:  t.CustomerName,
			Subject:       t.Subject,
			Channel:       t.Channel,
			Status:        string(t.Status),
			StatusClass:   StatusClass(string(t.Status)),
			Priority:      string(t.Priority),
			PriorityClass: PriorityClass(string(t.Priority)),
			Created:       t.CreatedAt.Format(listDateLayout),
		})
	}
	return rows
}

// NewTicketEditor converts an editor for the detail view. busy marks a save
// running in another request, which disables both actions.
func NewTicketEditor(c *editor.Controller, busy bool) TicketEditor {
	t := c.Ticket()
	draft := c.Draft()
	dirty := c.Dirty()
	saving := busy || c.Saving()

	statusOptions := make([]Option, 0, len(domain.TicketStatuses))
	for _, s := range domain.TicketStatuses {
		statusOptions = append(statusOptions, Option{
			Value:    string(s),
			Label:    statusLabels[s],
			Selected: draft.Status == s,
			Class:    "choice-" + string(s),
		})
	}
	priorityOptions := make([]Option, 0, len(domain.TicketPriorities))
	for _, p := range domain.TicketPriorities {
		priorityOptions = append(priorityOptions, Option{
			Value:    string(p),
			Label:    priorityLabels[p],
			Selected: draft.Priority == p,
			Class:    "choice-" + string(p),
		})
	}

	return TicketEditor{
		Ticket: TicketDetail{
			ID:            t.ID,
			Created:       clock.Format(t.CreatedAt.Time),
			CustomerName:  t.CustomerName,
			Channel:       t.Channel,
			Subject:       t.Subject,
			Status:        string(t.Status),
			StatusClass:   StatusClass(string(t.Status)),
			Priority:      string(t.Priority),
			PriorityClass: PriorityClass(string(t.Priority)),
		},
		StatusOptions:   statusOptions,
		PriorityOptions: priorityOptions,
		Dirty:           dirty,
		Saving:          saving,
		CanSave:         dirty && !saving,
		CanCancel:       dirty && !saving,
	}
}

var statusLabels = map[domain.TicketStatus]string{
	domain.TicketStatusOpen:   "Open",
	domain.TicketStatusClosed: "Closed",
}

var priorityLabels = map[domain.TicketPriority]string{
	domain.TicketPriorityLow:    "Low",
	domain.TicketPriorityMedium: "Med",
	domain.TicketPriorityHigh:   "High",
}
