// Package editor holds the edit-form state for a single ticket: a draft of
// the mutable fields compared against the last persisted values.
package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/miniinbox/inbox/internal/domain"
)

// Fields are the mutable ticket fields tracked by the editor.
type Fields struct {
	Status   domain.TicketStatus   `json:"status"`
	Priority domain.TicketPriority `json:"priority"`
}

// FieldsOf extracts the mutable fields of t.
func FieldsOf(t domain.Ticket) Fields {
	return Fields{Status: t.Status, Priority: t.Priority}
}

// Updater persists a partial ticket update.
type Updater interface {
	UpdateTicket(ctx context.Context, id int, patch domain.TicketPatch) error
}

// InvalidValueError is returned when a draft field is set to a value outside
// its enumeration.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// Snapshot is the serializable state of a Controller.
type Snapshot struct {
	Ticket   domain.Ticket `json:"ticket"`
	Baseline Fields        `json:"baseline"`
	Draft    Fields        `json:"draft"`
}

// Controller tracks a draft against a baseline and gates save and cancel.
// Save and cancel are no-ops unless the draft is dirty and no save is in
// flight.
type Controller struct {
	mu       sync.Mutex
	updater  Updater
	ticket   domain.Ticket
	baseline Fields
	draft    Fields
	saving   bool
}

// New starts an editor for a freshly loaded ticket.
func New(ticket domain.Ticket, updater Updater) *Controller {
	fields := FieldsOf(ticket)
	return &Controller{
		updater:  updater,
		ticket:   ticket,
		baseline: fields,
		draft:    fields,
	}
}

// Restore rebuilds an editor from a snapshot.
func Restore(s Snapshot, updater Updater) *Controller {
	return &Controller{
		updater:  updater,
		ticket:   s.Ticket,
		baseline: s.Baseline,
		draft:    s.Draft,
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Ticket: c.ticket, Baseline: c.baseline, Draft: c.draft}
}

// Ticket returns the ticket with its last persisted mutable fields.
func (c *Controller) Ticket() domain.Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticket
}

// Draft returns the working copy.
func (c *Controller) Draft() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Baseline returns the last persisted values.
func (c *Controller) Baseline() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline
}

// Dirty reports whether the draft differs from the baseline.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyLocked()
}

// Saving reports whether a save is in flight.
func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// CanSave reports whether Save would issue an update.
func (c *Controller) CanSave() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyLocked() && !c.saving
}

// CanCancel reports whether Cancel would revert the draft.
func (c *Controller) CanCancel() bool {
	return c.CanSave()
}

// SetDraftStatus assigns the draft status.
func (c *Controller) SetDraftStatus(status domain.TicketStatus) error {
	if !status.Valid() {
		return &InvalidValueError{Field: "status", Value: string(status)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Status = status
	return nil
}

// SetDraftPriority assigns the draft priority.
func (c *Controller) SetDraftPriority(priority domain.TicketPriority) error {
	if !priority.Valid() {
		return &InvalidValueError{Field: "priority", Value: string(priority)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Priority = priority
	return nil
}

// Save persists the draft. It reports false without calling the updater when
// the draft is clean or a save is already running. On failure the draft and
// baseline are left untouched so the save can be retried.
func (c *Controller) Save(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if !c.dirtyLocked() || c.saving {
		c.mu.Unlock()
		return false, nil
	}
	c.saving = true
	id := c.ticket.ID
	submitted := c.draft
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.saving = false
		c.mu.Unlock()
	}()

	status, priority := submitted.Status, submitted.Priority
	if err := c.updater.UpdateTicket(ctx, id, domain.TicketPatch{Status: &status, Priority: &priority}); err != nil {
		return false, fmt.Errorf("save ticket %d: %w", id, err)
	}

	c.mu.Lock()
	c.baseline = submitted
	c.ticket.Status = submitted.Status
	c.ticket.Priority = submitted.Priority
	c.mu.Unlock()
	return true, nil
}

// Cancel reverts the draft to the baseline. It reports false when there was
// nothing to revert or a save is in flight.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirtyLocked() || c.saving {
		return false
	}
	c.draft = c.baseline
	return true
}

func (c *Controller) dirtyLocked() bool {
	return c.draft != c.baseline
}
