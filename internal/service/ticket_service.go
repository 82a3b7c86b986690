package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/miniinbox/inbox/internal/domain"
	"github.com/miniinbox/inbox/internal/editor"
	"github.com/miniinbox/inbox/internal/events"
	"github.com/miniinbox/inbox/internal/observability"
	"github.com/miniinbox/inbox/internal/persistence"
)

// Save outcomes recorded in metrics.
const (
	SaveOutcomeSaved   = "saved"
	SaveOutcomeFailed  = "failed"
	SaveOutcomeSkipped = "skipped"
	SaveOutcomeBusy    = "busy"
)

// TicketClient is the subset of the ticket API used by the ticket views.
type TicketClient interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, id int) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, id int, patch domain.TicketPatch) error
}

// TicketService coordinates the ticket list and the edit form.
type TicketService struct {
	client     TicketClient
	drafts     persistence.DraftStore
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Client     TicketClient
	Drafts     persistence.DraftStore
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		client:     deps.Client,
		drafts:     deps.Drafts,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// EditResult describes what a save or cancel request did.
type EditResult struct {
	Editor *editor.Controller
	// Saved is true when the update reached the ticket API.
	Saved bool
	// Busy is true when another save of the same draft was in flight.
	Busy bool
}

// ListTickets returns the tickets matching term, in server order.
func (s *TicketService) ListTickets(ctx context.Context, term string) ([]domain.Ticket, error) {
	tickets, err := s.client.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTickets(tickets, term), nil
}

// FilterTickets keeps the tickets where any field contains term, ignoring
// case. The term is used as typed, whitespace included; an empty term keeps
// everything.
func FilterTickets(tickets []domain.Ticket, term string) []domain.Ticket {
	needle := strings.ToLower(term)
	if needle == "" {
		return tickets
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		for _, field := range t.Fields() {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// OpenEditor loads the ticket and starts a fresh draft for it, discarding any
// draft the session had.
func (s *TicketService) OpenEditor(ctx context.Context, key persistence.DraftKey) (*editor.Controller, error) {
	ticket, err := s.client.GetTicket(ctx, key.TicketID)
	if err != nil {
		return nil, err
	}
	c := editor.New(ticket, s.client)
	if err := s.drafts.Store(ctx, key, c.Snapshot()); err != nil {
		return nil, err
	}
	return c, nil
}

// Editor returns the session's current draft, opening one if none exists.
func (s *TicketService) Editor(ctx context.Context, key persistence.DraftKey) (*editor.Controller, error) {
	snapshot, found, err := s.drafts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return s.OpenEditor(ctx, key)
	}
	return editor.Restore(snapshot, s.client), nil
}

// SetDraftStatus changes the draft status.
func (s *TicketService) SetDraftStatus(ctx context.Context, key persistence.DraftKey, status domain.TicketStatus) (*editor.Controller, error) {
	return s.mutate(ctx, key, func(c *editor.Controller) error {
		return c.SetDraftStatus(status)
	})
}

// SetDraftPriority changes the draft priority.
func (s *TicketService) SetDraftPriority(ctx context.Context, key persistence.DraftKey, priority domain.TicketPriority) (*editor.Controller, error) {
	return s.mutate(ctx, key, func(c *editor.Controller) error {
		return c.SetDraftPriority(priority)
	})
}

// Cancel reverts the draft to the last persisted values. It does nothing
// while another request is saving the same draft.
func (s *TicketService) Cancel(ctx context.Context, key persistence.DraftKey) (EditResult, error) {
	release, ok, err := s.drafts.AcquireSave(ctx, key)
	if err != nil {
		return EditResult{}, err
	}
	if !ok {
		c, err := s.Editor(ctx, key)
		return EditResult{Editor: c, Busy: true}, err
	}
	defer release()

	c, err := s.mutate(ctx, key, func(c *editor.Controller) error {
		c.Cancel()
		return nil
	})
	return EditResult{Editor: c}, err
}

// Save persists the draft. A clean draft or one already being saved by
// another request is left alone. On failure the draft is kept for retry and
// the error is returned alongside the editor.
func (s *TicketService) Save(ctx context.Context, key persistence.DraftKey) (EditResult, error) {
	release, ok, err := s.drafts.AcquireSave(ctx, key)
	if err != nil {
		return EditResult{}, err
	}
	if !ok {
		s.metrics.RecordSave(SaveOutcomeBusy)
		c, err := s.Editor(ctx, key)
		return EditResult{Editor: c, Busy: true}, err
	}
	defer release()

	// Loaded under the guard so a save that just finished is observed.
	c, err := s.Editor(ctx, key)
	if err != nil {
		return EditResult{}, err
	}

	before := c.Baseline()
	saved, err := c.Save(ctx)
	if err != nil {
		s.metrics.RecordSave(SaveOutcomeFailed)
		s.logger.Warn("ticket save failed", zap.Int("ticket_id", key.TicketID), zap.Error(err))
		return EditResult{Editor: c}, err
	}
	if !saved {
		s.metrics.RecordSave(SaveOutcomeSkipped)
		return EditResult{Editor: c}, nil
	}
	s.metrics.RecordSave(SaveOutcomeSaved)

	if err := s.drafts.Store(ctx, key, c.Snapshot()); err != nil {
		// The ticket API already has the change; a stale draft only means the
		// next request starts from the old baseline.
		s.logger.Error("store draft after save", zap.String("key", key.String()), zap.Error(err))
	}
	s.publishChanges(ctx, key, before, c.Baseline())
	return EditResult{Editor: c, Saved: true}, nil
}

func (s *TicketService) mutate(ctx context.Context, key persistence.DraftKey, apply func(*editor.Controller) error) (*editor.Controller, error) {
	c, err := s.Editor(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := apply(c); err != nil {
		return c, err
	}
	if err := s.drafts.Store(ctx, key, c.Snapshot()); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}
	return c, nil
}

func (s *TicketService) publishChanges(ctx context.Context, key persistence.DraftKey, before, after editor.Fields) {
	if before.Status != after.Status {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketStatusChanged,
			TicketID:  key.TicketID,
			SessionID: key.SessionID,
			Payload:   events.TicketStatusChangedPayload{OldStatus: before.Status, NewStatus: after.Status},
		})
	}
	if before.Priority != after.Priority {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketPriorityChanged,
			TicketID:  key.TicketID,
			SessionID: key.SessionID,
			Payload:   events.TicketPriorityChangedPayload{OldPriority: before.Priority, NewPriority: after.Priority},
		})
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
