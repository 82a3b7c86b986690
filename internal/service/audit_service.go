package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/miniinbox/inbox/internal/events"
)

// AuditService writes an audit log line for every persisted ticket change.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to ticket change events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketStatusChanged, a.handleStatusChanged)
	a.dispatcher.Subscribe(events.EventTicketPriorityChanged, a.handlePriorityChanged)
}

func (a *AuditService) handleStatusChanged(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.TicketStatusChangedPayload)
	a.logger.Info("TicketStatusChanged",
		zap.String("event_id", event.ID),
		zap.Int("ticket_id", event.TicketID),
		zap.String("session_id", event.SessionID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	return nil
}

func (a *AuditService) handlePriorityChanged(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.TicketPriorityChangedPayload)
	a.logger.Info("TicketPriorityChanged",
		zap.String("event_id", event.ID),
		zap.Int("ticket_id", event.TicketID),
		zap.String("session_id", event.SessionID),
		zap.String("old_priority", string(payload.OldPriority)),
		zap.String("new_priority", string(payload.NewPriority)))
	return nil
}
