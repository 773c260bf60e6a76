package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
)

// ActivityLog writes every ticket event to the structured log.
type ActivityLog struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewActivityLog creates the subscriber.
func NewActivityLog(dispatcher events.Dispatcher, logger *zap.Logger) *ActivityLog {
	return &ActivityLog{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityLog) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleTicketCreated)
	a.dispatcher.Subscribe(events.EventTicketStatusChanged, a.handleTicketStatusChanged)
	a.dispatcher.Subscribe(events.EventTicketMessageAdded, a.handleTicketMessageAdded)
	a.dispatcher.Subscribe(events.EventTicketAnalyzed, a.handleTicketAnalyzed)
}

func (a *ActivityLog) handleTicketCreated(_ context.Context, event events.Event) error {
	a.logger.Info("TicketCreated", a.fields(event)...)
	return nil
}

func (a *ActivityLog) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	a.logger.Info("TicketStatusChanged", a.fields(event)...)
	return nil
}

func (a *ActivityLog) handleTicketMessageAdded(_ context.Context, event events.Event) error {
	fields := a.fields(event)
	// Note bodies stay out of the log.
	if p, ok := event.Payload.(events.TicketMessageAddedPayload); ok && p.IsInternalNote {
		p.BodyPreview = ""
		fields[len(fields)-1] = zap.Any("payload", p)
	}
	a.logger.Info("TicketMessageAdded", fields...)
	return nil
}

func (a *ActivityLog) handleTicketAnalyzed(_ context.Context, event events.Event) error {
	a.logger.Info("TicketAnalyzed", a.fields(event)...)
	return nil
}

func (a *ActivityLog) fields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.Time("at", event.Timestamp),
	}
	if event.Actor.UserID != nil {
		fields = append(fields, zap.String("actor_id", *event.Actor.UserID))
	}
	return append(fields, zap.Any("payload", event.Payload))
}
