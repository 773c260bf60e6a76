package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/policy"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// MessageService is the append-only thread store.
type MessageService struct {
	store   repository.Store
	toucher Toucher
	thread  threadWriter
	events  publisher
}

// MessageDependencies bundles collaborators for the message service.
type MessageDependencies struct {
	Store      repository.Store
	Toucher    Toucher
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// MessageAppendInput describes a new thread entry.
type MessageAppendInput struct {
	TicketID       string
	SenderID       string
	Content        string
	IsInternalNote bool
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &MessageService{
		store:   deps.Store,
		toucher: deps.Toucher,
		thread:  threadWriter{clock: clk},
		events:  publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

// AppendMessage adds a message to the end of a ticket thread and refreshes the ticket's
// updatedAt in the same transaction.
func (s *MessageService) AppendMessage(ctx context.Context, input MessageAppendInput) (*domain.Message, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewInvalidInput("content is required", map[string]any{"field": "content"})
	}

	sender, err := s.store.Repos().Users.GetByID(ctx, input.SenderID)
	if err != nil {
		return nil, storeError(err, "user", input.SenderID)
	}
	if input.IsInternalNote && !sender.IsAgent() {
		return nil, apperrors.NewInvalidInput("only agents can write internal notes", map[string]any{"field": "isInternalNote"})
	}

	var msg *domain.Message
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := repos.Tickets.GetForUpdate(ctx, input.TicketID)
		if err != nil {
			return err
		}
		if !policy.CanSeeTicket(policy.ViewerOf(sender), ticket) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": input.TicketID})
		}

		msg, err = s.thread.append(ctx, repos, ticket, sender.ID, input.Content, input.IsInternalNote)
		if err != nil {
			return err
		}
		if s.toucher == nil {
			return nil
		}
		return s.toucher.TouchUpdatedAt(ctx, repos, ticket.ID, msg.CreatedAt)
	})
	if err != nil {
		return nil, storeError(err, "ticket", input.TicketID)
	}

	s.events.publish(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: msg.TicketID,
		Actor:    events.ActorOf(sender),
		Payload: events.TicketMessageAddedPayload{
			MessageID:      msg.ID,
			Seq:            msg.Seq,
			SenderID:       msg.SenderID,
			IsInternalNote: msg.IsInternalNote,
			BodyPreview:    events.Preview(msg.Content),
		},
	})
	return msg, nil
}

// ListMessages returns the thread in order, hiding what the viewer may not see.
func (s *MessageService) ListMessages(ctx context.Context, viewer policy.Viewer, ticketID string) ([]domain.Message, error) {
	repos := s.store.Repos()
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}
	if !policy.CanSeeTicket(viewer, ticket) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}

	msgs, err := repos.Messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}
	return policy.VisibleMessages(viewer, msgs), nil
}
