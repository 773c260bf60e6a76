package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/advisory"
	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/policy"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// Toucher refreshes a ticket's updatedAt inside an open transaction.
type Toucher interface {
	TouchUpdatedAt(ctx context.Context, repos repository.Repositories, ticketID string, at time.Time) error
}

// TicketService owns ticket records, status changes and timestamps.
type TicketService struct {
	store           repository.Store
	advisor         *advisory.Advisor
	analyzeOnCreate bool
	clock           clock.Clock
	thread          threadWriter
	events          publisher
	logger          *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store           repository.Store
	Advisor         *advisory.Advisor
	AnalyzeOnCreate bool
	Dispatcher      events.Dispatcher
	Clock           clock.Clock
	Logger          *zap.Logger
}

// TicketCreateInput describes ticket creation payload. Nil Category or Priority means
// "not supplied".
type TicketCreateInput struct {
	CustomerID  string
	Subject     string
	Description string
	Category    *string
	Priority    *domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:           deps.Store,
		advisor:         deps.Advisor,
		analyzeOnCreate: deps.AnalyzeOnCreate,
		clock:           clk,
		thread:          threadWriter{clock: clk},
		events:          publisher{dispatcher: deps.Dispatcher, logger: logger},
		logger:          logger,
	}
}

var _ Toucher = (*TicketService)(nil)

// CreateTicket stores a ticket together with its seed message. Analysis runs before the
// transaction and only enriches the ticket; it never causes a failure.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	customer, err := s.store.Repos().Users.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, storeError(err, "user", input.CustomerID)
	}

	category := domain.DefaultCategory
	priority := domain.DefaultPriority
	var insight *domain.TicketInsight
	analyzed := false

	if s.analyzeOnCreate && s.advisor.Enabled() {
		switch result := s.advisor.Analyze(ctx, input.Subject, input.Description).(type) {
		case advisory.Analyzed:
			if strings.TrimSpace(result.Category) != "" {
				category = result.Category
			}
			if result.Priority.Valid() {
				priority = result.Priority
			}
			in := result.Insight()
			insight = &in
			analyzed = true
		case advisory.Unavailable:
			s.logger.Info("creating ticket without analysis", zap.String("reason", result.Reason))
		}
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
		category = strings.TrimSpace(*input.Category)
	}
	if input.Priority != nil {
		priority = *input.Priority
	}

	now := clock.Normalize(s.clock.Now())
	ticket := &domain.Ticket{
		ID:          newID(),
		CustomerID:  customer.ID,
		Subject:     input.Subject,
		Description: input.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    category,
		Insight:     insight,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		_, err := s.thread.append(ctx, repos, ticket, customer.ID, input.Description, false)
		return err
	})
	if err != nil {
		return nil, storeError(err, "ticket", ticket.ID)
	}

	s.events.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorOf(customer),
		Payload: events.TicketCreatedPayload{
			CustomerID: ticket.CustomerID,
			Subject:    ticket.Subject,
			Category:   ticket.Category,
			Priority:   ticket.Priority,
			Analyzed:   analyzed,
		},
	})
	return ticket, nil
}

func validateCreate(input TicketCreateInput) error {
	if strings.TrimSpace(input.Subject) == "" {
		return apperrors.NewInvalidInput("subject is required", map[string]any{"field": "subject"})
	}
	if strings.TrimSpace(input.Description) == "" {
		return apperrors.NewInvalidInput("description is required", map[string]any{"field": "description"})
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return apperrors.NewInvalidInput("invalid priority", map[string]any{"field": "priority", "value": *input.Priority})
	}
	return nil
}

// ChangeStatus moves a ticket to any status, records the change and refreshes updatedAt.
// actor may be nil when the caller is not identified.
func (s *TicketService) ChangeStatus(ctx context.Context, ticketID string, status domain.TicketStatus, actor *domain.User) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, apperrors.NewInvalidInput("invalid status", map[string]any{"field": "status", "value": status})
	}

	var (
		updated   *domain.Ticket
		oldStatus domain.TicketStatus
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		oldStatus = current.Status

		now := clock.Normalize(s.clock.Now())
		updated, err = repos.Tickets.UpdateStatus(ctx, ticketID, status, now)
		if err != nil {
			return err
		}
		if oldStatus == status {
			return nil
		}

		entry := &domain.TicketHistory{
			ID:        newID(),
			TicketID:  ticketID,
			OldStatus: oldStatus,
			NewStatus: status,
			CreatedAt: now,
		}
		if actor != nil {
			id := actor.ID
			entry.ChangedBy = &id
		}
		return repos.History.Create(ctx, entry)
	})
	if err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}

	s.events.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Actor:    events.ActorOf(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return updated, nil
}

// GetTicket fetches a ticket regardless of caller.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.store.Repos().Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}
	return ticket, nil
}

// GetTicketFor fetches a ticket the viewer may see. Tickets owned by someone else are
// reported as missing to customers.
func (s *TicketService) GetTicketFor(ctx context.Context, viewer policy.Viewer, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSeeTicket(viewer, ticket) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	return ticket, nil
}

// TouchUpdatedAt raises updatedAt to at. It is the only way other components modify a ticket.
func (s *TicketService) TouchUpdatedAt(ctx context.Context, repos repository.Repositories, ticketID string, at time.Time) error {
	return repos.Tickets.Touch(ctx, ticketID, clock.Normalize(at))
}

// ListHistory returns status changes oldest first.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	repos := s.store.Repos()
	if _, err := repos.Tickets.GetByID(ctx, ticketID); err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}
	history, err := repos.History.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}
	if history == nil {
		history = []domain.TicketHistory{}
	}
	return history, nil
}
