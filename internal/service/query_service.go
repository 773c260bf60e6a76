package service

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/policy"
	"github.com/spec-kit/support-desk/internal/repository"
)

// TicketQueryService serves role-scoped ticket listings. It never writes.
type TicketQueryService struct {
	store repository.Store
}

// NewTicketQueryService constructs the service.
func NewTicketQueryService(store repository.Store) *TicketQueryService {
	return &TicketQueryService{store: store}
}

// ListTickets returns the tickets the viewer may see that match filter, most recently
// updated first.
func (s *TicketQueryService) ListTickets(ctx context.Context, viewer policy.Viewer, filter policy.StatusFilter) ([]domain.Ticket, error) {
	tickets, err := s.store.Repos().Tickets.List(ctx, repository.TicketFilter{
		CustomerID: policy.CustomerScope(viewer),
		Status:     filter.Status(),
	})
	if err != nil {
		return nil, storeError(err, "ticket", "")
	}
	return policy.ProjectTickets(viewer, filter, tickets), nil
}
