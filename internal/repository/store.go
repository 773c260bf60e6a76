package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ErrNotFound is returned when a lookup or guarded update matches no row.
var ErrNotFound = errors.New("record not found")

// UserRepository is the identity directory's persistence.
type UserRepository interface {
	// CreateIfAbsent inserts the user unless the id already exists and reports whether it inserted.
	CreateIfAbsent(ctx context.Context, user *domain.User) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// List returns users in insertion order.
	List(ctx context.Context) ([]domain.User, error)
}

// TicketFilter narrows ticket listings. Nil fields do not filter.
type TicketFilter struct {
	CustomerID *string
	Status     *domain.TicketStatus
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetForUpdate reads the ticket and holds it until the enclosing transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	// UpdateStatus sets the status and raises updated_at to at unless it is already later.
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, at time.Time) (*domain.Ticket, error)
	// Touch raises updated_at to at unless it is already later.
	Touch(ctx context.Context, id string, at time.Time) error
	UpdateInsight(ctx context.Context, id string, insight domain.TicketInsight) error
	// List returns tickets ordered by updated_at then id, both descending.
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// ThreadPosition is the tail of a ticket thread.
type ThreadPosition struct {
	Seq       int64
	CreatedAt time.Time
}

// MessageRepository manages ticket thread messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// ListByTicket returns the thread in position order.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
	// LastPosition returns the tail of the thread; the zero value when it is empty.
	LastPosition(ctx context.Context, ticketID string) (ThreadPosition, error)
}

// TicketHistoryRepository stores status change entries.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

// Repositories is a set of repositories bound to one connection or transaction.
type Repositories struct {
	Users    UserRepository
	Tickets  TicketRepository
	Messages MessageRepository
	History  TicketHistoryRepository
}

// Store is the storage handle passed to every service.
type Store interface {
	// Repos returns repositories that run each statement on its own.
	Repos() Repositories
	// WithinTx runs fn in a single transaction. A non-nil error from fn, or a panic,
	// rolls back every write fn made.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
}
