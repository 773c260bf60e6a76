package service

import (
	"context"

	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// threadWriter appends to a ticket thread. It must run inside a transaction that holds the
// ticket row, so positions are assigned one writer at a time.
type threadWriter struct {
	clock clock.Clock
}

func (w threadWriter) append(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, senderID, content string, internal bool) (*domain.Message, error) {
	tail, err := repos.Messages.LastPosition(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	// createdAt never runs behind the previous message or the ticket itself.
	createdAt := clock.Normalize(w.clock.Now())
	if createdAt.Before(tail.CreatedAt) {
		createdAt = tail.CreatedAt
	}
	if createdAt.Before(ticket.CreatedAt) {
		createdAt = ticket.CreatedAt
	}

	msg := &domain.Message{
		ID:             newID(),
		TicketID:       ticket.ID,
		Seq:            tail.Seq + 1,
		SenderID:       senderID,
		Content:        content,
		IsInternalNote: internal,
		CreatedAt:      createdAt,
	}
	if err := repos.Messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
