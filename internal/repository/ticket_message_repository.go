package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
)

type ticketMessageRepository struct {
	q pgQuerier
}

func (r *ticketMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (id, ticket_id, seq, sender_id, content, is_internal_note, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.q.Exec(ctx, query,
		msg.ID,
		msg.TicketID,
		msg.Seq,
		msg.SenderID,
		msg.Content,
		msg.IsInternalNote,
		msg.CreatedAt,
	)
	return err
}

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, ticket_id, seq, sender_id, content, is_internal_note, created_at
        FROM messages WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.Seq,
			&msg.SenderID,
			&msg.Content,
			&msg.IsInternalNote,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		msg.CreatedAt = msg.CreatedAt.UTC()
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *ticketMessageRepository) LastPosition(ctx context.Context, ticketID string) (ThreadPosition, error) {
	const query = `
        SELECT seq, created_at FROM messages
        WHERE ticket_id=$1 ORDER BY seq DESC LIMIT 1`
	var (
		seq       int64
		createdAt time.Time
	)
	err := r.q.QueryRow(ctx, query, ticketID).Scan(&seq, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ThreadPosition{}, nil
	}
	if err != nil {
		return ThreadPosition{}, err
	}
	return ThreadPosition{Seq: seq, CreatedAt: createdAt.UTC()}, nil
}
