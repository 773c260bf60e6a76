package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spec-kit/support-desk/internal/domain"
)

type sqliteMessageRepository struct {
	q sqlQuerier
}

func (r *sqliteMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (id, ticket_id, seq, sender_id, content, is_internal_note, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.q.ExecContext(ctx, query,
		msg.ID,
		msg.TicketID,
		msg.Seq,
		msg.SenderID,
		msg.Content,
		msg.IsInternalNote,
		toMicros(msg.CreatedAt),
	)
	return err
}

func (r *sqliteMessageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, ticket_id, seq, sender_id, content, is_internal_note, created_at
        FROM messages WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := r.q.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var (
			msg       domain.Message
			createdAt int64
		)
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.Seq,
			&msg.SenderID,
			&msg.Content,
			&msg.IsInternalNote,
			&createdAt,
		); err != nil {
			return nil, err
		}
		msg.CreatedAt = fromMicros(createdAt)
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *sqliteMessageRepository) LastPosition(ctx context.Context, ticketID string) (ThreadPosition, error) {
	const query = `
        SELECT seq, created_at FROM messages
        WHERE ticket_id=$1 ORDER BY seq DESC LIMIT 1`
	var seq, createdAt int64
	err := r.q.QueryRowContext(ctx, query, ticketID).Scan(&seq, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ThreadPosition{}, nil
	}
	if err != nil {
		return ThreadPosition{}, err
	}
	return ThreadPosition{Seq: seq, CreatedAt: fromMicros(createdAt)}, nil
}
