package repository

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
)

type ticketHistoryRepository struct {
	q pgQuerier
}

func (r *ticketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, changed_by, old_status, new_status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.q.Exec(ctx, query,
		history.ID,
		history.TicketID,
		history.ChangedBy,
		history.OldStatus,
		history.NewStatus,
		history.CreatedAt,
	)
	return err
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, changed_by, old_status, new_status, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketHistory
	for rows.Next() {
		var history domain.TicketHistory
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.ChangedBy,
			&history.OldStatus,
			&history.NewStatus,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		history.CreatedAt = history.CreatedAt.UTC()
		result = append(result, history)
	}
	return result, rows.Err()
}
