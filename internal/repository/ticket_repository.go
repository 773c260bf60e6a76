package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
)

const ticketColumns = `id, customer_id, subject, description, status, priority, category,
               assigned_agent_id, ai_summary, ai_sentiment, ai_solution, created_at, updated_at`

type ticketRepository struct {
	q pgQuerier
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, customer_id, subject, description, status, priority, category,
            assigned_agent_id, ai_summary, ai_sentiment, ai_solution, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	summary, sentiment, solution := insightColumns(ticket.Insight)
	_, err := r.q.Exec(ctx, query,
		ticket.ID,
		ticket.CustomerID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedAgentID,
		summary,
		sentiment,
		solution,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, at time.Time) (*domain.Ticket, error) {
	query := `
        UPDATE tickets SET status=$1,
            updated_at = CASE WHEN updated_at < $2 THEN $2 ELSE updated_at END
        WHERE id=$3
        RETURNING ` + ticketColumns
	return r.fetchSingle(ctx, query, status, at, id)
}

func (r *ticketRepository) Touch(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE tickets SET updated_at = CASE WHEN updated_at < $1 THEN $1 ELSE updated_at END
        WHERE id=$2`
	cmd, err := r.q.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) UpdateInsight(ctx context.Context, id string, insight domain.TicketInsight) error {
	const query = `
        UPDATE tickets SET ai_summary=$1, ai_sentiment=$2, ai_solution=$3
        WHERE id=$4`
	cmd, err := r.q.Exec(ctx, query, insight.Summary, insight.Sentiment, insight.SuggestedSolution, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC, id DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, pgNotFound(err)
	}
	return ticket, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket                       domain.Ticket
		summary, sentiment, solution *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.AssignedAgentID,
		&summary,
		&sentiment,
		&solution,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.CreatedAt = ticket.CreatedAt.UTC()
	ticket.UpdatedAt = ticket.UpdatedAt.UTC()
	ticket.Insight = insightFromColumns(summary, sentiment, solution)
	return &ticket, nil
}

func insightColumns(insight *domain.TicketInsight) (summary, sentiment, solution *string) {
	if insight == nil {
		return nil, nil, nil
	}
	return &insight.Summary, &insight.Sentiment, &insight.SuggestedSolution
}

func insightFromColumns(summary, sentiment, solution *string) *domain.TicketInsight {
	if summary == nil && sentiment == nil && solution == nil {
		return nil
	}
	insight := &domain.TicketInsight{}
	if summary != nil {
		insight.Summary = *summary
	}
	if sentiment != nil {
		insight.Sentiment = *sentiment
	}
	if solution != nil {
		insight.SuggestedSolution = *solution
	}
	return insight
}
