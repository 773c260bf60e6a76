package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

type sqliteTicketRepository struct {
	q sqlQuerier
}

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, customer_id, subject, description, status, priority, category,
            assigned_agent_id, ai_summary, ai_sentiment, ai_solution, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	summary, sentiment, solution := insightColumns(ticket.Insight)
	_, err := r.q.ExecContext(ctx, query,
		ticket.ID,
		ticket.CustomerID,
		ticket.Subject,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Priority),
		ticket.Category,
		ticket.AssignedAgentID,
		summary,
		sentiment,
		solution,
		toMicros(ticket.CreatedAt),
		toMicros(ticket.UpdatedAt),
	)
	return err
}

func (r *sqliteTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// GetForUpdate needs no locking clause: the single connection already serializes transactions.
func (r *sqliteTicketRepository) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *sqliteTicketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, at time.Time) (*domain.Ticket, error) {
	query := `
        UPDATE tickets SET status=$1, updated_at = MAX(updated_at, $2)
        WHERE id=$3
        RETURNING ` + ticketColumns
	return r.fetchSingle(ctx, query, string(status), toMicros(at), id)
}

func (r *sqliteTicketRepository) Touch(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE tickets SET updated_at = MAX(updated_at, $1) WHERE id=$2`
	res, err := r.q.ExecContext(ctx, query, toMicros(at), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqliteTicketRepository) UpdateInsight(ctx context.Context, id string, insight domain.TicketInsight) error {
	const query = `
        UPDATE tickets SET ai_summary=$1, ai_sentiment=$2, ai_solution=$3
        WHERE id=$4`
	res, err := r.q.ExecContext(ctx, query, insight.Summary, insight.Sentiment, insight.SuggestedSolution, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqliteTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC, id DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanSQLiteTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *sqliteTicketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	ticket, err := scanSQLiteTicket(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, sqlNotFound(err)
	}
	return ticket, nil
}

func scanSQLiteTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket                       domain.Ticket
		status, priority             string
		assigned                     sql.NullString
		summary, sentiment, solution sql.NullString
		createdAt, updatedAt         int64
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&ticket.Subject,
		&ticket.Description,
		&status,
		&priority,
		&ticket.Category,
		&assigned,
		&summary,
		&sentiment,
		&solution,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	ticket.Priority = domain.TicketPriority(priority)
	if assigned.Valid {
		ticket.AssignedAgentID = &assigned.String
	}
	ticket.Insight = insightFromColumns(nullable(summary), nullable(sentiment), nullable(solution))
	ticket.CreatedAt = fromMicros(createdAt)
	ticket.UpdatedAt = fromMicros(updatedAt)
	return &ticket, nil
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
