package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore is the embedded Store. It expects a handle from persistence.OpenSQLite,
// whose single connection serializes transactions.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) Repos() Repositories {
	return sqliteRepositories(s.db)
}

func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, sqliteRepositories(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func sqliteRepositories(q sqlQuerier) Repositories {
	return Repositories{
		Users:    &sqliteUserRepository{q: q},
		Tickets:  &sqliteTicketRepository{q: q},
		Messages: &sqliteMessageRepository{q: q},
		History:  &sqliteHistoryRepository{q: q},
	}
}

func sqlNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

type sqliteUserRepository struct {
	q sqlQuerier
}

func (r *sqliteUserRepository) CreateIfAbsent(ctx context.Context, user *domain.User) (bool, error) {
	const query = `
        INSERT INTO users (id, name, email, role, avatar_url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO NOTHING`
	res, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		string(user.Role),
		user.AvatarURL,
		toMicros(user.CreatedAt),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *sqliteUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, role, avatar_url, created_at
        FROM users WHERE id=$1`
	user, err := scanSQLiteUser(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, sqlNotFound(err)
	}
	return user, nil
}

func (r *sqliteUserRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `
        SELECT id, name, email, role, avatar_url, created_at
        FROM users ORDER BY rowid ASC`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteUser(row rowScanner) (*domain.User, error) {
	var (
		user      domain.User
		role      string
		createdAt int64
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &user.AvatarURL, &createdAt); err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	user.CreatedAt = fromMicros(createdAt)
	return &user, nil
}

type sqliteHistoryRepository struct {
	q sqlQuerier
}

func (r *sqliteHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, changed_by, old_status, new_status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.q.ExecContext(ctx, query,
		history.ID,
		history.TicketID,
		history.ChangedBy,
		string(history.OldStatus),
		string(history.NewStatus),
		toMicros(history.CreatedAt),
	)
	return err
}

func (r *sqliteHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, changed_by, old_status, new_status, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC, rowid ASC`
	rows, err := r.q.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketHistory
	for rows.Next() {
		var (
			history              domain.TicketHistory
			changedBy            sql.NullString
			oldStatus, newStatus string
			createdAt            int64
		)
		if err := rows.Scan(&history.ID, &history.TicketID, &changedBy, &oldStatus, &newStatus, &createdAt); err != nil {
			return nil, err
		}
		if changedBy.Valid {
			history.ChangedBy = &changedBy.String
		}
		history.OldStatus = domain.TicketStatus(oldStatus)
		history.NewStatus = domain.TicketStatus(newStatus)
		history.CreatedAt = fromMicros(createdAt)
		result = append(result, history)
	}
	return result, rows.Err()
}
