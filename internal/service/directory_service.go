package service

import (
	"context"
	"strings"

	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// DirectoryService is the read side of the user directory plus operator seeding.
type DirectoryService struct {
	store repository.Store
	clock clock.Clock
}

// NewDirectoryService constructs the service.
func NewDirectoryService(store repository.Store, clk clock.Clock) *DirectoryService {
	if clk == nil {
		clk = clock.Real()
	}
	return &DirectoryService{store: store, clock: clk}
}

// ListUsers returns every user in insertion order.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.Repos().Users.List(ctx)
	if err != nil {
		return nil, storeError(err, "user", "")
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// GetUser resolves a user id.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	user, err := s.store.Repos().Users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", id)
	}
	return user, nil
}

// Seed inserts users that do not exist yet, in the given order, and returns how many were added.
// Existing ids are left untouched since users are immutable.
func (s *DirectoryService) Seed(ctx context.Context, users []domain.User) (int, error) {
	for i, u := range users {
		if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Name) == "" {
			return 0, apperrors.NewInvalidInput("user id and name are required", map[string]any{"index": i})
		}
		if !u.Role.Valid() {
			return 0, apperrors.NewInvalidInput("invalid role", map[string]any{"index": i, "role": u.Role})
		}
	}

	inserted := 0
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for i := range users {
			user := users[i]
			if user.CreatedAt.IsZero() {
				user.CreatedAt = clock.Normalize(s.clock.Now())
			}
			created, err := repos.Users.CreateIfAbsent(ctx, &user)
			if err != nil {
				return err
			}
			if created {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, storeError(err, "user", "")
	}
	return inserted, nil
}
