package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/policy"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"

	// UserIDHeader carries the caller's user id. The service trusts it.
	UserIDHeader = "X-User-ID"
	// UserIDQuery is the fallback when the header is absent.
	UserIDQuery = "userId"
)

// Principal represents the identified caller.
type Principal struct {
	User *domain.User
}

// Viewer returns the visibility scope of the caller.
func (p *Principal) Viewer() policy.Viewer {
	return policy.ViewerOf(p.User)
}

// UserResolver looks up users by id.
type UserResolver interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// IdentityMiddleware resolves the caller-supplied user id against the directory.
type IdentityMiddleware struct {
	users UserResolver
}

// NewIdentityMiddleware constructs middleware.
func NewIdentityMiddleware(users UserResolver) *IdentityMiddleware {
	return &IdentityMiddleware{users: users}
}

// Require rejects requests that do not name a known user.
func (m *IdentityMiddleware) Require(c *fiber.Ctx) error {
	id := callerID(c)
	if id == "" {
		return apperrors.NewUnauthorized("caller identity required")
	}
	if err := m.resolve(c, id); err != nil {
		return err
	}
	return c.Next()
}

// Optional resolves the caller when one is named and lets anonymous requests through.
// A named but unknown caller is still rejected.
func (m *IdentityMiddleware) Optional(c *fiber.Ctx) error {
	if id := callerID(c); id != "" {
		if err := m.resolve(c, id); err != nil {
			return err
		}
	}
	return c.Next()
}

func (m *IdentityMiddleware) resolve(c *fiber.Ctx, id string) error {
	user, err := m.users.GetUser(c.UserContext(), id)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return apperrors.NewUnauthorized("unknown caller")
		}
		return apperrors.MapError(err)
	}
	c.Locals(principalKey, &Principal{User: user})
	return nil
}

func callerID(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Get(UserIDHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query(UserIDQuery))
}

// PrincipalFromContext retrieves the identified caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.User != nil
}
