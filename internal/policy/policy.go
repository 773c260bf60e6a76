// Package policy holds the read-side rules: which messages a caller may see and how the
// ticket list is scoped, filtered and ordered for a caller. Everything here is pure.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

// StatusFilterAll disables status filtering.
const StatusFilterAll = "ALL"

// Viewer is the caller a projection is computed for.
type Viewer struct {
	UserID string
	Role   domain.Role
}

// ViewerOf builds a Viewer from a directory entry.
func ViewerOf(user *domain.User) Viewer {
	return Viewer{UserID: user.ID, Role: user.Role}
}

// IsAgent reports whether the viewer has the agent role.
func (v Viewer) IsAgent() bool {
	return v.Role == domain.RoleAgent
}

// StatusFilter is either ALL or exactly one status.
type StatusFilter struct {
	status *domain.TicketStatus
}

// AllStatuses matches every ticket.
func AllStatuses() StatusFilter {
	return StatusFilter{}
}

// OnlyStatus matches tickets in exactly s.
func OnlyStatus(s domain.TicketStatus) StatusFilter {
	return StatusFilter{status: &s}
}

// ParseStatusFilter accepts "", "ALL" or one of the ticket statuses, case-insensitively.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" || raw == StatusFilterAll {
		return AllStatuses(), nil
	}
	status := domain.TicketStatus(raw)
	if !status.Valid() {
		return StatusFilter{}, fmt.Errorf("unknown status %q", raw)
	}
	return OnlyStatus(status), nil
}

// Status returns the concrete status, or nil for ALL.
func (f StatusFilter) Status() *domain.TicketStatus {
	return f.status
}

func (f StatusFilter) String() string {
	if f.status == nil {
		return StatusFilterAll
	}
	return string(*f.status)
}

// Matches reports whether t passes the filter.
func (f StatusFilter) Matches(t *domain.Ticket) bool {
	return f.status == nil || t.Status == *f.status
}

// CanSeeMessage reports whether the viewer may observe msg. Internal notes are agent-only.
func CanSeeMessage(v Viewer, msg *domain.Message) bool {
	return !msg.IsInternalNote || v.IsAgent()
}

// VisibleMessages drops what the viewer may not see and keeps thread order.
func VisibleMessages(v Viewer, msgs []domain.Message) []domain.Message {
	visible := make([]domain.Message, 0, len(msgs))
	for i := range msgs {
		if CanSeeMessage(v, &msgs[i]) {
			visible = append(visible, msgs[i])
		}
	}
	return visible
}

// CanSeeTicket reports whether the viewer may observe t. Customers only see their own tickets.
func CanSeeTicket(v Viewer, t *domain.Ticket) bool {
	return v.IsAgent() || t.CustomerID == v.UserID
}

// CustomerScope returns the owner restriction a listing for v must apply, nil for agents.
func CustomerScope(v Viewer) *string {
	if v.IsAgent() {
		return nil
	}
	id := v.UserID
	return &id
}

// ProjectTickets restricts tickets to what v may see, applies the status filter and sorts by
// updatedAt descending with ties broken by id descending. The input slice is not modified.
func ProjectTickets(v Viewer, filter StatusFilter, tickets []domain.Ticket) []domain.Ticket {
	projected := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if CanSeeTicket(v, &tickets[i]) && filter.Matches(&tickets[i]) {
			projected = append(projected, tickets[i])
		}
	}
	sort.SliceStable(projected, func(i, j int) bool {
		a, b := projected[i], projected[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	})
	return projected
}

// LatestMessageFrom returns the content of the newest message not sent by excludeSenderID,
// falling back to the ticket description. Draft replies are seeded from it.
func LatestMessageFrom(ticket *domain.Ticket, msgs []domain.Message, excludeSenderID string) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].SenderID != excludeSenderID && strings.TrimSpace(msgs[i].Content) != "" {
			return msgs[i].Content
		}
	}
	return ticket.Description
}
