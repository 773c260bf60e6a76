package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

var (
	customer      = Viewer{UserID: "u-1", Role: domain.RoleCustomer}
	otherCustomer = Viewer{UserID: "u-2", Role: domain.RoleCustomer}
	agent         = Viewer{UserID: "a-1", Role: domain.RoleAgent}
)

func thread() []domain.Message {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Message{
		{ID: "m1", Seq: 1, SenderID: "u-1", Content: "help", CreatedAt: base},
		{ID: "m2", Seq: 2, SenderID: "a-1", Content: "check logs", IsInternalNote: true, CreatedAt: base.Add(time.Minute)},
		{ID: "m3", Seq: 3, SenderID: "a-1", Content: "on it", CreatedAt: base.Add(2 * time.Minute)},
	}
}

func TestVisibleMessagesHidesInternalNotesFromCustomers(t *testing.T) {
	visible := VisibleMessages(customer, thread())
	require.Len(t, visible, 2)
	assert.Equal(t, "m1", visible[0].ID)
	assert.Equal(t, "m3", visible[1].ID)
	for _, msg := range visible {
		assert.False(t, msg.IsInternalNote)
	}
}

func TestVisibleMessagesAgentSeesEverything(t *testing.T) {
	assert.Len(t, VisibleMessages(agent, thread()), 3)
}

func TestParseStatusFilter(t *testing.T) {
	all, err := ParseStatusFilter("")
	require.NoError(t, err)
	assert.Nil(t, all.Status())

	all, err = ParseStatusFilter("all")
	require.NoError(t, err)
	assert.Equal(t, StatusFilterAll, all.String())

	closed, err := ParseStatusFilter("closed")
	require.NoError(t, err)
	require.NotNil(t, closed.Status())
	assert.Equal(t, domain.TicketStatusClosed, *closed.Status())

	_, err = ParseStatusFilter("RESOLVED")
	assert.Error(t, err)
}

func sampleTickets() []domain.Ticket {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Ticket{
		{ID: "t-1", CustomerID: "u-1", Status: domain.TicketStatusOpen, UpdatedAt: base},
		{ID: "t-2", CustomerID: "u-2", Status: domain.TicketStatusClosed, UpdatedAt: base.Add(time.Hour)},
		{ID: "t-3", CustomerID: "u-1", Status: domain.TicketStatusClosed, UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "t-4", CustomerID: "u-1", Status: domain.TicketStatusOpen, UpdatedAt: base.Add(2 * time.Hour)},
	}
}

func ids(tickets []domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		out = append(out, ticket.ID)
	}
	return out
}

func TestProjectTicketsCustomerScope(t *testing.T) {
	got := ProjectTickets(customer, AllStatuses(), sampleTickets())
	assert.Equal(t, []string{"t-4", "t-3", "t-1"}, ids(got))

	got = ProjectTickets(otherCustomer, AllStatuses(), sampleTickets())
	assert.Equal(t, []string{"t-2"}, ids(got))
}

func TestProjectTicketsAgentSeesAllSortedByRecency(t *testing.T) {
	got := ProjectTickets(agent, AllStatuses(), sampleTickets())
	assert.Equal(t, []string{"t-4", "t-3", "t-2", "t-1"}, ids(got))
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].UpdatedAt.After(got[i-1].UpdatedAt))
	}
}

func TestProjectTicketsStatusFilterAfterScope(t *testing.T) {
	got := ProjectTickets(customer, OnlyStatus(domain.TicketStatusClosed), sampleTickets())
	assert.Equal(t, []string{"t-3"}, ids(got))

	got = ProjectTickets(agent, OnlyStatus(domain.TicketStatusWaitingForUser), sampleTickets())
	assert.Empty(t, got)
}

func TestProjectTicketsDoesNotMutateInput(t *testing.T) {
	in := sampleTickets()
	_ = ProjectTickets(agent, AllStatuses(), in)
	assert.Equal(t, []string{"t-1", "t-2", "t-3", "t-4"}, ids(in))
}

func TestCustomerScope(t *testing.T) {
	assert.Nil(t, CustomerScope(agent))
	require.NotNil(t, CustomerScope(customer))
	assert.Equal(t, "u-1", *CustomerScope(customer))
}

func TestLatestMessageFrom(t *testing.T) {
	ticket := &domain.Ticket{Description: "Getting 429 errors"}

	assert.Equal(t, "help", LatestMessageFrom(ticket, thread(), "a-1"))
	assert.Equal(t, "on it", LatestMessageFrom(ticket, thread(), "u-1"))
	assert.Equal(t, "Getting 429 errors", LatestMessageFrom(ticket, nil, "a-1"))
}
