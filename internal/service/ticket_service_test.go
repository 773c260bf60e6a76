package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/advisory"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/policy"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func TestCreateTicketSeedsThreadWithDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket, err := f.tickets.CreateTicket(ctx, TicketCreateInput{
		CustomerID:  "u-1",
		Subject:     "API limit exceeded",
		Description: "Getting 429 errors",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "General", ticket.Category)
	assert.Equal(t, "u-1", ticket.CustomerID)
	assert.Nil(t, ticket.Insight)
	assert.True(t, ticket.CreatedAt.Equal(start))
	assert.True(t, ticket.UpdatedAt.Equal(ticket.CreatedAt))

	msgs, err := f.messages.ListMessages(ctx, agentView, ticket.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Getting 429 errors", msgs[0].Content)
	assert.Equal(t, "u-1", msgs[0].SenderID)
	assert.False(t, msgs[0].IsInternalNote)
	assert.Equal(t, int64(1), msgs[0].Seq)

	stored, err := f.tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Subject, stored.Subject)
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.eventTypes())
}

func TestCreateTicketKeepsSuppliedCategoryAndPriority(t *testing.T) {
	f := newFixture(t)
	category := "Billing"
	priority := domain.TicketPriorityCritical

	ticket, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{
		CustomerID:  "u-1",
		Subject:     "Charged twice",
		Description: "My card was charged twice",
		Category:    &category,
		Priority:    &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, "Billing", ticket.Category)
	assert.Equal(t, domain.TicketPriorityCritical, ticket.Priority)
}

func TestCreateTicketRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	bogus := domain.TicketPriority("URGENT")

	cases := map[string]TicketCreateInput{
		"empty subject":     {CustomerID: "u-1", Subject: "  ", Description: "d"},
		"empty description": {CustomerID: "u-1", Subject: "s", Description: "\n\t"},
		"unknown priority":  {CustomerID: "u-1", Subject: "s", Description: "d", Priority: &bogus},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.tickets.CreateTicket(context.Background(), input)
			requireCode(t, err, apperrors.CodeInvalidInput)
		})
	}

	_, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{CustomerID: "ghost", Subject: "s", Description: "d"})
	requireCode(t, err, apperrors.CodeNotFound)

	all, err := f.queries.ListTickets(context.Background(), agentView, policy.AllStatuses())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.eventTypes())
}

func TestCreateTicketIsAtomic(t *testing.T) {
	store := openStore(t)
	f := newFixtureWithStore(t, failingStore{Store: store, err: errDiskFull})

	_, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{CustomerID: "u-1", Subject: "s", Description: "d"})
	requireCode(t, err, apperrors.CodeStorageFailure)
	assert.True(t, errors.Is(err, errDiskFull))

	all, err := f.queries.ListTickets(context.Background(), agentView, policy.AllStatuses())
	require.NoError(t, err)
	assert.Empty(t, all, "no ticket may survive a failed seed message")
	assert.Empty(t, f.eventTypes())
}

func TestCreateTicketUsesAnalysis(t *testing.T) {
	analysis := advisory.Analyzed{
		Category:          "Authentication",
		Priority:          domain.TicketPriorityHigh,
		Summary:           "cannot log in",
		Sentiment:         "negative",
		SuggestedSolution: "reset password",
	}
	f := newFixture(t, withAdvisor(stubAnalyzer{result: analysis}, time.Second))

	ticket := f.createTicket(t, "u-1", "Login broken")
	assert.Equal(t, "Authentication", ticket.Category)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	require.NotNil(t, ticket.Insight)
	assert.Equal(t, "cannot log in", ticket.Insight.Summary)
	assert.Equal(t, "negative", ticket.Insight.Sentiment)
	assert.Equal(t, "reset password", ticket.Insight.SuggestedSolution)

	stored, err := f.tickets.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Insight)
	assert.Equal(t, "cannot log in", stored.Insight.Summary)

	category := "Access"
	supplied, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{
		CustomerID: "u-1", Subject: "s", Description: "d", Category: &category,
	})
	require.NoError(t, err)
	assert.Equal(t, "Access", supplied.Category)
	assert.Equal(t, domain.TicketPriorityHigh, supplied.Priority)
}

func TestCreateTicketSurvivesAdvisorTimeout(t *testing.T) {
	slow := stubAnalyzer{result: advisory.Analyzed{Category: "Late", Priority: domain.TicketPriorityLow}, delay: time.Second}
	f := newFixture(t, withAdvisor(slow, 20*time.Millisecond))

	began := time.Now()
	ticket, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{
		CustomerID:  "u-1",
		Subject:     "API limit exceeded",
		Description: "Getting 429 errors",
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(began), 500*time.Millisecond)
	assert.Equal(t, "General", ticket.Category)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Nil(t, ticket.Insight)
}

func TestCreateTicketSurvivesAdvisorFailure(t *testing.T) {
	f := newFixture(t, withAdvisor(stubAnalyzer{err: errors.New("quota")}, time.Second))

	ticket := f.createTicket(t, "u-1", "Printer on fire")
	assert.Equal(t, "General", ticket.Category)
	assert.Nil(t, ticket.Insight)
}

func TestChangeStatusReachesEveryStatusFromEveryStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "u-1", "Transitions")

	for _, from := range domain.TicketStatuses {
		for _, to := range domain.TicketStatuses {
			f.clock.Advance(time.Second)
			_, err := f.tickets.ChangeStatus(ctx, ticket.ID, from, &smith)
			require.NoError(t, err)

			updated, err := f.tickets.ChangeStatus(ctx, ticket.ID, to, &smith)
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, to, updated.Status)

			got, err := f.tickets.GetTicket(ctx, ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, to, got.Status, "%s -> %s", from, to)
			assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
		}
	}
}

func TestChangeStatusReopensClosedTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "u-1", "Reopen me")

	_, err := f.tickets.ChangeStatus(ctx, ticket.ID, domain.TicketStatusClosed, &smith)
	require.NoError(t, err)
	reopened, err := f.tickets.ChangeStatus(ctx, ticket.ID, domain.TicketStatusOpen, &smith)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, reopened.Status)
}

func TestChangeStatusRefreshesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "u-1", "Refresh")

	f.clock.Advance(time.Minute)
	updated, err := f.tickets.ChangeStatus(ctx, ticket.ID, domain.TicketStatusInProgress, nil)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.Equal(start.Add(time.Minute)))
	assert.True(t, updated.CreatedAt.Equal(ticket.CreatedAt))

	// A clock that runs backwards cannot pull updatedAt back.
	f.clock.Set(start.Add(-time.Hour))
	updated, err = f.tickets.ChangeStatus(ctx, ticket.ID, domain.TicketStatusWaitingForUser, nil)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.Equal(start.Add(time.Minute)))
}

func TestChangeStatusErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "u-1", "Errors")

	_, err := f.tickets.ChangeStatus(ctx, ticket.ID, domain.TicketStatus("RESOLVED"), &smith)
	requireCode(t, err, apperrors.CodeInvalidInput)

	_, err = f.tickets.ChangeStatus(ctx, "t-404", domain.TicketStatusClosed, &smith)
	requireCode(t, err, apperrors.CodeNotFound)

	got, err := f.tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, got.Status)
}

func TestChangeStatusRecordsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "u-1", "History")

	f.clock.Advance(time.Second)
	_, err := f.tickets.ChangeStatus(ctx, ticket.ID, domain.TicketStatusInProgress, &smith)
	require.NoError(t, err)
	_, err = f.tickets.ChangeStatus(ctx, ticket.ID, domain.TicketStatusInProgress, &smith)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.tickets.ChangeStatus(ctx, ticket.ID, domain.TicketStatusClosed, nil)
	require.NoError(t, err)

	history, err := f.tickets.ListHistory(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.TicketStatusOpen, history[0].OldStatus)
	assert.Equal(t, domain.TicketStatusInProgress, history[0].NewStatus)
	require.NotNil(t, history[0].ChangedBy)
	assert.Equal(t, "a-1", *history[0].ChangedBy)
	assert.Equal(t, domain.TicketStatusClosed, history[1].NewStatus)
	assert.Nil(t, history[1].ChangedBy)

	_, err = f.tickets.ListHistory(ctx, "t-404")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestGetTicketFor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "u-1", "Mine")

	_, err := f.tickets.GetTicketFor(ctx, aliceView, ticket.ID)
	assert.NoError(t, err)
	_, err = f.tickets.GetTicketFor(ctx, agentView, ticket.ID)
	assert.NoError(t, err)
	_, err = f.tickets.GetTicketFor(ctx, bobView, ticket.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = f.tickets.GetTicket(ctx, "t-404")
	requireCode(t, err, apperrors.CodeNotFound)
}
