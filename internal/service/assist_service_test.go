package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/advisory"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/drafting"
	"github.com/spec-kit/support-desk/internal/events"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func newAssist(f *fixture, client advisory.Client, drafter drafting.Drafter) *AssistService {
	var advisor *advisory.Advisor
	if client != nil {
		advisor = advisory.NewAdvisor(client, time.Second, zap.NewNop(), nil)
	}
	return NewAssistService(AssistDependencies{
		Store:      f.store,
		Advisor:    advisor,
		Drafter:    drafter,
		Dispatcher: f.dispatcher,
		Logger:     zap.NewNop(),
	})
}

func TestReanalyzeStoresInsight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "u-1", "Refund please")

	assist := newAssist(f, stubAnalyzer{result: advisory.Analyzed{
		Category: "Billing", Priority: domain.TicketPriorityHigh,
		Summary: "wants refund", Sentiment: "negative", SuggestedSolution: "issue refund",
	}}, nil)

	outcome, err := assist.Reanalyze(ctx, &smith, ticket.ID)
	require.NoError(t, err)
	_, ok := outcome.Result.(advisory.Analyzed)
	require.True(t, ok)
	require.NotNil(t, outcome.Ticket.Insight)
	assert.Equal(t, "wants refund", outcome.Ticket.Insight.Summary)

	stored, err := f.tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Insight)
	assert.Equal(t, "issue refund", stored.Insight.SuggestedSolution)
	assert.Equal(t, "General", stored.Category, "re-analysis only refreshes the insight")
	assert.True(t, stored.UpdatedAt.Equal(ticket.UpdatedAt))
	assert.Contains(t, f.eventTypes(), events.EventTicketAnalyzed)
}

func TestReanalyzeUnavailableLeavesTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "u-1", "Refund please")

	outcome, err := newAssist(f, stubAnalyzer{err: errors.New("down")}, nil).Reanalyze(ctx, &smith, ticket.ID)
	require.NoError(t, err)
	unavailable, ok := outcome.Result.(advisory.Unavailable)
	require.True(t, ok)
	assert.Equal(t, "analysis unavailable", unavailable.Fallback().Summary)

	stored, err := f.tickets.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Insight)

	outcome, err = newAssist(f, nil, nil).Reanalyze(ctx, &smith, ticket.ID)
	require.NoError(t, err)
	_, ok = outcome.Result.(advisory.Unavailable)
	assert.True(t, ok)
}

func TestReanalyzeRequiresAgent(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, "u-1", "Refund please")
	assist := newAssist(f, stubAnalyzer{}, nil)

	_, err := assist.Reanalyze(context.Background(), &alice, ticket.ID)
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = assist.Reanalyze(context.Background(), &smith, "t-404")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestDraftReplyUsesLatestMessageFromOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "u-1", "Export fails")
	f.append(t, ticket.ID, "u-1", "It fails with a CSV error", false)
	f.append(t, ticket.ID, "a-1", "Which browser?", false)

	drafter := &stubDrafter{reply: "Please try Firefox."}
	reply, err := newAssist(f, nil, drafter).DraftReply(ctx, &smith, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, drafting.Reply{Text: "Please try Firefox.", Generated: true}, reply)
	assert.Equal(t, ticket.ID, drafter.conversationID)
	assert.Equal(t, "It fails with a CSV error", drafter.message)

	msgs, err := f.messages.ListMessages(ctx, agentView, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 3, "drafting never writes to the thread")
}

func TestDraftReplyFallsBackToDescription(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, "u-1", "Export fails")
	f.append(t, ticket.ID, "a-1", "Checking", false)

	drafter := &stubDrafter{reply: "ok"}
	_, err := newAssist(f, nil, drafter).DraftReply(context.Background(), &jones, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checking", drafter.message, "other agents' messages count")

	_, err = newAssist(f, nil, drafter).DraftReply(context.Background(), &smith, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Description, drafter.message)
}

func TestDraftReplyGuards(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, "u-1", "Export fails")

	_, err := newAssist(f, nil, &stubDrafter{}).DraftReply(context.Background(), &alice, ticket.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = newAssist(f, nil, &stubDrafter{}).DraftReply(context.Background(), &smith, "t-404")
	requireCode(t, err, apperrors.CodeNotFound)

	reply, err := newAssist(f, nil, nil).DraftReply(context.Background(), &smith, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, drafting.MsgNotConfigured, reply.Text)
	assert.False(t, reply.Generated)
}
