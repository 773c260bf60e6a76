package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/advisory"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/drafting"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/policy"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// AssistService offers agents on-demand analysis and draft replies. Neither changes
// status, thread or updatedAt.
type AssistService struct {
	store   repository.Store
	advisor *advisory.Advisor
	drafter drafting.Drafter
	events  publisher
}

// AssistDependencies bundles collaborators for the assist service.
type AssistDependencies struct {
	Store      repository.Store
	Advisor    *advisory.Advisor
	Drafter    drafting.Drafter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// AnalysisOutcome is the ticket after re-analysis together with what the advisor said.
type AnalysisOutcome struct {
	Ticket *domain.Ticket
	Result advisory.Result
}

// NewAssistService constructs the service.
func NewAssistService(deps AssistDependencies) *AssistService {
	return &AssistService{
		store:   deps.Store,
		advisor: deps.Advisor,
		drafter: deps.Drafter,
		events:  publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

func requireAgent(actor *domain.User) error {
	if !actor.IsAgent() {
		return apperrors.NewForbidden("agent role required")
	}
	return nil
}

// Reanalyze asks the advisor about a ticket again. An Analyzed result overwrites the stored
// insight; Unavailable leaves the ticket as it was.
func (s *AssistService) Reanalyze(ctx context.Context, actor *domain.User, ticketID string) (*AnalysisOutcome, error) {
	if err := requireAgent(actor); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}

	var result advisory.Result = advisory.Unavailable{Reason: "advisory service not configured"}
	if s.advisor != nil {
		result = s.advisor.Analyze(ctx, ticket.Subject, ticket.Description)
	}

	payload := events.TicketAnalyzedPayload{}
	switch r := result.(type) {
	case advisory.Analyzed:
		insight := r.Insight()
		if err := repos.Tickets.UpdateInsight(ctx, ticket.ID, insight); err != nil {
			return nil, storeError(err, "ticket", ticketID)
		}
		ticket.Insight = &insight
		payload.Available = true
		payload.Sentiment = r.Sentiment
	case advisory.Unavailable:
		payload.Reason = r.Reason
	}

	s.events.publish(ctx, events.Event{
		Type:     events.EventTicketAnalyzed,
		TicketID: ticket.ID,
		Actor:    events.ActorOf(actor),
		Payload:  payload,
	})
	return &AnalysisOutcome{Ticket: ticket, Result: result}, nil
}

// DraftReply proposes an answer to the newest message not written by the agent, or to the
// ticket description when there is none. Failures come back as readable text.
func (s *AssistService) DraftReply(ctx context.Context, actor *domain.User, ticketID string) (drafting.Reply, error) {
	if err := requireAgent(actor); err != nil {
		return drafting.Reply{}, err
	}
	repos := s.store.Repos()
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return drafting.Reply{}, storeError(err, "ticket", ticketID)
	}
	msgs, err := repos.Messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return drafting.Reply{}, storeError(err, "ticket", ticketID)
	}

	if s.drafter == nil {
		return drafting.Reply{Text: drafting.MsgNotConfigured}, nil
	}
	prompt := policy.LatestMessageFrom(ticket, policy.VisibleMessages(policy.ViewerOf(actor), msgs), actor.ID)
	return s.drafter.Draft(ctx, ticket.ID, prompt), nil
}
