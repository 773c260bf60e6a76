package dto

import (
	"github.com/spec-kit/support-desk/internal/advisory"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/drafting"
)

// AnalysisResponse reports a re-analysis. When Available is false the fields hold the
// fallback values and the ticket was not changed.
type AnalysisResponse struct {
	Available         bool                  `json:"available"`
	Reason            string                `json:"reason,omitempty"`
	Category          string                `json:"category"`
	Priority          domain.TicketPriority `json:"priority"`
	Summary           string                `json:"summary"`
	Sentiment         string                `json:"sentiment"`
	SuggestedSolution string                `json:"suggestedSolution"`
	Ticket            TicketResponse        `json:"ticket"`
}

// NewAnalysisResponse branches on the advisory result.
func NewAnalysisResponse(ticket *domain.Ticket, result advisory.Result) AnalysisResponse {
	var (
		a      advisory.Analyzed
		ok     bool
		reason string
	)
	switch r := result.(type) {
	case advisory.Analyzed:
		a, ok = r, true
	case advisory.Unavailable:
		a, reason = r.Fallback(), r.Reason
	default:
		a = advisory.Unavailable{}.Fallback()
	}
	return AnalysisResponse{
		Available:         ok,
		Reason:            reason,
		Category:          a.Category,
		Priority:          a.Priority,
		Summary:           a.Summary,
		Sentiment:         a.Sentiment,
		SuggestedSolution: a.SuggestedSolution,
		Ticket:            NewTicketResponse(ticket),
	}
}

// DraftReplyResponse carries text for the agent's compose box.
type DraftReplyResponse struct {
	Text      string `json:"text"`
	Generated bool   `json:"generated"`
}

// NewDraftReplyResponse maps a draft.
func NewDraftReplyResponse(r drafting.Reply) DraftReplyResponse {
	return DraftReplyResponse{Text: r.Text, Generated: r.Generated}
}
