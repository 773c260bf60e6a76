package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload. UserID defaults to the caller.
type CreateTicketRequest struct {
	UserID      string                 `json:"userId"`
	Subject     string                 `json:"subject"`
	Description string                 `json:"description"`
	Category    *string                `json:"category"`
	Priority    *domain.TicketPriority `json:"priority"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketResponse represents a ticket. AI fields are omitted until an analysis succeeded.
type TicketResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"userId"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	AssignedTo  *string               `json:"assignedTo,omitempty"`
	AISummary   *string               `json:"aiSummary,omitempty"`
	AISentiment *string               `json:"aiSentiment,omitempty"`
	AISolution  *string               `json:"aiSolution,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID,
		UserID:      t.CustomerID,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
		AssignedTo:  t.AssignedAgentID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Insight != nil {
		summary, sentiment, solution := t.Insight.Summary, t.Insight.Sentiment, t.Insight.SuggestedSolution
		resp.AISummary = &summary
		resp.AISentiment = &sentiment
		resp.AISolution = &solution
	}
	return resp
}

// NewTicketList maps tickets, never returning nil.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// TicketHistoryResponse is one status change.
type TicketHistoryResponse struct {
	ID        string              `json:"id"`
	ChangedBy *string             `json:"changedBy,omitempty"`
	OldStatus domain.TicketStatus `json:"oldStatus"`
	NewStatus domain.TicketStatus `json:"newStatus"`
	CreatedAt time.Time           `json:"createdAt"`
}

// NewTicketHistoryList maps history entries.
func NewTicketHistoryList(history []domain.TicketHistory) []TicketHistoryResponse {
	items := make([]TicketHistoryResponse, 0, len(history))
	for _, h := range history {
		items = append(items, TicketHistoryResponse{
			ID:        h.ID,
			ChangedBy: h.ChangedBy,
			OldStatus: h.OldStatus,
			NewStatus: h.NewStatus,
			CreatedAt: h.CreatedAt,
		})
	}
	return items
}
