package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateMessageRequest payload. SenderID defaults to the caller.
type CreateMessageRequest struct {
	SenderID       string `json:"senderId"`
	Content        string `json:"content"`
	IsInternalNote bool   `json:"isInternalNote"`
}

// MessageResponse represents a thread entry.
type MessageResponse struct {
	ID             string    `json:"id"`
	TicketID       string    `json:"ticketId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	IsInternalNote bool      `json:"isInternalNote"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(m *domain.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		TicketID:       m.TicketID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		IsInternalNote: m.IsInternalNote,
		CreatedAt:      m.CreatedAt,
	}
}

// NewMessageList maps a thread, never returning nil.
func NewMessageList(msgs []domain.Message) []MessageResponse {
	items := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, NewMessageResponse(&msgs[i]))
	}
	return items
}
