package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketMessageAdded  EventType = "ticket_message_added"
	EventTicketAnalyzed      EventType = "ticket_analyzed"
)

// Actor identifies who caused an event. UserID is nil for system actions.
type Actor struct {
	UserID *string      `json:"user_id,omitempty"`
	Role   *domain.Role `json:"role,omitempty"`
}

// ActorOf builds an Actor for a known user.
func ActorOf(user *domain.User) Actor {
	if user == nil {
		return Actor{}
	}
	id, role := user.ID, user.Role
	return Actor{UserID: &id, Role: &role}
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID string                `json:"customer_id"`
	Subject    string                `json:"subject"`
	Category   string                `json:"category"`
	Priority   domain.TicketPriority `json:"priority"`
	Analyzed   bool                  `json:"analyzed"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID      string `json:"message_id"`
	Seq            int64  `json:"seq"`
	SenderID       string `json:"sender_id"`
	IsInternalNote bool   `json:"is_internal_note"`
	BodyPreview    string `json:"body_preview"`
}

// TicketAnalyzedPayload payload.
type TicketAnalyzedPayload struct {
	Available bool   `json:"available"`
	Sentiment string `json:"sentiment,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Preview shortens message content for event payloads.
func Preview(content string) string {
	const limit = 140
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "…"
}
