package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen           TicketStatus = "OPEN"
	TicketStatusInProgress     TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingForUser TicketStatus = "WAITING_FOR_USER"
	TicketStatusClosed         TicketStatus = "CLOSED"
)

// TicketStatuses lists every status in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusWaitingForUser,
	TicketStatusClosed,
}

// Valid reports whether s is one of the defined statuses.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Valid reports whether p is one of the defined priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

const (
	DefaultCategory = "General"
	DefaultPriority = TicketPriorityMedium
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              string
	CustomerID      string
	Subject         string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	Category        string
	AssignedAgentID *string
	Insight         *TicketInsight
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TicketInsight holds the latest advisory analysis attached to a ticket.
type TicketInsight struct {
	Summary           string
	Sentiment         string
	SuggestedSolution string
}
