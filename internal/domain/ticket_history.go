package domain

import "time"

// TicketHistory is an immutable audit entry for a status change.
type TicketHistory struct {
	ID        string
	TicketID  string
	ChangedBy *string
	OldStatus TicketStatus
	NewStatus TicketStatus
	CreatedAt time.Time
}
