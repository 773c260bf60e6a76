package domain

import "time"

// Message is one immutable entry in a ticket thread.
type Message struct {
	ID             string
	TicketID       string
	Seq            int64
	SenderID       string
	Content        string
	IsInternalNote bool
	CreatedAt      time.Time
}
