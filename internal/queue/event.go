// Package queue defines message payloads exchanged over the message broker.
package queue

// Activity kinds.
const (
	ActivityBooked    = "booked"
	ActivityPurchased = "purchased"
	ActivitySold      = "sold"
	ActivityReturned  = "returned"
)

// TicketActivityEvent is published after the console completed a ticket
// operation on behalf of a user.  It carries enough information for
// downstream consumers to log or audit the operation without querying the
// concert API.
type TicketActivityEvent struct {
	EventID       string `json:"event_id"`
	Kind          string `json:"kind"`
	ConcertID     string `json:"concert_id,omitempty"`
	TicketID      string `json:"ticket_id,omitempty"`
	SeatNumber    string `json:"seat_number,omitempty"`
	Quantity      int    `json:"quantity,omitempty"`
	BuyerEmail    string `json:"buyer_email,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Reason        string `json:"reason,omitempty"`
	ActorRole     string `json:"actor_role"`
	ActorName     string `json:"actor_name,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
