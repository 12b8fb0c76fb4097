package model

import "encoding/json"

// Concert represents a scheduled performance in a hall.  Date is an ISO
// calendar date (2025-03-01) and Time a wall clock time (19:30), both kept
// in the textual form the API uses.
//
// Fields:
//
//	ID           – concert id.
//	Title        – concert title.
//	Date         – ISO date of the concert.
//	Time         – start time, HH:MM.
//	TicketPrice  – price of one ticket.
//	HallID       – hall the concert takes place in.
//	PerformerID  – headline performer.
//	HallCapacity – seats of the hall when the payload embeds it (nil otherwise).
type Concert struct {
	ID           ID          `json:"id"`                     // concerts.id
	Title        string      `json:"title"`                  // concerts.title
	Date         string      `json:"date"`                   // concerts.date
	Time         string      `json:"time"`                   // concerts.time
	TicketPrice  json.Number `json:"ticketPrice,omitempty"`  // concerts.ticket_price
	HallID       ID          `json:"hallId,omitempty"`       // concerts.hall_id
	PerformerID  ID          `json:"performerId,omitempty"`  // concerts.performer_id
	HallCapacity *int        `json:"hallCapacity,omitempty"` // halls.capacity (joined)
	Hall         *Hall       `json:"hall,omitempty"`         // nested hall, when expanded
}

// Capacity returns the hall capacity carried by the payload, looking at the
// flattened field first and the nested hall second.
func (c Concert) Capacity() (int, bool) {
	if c.HallCapacity != nil {
		return *c.HallCapacity, true
	}
	if c.Hall != nil && c.Hall.Capacity > 0 {
		return c.Hall.Capacity, true
	}
	return 0, false
}

// ConcertRequest is the body of POST /api/concerts and PUT
// /api/concerts/{id}.
type ConcertRequest struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	HallID      int64   `json:"hallId"`
	PerformerID int64   `json:"performerId"`
	TicketPrice float64 `json:"ticketPrice"`
}

// Availability is the answer of GET /api/concerts/public/{id}/available-tickets.
type Availability struct {
	ConcertID        ID  `json:"concertId,omitempty"`
	AvailableTickets int `json:"availableTickets"`
}

// UnmarshalJSON accepts either the object form or a bare count.
func (a *Availability) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*a = Availability{AvailableTickets: n}
		return nil
	}
	type plain Availability
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*a = Availability(p)
	return nil
}
