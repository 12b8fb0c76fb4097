package model

// Ticket statuses as reported by the API.
const (
	TicketAvailable = "AVAILABLE"
	TicketReserved  = "RESERVED"
	TicketSold      = "SOLD"
	TicketReturned  = "RETURNED"
)

// TicketStatuses is the fixed option list of the ticket status filter.
var TicketStatuses = []string{TicketAvailable, TicketReserved, TicketSold, TicketReturned}

// Ticket is one seat for one concert.
//
// Fields:
//
//	ID                    – ticket id.
//	ConcertID             – concert the ticket belongs to.
//	ConcertName           – denormalized concert title.
//	BuyerID               – buyer user id (UUID), empty when unsold.
//	BuyerEmail            – buyer email, empty when unsold.
//	SeatNumber            – seat label.
//	PurchaseTimestamp     – ISO timestamp of the sale or booking.
//	Status                – AVAILABLE, RESERVED, SOLD or RETURNED.
//	ReservationExpiration – when a RESERVED ticket lapses.
//	PaymentMethod         – cash or card.
//	ReturnReason          – reason given by the cashier on return.
type Ticket struct {
	ID                    ID     `json:"id"`                              // tickets.id
	ConcertID             ID     `json:"concertId"`                       // tickets.concert_id
	ConcertName           string `json:"concertName,omitempty"`           // concerts.title
	BuyerID               ID     `json:"buyerId,omitempty"`               // tickets.buyer_id
	BuyerEmail            string `json:"buyerEmail,omitempty"`            // users.email
	SeatNumber            string `json:"seatNumber"`                      // tickets.seat_number
	PurchaseTimestamp     string `json:"purchaseTimestamp,omitempty"`     // tickets.purchase_timestamp
	Status                string `json:"status"`                          // tickets.status
	ReservationExpiration string `json:"reservationExpiration,omitempty"` // tickets.reservation_expiration
	PaymentMethod         string `json:"paymentMethod,omitempty"`         // tickets.payment_method
	ReturnReason          string `json:"returnReason,omitempty"`          // tickets.return_reason
}

// SellRequest is the body of POST /api/tickets/sell.
type SellRequest struct {
	ConcertID     int64  `json:"concertId"`
	SeatNumber    string `json:"seatNumber,omitempty"`
	BuyerEmail    string `json:"buyerEmail"`
	PaymentMethod string `json:"paymentMethod"`
	Quantity      int    `json:"quantity"`
}

// BookRequest is the body of POST /api/customer/tickets/book.  Minutes is
// how long the reservation is held.
type BookRequest struct {
	ConcertID  ID     `json:"concertId"`
	SeatNumber string `json:"seatNumber,omitempty"`
	Quantity   int    `json:"quantity"`
	Minutes    int    `json:"minutes"`
}

// PurchaseRequest is the body of POST /api/customer/tickets/purchase.
type PurchaseRequest struct {
	ConcertID     ID     `json:"concertId"`
	SeatNumber    string `json:"seatNumber"`
	PaymentMethod string `json:"paymentMethod"`
}

// ReturnRequest is the body of POST /api/tickets/{id}/return.
type ReturnRequest struct {
	Reason string `json:"reason"`
}

// SalesHistoryRequest is the body of POST /api/tickets/sales.  From and To
// are RFC 3339 timestamps.
type SalesHistoryRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Page int    `json:"page"`
	Size int    `json:"size"`
	Sort string `json:"sort"`
}

// DefaultBookingMinutes is how long a customer booking is held.
const DefaultBookingMinutes = 30

// Payment methods accepted by the sell and purchase endpoints.
var PaymentMethods = []string{"cash", "card"}
