package shell

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/queue"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/ui"
)

// booking is the state of one concert detail page.  available is whatever
// the last availability fetch said; it is never adjusted locally.
type booking struct {
	id        string
	capacity  int
	hasCap    bool
	available int
	box       *ui.Container
}

// limit is the largest quantity that may be requested.
func (b *booking) limit() int {
	if b.hasCap && b.capacity < b.available {
		return b.capacity
	}
	return b.available
}

func (sh *Shell) concertPage(ctx context.Context, c *ui.Container, id string) {
	c = c.Claim()
	c.Set(ui.Placeholder("loading", "Loading..."))
	var concert model.Concert
	var err error
	sh.screen.Suspend(func() {
		concert, err = remote.Fetch[model.Concert](ctx, sh.api, "/api/concerts/public/"+url.PathEscape(id), remote.Options{Method: http.MethodGet})
	})
	if !c.Alive() {
		return
	}
	if err != nil {
		c.Set(ui.El("div", ui.Class("error"), "Error: "+err.Error()))
		return
	}

	b := &booking{id: id, box: c}
	b.capacity, b.hasCap = concert.Capacity()
	price := concert.TicketPrice.String()
	if price != "" {
		price += " ₽"
	}
	c.Set(ui.El("div", ui.Class("concert-detail"),
		ui.El("h1", concert.Title),
		infoRow("Date", concert.Date),
		infoRow("Time", concert.Time),
		infoRow("Price", price),
		ui.El("div", ui.ID("availability"), ui.Class("availability")),
		ui.El("div", ui.ID("booking"), ui.Class("booking"))))
	sh.screen.On("booking/submit", func(ctx context.Context, ev ui.Event) { sh.book(ctx, b, ev.Values["quantity"]) })
	sh.refreshAvailability(ctx, b)
}

// refreshAvailability fetches the remaining tickets and redraws the count
// and the booking form.
func (sh *Shell) refreshAvailability(ctx context.Context, b *booking) {
	var av model.Availability
	var err error
	sh.screen.Suspend(func() {
		av, err = remote.Fetch[model.Availability](ctx, sh.api,
			"/api/concerts/public/"+url.PathEscape(b.id)+"/available-tickets", remote.Options{Method: http.MethodGet})
	})
	if !b.box.Alive() {
		return
	}
	count, form := b.box.Child("availability"), b.box.Child("booking")
	if count == nil || form == nil {
		return
	}
	if err != nil {
		count.Set(ui.El("p", ui.Class("error"), "Availability unknown"))
		form.Set()
		return
	}
	b.available = av.AvailableTickets
	count.Set(ui.El("p", ui.El("strong", "Available tickets:"), " "+strconv.Itoa(b.available)))
	form.Set(sh.bookingForm(b))
}

func (sh *Shell) bookingForm(b *booking) *html.Node {
	if !sh.session.role.Authenticated() {
		return ui.El("div", ui.Class("login-prompt"),
			ui.El("p", "Sign in to book tickets"),
			ui.El("button", ui.Type("button"), ui.Class("btn-primary"), ui.Action("nav", ViewLogin), "Sign in"))
	}
	if b.limit() < 1 {
		return ui.El("p", ui.Class("sold-out"), "No tickets left")
	}
	return ui.El("div", ui.Class("booking-form"), ui.At("data-form", ""),
		ui.El("label", ui.At("for", "booking-quantity"), "Quantity"),
		ui.El("input", ui.ID("booking-quantity"), ui.Name("quantity"), ui.Type("number"),
			ui.At("min", "1"), ui.At("max", strconv.Itoa(b.limit())), ui.Value("1")),
		ui.El("button", ui.Type("button"), ui.Class("btn-primary"), ui.Action("booking/submit", ""), "Book"))
}

// book reserves quantity tickets.  Out-of-range quantities are rejected
// before any request; after the request the availability is fetched again
// whatever the outcome.
func (sh *Shell) book(ctx context.Context, b *booking, raw string) {
	if !sh.session.role.Authenticated() {
		sh.notes.Notify(notify.Error, "Sign in to book tickets")
		return
	}
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil || qty < 1:
		sh.notes.Notify(notify.Error, "Quantity must be at least 1")
		return
	case qty > b.limit():
		sh.notes.Notify(notify.Error, fmt.Sprintf("Only %d tickets can be booked", b.limit()))
		return
	}

	ev := sh.router.Actor().Stamp(queue.TicketActivityEvent{Kind: queue.ActivityBooked, ConcertID: b.id, Quantity: qty})
	var callErr error
	sh.screen.Suspend(func() {
		_, callErr = sh.api.Call(ctx, "/api/customer/tickets/book", remote.Options{
			Method: http.MethodPost,
			Body:   model.BookRequest{ConcertID: model.ID(b.id), Quantity: qty, Minutes: model.DefaultBookingMinutes},
		})
		if callErr == nil {
			sh.router.Publish(ctx, ev)
		}
	})
	if callErr == nil && b.box.Alive() {
		sh.notes.Notify(notify.Success, "Tickets booked")
	}
	sh.refreshAvailability(ctx, b)
}
