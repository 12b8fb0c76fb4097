package views

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/queue"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/ui"
	"github.com/iliyamo/philharmonic-console/internal/validate"
)

// upcomingRequest is the body of POST /api/customer/concerts/upcoming.
type upcomingRequest struct {
	model.PageRequest
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// upcomingConcerts lists the concerts of the coming year as cards.
func (r *Router) upcomingConcerts(ctx context.Context, c *ui.Container) {
	today := r.env.Now()
	req := upcomingRequest{
		PageRequest: model.PageRequest{Page: 0, Size: 20, Sort: "date,asc"},
		StartDate:   today.Format("2006-01-02"),
		EndDate:     today.AddDate(1, 0, 0).Format("2006-01-02"),
	}
	var page model.Page[model.Concert]
	var err error
	r.env.Screen.Suspend(func() {
		page, err = remote.Fetch[model.Page[model.Concert]](ctx, r.env.Client, "/api/customer/concerts/upcoming", remote.Options{
			Method: http.MethodPost,
			Body:   req,
		})
	})
	if !c.Alive() {
		return
	}
	if err != nil {
		failed(c, err)
		return
	}
	if len(page.Content) == 0 {
		c.Set(ui.Placeholder("empty", "No upcoming concerts"))
		return
	}
	cards := make([]*html.Node, 0, len(page.Content))
	for _, concert := range page.Content {
		cards = append(cards, r.concertCard(concert))
	}
	c.Set(ui.El("div", ui.Class("concerts-grid"), cards))

	s := r.env.Screen
	s.On("concert/availability", func(ctx context.Context, ev ui.Event) { r.showAvailability(ctx, c, ev.Arg) })
	s.On("concert/purchase", func(ctx context.Context, ev ui.Event) { r.purchase(ev.Arg) })
}

func (r *Router) concertCard(concert model.Concert) *html.Node {
	card := ui.El("div", ui.Class("concert-card"),
		ui.El("h3", concert.Title),
		ui.El("p", formatDate(concert.Date)+" at "+concert.Time),
		ui.El("p", "Price: "+orDash(formatPrice(concert.TicketPrice.String()))))
	if concert.ID.Empty() {
		if r.env.Logger != nil {
			r.env.Logger.Warnf("views: concert %q has no id, actions suppressed", concert.Title)
		}
		return card
	}
	id := concert.ID.String()
	card.AppendChild(ui.El("div", ui.Class("card-actions"),
		ui.El("button", ui.Type("button"), ui.Class("btn-primary"), ui.Action("concert/availability", id), "Seat availability"),
		ui.El("button", ui.Type("button"), ui.Class("btn"), ui.Action("nav", "concert-"+id), "Book"),
		ui.El("button", ui.Type("button"), ui.Class("btn"), ui.Action("concert/purchase", id), "Purchase")))
	return card
}

// showAvailability opens a modal summarizing the seats of one concert.
func (r *Router) showAvailability(ctx context.Context, c *ui.Container, id string) {
	var page model.Page[model.Ticket]
	var err error
	r.env.Screen.Suspend(func() {
		page, err = remote.Fetch[model.Page[model.Ticket]](ctx, r.env.Client,
			"/api/customer/concerts/"+url.PathEscape(id)+"/availability", remote.Options{
				Method: http.MethodPost,
				Body:   model.PageRequest{Page: 0, Size: 100, Sort: "seatNumber,asc"},
			})
	})
	if err != nil || !c.Alive() {
		return
	}
	counts := map[string]int{}
	seats := ui.El("tbody")
	for _, t := range page.Content {
		counts[t.Status]++
		seats.AppendChild(ui.El("tr", ui.El("td", orDash(t.SeatNumber)), ui.El("td", orDash(t.Status))))
	}
	summary := ui.El("div", ui.Class("availability-summary"))
	for _, st := range []struct{ label, status string }{
		{"Available", model.TicketAvailable},
		{"Reserved", model.TicketReserved},
		{"Sold", model.TicketSold},
	} {
		summary.AppendChild(ui.El("p", ui.El("strong", st.label+":"), " "+strconv.Itoa(counts[st.status])))
	}
	ui.ShowModal(r.env.Screen, "Seat availability", summary,
		ui.El("div", ui.Class("availability-seats"),
			ui.El("table", ui.Class("data-table"),
				ui.El("thead", ui.El("tr", ui.El("th", "Seat"), ui.El("th", "Status"))),
				seats)))
}

func (r *Router) purchase(id string) {
	actor := r.Actor()
	d := &ui.Dialog[model.PurchaseRequest]{
		Scope: "purchase",
		Title: "Purchase ticket",
		Fields: []ui.Field{
			{Name: "seatNumber", Label: "Seat number"},
			{Name: "paymentMethod", Label: "Payment method", Type: "select", Options: paymentOptions()},
		},
		Rules: validate.Rules{
			"seatNumber":    {{Required: true}},
			"paymentMethod": {{Required: true}},
		},
		SubmitLabel: "Purchase",
		Success:     "Ticket purchased",
		Decode: func(v map[string]string) (model.PurchaseRequest, error) {
			return model.PurchaseRequest{
				ConcertID:     model.ID(id),
				SeatNumber:    strings.TrimSpace(v["seatNumber"]),
				PaymentMethod: v["paymentMethod"],
			}, nil
		},
		Submit: func(ctx context.Context, req model.PurchaseRequest) error {
			if _, err := r.env.Client.Call(ctx, "/api/customer/tickets/purchase", remote.Options{Method: http.MethodPost, Body: req}); err != nil {
				return err
			}
			r.Publish(ctx, actor.Stamp(queue.TicketActivityEvent{
				Kind:          queue.ActivityPurchased,
				ConcertID:     id,
				SeatNumber:    req.SeatNumber,
				PaymentMethod: req.PaymentMethod,
			}))
			return nil
		},
		Report: r.env.Client.Report,
	}
	d.Open(r.env.Screen, map[string]string{"paymentMethod": "card"})
}

func (r *Router) myTickets(ctx context.Context, c *ui.Container) {
	var page model.Page[model.Entity]
	var err error
	r.env.Screen.Suspend(func() {
		page, err = remote.Fetch[model.Page[model.Entity]](ctx, r.env.Client, "/api/customer/tickets/mine", remote.Options{
			Method: http.MethodPost,
			Body:   model.PageRequest{Page: 0, Size: 20, Sort: "purchaseTimestamp,desc"},
		})
	})
	if !c.Alive() {
		return
	}
	if err != nil {
		failed(c, err)
		return
	}
	c.Set(ui.El("div", ui.Class("table-container"), ui.El("h2", "My tickets"), ticketList(page.Content)))
}

// Profile shows the signed-in user.  The API has no self-service profile
// update, so the card is read-only.
func (r *Router) Profile(ctx context.Context, c *ui.Container) {
	u := r.user()
	if u == nil {
		c.Set(ui.Placeholder("empty", "No profile loaded"))
		return
	}
	row := func(label, value string) *html.Node {
		return ui.El("div", ui.Class("profile-row"), ui.El("span", ui.Class("profile-label"), label), ui.El("span", orDash(value)))
	}
	c.Set(ui.El("div", ui.Class("form-container profile"),
		ui.El("h2", "My profile"),
		row("Email", u.Email),
		row("Name", u.Name),
		row("Phone", u.Phone),
		row("Role", u.Role.String())))
}
