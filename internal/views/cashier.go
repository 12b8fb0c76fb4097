package views

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/queue"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/table"
	"github.com/iliyamo/philharmonic-console/internal/ui"
	"github.com/iliyamo/philharmonic-console/internal/validate"
)

// datetime-local input layouts.
var localLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05"}

func paymentOptions() []ui.Option {
	opts := make([]ui.Option, 0, len(model.PaymentMethods))
	for _, m := range model.PaymentMethods {
		opts = append(opts, ui.Option{Value: m, Label: capitalize(m)})
	}
	return opts
}

func (r *Router) sellTicket(ctx context.Context, c *ui.Container) {
	actor := r.Actor()
	d := &ui.Dialog[model.SellRequest]{
		Scope: "sell",
		Title: "Sell ticket",
		Fields: []ui.Field{
			{Name: "concertId", Label: "Concert ID", Type: "number", Min: "1"},
			{Name: "seatNumber", Label: "Seat number", Placeholder: "any free seat"},
			{Name: "buyerEmail", Label: "Buyer email", Type: "email"},
			{Name: "paymentMethod", Label: "Payment method", Type: "select", Options: paymentOptions()},
			{Name: "quantity", Label: "Quantity", Type: "number", Min: "1"},
		},
		Rules: validate.Rules{
			"concertId":     {{Required: true, Number: true, Min: validate.Bound(1)}},
			"buyerEmail":    {{Required: true, Email: true}},
			"paymentMethod": {{Required: true}},
			"quantity":      {{Number: true, Min: validate.Bound(1)}},
		},
		SubmitLabel: "Sell ticket",
		Success:     "Ticket sold",
		Decode:      decodeSell,
		Submit: func(ctx context.Context, req model.SellRequest) error {
			if _, err := r.env.Client.Call(ctx, "/api/tickets/sell", remote.Options{Method: http.MethodPost, Body: req}); err != nil {
				return err
			}
			r.Publish(ctx, actor.Stamp(queue.TicketActivityEvent{
				Kind:          queue.ActivitySold,
				ConcertID:     strconv.FormatInt(req.ConcertID, 10),
				SeatNumber:    req.SeatNumber,
				Quantity:      req.Quantity,
				BuyerEmail:    req.BuyerEmail,
				PaymentMethod: req.PaymentMethod,
			}))
			return nil
		},
		Report: r.env.Client.Report,
	}
	d.Inline(c, map[string]string{"paymentMethod": model.PaymentMethods[0], "quantity": "1"})
}

func decodeSell(v map[string]string) (model.SellRequest, error) {
	concert, err := parseID("Concert ID", v["concertId"])
	if err != nil {
		return model.SellRequest{}, err
	}
	qty := 1
	if s := strings.TrimSpace(v["quantity"]); s != "" {
		if qty, err = strconv.Atoi(s); err != nil || qty < 1 {
			return model.SellRequest{}, errors.New("Quantity must be a positive whole number")
		}
	}
	method := v["paymentMethod"]
	known := false
	for _, m := range model.PaymentMethods {
		known = known || m == method
	}
	if !known {
		return model.SellRequest{}, errors.New("Unknown payment method")
	}
	return model.SellRequest{
		ConcertID:     concert,
		SeatNumber:    strings.TrimSpace(v["seatNumber"]),
		BuyerEmail:    strings.TrimSpace(v["buyerEmail"]),
		PaymentMethod: method,
		Quantity:      qty,
	}, nil
}

// cashierTickets is the ticket table with the return action.  Cashiers
// neither create, edit nor delete tickets.
func (r *Router) cashierTickets(ctx context.Context, c *ui.Container) {
	cfg := table.Spec{
		TitleText:  "Tickets",
		Path:       "/api/tickets/search",
		Cols:       ticketColumns(),
		Search:     []string{"concertId", "buyerId", "status"},
		Privileged: model.RoleCashier,
		EntityKind: model.KindTicket,
	}
	t := r.newTable(cfg, table.Options{
		Returning: func(id, reason string) func(context.Context) {
			ev := r.Actor().Stamp(queue.TicketActivityEvent{Kind: queue.ActivityReturned, TicketID: id, Reason: reason})
			return func(ctx context.Context) { r.Publish(ctx, ev) }
		},
	})
	t.Render(ctx, c)
}

func (r *Router) salesHistory(ctx context.Context, c *ui.Container) {
	c.Set(ui.El("div", ui.Class("table-container"),
		ui.El("h2", "Sales history"),
		ui.El("div", ui.Class("filters"), ui.At("data-form", ""),
			ui.El("input", ui.Type("datetime-local"), ui.Name("from"), ui.At("placeholder", "From")),
			ui.El("input", ui.Type("datetime-local"), ui.Name("to"), ui.At("placeholder", "To")),
			ui.El("button", ui.Type("button"), ui.Class("btn-primary"), ui.Action("sales/search", ""), "Search")),
		ui.El("div", ui.ID("sales-results"))))
	r.env.Screen.On("sales/search", func(ctx context.Context, ev ui.Event) {
		r.searchSales(ctx, c, ev.Values["from"], ev.Values["to"])
	})
}

// searchSales queries the sales of the period [from, to].  Both bounds are
// datetime-local values interpreted in the console's zone and sent as UTC.
func (r *Router) searchSales(ctx context.Context, c *ui.Container, from, to string) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		r.notify(notify.Error, "Select a period")
		return
	}
	loc := r.env.Now().Location()
	start, err1 := parseLocal(from, loc)
	end, err2 := parseLocal(to, loc)
	if err1 != nil || err2 != nil {
		r.notify(notify.Error, "Select a period")
		return
	}
	req := model.SalesHistoryRequest{
		From: start.UTC().Format(time.RFC3339),
		To:   end.UTC().Format(time.RFC3339),
		Page: 0,
		Size: 50,
		Sort: "purchaseTimestamp,desc",
	}
	var page model.Page[model.Entity]
	var err error
	r.env.Screen.Suspend(func() {
		page, err = remote.Fetch[model.Page[model.Entity]](ctx, r.env.Client, "/api/tickets/sales", remote.Options{
			Method: http.MethodPost,
			Body:   req,
		})
	})
	if err != nil {
		return
	}
	if results := c.Child("sales-results"); results != nil {
		results.Set(ticketList(page.Content))
	}
}

func parseLocal(v string, loc *time.Location) (time.Time, error) {
	var err error
	for _, layout := range localLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func (r *Router) notify(level notify.Level, msg string) {
	if r.env.Notifier != nil {
		r.env.Notifier.Notify(level, msg)
	}
}
