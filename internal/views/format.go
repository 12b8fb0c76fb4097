package views

import (
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/ui"
)

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// formatDate shows an ISO date as dd.mm.yyyy.  Anything else is returned
// unchanged.
func formatDate(v string) string {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(v))
	if err != nil {
		return v
	}
	return d.Format("02.01.2006")
}

func formatPrice(v string) string {
	if v == "" {
		return ""
	}
	return v + " ₽"
}

// formatTimestamp shows a server timestamp as dd.mm.yyyy, hh:mm:ss in the
// zone it was sent in.
func formatTimestamp(v string) string {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts.Format("02.01.2006, 15:04:05")
		}
	}
	return v
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// ticketList is the static read-only ticket table of my tickets and the
// sales history.
func ticketList(tickets []model.Entity) *html.Node {
	if len(tickets) == 0 {
		return ui.El("p", ui.Class("empty"), "No tickets found")
	}
	head := ui.El("tr")
	for _, label := range []string{"ID", "Concert", "Seat", "Status", "Buyer", "Purchased"} {
		head.AppendChild(ui.El("th", label))
	}
	body := ui.El("tbody")
	for _, t := range tickets {
		body.AppendChild(ui.El("tr",
			ui.El("td", orDash(t.Text("id"))),
			ui.El("td", orDash(t.Text("concertId"))),
			ui.El("td", orDash(t.Text("seatNumber"))),
			ui.El("td", orDash(t.Text("status"))),
			ui.El("td", orDash(t.Text("buyerId"))),
			ui.El("td", orDash(formatTimestamp(t.Text("purchaseTimestamp")))),
		))
	}
	return ui.El("table", ui.Class("data-table"), ui.El("thead", head), body)
}
