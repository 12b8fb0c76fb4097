package views

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/table"
	"github.com/iliyamo/philharmonic-console/internal/ui"
	"github.com/iliyamo/philharmonic-console/internal/validate"
)

// entityForm describes the create/edit dialog of one admin entity.  T is
// the request body sent to the API.
type entityForm[T any] struct {
	noun   string
	scope  string
	path   string
	fields func(edit bool) []ui.Field
	rules  func(edit bool) validate.Rules
	decode func(edit bool, v map[string]string) (T, error)
}

// adminScreen is a TableConfig with full CRUD for the administrator.
type adminScreen[T any] struct {
	table.Spec
	r    *Router
	form entityForm[T]
}

func (a *adminScreen[T]) Create(ctx context.Context, t *table.Table) {
	a.open(t, "", nil)
}

func (a *adminScreen[T]) Edit(ctx context.Context, t *table.Table, item model.Entity) {
	id, ok := item.ResolveID(a.Kind())
	if !ok {
		a.r.env.Client.Report(errors.New("Record id is missing"))
		return
	}
	a.open(t, id, item)
}

func (a *adminScreen[T]) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, a.r.env.Client, a.form.path, id)
}

func (a *adminScreen[T]) open(t *table.Table, id string, item model.Entity) {
	edit := id != ""
	title := "Create " + a.form.noun
	if edit {
		title = "Edit " + a.form.noun
	}
	fields := a.form.fields(edit)
	d := &ui.Dialog[T]{
		Scope:       a.form.scope,
		Title:       title,
		Fields:      fields,
		Rules:       a.form.rules(edit),
		SubmitLabel: "Save",
		Success:     capitalize(a.form.noun) + " saved",
		Decode:      func(v map[string]string) (T, error) { return a.form.decode(edit, v) },
		Submit: func(ctx context.Context, body T) error {
			method, endpoint := http.MethodPost, a.form.path
			if edit {
				method, endpoint = http.MethodPut, a.form.path+"/"+url.PathEscape(id)
			}
			_, err := a.r.env.Client.Call(ctx, endpoint, remote.Options{Method: method, Body: body})
			return err
		},
		Done:   func(ctx context.Context) { t.Reload(ctx) },
		Report: a.r.env.Client.Report,
	}
	d.Open(t.Screen(), prefill(fields, item))
}

// ticketAdmin only deletes; tickets are created by selling and changed by
// returning them.
type ticketAdmin struct {
	table.Spec
	client remote.Caller
}

func (a ticketAdmin) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, a.client, "/api/tickets", id)
}

func deleteByID(ctx context.Context, c remote.Caller, path, id string) error {
	_, err := c.Call(ctx, path+"/"+url.PathEscape(id), remote.Options{Method: http.MethodDelete})
	return err
}

// prefill maps an entity onto form values.  Times are cut to HH:MM so a
// server value such as 19:30:00 passes the time rule.
func prefill(fields []ui.Field, item model.Entity) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		v := item.Text(f.Name)
		if f.Type == "time" && len(v) > 5 {
			v = v[:5]
		}
		out[f.Name] = v
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseID(field, v string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 1 {
		return 0, errors.New(field + " must be a positive whole number")
	}
	return n, nil
}

var (
	concertForm = entityForm[model.ConcertRequest]{
		noun:  "concert",
		scope: "concert-form",
		path:  "/api/concerts",
		fields: func(bool) []ui.Field {
			return []ui.Field{
				{Name: "title", Label: "Title"},
				{Name: "date", Label: "Date", Type: "date"},
				{Name: "time", Label: "Time", Type: "time"},
				{Name: "hallId", Label: "Hall ID", Type: "number", Min: "1"},
				{Name: "performerId", Label: "Performer ID", Type: "number", Min: "1"},
				{Name: "ticketPrice", Label: "Ticket price", Type: "number", Step: "0.01", Min: "0"},
			}
		},
		rules: func(bool) validate.Rules {
			return validate.Rules{
				"title":       {{Required: true}},
				"date":        {{Required: true, Date: true}},
				"time":        {{Required: true, Time: true}},
				"hallId":      {{Required: true, Number: true, Min: validate.Bound(1)}},
				"performerId": {{Required: true, Number: true, Min: validate.Bound(1)}},
				"ticketPrice": {{Required: true, Number: true, Min: validate.Bound(0)}},
			}
		},
		decode: func(_ bool, v map[string]string) (model.ConcertRequest, error) {
			hall, err := parseID("Hall ID", v["hallId"])
			if err != nil {
				return model.ConcertRequest{}, err
			}
			performer, err := parseID("Performer ID", v["performerId"])
			if err != nil {
				return model.ConcertRequest{}, err
			}
			price, err := strconv.ParseFloat(strings.TrimSpace(v["ticketPrice"]), 64)
			if err != nil {
				return model.ConcertRequest{}, errors.New("Ticket price must be a number")
			}
			return model.ConcertRequest{
				Title:       strings.TrimSpace(v["title"]),
				Date:        v["date"],
				Time:        v["time"],
				HallID:      hall,
				PerformerID: performer,
				TicketPrice: price,
			}, nil
		},
	}

	userForm = entityForm[model.UserRequest]{
		noun:  "user",
		scope: "user-form",
		path:  "/api/users",
		fields: func(edit bool) []ui.Field {
			roles := make([]ui.Option, 0, len(model.Roles))
			for _, r := range model.Roles {
				roles = append(roles, ui.Option{Value: r.String(), Label: r.String()})
			}
			fs := []ui.Field{
				{Name: "email", Label: "Email", Type: "email", ReadOnly: edit},
				{Name: "name", Label: "Name"},
				{Name: "phone", Label: "Phone"},
				{Name: "role", Label: "Role", Type: "select", Options: roles},
			}
			if !edit {
				fs = append(fs, ui.Field{Name: "password", Label: "Password", Type: "password"})
			}
			return fs
		},
		rules: func(edit bool) validate.Rules {
			rs := validate.Rules{
				"email": {{Required: true, Email: true}},
				"name":  {{Required: true, MinLength: 2}},
				"phone": {{Phone: true}},
				"role":  {{Required: true}},
			}
			if !edit {
				rs["password"] = []validate.Rule{{Required: true, MinLength: 6}}
			}
			return rs
		},
		decode: func(edit bool, v map[string]string) (model.UserRequest, error) {
			if model.ParseRole(v["role"]) == model.RoleNone {
				return model.UserRequest{}, errors.New("Unknown role")
			}
			req := model.UserRequest{
				Email: strings.TrimSpace(v["email"]),
				Name:  strings.TrimSpace(v["name"]),
				Phone: strings.TrimSpace(v["phone"]),
				Role:  model.ParseRole(v["role"]).String(),
			}
			if !edit {
				req.Password = v["password"]
			}
			return req, nil
		},
	}

	hallForm = entityForm[model.HallRequest]{
		noun:  "hall",
		scope: "hall-form",
		path:  "/api/halls",
		fields: func(bool) []ui.Field {
			return []ui.Field{
				{Name: "name", Label: "Name"},
				{Name: "capacity", Label: "Capacity", Type: "number", Min: "1"},
				{Name: "location", Label: "Location"},
			}
		},
		rules: func(bool) validate.Rules {
			return validate.Rules{
				"name":     {{Required: true, MinLength: 2}},
				"capacity": {{Required: true, Number: true, Min: validate.Bound(1)}},
			}
		},
		decode: func(_ bool, v map[string]string) (model.HallRequest, error) {
			n, err := strconv.Atoi(strings.TrimSpace(v["capacity"]))
			if err != nil || n < 1 {
				return model.HallRequest{}, errors.New("Capacity must be a positive whole number")
			}
			return model.HallRequest{
				Name:     strings.TrimSpace(v["name"]),
				Capacity: n,
				Location: strings.TrimSpace(v["location"]),
			}, nil
		},
	}

	performerForm = entityForm[model.PerformerRequest]{
		noun:   "performer",
		scope:  "performer-form",
		path:   "/api/performers",
		fields: func(bool) []ui.Field { return []ui.Field{{Name: "name", Label: "Name"}} },
		rules: func(bool) validate.Rules {
			return validate.Rules{"name": {{Required: true, MinLength: 2}}}
		},
		decode: func(_ bool, v map[string]string) (model.PerformerRequest, error) {
			return model.PerformerRequest{Name: strings.TrimSpace(v["name"])}, nil
		},
	}
)

func ticketColumns() []table.Column {
	return []table.Column{
		{Key: "id", Label: "ID", Sortable: true},
		{Key: "concertId", Label: "Concert ID", Sortable: true},
		{Key: "seatNumber", Label: "Seat", Sortable: true},
		{Key: "status", Label: "Status", Sortable: true},
		{Key: "buyerId", Label: "Buyer", Sortable: true},
		{Key: "paymentMethod", Label: "Payment", Sortable: true},
	}
}

func (r *Router) adminConcerts(ctx context.Context, c *ui.Container) {
	cfg := &adminScreen[model.ConcertRequest]{r: r, form: concertForm, Spec: table.Spec{
		TitleText: "Concerts",
		Path:      "/api/concerts/search",
		Cols: []table.Column{
			{Key: "id", Label: "ID", Sortable: true},
			{Key: "title", Label: "Title", Sortable: true},
			{Key: "date", Label: "Date", Sortable: true, Format: func(v any, _ model.Entity) string { return formatDate(model.FormatValue(v)) }},
			{Key: "time", Label: "Time", Sortable: true},
			{Key: "ticketPrice", Label: "Price", Sortable: true, Format: func(v any, _ model.Entity) string { return formatPrice(model.FormatValue(v)) }},
		},
		Search:     []string{"title", "date", "startDate", "endDate", "performerId", "hallId"},
		Privileged: model.RoleAdmin,
		EntityKind: model.KindConcert,
	}}
	r.newTable(cfg, table.Options{}).Render(ctx, c)
}

func (r *Router) adminTickets(ctx context.Context, c *ui.Container) {
	cfg := ticketAdmin{client: r.env.Client, Spec: table.Spec{
		TitleText:  "Tickets",
		Path:       "/api/tickets/search",
		Cols:       ticketColumns(),
		Search:     []string{"concertId", "buyerId", "status"},
		Privileged: model.RoleAdmin,
		EntityKind: model.KindTicket,
	}}
	r.newTable(cfg, table.Options{}).Render(ctx, c)
}

func (r *Router) adminUsers(ctx context.Context, c *ui.Container) {
	cfg := &adminScreen[model.UserRequest]{r: r, form: userForm, Spec: table.Spec{
		TitleText: "Users",
		Path:      "/api/users/search",
		Cols: []table.Column{
			{Key: "id", Label: "ID", Sortable: true},
			{Key: "email", Label: "Email", Sortable: true},
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "role", Label: "Role", Sortable: true},
			{Key: "phone", Label: "Phone", Sortable: true},
		},
		Search:     []string{"name", "email", "role"},
		Privileged: model.RoleAdmin,
		EntityKind: model.KindUser,
	}}
	r.newTable(cfg, table.Options{}).Render(ctx, c)
}

func (r *Router) adminHalls(ctx context.Context, c *ui.Container) {
	cfg := &adminScreen[model.HallRequest]{r: r, form: hallForm, Spec: table.Spec{
		TitleText: "Halls",
		Path:      "/api/halls/search",
		Cols: []table.Column{
			{Key: "id", Label: "ID", Sortable: true},
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "capacity", Label: "Capacity", Sortable: true},
			{Key: "location", Label: "Location", Sortable: true},
		},
		Privileged: model.RoleAdmin,
		EntityKind: model.KindHall,
	}}
	r.newTable(cfg, table.Options{}).Render(ctx, c)
}

func (r *Router) adminPerformers(ctx context.Context, c *ui.Container) {
	cfg := &adminScreen[model.PerformerRequest]{r: r, form: performerForm, Spec: table.Spec{
		TitleText: "Performers",
		Path:      "/api/performers/search",
		Cols: []table.Column{
			{Key: "id", Label: "ID", Sortable: true},
			{Key: "name", Label: "Name", Sortable: true},
		},
		Search:     []string{"name"},
		Privileged: model.RoleAdmin,
		EntityKind: model.KindPerformer,
	}}
	r.newTable(cfg, table.Options{}).Render(ctx, c)
}
