package views

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/queue"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/ui"
)

// fakeAPI answers "METHOD path" keys from docs and records every request.
// Unknown searches return an empty page, anything else an empty 200.
type fakeAPI struct {
	mu     sync.Mutex
	docs   map[string]string
	status map[string]int
	reqs   []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.reqs = append(f.reqs, key+" "+strings.TrimSpace(string(body)))
	doc, ok := f.docs[key]
	st, forced := f.status[key]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case forced:
		w.WriteHeader(st)
		fmt.Fprint(w, `{"message":"boom"}`)
	case ok:
		fmt.Fprint(w, doc)
	case strings.HasSuffix(r.URL.Path, "/search"):
		fmt.Fprint(w, pageOf())
	}
}

// calls returns the bodies sent to "METHOD path".
func (f *fakeAPI) calls(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.reqs {
		if strings.HasPrefix(r, key+" ") {
			out = append(out, strings.TrimPrefix(r, key+" "))
		}
	}
	return out
}

func pageOf(rows ...string) string {
	return fmt.Sprintf(`{"content":[%s],"number":0,"totalPages":1,"totalElements":%d,"first":true,"last":true}`,
		strings.Join(rows, ","), len(rows))
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Notify(_ notify.Level, message string, _ ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, message)
}

func (r *recorder) has(msg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m == msg {
			return true
		}
	}
	return false
}

type logRec struct {
	mu    sync.Mutex
	warns []string
}

func (l *logRec) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func (l *logRec) Infof(string, ...interface{}) {}

type activityRec struct {
	mu     sync.Mutex
	events []queue.TicketActivityEvent
}

func (a *activityRec) Publish(_ context.Context, ev queue.TicketActivityEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return nil
}

func (a *activityRec) only(t *testing.T) queue.TicketActivityEvent {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) != 1 {
		t.Fatalf("published %d events, want 1: %+v", len(a.events), a.events)
	}
	return a.events[0]
}

type sess struct {
	role model.Role
	user *model.UserSummary
}

func (s sess) Role() model.Role         { return s.role }
func (s sess) User() *model.UserSummary { return s.user }

var msk = time.FixedZone("MSK", 3*3600)

type fixture struct {
	api      *fakeAPI
	screen   *ui.Screen
	router   *Router
	notes    *recorder
	log      *logRec
	activity *activityRec
}

func setup(t *testing.T, role model.Role, api *fakeAPI) *fixture {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	notes := &recorder{}
	client, err := remote.New(srv.URL, notes, 2*time.Second)
	if err != nil {
		t.Fatalf("remote.New: %v", err)
	}
	s := ui.NewScreen(notes)
	f := &fixture{api: api, screen: s, notes: notes, log: &logRec{}, activity: &activityRec{}}
	f.router = New(Env{
		Client:   client,
		Screen:   s,
		Session:  sess{role: role, user: &model.UserSummary{Name: "Olga", Email: "olga@example.com", Role: role}},
		Notifier: notes,
		Logger:   f.log,
		PageSize: 20,
		Activity: f.activity,
		Now:      func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, msk) },
	})
	s.Run(func() { s.Reset(ui.El("main", ui.ID("content")), ui.El("div", ui.ID(ui.ModalID))) })
	return f
}

func (f *fixture) load(tab Tab) {
	f.screen.Run(func() {
		f.router.Load(context.Background(), tab, f.screen.Container("content").Claim())
	})
}

func (f *fixture) dispatch(t *testing.T, ev ui.Event) {
	t.Helper()
	if err := f.screen.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("dispatch %s(%s): %v", ev.Action, ev.Arg, err)
	}
}

func (f *fixture) text(id string) string {
	return ui.TextOf(ui.ByID(f.screen.Root(), id))
}

// tableScope returns the action prefix of the table on the page.
func (f *fixture) tableScope(t *testing.T) string {
	t.Helper()
	n := ui.Find(f.screen.Root(), func(n *html.Node) bool { _, ok := ui.AttrOf(n, "data-table"); return ok })
	if n == nil {
		t.Fatalf("no table rendered: %s", f.text("content"))
	}
	v, _ := ui.AttrOf(n, "data-table")
	return v
}

func (f *fixture) input(name string) *html.Node {
	return ui.ByID(f.screen.Root(), "f-"+name)
}

func TestRouteTables(t *testing.T) {
	tabs := func(role model.Role) string {
		var out []string
		for _, r := range Routes(role) {
			out = append(out, string(r.Tab))
		}
		return strings.Join(out, ",")
	}
	cases := []struct {
		role model.Role
		want string
	}{
		{model.RoleCustomer, "concerts,my-tickets,profile"},
		{model.RoleCashier, "sell-ticket,tickets,sales-history"},
		{model.RoleAdmin, "concerts,tickets,users,halls,performers"},
		{model.RoleNone, ""},
	}
	for _, tc := range cases {
		t.Run(tc.role.String(), func(t *testing.T) {
			if got := tabs(tc.role); got != tc.want {
				t.Fatalf("tabs %q, want %q", got, tc.want)
			}
		})
	}
	if tab, ok := Default(model.RoleCashier); !ok || tab != TabSellTicket {
		t.Fatalf("Default(CASHIER)=%q,%v", tab, ok)
	}
	if _, ok := Default(model.RoleNone); ok {
		t.Fatalf("unauthenticated sessions have no default tab")
	}
	if _, ok := Resolve(model.RoleCustomer, TabUsers); ok {
		t.Fatalf("customers must not resolve the users tab")
	}
}

func TestUnknownTabRendersNotFound(t *testing.T) {
	f := setup(t, model.RoleCashier, &fakeAPI{})
	f.load(TabUsers)
	if got := f.text("content"); got != "View not found" {
		t.Fatalf("content %q", got)
	}
	if len(f.api.calls("POST /api/users/search")) != 0 {
		t.Fatalf("an unresolved tab must not fetch")
	}
}

func TestAdminCreateConcert(t *testing.T) {
	api := &fakeAPI{}
	f := setup(t, model.RoleAdmin, api)
	f.load(TabConcerts)
	scope := f.tableScope(t)
	f.dispatch(t, ui.Event{Action: scope + "/create"})
	if f.input("title") == nil {
		t.Fatalf("create dialog did not open: %s", f.text(ui.ModalID))
	}

	f.dispatch(t, ui.Event{Action: "concert-form/submit", Values: map[string]string{
		"title": "", "date": "2025-05-01", "time": "25:00", "hallId": "2", "performerId": "3", "ticketPrice": "1500",
	}})
	if len(api.calls("POST /api/concerts")) != 0 {
		t.Fatalf("invalid form was submitted")
	}
	errs := ui.FindAll(ui.ByID(f.screen.Root(), ui.ModalID), func(n *html.Node) bool { return ui.HasClass(n, "field-error") })
	if len(errs) != 2 {
		t.Fatalf("field errors %d, want 2 (title, time)", len(errs))
	}

	f.dispatch(t, ui.Event{Action: "concert-form/submit", Values: map[string]string{
		"title": "Gala", "date": "2025-05-01", "time": "19:30", "hallId": "2", "performerId": "3", "ticketPrice": "1500",
	}})
	posts := api.calls("POST /api/concerts")
	want := `{"title":"Gala","date":"2025-05-01","time":"19:30","hallId":2,"performerId":3,"ticketPrice":1500}`
	if len(posts) != 1 || posts[0] != want {
		t.Fatalf("create bodies %v", posts)
	}
	if !f.notes.has("Concert saved") {
		t.Fatalf("notifications %v", f.notes.msgs)
	}
	if f.input("title") != nil {
		t.Fatalf("dialog still open after save")
	}
	if n := len(api.calls("POST /api/concerts/search")); n != 2 {
		t.Fatalf("searches %d, want a reload after save", n)
	}
}

func TestAdminEditUser(t *testing.T) {
	api := &fakeAPI{docs: map[string]string{
		"POST /api/users/search": pageOf(`{"id":7,"email":"ann@example.com","name":"Ann","role":"CASHIER"}`),
		"GET /api/users/7":       `{"id":7,"email":"ann@example.com","name":"Ann","role":"CASHIER","phone":"+7 900 123 45 67"}`,
	}}
	f := setup(t, model.RoleAdmin, api)
	f.load(TabUsers)
	scope := f.tableScope(t)
	f.dispatch(t, ui.Event{Action: scope + "/edit", Arg: "7"})

	email := f.input("email")
	if email == nil {
		t.Fatalf("edit dialog did not open")
	}
	if _, ro := ui.AttrOf(email, "readonly"); !ro {
		t.Fatalf("email must be read-only when editing")
	}
	if f.input("password") != nil {
		t.Fatalf("password is only asked on create")
	}
	if v, _ := ui.AttrOf(f.input("phone"), "value"); v != "+7 900 123 45 67" {
		t.Fatalf("phone prefilled with %q", v)
	}

	f.dispatch(t, ui.Event{Action: "user-form/submit", Values: map[string]string{
		"email": "ann@example.com", "name": "Ann", "phone": "+7 900", "role": "ADMIN",
	}})
	if n := len(api.calls("PUT /api/users/7")); n != 0 {
		t.Fatalf("short phone number was sent")
	}
	if got := f.text(ui.ModalID); !strings.Contains(got, "Enter a valid phone number") {
		t.Fatalf("phone error not shown: %q", got)
	}

	f.dispatch(t, ui.Event{Action: "user-form/submit", Values: map[string]string{
		"email": "ann@example.com", "name": "Ann", "phone": "+7 900 123 45 67", "role": "ADMIN", "password": "ignored",
	}})
	puts := api.calls("PUT /api/users/7")
	want := `{"email":"ann@example.com","name":"Ann","phone":"+7 900 123 45 67","role":"ADMIN"}`
	if len(puts) != 1 || puts[0] != want {
		t.Fatalf("update bodies %v", puts)
	}
}

func TestAdminTicketsAreDeleteOnly(t *testing.T) {
	api := &fakeAPI{docs: map[string]string{
		"POST /api/tickets/search": pageOf(`{"id":9,"concertId":5,"seatNumber":"A1","status":"SOLD"}`),
	}}
	f := setup(t, model.RoleAdmin, api)
	f.load(TabTickets)
	scope := f.tableScope(t)
	root := f.screen.Root()
	if len(ui.ByAction(root, scope+"/create")) != 0 || len(ui.ByAction(root, scope+"/edit")) != 0 || len(ui.ByAction(root, scope+"/return")) != 0 {
		t.Fatalf("admin tickets must only offer delete")
	}
	f.dispatch(t, ui.Event{Action: scope + "/delete", Arg: "9", Confirmed: true})
	if len(api.calls("DELETE /api/tickets/9")) != 1 {
		t.Fatalf("delete not sent: %v", api.reqs)
	}
}

func TestSellTicket(t *testing.T) {
	api := &fakeAPI{}
	f := setup(t, model.RoleCashier, api)
	f.load(TabSellTicket)

	values := map[string]string{"concertId": "5", "seatNumber": "", "buyerEmail": "nope", "paymentMethod": "cash", "quantity": "2"}
	f.dispatch(t, ui.Event{Action: "sell/submit", Values: values})
	if len(api.calls("POST /api/tickets/sell")) != 0 {
		t.Fatalf("invalid sale was sent")
	}

	values["buyerEmail"] = "buyer@example.com"
	f.dispatch(t, ui.Event{Action: "sell/submit", Values: values})
	sells := api.calls("POST /api/tickets/sell")
	want := `{"concertId":5,"buyerEmail":"buyer@example.com","paymentMethod":"cash","quantity":2}`
	if len(sells) != 1 || sells[0] != want {
		t.Fatalf("sell bodies %v", sells)
	}
	if !f.notes.has("Ticket sold") {
		t.Fatalf("notifications %v", f.notes.msgs)
	}
	if v, _ := ui.AttrOf(f.input("quantity"), "value"); v != "1" {
		t.Fatalf("form not reset, quantity=%q", v)
	}
	ev := f.activity.only(t)
	if ev.Kind != queue.ActivitySold || ev.ConcertID != "5" || ev.Quantity != 2 || ev.ActorRole != "CASHIER" || ev.ActorName != "Olga" {
		t.Fatalf("event %+v", ev)
	}
}

func TestCashierReturnPublishes(t *testing.T) {
	api := &fakeAPI{docs: map[string]string{
		"POST /api/tickets/search": pageOf(`{"id":9,"concertId":5,"seatNumber":"A1","status":"SOLD"}`),
	}}
	f := setup(t, model.RoleCashier, api)
	f.load(TabTickets)
	scope := f.tableScope(t)
	if len(ui.ByAction(f.screen.Root(), scope+"/delete")) != 0 {
		t.Fatalf("cashiers must not delete tickets")
	}
	reason := "damaged"
	f.dispatch(t, ui.Event{Action: scope + "/return", Arg: "9", Input: &reason})
	if got := api.calls("POST /api/tickets/9/return"); len(got) != 1 || got[0] != `{"reason":"damaged"}` {
		t.Fatalf("return bodies %v", got)
	}
	ev := f.activity.only(t)
	if ev.Kind != queue.ActivityReturned || ev.TicketID != "9" || ev.Reason != "damaged" || ev.ActorRole != "CASHIER" {
		t.Fatalf("event %+v", ev)
	}
}

func TestSalesHistory(t *testing.T) {
	api := &fakeAPI{docs: map[string]string{
		"POST /api/tickets/sales": pageOf(`{"id":1,"concertId":5,"seatNumber":"A1","status":"SOLD","buyerId":null,"purchaseTimestamp":"2025-03-01T08:15:00Z"}`),
	}}
	f := setup(t, model.RoleCashier, api)
	f.load(TabSalesHistory)

	f.dispatch(t, ui.Event{Action: "sales/search", Values: map[string]string{"from": "2025-03-01T10:00", "to": ""}})
	if !f.notes.has("Select a period") || len(api.calls("POST /api/tickets/sales")) != 0 {
		t.Fatalf("missing bound must be rejected locally: %v %v", f.notes.msgs, api.reqs)
	}

	f.dispatch(t, ui.Event{Action: "sales/search", Values: map[string]string{"from": "2025-03-01T10:00", "to": "2025-03-02T10:00"}})
	got := api.calls("POST /api/tickets/sales")
	want := `{"from":"2025-03-01T07:00:00Z","to":"2025-03-02T07:00:00Z","page":0,"size":50,"sort":"purchaseTimestamp,desc"}`
	if len(got) != 1 || got[0] != want {
		t.Fatalf("sales bodies %v", got)
	}
	if text := f.text("sales-results"); text != "ID Concert Seat Status Buyer Purchased 1 5 A1 SOLD - 01.03.2025, 08:15:00" {
		t.Fatalf("results %q", text)
	}
}

func TestUpcomingConcerts(t *testing.T) {
	api := &fakeAPI{docs: map[string]string{
		"POST /api/customer/concerts/upcoming": pageOf(
			`{"id":4,"title":"Gala","date":"2025-04-10","time":"19:00","ticketPrice":1500}`,
			`{"title":"Ghost","date":"2025-04-11","time":"20:00"}`),
		"POST /api/customer/concerts/4/availability": pageOf(
			`{"id":1,"seatNumber":"A1","status":"AVAILABLE"}`,
			`{"id":2,"seatNumber":"A2","status":"AVAILABLE"}`,
			`{"id":3,"seatNumber":"A3","status":"SOLD"}`,
			`{"id":4,"seatNumber":"A4","status":"RESERVED"}`),
	}}
	f := setup(t, model.RoleCustomer, api)
	f.load(TabConcerts)

	got := api.calls("POST /api/customer/concerts/upcoming")
	want := `{"page":0,"size":20,"sort":"date,asc","startDate":"2025-03-01","endDate":"2026-03-01"}`
	if len(got) != 1 || got[0] != want {
		t.Fatalf("upcoming bodies %v", got)
	}
	text := f.text("content")
	if !strings.Contains(text, "Gala 10.04.2025 at 19:00 Price: 1500 ₽") {
		t.Fatalf("cards %q", text)
	}
	if n := len(ui.ByAction(f.screen.Root(), "concert/purchase")); n != 1 {
		t.Fatalf("purchase buttons %d, the id-less card must have none", n)
	}
	if len(f.log.warns) != 1 {
		t.Fatalf("warnings %v", f.log.warns)
	}
	if !f.screen.Bind().Has("nav", "concert-4") {
		t.Fatalf("book button must navigate to the concert page")
	}

	f.dispatch(t, ui.Event{Action: "concert/availability", Arg: "4"})
	modal := f.text(ui.ModalID)
	if !strings.Contains(modal, "Available: 2 Reserved: 1 Sold: 1") {
		t.Fatalf("availability %q", modal)
	}
	f.dispatch(t, ui.Event{Action: "modal/close"})
	if f.text(ui.ModalID) != "" {
		t.Fatalf("modal not closed")
	}
}

func TestPurchase(t *testing.T) {
	api := &fakeAPI{docs: map[string]string{
		"POST /api/customer/concerts/upcoming": pageOf(`{"id":4,"title":"Gala","date":"2025-04-10","time":"19:00","ticketPrice":1500}`),
	}}
	f := setup(t, model.RoleCustomer, api)
	f.load(TabConcerts)
	f.dispatch(t, ui.Event{Action: "concert/purchase", Arg: "4"})
	if v, _ := ui.AttrOf(ui.Find(f.input("paymentMethod"), func(n *html.Node) bool {
		_, sel := ui.AttrOf(n, "selected")
		return n.Data == "option" && sel
	}), "value"); v != "card" {
		t.Fatalf("default payment %q", v)
	}

	f.dispatch(t, ui.Event{Action: "purchase/submit", Values: map[string]string{"seatNumber": "", "paymentMethod": "card"}})
	if len(api.calls("POST /api/customer/tickets/purchase")) != 0 {
		t.Fatalf("purchase without a seat was sent")
	}
	f.dispatch(t, ui.Event{Action: "purchase/submit", Values: map[string]string{"seatNumber": "B7", "paymentMethod": "card"}})
	got := api.calls("POST /api/customer/tickets/purchase")
	if len(got) != 1 || got[0] != `{"concertId":4,"seatNumber":"B7","paymentMethod":"card"}` {
		t.Fatalf("purchase bodies %v", got)
	}
	ev := f.activity.only(t)
	if ev.Kind != queue.ActivityPurchased || ev.ConcertID != "4" || ev.SeatNumber != "B7" || ev.ActorRole != "CUSTOMER" {
		t.Fatalf("event %+v", ev)
	}
}

func TestUpcomingConcertsFailure(t *testing.T) {
	api := &fakeAPI{status: map[string]int{"POST /api/customer/concerts/upcoming": http.StatusInternalServerError}}
	f := setup(t, model.RoleCustomer, api)
	f.load(TabConcerts)
	if got := f.text("content"); got != "Error: boom" {
		t.Fatalf("content %q", got)
	}
	if len(f.notes.msgs) != 1 {
		t.Fatalf("failure must be notified once: %v", f.notes.msgs)
	}
}

func TestMyTicketsAndProfile(t *testing.T) {
	api := &fakeAPI{docs: map[string]string{"POST /api/customer/tickets/mine": pageOf()}}
	f := setup(t, model.RoleCustomer, api)
	f.load(TabMyTickets)
	if got := api.calls("POST /api/customer/tickets/mine"); len(got) != 1 || got[0] != `{"page":0,"size":20,"sort":"purchaseTimestamp,desc"}` {
		t.Fatalf("mine bodies %v", got)
	}
	if got := f.text("content"); got != "My tickets No tickets found" {
		t.Fatalf("content %q", got)
	}

	f.load(TabProfile)
	if got := f.text("content"); got != "My profile Email olga@example.com Name Olga Phone - Role CUSTOMER" {
		t.Fatalf("profile %q", got)
	}
}

func TestFormatters(t *testing.T) {
	cases := []struct{ fn func(string) string; in, want string }{
		{formatDate, "2025-04-10", "10.04.2025"},
		{formatDate, "soon", "soon"},
		{formatPrice, "1500", "1500 ₽"},
		{formatPrice, "", ""},
		{formatTimestamp, "2025-03-01T19:30:00", "01.03.2025, 19:30:00"},
		{formatTimestamp, "", ""},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Fatalf("format(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
