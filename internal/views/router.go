// Package views resolves dashboard tabs to the screens that fill them.  Each
// role has its own ordered route table; entity screens are data tables, the
// rest are bespoke loaders.
package views

import (
	"context"
	"time"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/queue"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/table"
	"github.com/iliyamo/philharmonic-console/internal/ui"
)

// Tab names a dashboard section.
type Tab string

const (
	TabConcerts     Tab = "concerts"
	TabMyTickets    Tab = "my-tickets"
	TabProfile      Tab = "profile"
	TabSellTicket   Tab = "sell-ticket"
	TabTickets      Tab = "tickets"
	TabSalesHistory Tab = "sales-history"
	TabUsers        Tab = "users"
	TabHalls        Tab = "halls"
	TabPerformers   Tab = "performers"
)

// Session is the read-only view of the console session.
type Session interface {
	Role() model.Role
	User() *model.UserSummary
}

// Activity receives ticket events.  *service.Publisher satisfies it.
type Activity interface {
	Publish(ctx context.Context, ev queue.TicketActivityEvent) error
}

// Env carries the collaborators of every view.
type Env struct {
	Client   remote.Caller
	Screen   *ui.Screen
	Session  Session
	Notifier notify.Notifier
	Logger   table.Logger
	PageSize int
	Activity Activity
	Now      func() time.Time
}

type loader func(r *Router, ctx context.Context, c *ui.Container)

// Route binds a tab to its loader.
type Route struct {
	Tab   Tab
	Label string
	load  loader
}

var routes = map[model.Role][]Route{
	model.RoleCustomer: {
		{TabConcerts, "Upcoming concerts", (*Router).upcomingConcerts},
		{TabMyTickets, "My tickets", (*Router).myTickets},
		{TabProfile, "Profile", (*Router).Profile},
	},
	model.RoleCashier: {
		{TabSellTicket, "Sell ticket", (*Router).sellTicket},
		{TabTickets, "Tickets", (*Router).cashierTickets},
		{TabSalesHistory, "Sales history", (*Router).salesHistory},
	},
	model.RoleAdmin: {
		{TabConcerts, "Concerts", (*Router).adminConcerts},
		{TabTickets, "Tickets", (*Router).adminTickets},
		{TabUsers, "Users", (*Router).adminUsers},
		{TabHalls, "Halls", (*Router).adminHalls},
		{TabPerformers, "Performers", (*Router).adminPerformers},
	},
}

// Router is the view loader of one session.
type Router struct {
	env Env
}

// New returns a router over env.
func New(env Env) *Router {
	if env.Now == nil {
		env.Now = time.Now
	}
	return &Router{env: env}
}

// Routes lists the tabs of role in display order.  Unauthenticated sessions
// have none.
func Routes(role model.Role) []Route {
	return routes[role]
}

// Default is the tab a dashboard opens on.
func Default(role model.Role) (Tab, bool) {
	rs := routes[role]
	if len(rs) == 0 {
		return "", false
	}
	return rs[0].Tab, true
}

// Resolve returns the route of tab in role's table.
func Resolve(role model.Role, tab Tab) (Route, bool) {
	for _, r := range routes[role] {
		if r.Tab == tab {
			return r, true
		}
	}
	return Route{}, false
}

// Load fills c with tab for the session's current role.  c must be freshly
// claimed.  A tab the role does not have renders a placeholder.
func (r *Router) Load(ctx context.Context, tab Tab, c *ui.Container) {
	route, ok := Resolve(r.role(), tab)
	if !ok {
		c.Set(ui.El("p", ui.Class("not-found"), "View not found"))
		return
	}
	c.Set(ui.Placeholder("loading", "Loading..."))
	route.load(r, ctx, c)
}

func (r *Router) role() model.Role {
	if r.env.Session == nil {
		return model.RoleNone
	}
	return r.env.Session.Role()
}

func (r *Router) newTable(cfg table.Config, opts table.Options) *table.Table {
	opts.Screen = r.env.Screen
	opts.Session = r.env.Session
	opts.Notifier = r.env.Notifier
	opts.Logger = r.env.Logger
	opts.PageSize = r.env.PageSize
	return table.New(r.env.Client, cfg, opts)
}

// Actor is who performed a ticket activity.
type Actor struct {
	Role string
	Name string
}

// Stamp copies the actor onto ev.
func (a Actor) Stamp(ev queue.TicketActivityEvent) queue.TicketActivityEvent {
	ev.ActorRole = a.Role
	ev.ActorName = a.Name
	return ev
}

// Actor reads the signed-in user.  Call it with the screen lock held, before
// Suspend, since a concurrent logout rewrites the session.
func (r *Router) Actor() Actor {
	a := Actor{Role: r.role().String()}
	if u := r.user(); u != nil {
		a.Name = u.Name
	}
	return a
}

// Publish forwards ev to the activity sink as given.  It must run without
// the screen lock; failures are logged and otherwise ignored.
func (r *Router) Publish(ctx context.Context, ev queue.TicketActivityEvent) {
	if r.env.Activity == nil {
		return
	}
	if err := r.env.Activity.Publish(ctx, ev); err != nil && r.env.Logger != nil {
		r.env.Logger.Warnf("views: publish %s event: %v", ev.Kind, err)
	}
}

func (r *Router) user() *model.UserSummary {
	if r.env.Session == nil {
		return nil
	}
	return r.env.Session.User()
}

// failed renders the inline placeholder of a view whose load failed.  The
// client already notified the error.
func failed(c *ui.Container, err error) {
	c.Set(ui.El("div", ui.Class("error"), "Error: "+err.Error()))
}
