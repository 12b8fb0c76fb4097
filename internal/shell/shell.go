// Package shell owns the page of one console session: it checks who is
// signed in, keeps the current view, and re-renders the whole page from that
// state on every navigation.
package shell

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/table"
	"github.com/iliyamo/philharmonic-console/internal/ui"
	"github.com/iliyamo/philharmonic-console/internal/views"
)

// Element ids of the page frame.
const (
	contentID       = "app-content"
	notificationsID = "notifications"
	dashboardID     = "dashboard-content"
	tabsID          = "dashboard-tabs"
)

// API is the part of *remote.Client the shell needs.
type API interface {
	remote.Caller
	HasLiveToken() bool
	Logout()
}

// Options configure a shell.  Zero values get defaults.
type Options struct {
	Notes    *notify.Queue
	Logger   table.Logger
	PageSize int
	Activity views.Activity
	Now      func() time.Time
}

// Shell is the AppShell of one session.  All its methods are safe for
// concurrent use; they serialize on the screen lock.
type Shell struct {
	api     API
	notes   *notify.Queue
	screen  *ui.Screen
	session *Session
	router  *views.Router
	log     table.Logger
	now     func() time.Time
}

// New builds the shell of a fresh anonymous session.  Nothing is rendered
// until Boot.
func New(api API, opts Options) *Shell {
	notes := opts.Notes
	if notes == nil {
		notes = notify.NewQueue(notify.DefaultTTL)
	}
	lg := opts.Logger
	if lg == nil {
		lg = log.New("shell")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	sh := &Shell{
		api:     api,
		notes:   notes,
		screen:  ui.NewScreen(notes),
		session: &Session{view: ViewWelcome},
		log:     lg,
		now:     opts.Now,
	}
	sh.router = views.New(views.Env{
		Client:   api,
		Screen:   sh.screen,
		Session:  sh.session,
		Notifier: notes,
		Logger:   lg,
		PageSize: opts.PageSize,
		Activity: opts.Activity,
		Now:      opts.Now,
	})
	return sh
}

// Session exposes the session for reading.  Callers must not hold on to
// values across requests.
func (sh *Shell) Session() *Session { return sh.session }

// Screen is the page of the session.
func (sh *Shell) Screen() *ui.Screen { return sh.screen }

// Boot checks authentication and renders the current view.
func (sh *Shell) Boot(ctx context.Context) {
	sh.screen.Run(func() {
		sh.checkAuth(ctx)
		sh.render(ctx)
	})
}

// Dispatch handles one posted action.  ui.ErrStaleAction means the control
// is no longer on the page; the caller just returns the current page.
func (sh *Shell) Dispatch(ctx context.Context, ev ui.Event) error {
	err := sh.screen.Dispatch(ctx, ev)
	if errors.Is(err, ui.ErrStaleAction) || errors.Is(err, ui.ErrNoHandler) {
		sh.log.Infof("shell: action %s(%s) dropped: %v", ev.Action, ev.Arg, err)
	}
	return err
}

// HTML renders the #app fragment with the live notifications.
func (sh *Shell) HTML() string {
	var out string
	sh.screen.Run(func() {
		sh.drawNotifications()
		out = ui.Render(sh.screen.Root())
	})
	return out
}

// Navigate switches to view and re-renders the page.  The lock must be
// held.
func (sh *Shell) Navigate(ctx context.Context, view string) {
	sh.session.view = view
	sh.render(ctx)
}

// checkAuth asks the API who the token belongs to.  Without a live token
// the session is anonymous and no request is made.  The lock must be held.
func (sh *Shell) checkAuth(ctx context.Context) {
	if !sh.api.HasLiveToken() {
		sh.session.clear()
		return
	}
	var u model.UserSummary
	var err error
	sh.screen.Suspend(func() {
		u, err = remote.Fetch[model.UserSummary](ctx, sh.api, "/api/auth/me", remote.Options{Method: http.MethodGet, Quiet: true})
	})
	switch {
	case err != nil:
		if !remote.IsStatus(err, http.StatusUnauthorized) {
			sh.log.Warnf("shell: auth check failed: %v", err)
		}
		sh.session.clear()
	case !u.Role.Authenticated():
		sh.log.Warnf("shell: auth check returned no known role for %q", u.Name)
		sh.session.clear()
	default:
		sh.session.signIn(&u)
	}
}

// Logout forgets the API token and returns to the welcome page.
func (sh *Shell) Logout(ctx context.Context) {
	sh.api.Logout()
	sh.session.clear()
	sh.Navigate(ctx, ViewWelcome)
}

// render rebuilds the page from the session.  Every container and handler
// of the previous page dies with it, so the frame handlers are bound again.
func (sh *Shell) render(ctx context.Context) {
	view := Resolve(sh.session.role, sh.session.view)
	sh.session.view = view

	sh.screen.Reset(
		sh.header(),
		ui.El("main", ui.ID(contentID), ui.Class("app-content")),
		ui.El("div", ui.ID(ui.ModalID)),
		ui.El("div", ui.ID(notificationsID), ui.Class("notifications")),
	)
	sh.bindFrame()

	c := sh.screen.Container(contentID)
	if id, ok := concertID(view); ok {
		sh.concertPage(ctx, c, id)
		return
	}
	switch view {
	case ViewLogin:
		sh.loginPage(c)
	case ViewRegister:
		sh.registerPage(c)
	case ViewAbout:
		sh.aboutPage(ctx, c)
	case ViewStatistics:
		sh.statisticsPage(ctx, c)
	case ViewProfile:
		sh.router.Profile(ctx, c)
	case ViewDashboard:
		sh.dashboard(ctx, c)
	default:
		if sh.session.role.Authenticated() {
			sh.homePage(c)
		} else {
			sh.welcomePage(c)
		}
	}
}

func (sh *Shell) bindFrame() {
	s := sh.screen
	s.On("nav", func(ctx context.Context, ev ui.Event) { sh.Navigate(ctx, ev.Arg) })
	s.On("logout", func(ctx context.Context, ev ui.Event) { sh.Logout(ctx) })
	s.On("tab", func(ctx context.Context, ev ui.Event) { sh.openTab(ctx, views.Tab(ev.Arg)) })
	s.On("notify/dismiss", func(ctx context.Context, ev ui.Event) {
		sh.notes.Dismiss(ev.Arg)
		sh.drawNotifications()
	})
}

func navLink(view, label string) *html.Node {
	return ui.El("a", ui.At("href", "#"), ui.Class("nav-link"), ui.Action("nav", view), label)
}

func (sh *Shell) header() *html.Node {
	nav := ui.El("nav", ui.ID("main-nav"), navLink(ViewWelcome, "Home"), navLink(ViewAbout, "About"))
	user := ui.El("div", ui.Class("user-menu"))
	if u := sh.session.user; u != nil {
		nav.AppendChild(navLink(ViewDashboard, "Dashboard"))
		if sh.session.role != model.RoleCustomer {
			nav.AppendChild(navLink(ViewStatistics, "Statistics"))
		}
		nav.AppendChild(navLink(ViewProfile, "Profile"))
		name := u.Name
		if name == "" {
			name = "User"
		}
		user.AppendChild(ui.El("span", ui.ID("user-name"), name))
		user.AppendChild(ui.El("button", ui.Type("button"), ui.Class("btn"), ui.Action("logout", ""), "Log out"))
	} else {
		user.AppendChild(ui.El("button", ui.Type("button"), ui.Class("btn-primary"), ui.Action("nav", ViewLogin), "Sign in"))
	}
	return ui.El("header", ui.Class("app-header"),
		ui.El("div", ui.Class("logo"), "Musical Philharmonic"), nav, user)
}

func (sh *Shell) drawNotifications() {
	c := sh.screen.Container(notificationsID)
	if c == nil {
		return
	}
	now := sh.now()
	active := sh.notes.Active()
	nodes := make([]*html.Node, 0, len(active))
	for _, n := range active {
		left := n.ExpiresAt.Sub(now).Milliseconds()
		if left < 0 {
			left = 0
		}
		item := ui.El("div", ui.Class("notification notification-"+string(n.Level)),
			ui.At("data-expires", strconv.FormatInt(left, 10)),
			ui.El("span", ui.Class("notification-message"), n.Message),
			ui.El("button", ui.Type("button"), ui.Class("notification-close"), ui.Action("notify/dismiss", n.ID), "×"))
		if len(n.Detail) > 0 {
			list := ui.El("ul", ui.Class("notification-detail"))
			for _, d := range n.Detail {
				list.AppendChild(ui.El("li", d))
			}
			item.AppendChild(list)
		}
		nodes = append(nodes, item)
	}
	c.Set(nodes...)
}

// dashboard renders the tab bar of the role and opens the remembered tab,
// or the first one.
func (sh *Shell) dashboard(ctx context.Context, c *ui.Container) {
	role := sh.session.role
	tab := sh.session.tab
	if _, ok := views.Resolve(role, tab); !ok {
		tab, _ = views.Default(role)
	}
	c.Set(ui.El("div", ui.Class("dashboard"),
		ui.El("h1", dashboardTitle(role)),
		ui.El("div", ui.ID(tabsID), ui.Class("dashboard-tabs"), sh.tabButtons(tab)),
		ui.El("div", ui.ID(dashboardID))))
	sh.openTab(ctx, tab)
}

func dashboardTitle(role model.Role) string {
	switch role {
	case model.RoleCustomer:
		return "My account"
	case model.RoleCashier:
		return "Cashier panel"
	case model.RoleAdmin:
		return "Administrator panel"
	}
	return "Unknown role"
}

func (sh *Shell) tabButtons(active views.Tab) []*html.Node {
	var out []*html.Node
	for _, r := range views.Routes(sh.session.role) {
		class := "tab-btn"
		if r.Tab == active {
			class += " active"
		}
		out = append(out, ui.El("button", ui.Type("button"), ui.Class(class), ui.Action("tab", string(r.Tab)), r.Label))
	}
	return out
}

// openTab loads tab into the dashboard content.  Claiming the content
// container ends the lease of whatever view was loading there.
func (sh *Shell) openTab(ctx context.Context, tab views.Tab) {
	content := sh.screen.Container(dashboardID)
	if content == nil {
		return
	}
	sh.session.tab = tab
	if tabs := sh.screen.Container(tabsID); tabs != nil {
		tabs.Set(sh.tabButtons(tab)...)
	}
	sh.router.Load(ctx, tab, content.Claim())
}
