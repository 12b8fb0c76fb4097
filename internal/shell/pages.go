package shell

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/ui"
	"github.com/iliyamo/philharmonic-console/internal/validate"
)

func (sh *Shell) welcomePage(c *ui.Container) {
	feature := func(title, text string) *html.Node {
		return ui.El("div", ui.Class("feature-card"), ui.El("h3", title), ui.El("p", text))
	}
	c.Set(
		ui.El("section", ui.Class("hero"),
			ui.El("div", ui.Class("hero-content"),
				ui.El("h1", ui.Class("hero-title"), "Welcome to Musical Philharmonic"),
				ui.El("p", ui.Class("hero-sub"), "Live streams and concerts. Follow the philharmonic season, book seats and discover new programs."),
				ui.El("div", ui.Class("hero-actions"),
					ui.El("button", ui.Type("button"), ui.Class("btn-primary btn-large"), ui.Action("nav", ViewLogin), "Sign in"),
					ui.El("button", ui.Type("button"), ui.Class("btn btn-large"), ui.Action("nav", ViewRegister), "Register")))),
		ui.El("section", ui.Class("features"),
			ui.El("h2", ui.Class("section-title"), "Features"),
			ui.El("div", ui.Class("features-grid"),
				feature("Concerts", "Browse upcoming concerts and book tickets online"),
				feature("Tickets", "Manage your tickets and review your purchases"),
				feature("Profile", "Keep your personal details up to date"))),
	)
}

func (sh *Shell) homePage(c *ui.Container) {
	greetings := map[model.Role]string{
		model.RoleCustomer: "Welcome to your account",
		model.RoleCashier:  "Cashier panel",
		model.RoleAdmin:    "Administrator panel",
	}
	name := "User"
	if u := sh.session.user; u != nil && u.Name != "" {
		name = u.Name
	}
	c.Set(ui.El("section", ui.Class("hero"),
		ui.El("div", ui.Class("hero-content"),
			ui.El("h1", ui.Class("hero-title"), greetings[sh.session.role]+", "+name+"!"),
			ui.El("p", ui.Class("hero-sub"), "Pick a section to get started"),
			ui.El("div", ui.Class("hero-actions"),
				ui.El("button", ui.Type("button"), ui.Class("btn-primary btn-large"), ui.Action("nav", ViewDashboard), "Open dashboard")))))
}

func authFrame(form *html.Node, links ...*html.Node) *html.Node {
	return ui.El("div", ui.Class("auth-container"), ui.El("div", ui.Class("auth-card"), form, links))
}

func (sh *Shell) loginPage(c *ui.Container) {
	d := &ui.Dialog[model.LoginRequest]{
		Scope: "login",
		Title: "Sign in",
		Fields: []ui.Field{
			{Name: "email", Label: "Email", Type: "email"},
			{Name: "password", Label: "Password", Type: "password"},
		},
		Rules: validate.Rules{
			"email":    {{Required: true, Email: true}},
			"password": {{Required: true}},
		},
		SubmitLabel: "Sign in",
		Decode: func(v map[string]string) (model.LoginRequest, error) {
			return model.LoginRequest{Email: strings.TrimSpace(v["email"]), Password: v["password"]}, nil
		},
		Submit: post[model.LoginRequest](sh, "/api/auth/login"),
		Done:   sh.afterAuth,
		Report: sh.api.Report,
	}
	box := c.Claim()
	box.Set(authFrame(ui.El("div", ui.ID("auth-form")),
		ui.El("p", "No account? ", navLink(ViewRegister, "Register")),
		ui.El("p", navLink(ViewWelcome, "Back to home"))))
	d.Inline(box.Child("auth-form"), nil)
}

func (sh *Shell) registerPage(c *ui.Container) {
	d := &ui.Dialog[model.RegisterRequest]{
		Scope: "register",
		Title: "Registration",
		Fields: []ui.Field{
			{Name: "email", Label: "Email", Type: "email"},
			{Name: "password", Label: "Password", Type: "password"},
			{Name: "name", Label: "Name"},
			{Name: "phone", Label: "Phone (optional)"},
		},
		Rules: validate.Rules{
			"email":    {{Required: true, Email: true}},
			"password": {{Required: true, MinLength: 6}},
			"name":     {{Required: true, MinLength: 2}},
			"phone":    {{Phone: true}},
		},
		SubmitLabel: "Register",
		Decode: func(v map[string]string) (model.RegisterRequest, error) {
			return model.RegisterRequest{
				Email:    strings.TrimSpace(v["email"]),
				Password: v["password"],
				Name:     strings.TrimSpace(v["name"]),
				Phone:    strings.TrimSpace(v["phone"]),
			}, nil
		},
		Submit: post[model.RegisterRequest](sh, "/api/auth/register"),
		Done:   sh.afterAuth,
		Report: sh.api.Report,
	}
	box := c.Claim()
	box.Set(authFrame(ui.El("div", ui.ID("auth-form")),
		ui.El("p", "Already registered? ", navLink(ViewLogin, "Sign in")),
		ui.El("p", navLink(ViewWelcome, "Back to home"))))
	d.Inline(box.Child("auth-form"), nil)
}

// post returns a Submit posting the decoded body to endpoint.
func post[T any](sh *Shell, endpoint string) func(ctx context.Context, body T) error {
	return func(ctx context.Context, body T) error {
		_, err := sh.api.Call(ctx, endpoint, remote.Options{Method: http.MethodPost, Body: body})
		return err
	}
}

// afterAuth re-checks who is signed in once the API set the token cookie,
// then re-renders; a login view resolves to the dashboard from there.
func (sh *Shell) afterAuth(ctx context.Context) {
	sh.checkAuth(ctx)
	if !sh.session.role.Authenticated() {
		sh.notes.Notify(notify.Error, "Could not confirm the sign-in, please try again")
		return
	}
	sh.render(ctx)
}

func (sh *Shell) aboutPage(ctx context.Context, c *ui.Container) {
	c = c.Claim()
	c.Set(ui.Placeholder("loading", "Loading..."))
	var about model.About
	var err error
	sh.screen.Suspend(func() {
		about, err = remote.Fetch[model.About](ctx, sh.api, "/api/about", remote.Options{Method: http.MethodGet})
	})
	if !c.Alive() {
		return
	}
	if err != nil {
		c.Set(ui.El("div", ui.Class("error"), "Error: "+err.Error()))
		return
	}
	c.Set(ui.El("div", ui.Class("info-card about"),
		ui.El("h1", "About"),
		infoRow("Author", about.AuthorName),
		infoRow("Group", about.Group),
		infoRow("Email", about.ContactEmail),
		infoRow("Phone", about.ContactPhone),
		infoRow("Technologies", strings.Join(about.Technologies, ", ")),
		infoRow("Project", strings.Trim(about.ProjectStartDate+" - "+about.ProjectEndDate, " -"))))
}

func (sh *Shell) statisticsPage(ctx context.Context, c *ui.Container) {
	c = c.Claim()
	c.Set(ui.Placeholder("loading", "Loading..."))
	var st model.Statistics
	var err error
	sh.screen.Suspend(func() {
		st, err = remote.Fetch[model.Statistics](ctx, sh.api, "/api/statistics", remote.Options{Method: http.MethodGet})
	})
	if !c.Alive() {
		return
	}
	if err != nil {
		c.Set(ui.El("div", ui.Class("error"), "Error: "+err.Error()))
		return
	}
	c.Set(ui.El("div", ui.Class("info-card statistics"),
		ui.El("h1", "Statistics"),
		ui.El("div", ui.Class("stats-grid"),
			stat("Users", fmt.Sprint(st.TotalUsers)),
			stat("Average session", fmt.Sprintf("%.1f min", st.AverageSessionMinutes)),
			stat("Tickets", fmt.Sprint(st.TotalTickets)),
			stat("Sold", fmt.Sprint(st.SoldTickets)),
			stat("Reserved", fmt.Sprint(st.ReservedTickets)),
			stat("Available", fmt.Sprint(st.AvailableTickets))),
		breakdown("Users by role", st.UsersByRole),
		breakdown("Tickets by status", st.TicketsByStatus)))
}

func infoRow(label, value string) *html.Node {
	if value == "" {
		value = "-"
	}
	return ui.El("p", ui.El("strong", label+":"), " "+value)
}

func stat(label, value string) *html.Node {
	return ui.El("div", ui.Class("stat-card"), ui.El("div", ui.Class("stat-value"), value), ui.El("div", ui.Class("stat-label"), label))
}

// breakdown lists counts in key order so the page is stable.
func breakdown(title string, counts map[string]int64) *html.Node {
	if len(counts) == 0 {
		return nil
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list := ui.El("ul", ui.Class("breakdown"))
	for _, k := range keys {
		list.AppendChild(ui.El("li", fmt.Sprintf("%s: %d", k, counts[k])))
	}
	return ui.El("div", ui.El("h3", title), list)
}
