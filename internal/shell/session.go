package shell

import (
	"strings"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/views"
)

// Named views of the navigation state machine.
const (
	ViewWelcome    = "welcome"
	ViewLogin      = "login"
	ViewRegister   = "register"
	ViewAbout      = "about"
	ViewStatistics = "statistics"
	ViewProfile    = "profile"
	ViewDashboard  = "dashboard"

	concertPrefix = "concert-"
)

// ConcertView is the detail view of one concert.
func ConcertView(id string) string { return concertPrefix + id }

// concertID extracts the id of a concert-<id> view.
func concertID(view string) (string, bool) {
	id, ok := strings.CutPrefix(view, concertPrefix)
	if !ok || id == "" || strings.ContainsAny(id, "/?#") {
		return "", false
	}
	return id, true
}

// Session is the state of one signed-in or anonymous visitor.  Only the
// shell mutates it, with the screen lock held; views read it through Role
// and User.
type Session struct {
	user *model.UserSummary
	role model.Role
	view string
	tab  views.Tab
}

// Role is RoleNone for anonymous sessions.
func (s *Session) Role() model.Role { return s.role }

// User is nil for anonymous sessions.
func (s *Session) User() *model.UserSummary { return s.user }

func (s *Session) CurrentView() string { return s.view }

// Tab is the dashboard tab last opened, empty before the first one.
func (s *Session) Tab() views.Tab { return s.tab }

func (s *Session) signIn(u *model.UserSummary) {
	if s.user == nil || s.user.Role != u.Role {
		s.tab = ""
	}
	s.user, s.role = u, u.Role
}

func (s *Session) clear() {
	s.user, s.role, s.tab = nil, model.RoleNone, ""
}

// Resolve maps a requested view to the one a session with role may see.
// Anonymous sessions only reach the public views and fall back to welcome;
// signed-in sessions fall back to the dashboard.
func Resolve(role model.Role, view string) string {
	if _, ok := concertID(view); ok {
		return view
	}
	if !role.Authenticated() {
		switch view {
		case ViewWelcome, ViewAbout, ViewLogin, ViewRegister:
			return view
		}
		return ViewWelcome
	}
	switch view {
	case ViewWelcome, "home", "":
		return ViewWelcome
	case ViewAbout, ViewProfile, ViewDashboard:
		return view
	case ViewStatistics:
		if role == model.RoleCustomer {
			return ViewDashboard
		}
		return view
	}
	return ViewDashboard
}
