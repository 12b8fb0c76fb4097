package handler

import (
	"errors"
	"html"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/philharmonic-console/internal/middleware"
	"github.com/iliyamo/philharmonic-console/internal/obs"
	"github.com/iliyamo/philharmonic-console/internal/shell"
	"github.com/iliyamo/philharmonic-console/internal/ui"
)

// ScriptPath is where the browser loads the delegated listener from.
const ScriptPath = "/assets/console.js"

// Console serves the page and the action endpoint.
type Console struct {
	Sessions *Sessions
	Title    string
}

// actionRequest is the body the listener posts to /actions.
type actionRequest struct {
	Action    string            `json:"action"`
	Arg       string            `json:"arg"`
	Values    map[string]string `json:"values"`
	Confirmed bool              `json:"confirmed"`
	Input     *string           `json:"input"`
}

func (h *Console) shell(c echo.Context) (*shell.Shell, error) {
	sh, err := h.Sessions.Get(c.Request().Context(), middleware.CurrentSession(c))
	if err != nil {
		c.Logger().Errorf("console: session: %v", err)
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": "session unavailable"})
	}
	return sh, nil
}

// Page serves the whole document.  The #app fragment inside it is the same
// markup /actions answers with.
func (h *Console) Page(c echo.Context) error {
	sh, err := h.shell(c)
	if sh == nil {
		return err
	}
	title := h.Title
	if title == "" {
		title = "Musical Philharmonic"
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>")
	b.WriteString("<script src=\"" + ScriptPath + "\" defer></script></head><body>")
	b.WriteString(sh.HTML())
	b.WriteString("</body></html>")
	return c.HTML(http.StatusOK, b.String())
}

// Action dispatches one posted control and answers with the new #app
// fragment.  A stale control is not an error for the browser: it just gets
// the current page.
func (h *Console) Action(c echo.Context) error {
	var req actionRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Action) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "action is required"})
	}
	sh, err := h.shell(c)
	if sh == nil {
		return err
	}
	ev := ui.Event{Action: req.Action, Arg: req.Arg, Values: req.Values, Confirmed: req.Confirmed, Input: req.Input}
	outcome := "ok"
	switch err := sh.Dispatch(c.Request().Context(), ev); {
	case errors.Is(err, ui.ErrStaleAction):
		outcome = "stale"
	case errors.Is(err, ui.ErrNoHandler):
		outcome = "unhandled"
	case err != nil:
		outcome = "error"
	}
	obs.ObserveAction(actionLabel(req.Action, outcome), outcome)
	return c.HTML(http.StatusOK, sh.HTML())
}

// actionLabel keeps the metric label bounded: scoped actions such as
// "table-3/page" count under their verb, posted garbage under "other".
func actionLabel(action, outcome string) string {
	if outcome != "ok" {
		return "other"
	}
	if i := strings.LastIndexByte(action, '/'); i >= 0 {
		return action[i+1:]
	}
	return action
}

// Script serves the delegated listener.
func Script(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "public, max-age=300")
	return c.Blob(http.StatusOK, "application/javascript; charset=utf-8", ui.Script)
}
