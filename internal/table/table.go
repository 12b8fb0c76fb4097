// Package table implements the remote data table: a paged, sortable,
// filterable grid over one search endpoint, with role-gated row actions.
//
// All exported methods expect the screen lock to be held, which is the case
// inside action handlers.  Network calls release it through Screen.Suspend.
package table

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/philharmonic-console/internal/model"
	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/ui"
)

// ErrMissingID is logged when a row carries none of its kind's id fields.
var ErrMissingID = errors.New("table: row has no identifier")

// Session is the read-only view of the console session the table needs.
type Session interface {
	Role() model.Role
}

// Logger receives data-integrity diagnostics.  *log.Logger of
// labstack/gommon satisfies it.
type Logger interface {
	Warnf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// Options wire a table to its page.
type Options struct {
	Screen   *ui.Screen
	Session  Session
	Notifier notify.Notifier
	Logger   Logger
	PageSize int

	// Returning, when set, runs with the screen lock held before a ticket
	// return is sent.  The func it yields runs without the lock once the
	// return succeeded.
	Returning func(id, reason string) func(ctx context.Context)
}

// Table is one DataTable instance.  It exclusively owns its State.
type Table struct {
	client    remote.Caller
	cfg       Config
	screen    *ui.Screen
	session   Session
	notifier  notify.Notifier
	log       Logger
	returning func(id, reason string) func(ctx context.Context)

	scope string
	state State
	first bool
	last  bool
	seq   uint64
	box   *ui.Container
}

// New builds a table for cfg.  Nothing is rendered until Render.
func New(client remote.Caller, cfg Config, opts Options) *Table {
	lg := opts.Logger
	if lg == nil {
		lg = log.New("table")
	}
	return &Table{
		client:    client,
		cfg:       cfg,
		screen:    opts.Screen,
		session:   opts.Session,
		notifier:  opts.Notifier,
		log:       lg,
		returning: opts.Returning,
		scope:     opts.Screen.NextScope("t"),
		state:     NewState(cfg.Columns(), opts.PageSize),
		first:     true,
		last:      true,
	}
}

// State returns a copy of the current position.
func (t *Table) State() State { return t.state.clone() }

// Config returns the table's descriptor.
func (t *Table) Config() Config { return t.cfg }

// Screen returns the page the table renders into.
func (t *Table) Screen() *ui.Screen { return t.screen }

// Scope is the action prefix of this table's controls.
func (t *Table) Scope() string { return t.scope }

func (t *Table) role() model.Role {
	if t.session == nil {
		return model.RoleNone
	}
	return t.session.Role()
}

func (t *Table) privileged() bool {
	return t.role().Authenticated() && t.role() == t.cfg.Role()
}

func (t *Table) canCreate() bool {
	_, ok := t.cfg.(Creatable)
	return ok && t.privileged()
}

func (t *Table) canEdit() bool {
	_, ok := t.cfg.(Editable)
	return ok && t.privileged()
}

func (t *Table) canDelete() bool {
	_, ok := t.cfg.(Deletable)
	return ok && t.privileged()
}

func (t *Table) canReturn() bool {
	return t.cfg.Kind() == model.KindTicket && t.role() == model.RoleCashier
}

func (t *Table) notify(level notify.Level, msg string) {
	if t.notifier != nil {
		t.notifier.Notify(level, msg)
	}
}

// Render draws the table skeleton into c, binds its controls and performs
// the initial load.
func (t *Table) Render(ctx context.Context, c *ui.Container) {
	t.box = c
	c.Set(t.skeleton())
	t.bind()
	t.LoadData(ctx)
}

// Reload reuses the current container and position.
func (t *Table) Reload(ctx context.Context) { t.LoadData(ctx) }

// LoadData fetches the current position and redraws rows and footer.  It
// reports whether fresh rows were rendered.
func (t *Table) LoadData(ctx context.Context) bool {
	return t.load(ctx, t.state)
}

// load queries st and commits it only when the answer is rendered.  Answers
// to superseded loads, or arriving after the container was taken over, are
// discarded without touching the page or the state.
func (t *Table) load(ctx context.Context, st State) bool {
	if t.box == nil {
		return false
	}
	t.seq++
	seq, box := t.seq, t.box

	var page model.Page[model.Entity]
	var err error
	t.screen.Suspend(func() {
		page, err = remote.Fetch[model.Page[model.Entity]](ctx, t.client, t.cfg.Endpoint(), remote.Options{
			Method: http.MethodPost,
			Body:   st.Query(),
		})
	})
	if seq != t.seq || !box.Alive() {
		return false
	}
	if err != nil {
		if body := box.Child(t.scope + "-body"); body != nil {
			body.Set(t.messageRow("row-error", "Error: "+err.Error()))
		}
		return false
	}
	if page.Number != st.Page {
		t.log.Warnf("table %s: requested page %d, server answered page %d", t.cfg.Title(), st.Page, page.Number)
	}
	t.state = st
	t.first, t.last = page.First, page.Last
	if body := box.Child(t.scope + "-body"); body != nil {
		body.Set(t.rows(page.Content)...)
	}
	if footer := box.Child(t.scope + "-footer"); footer != nil {
		footer.Set(t.pager(page)...)
	}
	return true
}

// ToggleSort sorts by field; see State.ToggleSort.  The new order is kept
// only if the reload succeeds.
func (t *Table) ToggleSort(ctx context.Context, field string) {
	for _, c := range t.cfg.Columns() {
		if c.Key == field && c.Sortable {
			if t.load(ctx, t.state.ToggleSort(field)) {
				t.refreshHeader()
			}
			return
		}
	}
}

// Search applies free-text search from page 0.
func (t *Table) Search(ctx context.Context, text string) {
	t.state = t.state.WithSearch(strings.TrimSpace(text))
	t.refreshFilters()
	t.LoadData(ctx)
}

// Filter re-reads every declared search field and reloads from page 0.
func (t *Table) Filter(ctx context.Context, values map[string]string) {
	t.state = t.state.WithFilters(t.cfg.SearchFields(), values)
	t.refreshFilters()
	t.LoadData(ctx)
}

// NextPage loads the following page unless the last one is shown.
func (t *Table) NextPage(ctx context.Context) {
	if t.last {
		return
	}
	t.load(ctx, t.state.Next())
}

// PrevPage loads the previous page; page 0 is a floor.
func (t *Table) PrevPage(ctx context.Context) {
	if t.state.Page == 0 {
		return
	}
	t.load(ctx, t.state.Prev())
}

// Create starts the config's create flow.
func (t *Table) Create(ctx context.Context) {
	cr, ok := t.cfg.(Creatable)
	if !ok || !t.privileged() {
		t.notify(notify.Error, "Insufficient privileges")
		return
	}
	cr.Create(ctx, t)
}

// EditItem fetches the entity by id and hands it to the config.  When the
// fetch fails the entity is rebuilt from the rendered row.
func (t *Table) EditItem(ctx context.Context, rawID string) {
	ed, ok := t.cfg.(Editable)
	if !ok || !t.privileged() {
		t.notify(notify.Error, "Insufficient privileges")
		return
	}
	id := NormalizeID(rawID)
	if id == "" {
		t.notify(notify.Error, "Record id is missing")
		return
	}
	box := t.box
	endpoint := strings.TrimSuffix(t.cfg.Endpoint(), "/search") + "/" + url.PathEscape(id)

	var item model.Entity
	var err error
	t.screen.Suspend(func() {
		item, err = remote.Fetch[model.Entity](ctx, t.client, endpoint, remote.Options{Method: http.MethodGet})
	})
	if !box.Alive() {
		return
	}
	if err != nil {
		t.log.Warnf("table %s: fetch %s failed, editing from rendered row: %v", t.cfg.Title(), endpoint, err)
		item = t.rowFromCells(id)
		if item == nil {
			t.notify(notify.Error, "Could not load the record")
			return
		}
	}
	ed.Edit(ctx, t, item)
}

// DeleteItem removes a row after confirmation and reloads.
func (t *Table) DeleteItem(ctx context.Context, rawID string, confirmed bool) {
	del, ok := t.cfg.(Deletable)
	if !ok || !t.privileged() {
		t.notify(notify.Error, "Insufficient privileges")
		return
	}
	id := NormalizeID(rawID)
	if id == "" {
		t.notify(notify.Error, "Record id is missing")
		return
	}
	if !confirmed {
		return
	}
	box := t.box
	var err error
	t.screen.Suspend(func() { err = del.Delete(ctx, id) })
	if err != nil {
		t.client.Report(err)
		return
	}
	t.notify(notify.Success, "Record deleted")
	if box.Alive() {
		t.LoadData(ctx)
	}
}

// ReturnTicket sends a ticket back with the cashier's reason and reloads.
// A nil reason means the prompt was dismissed.
func (t *Table) ReturnTicket(ctx context.Context, rawID string, reason *string) {
	if !t.canReturn() {
		t.notify(notify.Error, "Insufficient privileges")
		return
	}
	id := NormalizeID(rawID)
	if id == "" {
		t.notify(notify.Error, "Record id is missing")
		return
	}
	if reason == nil {
		return
	}
	text := strings.TrimSpace(*reason)
	if text == "" {
		t.notify(notify.Error, "A return reason is required")
		return
	}
	box := t.box
	var done func(context.Context)
	if t.returning != nil {
		done = t.returning(id, text)
	}
	var err error
	t.screen.Suspend(func() {
		_, err = t.client.Call(ctx, "/api/tickets/"+url.PathEscape(id)+"/return", remote.Options{
			Method: http.MethodPost,
			Body:   model.ReturnRequest{Reason: text},
		})
		if err == nil && done != nil {
			done(ctx)
		}
	})
	if err != nil {
		return
	}
	t.notify(notify.Success, "Ticket returned")
	if box.Alive() {
		t.LoadData(ctx)
	}
}

// NormalizeID accepts a bare id ("12", "ab-1"), a JSON string ("\"ab-1\"")
// or a wrapped object ({"id":12}) and returns the bare id.
func NormalizeID(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "{"):
		dec := json.NewDecoder(bytes.NewReader([]byte(s)))
		dec.UseNumber()
		var wrapped map[string]any
		if err := dec.Decode(&wrapped); err != nil {
			return ""
		}
		return strings.TrimSpace(model.FormatValue(wrapped["id"]))
	case strings.HasPrefix(s, `"`):
		var bare string
		if err := json.Unmarshal([]byte(s), &bare); err != nil {
			return ""
		}
		return strings.TrimSpace(bare)
	}
	return s
}
