package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/notify"
)

var (
	// ErrStaleAction means the posted control is not part of the current
	// page, usually because the page changed after the browser rendered it.
	ErrStaleAction = errors.New("ui: action is not bound on the current page")
	// ErrNoHandler means the control exists but nothing handles it.
	ErrNoHandler = errors.New("ui: no handler registered for action")
)

// Event is one posted interaction.  Values holds the named inputs of the
// enclosing form.  Confirmed is the answer to a data-confirm question and
// Input the answer to a data-prompt (nil when there was no prompt).
type Event struct {
	Action    string
	Arg       string
	Values    map[string]string
	Confirmed bool
	Input     *string
}

// Handler reacts to an event.  Handlers own their failures: they notify or
// render inline errors, they never return them.
type Handler func(ctx context.Context, ev Event)

// Screen is the page of one session.  It behaves like a single-threaded
// event loop: handlers run with the screen lock held and give it up only
// inside Suspend, around network calls.  Other requests of the same session
// can therefore interleave only at those points.
type Screen struct {
	mu       sync.Mutex
	root     *html.Node
	epoch    uint64
	gens     map[string]uint64
	handlers map[string]Handler
	seq      int

	// Notifier receives messages raised by dialogs and components.
	Notifier notify.Notifier
}

// NewScreen returns an empty screen rooted at <div id="app">.
func NewScreen(n notify.Notifier) *Screen {
	return &Screen{
		root:     El("div", ID("app")),
		gens:     map[string]uint64{},
		handlers: map[string]Handler{},
		Notifier: n,
	}
}

// Run executes fn with the screen lock held.
func (s *Screen) Run(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Suspend releases the lock while fn runs.  It must only be called from code
// already holding the lock, that is from a handler or from inside Run.
func (s *Screen) Suspend(fn func()) {
	s.mu.Unlock()
	defer s.mu.Lock()
	fn()
}

// Reset replaces the whole page with children of a fresh #app root.  Every
// container handle and every handler of the previous page is invalidated.
func (s *Screen) Reset(children ...*html.Node) {
	s.root = El("div", ID("app"), children)
	s.epoch++
	s.gens = map[string]uint64{}
	s.handlers = map[string]Handler{}
}

// Root returns the current page tree.
func (s *Screen) Root() *html.Node { return s.root }

// NextScope returns a screen-unique prefix for component actions.
func (s *Screen) NextScope(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

// On registers h for action, replacing any previous handler.
func (s *Screen) On(action string, h Handler) {
	s.handlers[action] = h
}

// Bindings lists the (action, arg) pairs reachable on the page.
type Bindings map[string]map[string]bool

// Has reports whether a control with action and arg exists.
func (b Bindings) Has(action, arg string) bool {
	return b[action][arg]
}

// Bind makes the single delegated pass over the page and collects every
// bound control.
func (s *Screen) Bind() Bindings {
	b := Bindings{}
	Walk(s.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		action, ok := AttrOf(n, "data-action")
		if !ok || action == "" {
			return true
		}
		if _, disabled := AttrOf(n, "disabled"); disabled {
			return true
		}
		arg, _ := AttrOf(n, "data-arg")
		if b[action] == nil {
			b[action] = map[string]bool{}
		}
		b[action][arg] = true
		return true
	})
	return b
}

// Unhandled returns bound actions without a handler.  A non-empty result is
// a programming error in a view.
func (s *Screen) Unhandled() []string {
	var out []string
	for action := range s.Bind() {
		if _, ok := s.handlers[action]; !ok {
			out = append(out, action)
		}
	}
	return out
}

// Dispatch runs the handler of ev if the posted control is still on the
// page.  It takes the screen lock itself.
func (s *Screen) Dispatch(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Bind().Has(ev.Action, ev.Arg) {
		return ErrStaleAction
	}
	h, ok := s.handlers[ev.Action]
	if !ok {
		return ErrNoHandler
	}
	if ev.Values == nil {
		ev.Values = map[string]string{}
	}
	h(ctx, ev)
	return nil
}

// HTML serializes the page.
func (s *Screen) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Render(s.root)
}

// Container returns a handle on the element with the given id, leased at
// the current generation.  It returns nil when no such element exists.
func (s *Screen) Container(id string) *Container {
	n := ByID(s.root, id)
	if n == nil {
		return nil
	}
	return &Container{s: s, node: n, key: id, epoch: s.epoch, gen: s.gens[id]}
}
