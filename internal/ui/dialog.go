package ui

import (
	"context"
	"errors"

	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/validate"
)

// ModalID is the id of the page element dialogs render into.
const ModalID = "modal"

// FieldErrorer is implemented by errors carrying per-field messages, such as
// a server-side validation failure.  Dialogs show them inline.
type FieldErrorer interface {
	Fields() map[string]string
}

// Dialog is a form producing a T, shown as a modal or inline.  Submitted
// values are validated against Rules first; only a valid form is decoded and
// handed to Submit.  Submit runs without the screen lock and must not touch
// the page.  Done runs after a successful submit, with the lock held, once
// the dialog has closed or been reset.
type Dialog[T any] struct {
	Scope       string
	Title       string
	Fields      []Field
	Rules       validate.Rules
	SubmitLabel string
	Success     string

	Decode func(values map[string]string) (T, error)
	Submit func(ctx context.Context, v T) error
	Done   func(ctx context.Context)

	// Report surfaces a Submit failure.  When nil the error text is
	// notified.  Callers pass their API client's Report so failures it
	// already showed are not shown twice.
	Report func(err error)
}

// Open renders the dialog with initial values and binds its actions.  It
// reports false when the page has no modal container.
func (d *Dialog[T]) Open(s *Screen, initial map[string]string) bool {
	modal := s.Container(ModalID)
	if modal == nil {
		return false
	}
	m := &mounted[T]{d: d, s: s, box: modal.Claim(), modal: true, initial: initial}
	m.show(initial, nil)
	s.On(d.Scope+"/submit", m.submit)
	s.On(d.Scope+"/cancel", func(ctx context.Context, ev Event) { m.box.Set() })
	return true
}

// Inline renders the form straight into c, without the modal frame.  After
// a successful submit the form is shown again with the initial values.
func (d *Dialog[T]) Inline(c *Container, initial map[string]string) {
	m := &mounted[T]{d: d, s: c.Screen(), box: c, initial: initial}
	m.show(initial, nil)
	m.s.On(d.Scope+"/submit", m.submit)
}

type mounted[T any] struct {
	d       *Dialog[T]
	s       *Screen
	box     *Container
	modal   bool
	initial map[string]string
}

func (m *mounted[T]) show(values, errs map[string]string) {
	var general *html.Node
	if msg := errs[""]; msg != "" {
		general = El("div", Class("error"), msg)
	}
	form := Form(m.d.Scope, m.d.SubmitLabel, m.d.Fields, values, errs)
	if m.modal {
		m.box.Set(Overlay(m.d.Title, m.d.Scope+"/cancel", general, form))
		return
	}
	m.box.Set(El("div", Class("form-container"), El("h2", m.d.Title), general, form))
}

func (m *mounted[T]) submit(ctx context.Context, ev Event) {
	d := m.d
	values := Pick(ev.Values, d.Fields)
	if res := validate.Validate(values, d.Rules); !res.Valid {
		m.show(values, res.FieldErrors)
		return
	}
	v, err := d.Decode(values)
	if err != nil {
		m.show(values, map[string]string{"": err.Error()})
		return
	}

	var subErr error
	m.s.Suspend(func() { subErr = d.Submit(ctx, v) })
	if !m.box.Alive() {
		return
	}
	if subErr != nil {
		d.fail(m.s, subErr)
		var fe FieldErrorer
		errs := map[string]string{}
		if errors.As(subErr, &fe) {
			errs = fe.Fields()
		}
		m.show(values, errs)
		return
	}

	if m.modal {
		m.box.Set()
	} else {
		m.show(m.initial, nil)
	}
	if d.Success != "" && m.s.Notifier != nil {
		m.s.Notifier.Notify(notify.Success, d.Success)
	}
	if d.Done != nil {
		d.Done(ctx)
	}
}

func (d *Dialog[T]) fail(s *Screen, err error) {
	if d.Report != nil {
		d.Report(err)
		return
	}
	if s.Notifier != nil {
		s.Notifier.Notify(notify.Error, err.Error())
	}
}

// Overlay is the modal frame: a title, a close control bound to closeAction,
// and the body.
func Overlay(title, closeAction string, body ...*html.Node) *html.Node {
	return El("div", Class("modal-backdrop"),
		El("div", Class("modal-content"),
			El("button", Type("button"), Class("modal-close"), Action(closeAction, ""), "×"),
			El("h2", title),
			body))
}

// ShowModal opens a read-only modal with a close button.
func ShowModal(s *Screen, title string, body ...*html.Node) bool {
	modal := s.Container(ModalID)
	if modal == nil {
		return false
	}
	modal = modal.Claim()
	s.On("modal/close", func(ctx context.Context, ev Event) { modal.Set() })
	return modal.Set(Overlay(title, "modal/close", body...))
}
