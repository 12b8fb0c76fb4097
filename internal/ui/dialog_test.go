package ui

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"golang.org/x/net/html"

	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/validate"
)

type hall struct {
	Name     string
	Capacity int
}

type fieldErr map[string]string

func (f fieldErr) Error() string              { return "invalid" }
func (f fieldErr) Fields() map[string]string { return f }

func hallDialog(submit func(context.Context, hall) error, done *int) *Dialog[hall] {
	return &Dialog[hall]{
		Scope:   "hall-form",
		Title:   "New hall",
		Success: "Hall saved",
		Fields: []Field{
			{Name: "name", Label: "Name"},
			{Name: "capacity", Label: "Capacity", Type: "number"},
		},
		Rules: validate.Rules{
			"name":     {{Required: true, MinLength: 2}},
			"capacity": {{Required: true, Number: true, Min: validate.Bound(1)}},
		},
		Decode: func(v map[string]string) (hall, error) {
			n, err := strconv.Atoi(v["capacity"])
			return hall{Name: v["name"], Capacity: n}, err
		},
		Submit: submit,
		Done:   func(context.Context) { *done++ },
	}
}

func openDialog(t *testing.T, s *Screen, d *Dialog[hall]) {
	t.Helper()
	s.Run(func() {
		page(s)
		if !d.Open(s, map[string]string{"name": ""}) {
			t.Fatalf("Open failed")
		}
	})
}

func TestDialogBlocksInvalidInput(t *testing.T) {
	rec := &recorder{}
	s := NewScreen(rec)
	calls, done := 0, 0
	d := hallDialog(func(context.Context, hall) error { calls++; return nil }, &done)
	openDialog(t, s, d)

	err := s.Dispatch(context.Background(), Event{Action: "hall-form/submit", Values: map[string]string{"name": "A", "capacity": "0"}})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if calls != 0 || done != 0 {
		t.Fatalf("invalid form was submitted")
	}
	errs := FindAll(s.Root(), func(n *html.Node) bool { return HasClass(n, "field-error") })
	if len(errs) != 2 {
		t.Fatalf("want 2 inline errors, got %d", len(errs))
	}
	if len(rec.items) != 0 {
		t.Fatalf("validation must not notify: %+v", rec.items)
	}
}

func TestDialogSubmitSuccessCloses(t *testing.T) {
	rec := &recorder{}
	s := NewScreen(rec)
	var got hall
	done := 0
	d := hallDialog(func(_ context.Context, h hall) error { got = h; return nil }, &done)
	openDialog(t, s, d)

	if err := s.Dispatch(context.Background(), Event{Action: "hall-form/submit", Values: map[string]string{"name": "Main", "capacity": "300", "stray": "x"}}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != (hall{Name: "Main", Capacity: 300}) || done != 1 {
		t.Fatalf("got=%+v done=%d", got, done)
	}
	if ByID(s.Root(), ModalID).FirstChild != nil {
		t.Fatalf("modal still open")
	}
	if len(rec.items) != 1 || rec.items[0].Level != notify.Success {
		t.Fatalf("want one success notification, got %+v", rec.items)
	}
	if err := s.Dispatch(context.Background(), Event{Action: "hall-form/submit"}); !errors.Is(err, ErrStaleAction) {
		t.Fatalf("closed dialog still accepts submits: %v", err)
	}
}

func TestDialogSubmitFailureKeepsForm(t *testing.T) {
	rec := &recorder{}
	s := NewScreen(rec)
	done := 0
	d := hallDialog(func(context.Context, hall) error { return fieldErr{"name": "already taken"} }, &done)
	reported := 0
	d.Report = func(error) { reported++ }
	openDialog(t, s, d)

	if err := s.Dispatch(context.Background(), Event{Action: "hall-form/submit", Values: map[string]string{"name": "Main", "capacity": "10"}}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if done != 0 || reported != 1 {
		t.Fatalf("done=%d reported=%d", done, reported)
	}
	msg := Find(s.Root(), func(n *html.Node) bool { return HasClass(n, "field-error") })
	if msg == nil || TextOf(msg) != "already taken" {
		t.Fatalf("server field error not shown inline")
	}
	input := ByID(s.Root(), "f-name")
	if v, _ := AttrOf(input, "value"); v != "Main" {
		t.Fatalf("entered value lost: %q", v)
	}
}

func TestDialogCancel(t *testing.T) {
	s := NewScreen(nil)
	done := 0
	openDialog(t, s, hallDialog(func(context.Context, hall) error { return nil }, &done))
	if err := s.Dispatch(context.Background(), Event{Action: "hall-form/cancel"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ByID(s.Root(), ModalID).FirstChild != nil {
		t.Fatalf("modal still open after cancel")
	}
}

func TestInlineFormResetsAfterSubmit(t *testing.T) {
	rec := &recorder{}
	s := NewScreen(rec)
	done := 0
	d := hallDialog(func(context.Context, hall) error { return nil }, &done)
	s.Run(func() {
		page(s)
		d.Inline(s.Container("content").Claim(), map[string]string{"name": "", "capacity": "1"})
	})
	if ByID(s.Root(), ModalID).FirstChild != nil {
		t.Fatalf("inline form rendered into the modal")
	}
	if err := s.Dispatch(context.Background(), Event{Action: "hall-form/submit", Values: map[string]string{"name": "Small", "capacity": "40"}}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if done != 1 {
		t.Fatalf("done=%d", done)
	}
	if v, _ := AttrOf(ByID(s.Root(), "f-capacity"), "value"); v != "1" {
		t.Fatalf("form not reset, capacity=%q", v)
	}
	if len(ByAction(s.Root(), "hall-form/cancel")) != 0 {
		t.Fatalf("inline form has a cancel control")
	}
}
