package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/philharmonic-console/internal/notify"
)

type recorder struct {
	items []notify.Notification
}

func (r *recorder) Notify(level notify.Level, message string, detail ...string) {
	r.items = append(r.items, notify.Notification{Level: level, Message: message, Detail: detail})
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *recorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rec := &recorder{}
	c, err := New(srv.URL, rec, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, rec
}

func TestCallNormalizesStructuredError(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"Email already exists","fieldErrors":{"email":"duplicate"}}`)
	})

	_, err := c.Call(context.Background(), "/api/users", Options{Method: http.MethodPost, Body: map[string]string{"email": "a@b.co"}})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "Email already exists" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if !Reported(err) {
		t.Fatalf("error not marked as reported")
	}
	if len(rec.items) != 1 {
		t.Fatalf("want one notification, got %d", len(rec.items))
	}
	n := rec.items[0]
	text := n.Message + "\n" + strings.Join(n.Detail, "\n")
	if !strings.Contains(text, "Email already exists") || !strings.Contains(text, "email: duplicate") {
		t.Fatalf("notification lacks message or field detail: %q", text)
	}

	c.Report(err)
	if len(rec.items) != 1 {
		t.Fatalf("reported error notified twice")
	}
}

func TestCallNormalizesTextError(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Error", http.StatusInternalServerError)
	})
	_, err := c.Call(context.Background(), "/api/halls/search", Options{Method: http.MethodPost})
	if err == nil || err.Error() != "Internal Error" {
		t.Fatalf("unexpected error %v", err)
	}
	if len(rec.items) != 1 || rec.items[0].Message != "Internal Error" || len(rec.items[0].Detail) != 0 {
		t.Fatalf("unexpected notifications: %+v", rec.items)
	}
}

func TestCallFallbackMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "Error 418"},
		{"error key", `{"status":418,"error":"I'm a teapot","message":""}`, "I'm a teapot"},
		{"json without keys", `{"status":418}`, "Error 418"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.Call(context.Background(), "/x", Options{})
			if err == nil || err.Error() != tt.want {
				t.Fatalf("got %v, want %q", err, tt.want)
			}
		})
	}
}

func TestCallEmptyBodySuccess(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method=%s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	res, err := c.Call(context.Background(), "/api/halls/3", Options{Method: http.MethodDelete})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !res.Success || len(res.Data) != 0 {
		t.Fatalf("want success without data, got %+v", res)
	}
	if len(rec.items) != 0 {
		t.Fatalf("unexpected notifications %+v", rec.items)
	}
}

func TestCallNonJSONSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "deleted")
	})
	res, err := c.Call(context.Background(), "/x", Options{Method: http.MethodDelete})
	if err != nil || !res.Success {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}

func TestCallMergesHeaders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type=%q", ct)
		}
		if v := r.Header.Get("X-Trace"); v != "abc" {
			t.Errorf("X-Trace=%q", v)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["page"] != float64(2) {
			t.Errorf("body=%v err=%v", body, err)
		}
		_, _ = io.WriteString(w, `{"content":[],"number":2}`)
	})
	h := http.Header{}
	h.Set("X-Trace", "abc")
	res, err := c.Call(context.Background(), "/api/concerts/search", Options{
		Method:  http.MethodPost,
		Body:    map[string]any{"page": 2},
		Headers: h,
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var page struct {
		Number json.Number `json:"number"`
	}
	if err := res.Decode(&page); err != nil || page.Number.String() != "2" {
		t.Fatalf("decode: %v %+v", err, page)
	}
}

func TestTransportErrorIsNotified(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	rec := &recorder{}
	c, err := New(srv.URL, rec, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Call(context.Background(), "/api/about", Options{})
	var tErr *TransportError
	if !errors.As(err, &tErr) || !Reported(err) {
		t.Fatalf("want reported *TransportError, got %T %v", err, err)
	}
	if len(rec.items) != 1 || !strings.HasPrefix(rec.items[0].Message, "Connection problem") {
		t.Fatalf("unexpected notifications %+v", rec.items)
	}
}

func TestQuietCallDoesNotNotify(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.Call(context.Background(), "/api/auth/me", Options{Quiet: true})
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("want 401, got %v", err)
	}
	if Reported(err) || len(rec.items) != 0 {
		t.Fatalf("quiet call notified: %+v", rec.items)
	}
}

func TestFetchDecodes(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"name":"Ann","role":"ADMIN"}`)
	})
	got, err := Fetch[map[string]any](context.Background(), c, "/ok", Options{})
	if err != nil || got["name"] != "Ann" {
		t.Fatalf("Fetch: %v %v", got, err)
	}
	if _, err := Fetch[map[string]any](context.Background(), c, "/broken", Options{}); err == nil || !Reported(err) {
		t.Fatalf("want reported decode error, got %v", err)
	}
	if len(rec.items) != 1 {
		t.Fatalf("want one notification, got %+v", rec.items)
	}
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ann@example.com",
		"role": "ADMIN",
		"exp":  exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestTokenLifecycle(t *testing.T) {
	var token string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: TokenCookie, Value: token, Path: "/", HttpOnly: true})
			_, _ = io.WriteString(w, `{"name":"Ann","role":"ADMIN"}`)
		case "/api/auth/me":
			ck, err := r.Cookie(TokenCookie)
			if err != nil || ck.Value == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"name":"Ann","role":"ADMIN"}`)
		}
	})

	if c.HasLiveToken() {
		t.Fatalf("fresh client has a token")
	}
	token = signed(t, time.Now().Add(time.Hour))
	if _, err := c.Call(context.Background(), "/api/auth/login", Options{Method: http.MethodPost}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !c.HasLiveToken() {
		t.Fatalf("token not captured")
	}
	if _, err := c.Call(context.Background(), "/api/auth/me", Options{Quiet: true}); err != nil {
		t.Fatalf("me with cookie: %v", err)
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if c.HasLiveToken() {
		t.Fatalf("expired token reported live")
	}
	c.now = time.Now

	c.Logout()
	if c.HasLiveToken() {
		t.Fatalf("token survived logout")
	}
	if _, err := c.Call(context.Background(), "/api/auth/me", Options{Quiet: true}); !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("want 401 after logout, got %v", err)
	}
}
