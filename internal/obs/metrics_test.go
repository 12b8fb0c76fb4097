package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/api/concerts/12":              "/api/concerts/:id",
		"/api/concerts/public/12/available-tickets": "/api/concerts/public/:id/available-tickets",
		"/api/users/5f0c2a8e-1b7d-4f7e-9a51-3b8f4c1d2e6a": "/api/users/:id",
		"/api/tickets/search":           "/api/tickets/search",
		"/api/tickets/search?page=1":    "/api/tickets/search",
		"/api/tickets/7/return":         "/api/tickets/:id/return",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}

func TestInstrumentKeepsStatus(t *testing.T) {
	Init()
	Init()
	h := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x/1", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status=%d", rec.Code)
	}
}
