package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind names an entity type shown by the console.
type Kind string

const (
	KindConcert   Kind = "concert"
	KindTicket    Kind = "ticket"
	KindUser      Kind = "user"
	KindHall      Kind = "hall"
	KindPerformer Kind = "performer"
)

// IDFields returns the candidate identifier keys for the kind, generic id
// first.  Different endpoints name the identifier differently, so a row is
// matched against all of them before it is declared id-less.
func (k Kind) IDFields() []string {
	switch k {
	case KindConcert:
		return []string{"id", "concertId"}
	case KindTicket:
		return []string{"id", "ticketId"}
	case KindUser:
		return []string{"id", "userId"}
	case KindHall:
		return []string{"id", "hallId"}
	case KindPerformer:
		return []string{"id", "performerId"}
	}
	return []string{"id"}
}

// Entity is a server record decoded without a schema.  Numbers are kept as
// json.Number so ids and prices are displayed and forwarded verbatim.
type Entity map[string]any

// ResolveID returns the first non-empty identifier of e for kind k.
func (e Entity) ResolveID(k Kind) (string, bool) {
	for _, f := range k.IDFields() {
		if s := e.Text(f); s != "" {
			return s, true
		}
	}
	return "", false
}

// Text renders the value under key for display.  Missing and null values
// yield "".
func (e Entity) Text(key string) string {
	v, ok := e[key]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// FormatValue renders a decoded JSON value as display text.  Nested objects
// are shown by their name or title when they have one.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case float64:
		return fmt.Sprintf("%g", t)
	case map[string]any:
		for _, k := range []string{"name", "title", "id"} {
			if s := FormatValue(t[k]); s != "" {
				return s
			}
		}
		b, _ := json.Marshal(t)
		return string(b)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
