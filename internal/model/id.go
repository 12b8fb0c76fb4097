package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ID is a server-assigned identifier kept exactly as the API sent it.
// Concerts and tickets use integer ids while users use UUIDs, so the value
// is stored as its textual form and never parsed or renumbered.
type ID string

var errBadID = errors.New("model: id must be a string or a number")

func (id ID) String() string { return string(id) }

// Empty reports whether the id is absent.
func (id ID) Empty() bool { return id == "" }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errBadID
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as JSON numbers and everything else as a
// string, so an id round-trips in the shape the API issued it.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if isNumeric(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '-' && i == 0 && len(s) > 1 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
