// Package validate checks submitted form values against declarative rules.
// Validate is a pure function: it inspects values and returns a Result, it
// never talks to the network and never mutates its inputs.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Rule is one constraint on a field.  Several checks may be enabled on the
// same Rule; they run in a fixed order and the first failure wins.  Message
// overrides the default text of whichever check fails.
type Rule struct {
	Required  bool
	Email     bool
	Phone     bool
	MinLength int
	Number    bool
	Min       *float64
	Max       *float64
	Date      bool
	Time      bool
	Message   string
}

// Rules maps a field name to its rules.
type Rules map[string][]Rule

// Result is the outcome of Validate.  FieldErrors holds at most one message
// per field.
type Result struct {
	Valid       bool
	FieldErrors map[string]string
}

// Bound is a helper for Rule.Min and Rule.Max.
func Bound(v float64) *float64 { return &v }

var (
	emailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe     = regexp.MustCompile(`^[\d\s\-+()]+$`)
	timeRe      = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	dateLayouts = []string{"2006-01-02", "2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339}
)

// Validate checks values against rules.  Fields that have rules but are
// absent from values are skipped, matching a form that does not render that
// input.  Apart from Required, checks only apply to non-empty values.
func Validate(values map[string]string, rules Rules) Result {
	res := Result{Valid: true, FieldErrors: map[string]string{}}
	for field, fieldRules := range rules {
		value, ok := values[field]
		if !ok {
			continue
		}
		for _, r := range fieldRules {
			if msg, failed := r.check(value); failed {
				res.Valid = false
				res.FieldErrors[field] = msg
				break
			}
		}
	}
	return res
}

func (r Rule) check(value string) (string, bool) {
	if r.Required && strings.TrimSpace(value) == "" {
		return r.or("This field is required"), true
	}
	if value == "" {
		return "", false
	}
	if r.Email && !emailRe.MatchString(value) {
		return r.or("Enter a valid email address"), true
	}
	if r.Phone && !validPhone(value) {
		return r.or("Enter a valid phone number"), true
	}
	if r.MinLength > 0 && len([]rune(value)) < r.MinLength {
		return r.or(fmt.Sprintf("Minimum length: %d characters", r.MinLength)), true
	}
	if r.Number && !r.validNumber(value) {
		return r.or("Enter a valid number"), true
	}
	if r.Date && !validDate(value) {
		return r.or("Enter a valid date"), true
	}
	if r.Time && !timeRe.MatchString(value) {
		return r.or("Enter a valid time (HH:MM)"), true
	}
	return "", false
}

func (r Rule) or(def string) string {
	if r.Message != "" {
		return r.Message
	}
	return def
}

func validPhone(s string) bool {
	if !phoneRe.MatchString(s) {
		return false
	}
	digits := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits >= 10
}

func (r Rule) validNumber(s string) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false
	}
	if r.Min != nil && n < *r.Min {
		return false
	}
	if r.Max != nil && n > *r.Max {
		return false
	}
	return true
}

func validDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
