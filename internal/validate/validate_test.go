package validate

import "testing"

func TestValidate(t *testing.T) {
	rules := Rules{
		"email":    {{Required: true, Email: true}},
		"name":     {{Required: true, MinLength: 2}},
		"phone":    {{Phone: true}},
		"capacity": {{Required: true, Number: true, Min: Bound(1)}},
		"date":     {{Required: true, Date: true}},
		"time":     {{Required: true, Time: true}},
		"role":     {{Required: true, Message: "Pick a role"}},
	}

	tests := []struct {
		name   string
		values map[string]string
		errs   map[string]string
	}{
		{
			name: "all valid",
			values: map[string]string{
				"email": "a@b.co", "name": "Al", "phone": "+7 (999) 123-45-67",
				"capacity": "300", "date": "2025-03-01", "time": "19:30", "role": "ADMIN",
			},
		},
		{
			name:   "required wins over other checks",
			values: map[string]string{"email": "  ", "role": ""},
			errs:   map[string]string{"email": "This field is required", "role": "Pick a role"},
		},
		{
			name:   "format failures",
			values: map[string]string{"email": "nope", "name": "A", "phone": "12345", "capacity": "0", "date": "01/03/2025", "time": "24:00"},
			errs: map[string]string{
				"email":    "Enter a valid email address",
				"name":     "Minimum length: 2 characters",
				"phone":    "Enter a valid phone number",
				"capacity": "Enter a valid number",
				"date":     "Enter a valid date",
				"time":     "Enter a valid time (HH:MM)",
			},
		},
		{
			name:   "absent fields are skipped",
			values: map[string]string{"name": "Bob"},
		},
		{
			name:   "optional phone may be empty",
			values: map[string]string{"phone": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.values, rules)
			if res.Valid != (len(tt.errs) == 0) {
				t.Fatalf("Valid=%v, errors=%v", res.Valid, res.FieldErrors)
			}
			if len(res.FieldErrors) != len(tt.errs) {
				t.Fatalf("FieldErrors=%v, want %v", res.FieldErrors, tt.errs)
			}
			for k, v := range tt.errs {
				if res.FieldErrors[k] != v {
					t.Fatalf("FieldErrors[%q]=%q, want %q", k, res.FieldErrors[k], v)
				}
			}
		})
	}
}

func TestNumberBounds(t *testing.T) {
	rules := Rules{"qty": {{Number: true, Min: Bound(1), Max: Bound(4)}}}
	for v, ok := range map[string]bool{"1": true, "4": true, "0": false, "5": false, "2.5": true, "x": false} {
		if got := Validate(map[string]string{"qty": v}, rules).Valid; got != ok {
			t.Fatalf("qty=%q valid=%v, want %v", v, got, ok)
		}
	}
}
