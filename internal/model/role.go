package model

import (
	"encoding/json"
	"strings"
)

// Role identifies what an authenticated user is allowed to see.  The zero
// value RoleNone means the session is not authenticated.
type Role int

const (
	RoleNone Role = iota
	RoleCustomer
	RoleCashier
	RoleAdmin
)

// Roles lists every assignable role in the order the console presents them
// in selects and filters.
var Roles = []Role{RoleAdmin, RoleCashier, RoleCustomer}

// ParseRole converts a role name as sent by the API into a Role.  Matching is
// case-insensitive and tolerates a Spring style "ROLE_" prefix.  Unknown
// names yield RoleNone.
func ParseRole(s string) Role {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "ROLE_")
	switch s {
	case "CUSTOMER":
		return RoleCustomer
	case "CASHIER":
		return RoleCashier
	case "ADMIN":
		return RoleAdmin
	}
	return RoleNone
}

// String returns the wire name of the role, or "" for RoleNone.
func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "CUSTOMER"
	case RoleCashier:
		return "CASHIER"
	case RoleAdmin:
		return "ADMIN"
	}
	return ""
}

// Authenticated reports whether r is a real role.
func (r Role) Authenticated() bool { return r != RoleNone }

func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*r = RoleNone
		return nil
	}
	*r = ParseRole(*s)
	return nil
}
