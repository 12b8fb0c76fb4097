package model

// UserSummary is what GET /api/auth/me returns for the current session.
// Only Name and Role are guaranteed; the remaining fields are shown when the
// API includes them.
//
// Fields:
//
//	ID    – user id (UUID), may be empty.
//	Name  – display name.
//	Email – login email, may be empty.
//	Phone – contact phone, may be empty.
//	Role  – resolved role of the session.
type UserSummary struct {
	ID    ID     `json:"id,omitempty"`    // users.id
	Name  string `json:"name"`            // users.name
	Email string `json:"email,omitempty"` // users.email
	Phone string `json:"phone,omitempty"` // users.phone
	Role  Role   `json:"role"`            // users.role
}

// User is a row of the administrator's users table.
type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// UserRequest is the body of POST /api/users and PUT /api/users/{id}.  The
// password is only sent when creating a user.
type UserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.  Self
// registration always creates a customer on the server side.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}
