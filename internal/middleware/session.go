package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionKey is the echo context key holding the console session id.
const SessionKey = "session_id"

// SessionID makes sure every request belongs to a console session.  A
// missing or malformed cookie gets a fresh random id; the id is stored in
// the context under SessionKey for the handlers and the rate limiter.
func SessionID(cookieName string, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cookieName); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(SessionKey, id)
			return next(c)
		}
	}
}

// CurrentSession returns the session id set by SessionID, or "anon".
func CurrentSession(c echo.Context) string {
	if s, ok := c.Get(SessionKey).(string); ok && s != "" {
		return s
	}
	return "anon"
}
