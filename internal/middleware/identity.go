package middleware

// identity.go holds the context keys set by JWTAuth and the accessors the
// handlers and the rate limiter use to read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys written by JWTAuth.  The values are a uint64 and a string.
const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// Roles carried in the "role" claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// UserID returns the authenticated user id.  ok is false when JWTAuth did
// not run for this route or stored something unexpected.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id > 0
}

// Role returns the authenticated role, or "" when there is none.
func Role(c echo.Context) string {
	r, _ := c.Get(roleKey).(string)
	return r
}

// userKey is the rate limiter's view of the caller: the user id, or "anon".
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
