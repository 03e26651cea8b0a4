package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer HS256 access
// token and stores the token's subject and role claims in the request
// context.  The subject is stored as a uint64 under "user_id" and the role
// as a string under "role"; handlers read them back through UserID and
// Role.  Tokens whose subject is not a positive integer are rejected.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with our secret.  Only HMAC keys are accepted and the
			// algorithm is pinned to HS256, so a token signed with "none"
			// or an asymmetric method never reaches the key callback.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			// Expired, malformed or badly signed tokens all end up here.
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// The subject must name a user; everything downstream keys
			// ownership checks on it.
			uid, ok := subjectID(claims["sub"])
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			// A missing role is stored as "" and rejected by RequireRole.
			role, _ := claims["role"].(string)

			c.Set(userIDKey, uid)
			c.Set(roleKey, role)
			return next(c)
		}
	}
}

// subjectID accepts a numeric subject or a decimal string.  JSON numbers
// decode as float64, so fractional or out-of-range values are refused.
func subjectID(v any) (uint64, bool) {
	switch s := v.(type) {
	case float64:
		if s >= 1 && s == float64(uint64(s)) {
			return uint64(s), true
		}
	case string:
		if n, err := strconv.ParseUint(s, 10, 64); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}
