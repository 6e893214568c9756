package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coaching-portal/internal/utils"
)

// Session returns an Echo middleware that locates an access token —
// first in the named cookie, then in an "Authorization: Bearer" header —
// verifies it against the access secret, and injects the identity claims
// into the request context under "user_id", "email" and "role".
//
// Every failure (missing credential, bad signature, expiry, malformed
// payload) surfaces as the same 401 so the response never leaks which
// validation step rejected the token.  Handlers behind this middleware
// read the identity from the context rather than any ambient global.
func Session(secret, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
				raw = ck.Value
			} else if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			claims, err := utils.ParseAccess(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
			return next(c)
		}
	}
}

// CurrentUser reassembles the identity stored by Session.  ok is false
// when the middleware did not run or stored unexpected types.
func CurrentUser(c echo.Context) (utils.Claims, bool) {
	uid, uok := c.Get("user_id").(uint64)
	email, _ := c.Get("email").(string)
	role, rok := c.Get("role").(string)
	if !uok || !rok {
		return utils.Claims{}, false
	}
	return utils.Claims{UserID: uid, Email: email, Role: role}, true
}
