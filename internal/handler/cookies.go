package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coaching-portal/internal/config"
	"github.com/iliyamo/coaching-portal/internal/utils"
)

// Session cookies: one httpOnly cookie per credential, lifetime matching
// the token's own ttl.  Clearing must reuse the exact attribute set used
// at set time (domain, path, SameSite, Secure) — browsers silently keep a
// cookie when the clearing attributes differ.

func newSessionCookie(cfg config.Config, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSite,
	}
}

func setSessionCookies(c echo.Context, cfg config.Config, access utils.AccessToken, refresh utils.RefreshToken) {
	c.SetCookie(newSessionCookie(cfg, cfg.AccessCookie, access.Token, access.Exp))
	c.SetCookie(newSessionCookie(cfg, cfg.RefreshCookie, refresh.Raw, refresh.Exp))
}

func clearSessionCookies(c echo.Context, cfg config.Config) {
	for _, name := range []string{cfg.AccessCookie, cfg.RefreshCookie} {
		ck := newSessionCookie(cfg, name, "", time.Unix(0, 0))
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}
