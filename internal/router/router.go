// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coaching-portal/internal/config"
	"github.com/iliyamo/coaching-portal/internal/handler"
	"github.com/iliyamo/coaching-portal/internal/middleware"
	"github.com/iliyamo/coaching-portal/internal/model"
)

// Register mounts the full HTTP surface.  The unauthenticated auth
// endpoints sit behind the fixed-window rate limiter; everything past
// login is gated by the session middleware, with the coach listing
// additionally role-gated.  Week routes enforce self-or-coach inside the
// handler because the decision needs the path parameter.
func Register(e *echo.Echo, cfg config.Config, a *handler.AuthHandler, w *handler.WeekHandler, cl *handler.ClientsHandler, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	// Credential-creating endpoints, rate limited per IP+route.
	e.POST("/signup", a.Signup, limiter)
	e.POST("/login", a.Login, limiter)
	e.POST("/auth/forgot", a.Forgot, limiter)
	e.POST("/auth/reset", a.Reset, limiter)

	// Refresh authenticates via the refresh cookie, not the session
	// middleware: its whole point is working after the access token died.
	e.POST("/auth/refresh", a.Refresh)

	sess := middleware.Session(cfg.AccessSecret, cfg.AccessCookie)

	e.POST("/logout", a.Logout, sess)
	e.GET("/me", a.Me, sess)

	e.GET("/clients", cl.List, sess, middleware.RequireRole(model.RoleCoach))
	e.GET("/clients/:id/weeks/:week", w.GetWeek, sess)
	e.POST("/clients/:id/weeks/:week", w.SaveWeek, sess)
}
