package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ClientsHandler exposes the coach dashboard listing.  The route is gated
// by RequireRole(coach) in the router.
type ClientsHandler struct {
	Users UserStore
}

func NewClientsHandler(u UserStore) *ClientsHandler { return &ClientsHandler{Users: u} }

type clientPart struct {
	ID          uint64  `json:"id"`
	Email       string  `json:"email"`
	CurrentWeek uint32  `json:"currentWeek"`
	LastActive  *string `json:"lastActive"`
}

// List returns every client account with programme progress.
func (h *ClientsHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	clients, err := h.Users.ListClients(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]clientPart, 0, len(clients))
	for _, cs := range clients {
		p := clientPart{ID: cs.ID, Email: cs.Email, CurrentWeek: cs.CurrentWeek}
		if cs.LastActive != nil {
			s := cs.LastActive.UTC().Format(time.RFC3339)
			p.LastActive = &s
		}
		out = append(out, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "clients": out})
}
