package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coaching-portal/internal/middleware"
	"github.com/iliyamo/coaching-portal/internal/model"
	"github.com/iliyamo/coaching-portal/internal/utils"
)

// WeekHandler serves per-(client, week) journal payloads.  Ownership is
// enforced here, not in the store: a client may only touch their own
// weeks, a coach may touch anyone's.
type WeekHandler struct {
	Weeks WeekStore
}

func NewWeekHandler(w WeekStore) *WeekHandler { return &WeekHandler{Weeks: w} }

type saveWeekReq struct {
	Data json.RawMessage `json:"data"`
}

// weekParams parses and authorizes the :id/:week pair.  The bool result is
// false when a response was already written.
func weekParams(c echo.Context) (uint64, uint32, utils.Claims, bool) {
	clientID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || clientID == 0 {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "bad params"})
		return 0, 0, utils.Claims{}, false
	}
	week, err := strconv.ParseUint(c.Param("week"), 10, 32)
	if err != nil || week == 0 {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "bad params"})
		return 0, 0, utils.Claims{}, false
	}
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		return 0, 0, utils.Claims{}, false
	}
	if claims.Role != model.RoleCoach && claims.UserID != clientID {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return 0, 0, utils.Claims{}, false
	}
	return clientID, uint32(week), claims, true
}

// GetWeek returns the stored payload for a week.  A week never written is
// a success with null data and null updatedAt, not an error.
func (h *WeekHandler) GetWeek(c echo.Context) error {
	clientID, week, _, ok := weekParams(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rec, found, err := h.Weeks.Get(ctx, clientID, week)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !found {
		return c.JSON(http.StatusOK, echo.Map{
			"clientId": clientID, "week": week, "data": nil, "updatedAt": nil,
		})
	}
	var data interface{}
	if len(rec.Data) > 0 {
		data = rec.Data
	}
	return c.JSON(http.StatusOK, echo.Map{
		"clientId":  clientID,
		"week":      week,
		"data":      data,
		"updatedAt": rec.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// SaveWeek upserts the payload for a week: creates on first write,
// replaces destructively on subsequent writes (last-write-wins).
func (h *WeekHandler) SaveWeek(c echo.Context) error {
	clientID, week, _, ok := weekParams(c)
	if !ok {
		return nil
	}
	var req saveWeekReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	updatedAt, err := h.Weeks.Upsert(ctx, clientID, week, req.Data)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"clientId":  clientID,
		"week":      week,
		"updatedAt": updatedAt.UTC().Format(time.RFC3339),
	})
}
