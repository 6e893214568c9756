package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coaching-portal/internal/config"
	"github.com/iliyamo/coaching-portal/internal/middleware"
	"github.com/iliyamo/coaching-portal/internal/model"
	"github.com/iliyamo/coaching-portal/internal/repository"
	"github.com/iliyamo/coaching-portal/internal/utils"
)

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
	Resets ResetStore
	Mail   ResetMailer
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore, r ResetStore, m ResetMailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Resets: r, Mail: m}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // coach | client
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// issueSession creates an access/refresh pair for the user, persists the
// refresh hash (one ledger row per issuance) and sets both cookies.
func (h *AuthHandler) issueSession(ctx context.Context, c echo.Context, u userPart) error {
	access, err := utils.NewAccessToken(h.Cfg.AccessSecret,
		utils.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}, h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashToken(refresh.Raw), refresh.Exp); err != nil {
		return err
	}
	setSessionCookies(c, h.Cfg, access, refresh)
	return nil
}

// Signup: validate, create the user and open a session immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleClient
	}
	if role != model.RoleCoach && role != model.RoleClient {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	// Policy check precedes hashing and any storage mutation.
	if err := utils.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	u := userPart{ID: uid, Email: req.Email, Role: role}
	if err := h.issueSession(ctx, c, u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "user": u})
}

// Login: verify credentials and open a session.  Unknown email and wrong
// password produce the same message so the endpoint never reveals whether
// an address is registered.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	pub := userPart{ID: u.ID, Email: u.Email, Role: u.Role}
	if err := h.issueSession(ctx, c, pub); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": pub})
}

// Refresh: rotate the refresh token presented in the refresh cookie and
// issue a fresh access token.  Rotation revokes the old row before the new
// pair is handed out, so a crash in between strands the caller at re-login
// instead of leaving two live tokens.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ck, err := c.Cookie(h.Cfg.RefreshCookie)
	if err != nil || ck.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	raw := ck.Value

	uid, err := utils.ParseRefresh(h.Cfg.RefreshSecret, raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	hash := utils.HashToken(raw)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ok, err := h.Tokens.IsValid(ctx, uid, hash)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := h.Tokens.RevokeMatching(ctx, uid, hash); err != nil {
		// A vanished row between IsValid and here is a replay signal.
		if errors.Is(err, repository.ErrNoActiveToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	pub := userPart{ID: u.ID, Email: u.Email, Role: u.Role}
	if err := h.issueSession(ctx, c, pub); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": pub})
}

// Logout: best-effort revocation of the presented refresh token, then
// clear both cookies.  Failing to find the token is not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	if ck, err := c.Cookie(h.Cfg.RefreshCookie); err == nil && ck.Value != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		_ = h.Tokens.RevokeMatching(ctx, claims.UserID, utils.HashToken(ck.Value))
	}

	clearSessionCookies(c, h.Cfg)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me returns the identity attached by the session middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    userPart{ID: claims.UserID, Email: claims.Email, Role: claims.Role},
	})
}

// Forgot issues a password-reset ticket.  The response is identical
// whether or not the email is registered.  Issuing supersedes any prior
// unused ticket; the raw token leaves the process only through the mail
// queue (and, in dev, the response body so the flow works without a
// broker).
func (h *AuthHandler) Forgot(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusOK, echo.Map{"success": true})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}

	raw, err := utils.NewResetToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	exp := time.Now().UTC().Add(time.Duration(h.Cfg.ResetTTLMin) * time.Minute)
	if err := h.Resets.Issue(ctx, u.ID, utils.HashToken(raw), exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}

	if err := h.Mail.SendResetToken(ctx, u.Email, raw, exp); err != nil {
		// Delivery problems are logged by the publisher; the ticket stays
		// valid and the caller may retry.
		c.Logger().Warnf("reset mail publish failed for user=%d", u.ID)
	}

	if h.Cfg.Env == "dev" {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "reset_token": raw})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Reset consumes a reset ticket and replaces the password.  The ticket
// check runs against the user's single most recent ticket; consumption and
// the password change commit together or not at all.
func (h *AuthHandler) Reset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Token = strings.TrimSpace(req.Token)
	if req.Email == "" || req.Token == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, token and new_password required"})
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reset request"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}

	ticket, err := h.Resets.Latest(ctx, u.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reset request"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if ticket.UsedAt != nil || time.Now().UTC().After(ticket.ExpiresAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reset request"})
	}
	if !utils.TokenHashEquals(req.Token, ticket.TokenHash) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid reset token"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Resets.Consume(ctx, ticket.ID, u.ID, hash); err != nil {
		if errors.Is(err, repository.ErrTicketSpent) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reset request"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
