package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movieon/auth-service/internal/config"
	"github.com/movieon/auth-service/internal/middleware"
	"github.com/movieon/auth-service/internal/repository"
	"github.com/movieon/auth-service/internal/session"
	"github.com/movieon/auth-service/internal/token"
	"github.com/movieon/auth-service/internal/utils"
)

// refreshCookieName is the cookie carrying the refresh token.  It is
// path-scoped to /user/ so the long-lived credential only travels to the
// session endpoints, and HttpOnly so scripts never see it.
const refreshCookieName = "refresh_token"

const refreshCookiePath = "/user/"

const dbTimeout = 5 * time.Second

// AuthHandler bundles the dependencies of the session endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionManager
}

func NewAuthHandler(cfg config.Config, users UserStore, sessions SessionManager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new user account.  Registration does not log the user
// in; the client follows up with POST /user/login.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Email, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a user with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Login verifies the credentials, records the login event and returns a
// fresh token pair.  The refresh token additionally travels in a
// path-scoped cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "wrong email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "wrong email or password"})
	}

	pair, err := h.Sessions.Login(ctx, u, c.Request().UserAgent())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	setRefreshCookie(c, pair)
	return c.JSON(http.StatusOK, tokenPairResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh rotates the presented refresh token into a new pair.  The token
// may arrive in the JSON body, the Authorization header, or the refresh
// cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, ok := refreshTokenFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Sessions.Refresh(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRevoked):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": session.ErrRevoked.Error()})
		case errors.Is(err, token.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
		}
	}

	setRefreshCookie(c, pair)
	return c.JSON(http.StatusOK, tokenPairResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout revokes the presented token (and, for refresh tokens, its paired
// access token), terminating the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, ok := refreshTokenFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.Logout(ctx, raw); err != nil {
		switch {
		case errors.Is(err, session.ErrRevoked):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": session.ErrRevoked.Error()})
		case errors.Is(err, token.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	}

	unsetRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"msg": "successfully logged out"})
}

// refreshTokenFrom pulls a token from the JSON body, the Authorization
// header, or the refresh cookie, in that order.
func refreshTokenFrom(c echo.Context) (string, bool) {
	var req refreshReq
	_ = c.Bind(&req)
	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		return raw, true
	}
	if raw, ok := middleware.BearerToken(c.Request().Header.Get("Authorization")); ok {
		return raw, true
	}
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func setRefreshCookie(c echo.Context, pair session.TokenPair) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		Expires:  pair.RefreshExpires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func unsetRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
	})
}
