package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movieon/auth-service/internal/middleware"
	"github.com/movieon/auth-service/internal/model"
	"github.com/movieon/auth-service/internal/repository"
)

// ProfileHandler serves the authenticated user's own profile and login
// history.  The user id always comes from the gate-injected context, never
// from the URL, so a user can only ever see themselves here.
type ProfileHandler struct {
	Users    UserStore
	History  HistoryStore
	Sessions SessionManager
}

func NewProfileHandler(users UserStore, history HistoryStore, sessions SessionManager) *ProfileHandler {
	return &ProfileHandler{Users: users, History: history, Sessions: sessions}
}

type profileResp struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type profileUpdateReq struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type loginHistoryResp struct {
	UserAgent  string    `json:"user_agent"`
	DeviceType string    `json:"device_type"`
	LoginAt    time.Time `json:"login_at"`
}

// Get returns the authenticated user's profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserID).(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}

// Update edits the authenticated user's profile fields.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserID).(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err := h.Users.UpdateProfile(ctx, userID, model.ProfileUpdate{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already taken"})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already taken"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "user was updated"})
}

// Delete removes the authenticated user's account along with its role
// assignments and login history; the presented refresh token is revoked so
// the session dies with the account.
func (h *ProfileHandler) Delete(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserID).(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	// Best effort: the account is already gone, a failed revocation only
	// leaves tokens that reference a deleted user.
	if raw, ok := refreshTokenFrom(c); ok {
		_ = h.Sessions.Logout(ctx, raw)
	}
	unsetRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"msg": "user was deleted"})
}

// LoginHistory returns one page of the authenticated user's login events.
func (h *ProfileHandler) LoginHistory(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserID).(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	page, size := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	history, err := h.History.ListByUser(ctx, userID, page, size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toHistoryResp(history))
}

func toProfileResp(u model.User) profileResp {
	return profileResp{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

func toHistoryResp(history []model.LoginHistory) []loginHistoryResp {
	out := make([]loginHistoryResp, len(history))
	for i, h := range history {
		out[i] = loginHistoryResp{
			UserAgent:  h.UserAgent,
			DeviceType: h.DeviceType,
			LoginAt:    h.LoginAt,
		}
	}
	return out
}

// pagination reads the page/page_size query params, falling back to page 1
// and the repository default size.
func pagination(c echo.Context) (page, size int) {
	page, size = 1, repository.DefaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		size = v
	}
	return page, size
}
