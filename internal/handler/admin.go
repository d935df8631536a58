package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/movieon/auth-service/internal/model"
	"github.com/movieon/auth-service/internal/repository"
)

// AdminHandler serves role and user management under /admin.  Access rules
// are declared in the router's route table, not here.
type AdminHandler struct {
	Users   UserStore
	Roles   RoleStore
	History HistoryStore
}

func NewAdminHandler(users UserStore, roles RoleStore, history HistoryStore) *AdminHandler {
	return &AdminHandler{Users: users, Roles: roles, History: history}
}

type roleReq struct {
	Name string `json:"name"`
}

type roleResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roleWithUsersResp struct {
	roleResp
	Users []profileResp `json:"users"`
}

type userWithRolesResp struct {
	profileResp
	Roles []roleResp `json:"roles"`
}

type adminUserUpdateReq struct {
	profileUpdateReq
	Roles *[]string `json:"roles"` // role ids; nil leaves assignments alone
}

// ListRoles returns all roles.
func (h *AdminHandler) ListRoles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	roles, err := h.Roles.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toRoleResp(roles))
}

// CreateRole adds a new role.
func (h *AdminHandler) CreateRole(c echo.Context) error {
	var req roleReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Roles.Create(ctx, strings.TrimSpace(req.Name)); err != nil {
		if errors.Is(err, repository.ErrRoleExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a role with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create role failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "role was created"})
}

// GetRole returns one role and the users holding it.
func (h *AdminHandler) GetRole(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	users, err := h.Roles.GetUsers(ctx, role.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	resp := roleWithUsersResp{roleResp: roleResp{ID: role.ID, Name: role.Name}}
	resp.Users = make([]profileResp, len(users))
	for i, u := range users {
		resp.Users[i] = toProfileResp(u)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateRole renames a role.
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	var req roleReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Roles.Update(ctx, c.Param("id"), strings.TrimSpace(req.Name)); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		case errors.Is(err, repository.ErrRoleExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a role with this name already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "role was updated"})
}

// DeleteRole removes a role; assignments cascade away with it.
func (h *AdminHandler) DeleteRole(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id := c.Param("id")
	if err := h.Roles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete role failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "role " + id + " was deleted"})
}

// GetUser returns a user's profile with their current roles.
func (h *AdminHandler) GetUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	roles, err := h.Users.GetRoles(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	resp := userWithRolesResp{profileResp: toProfileResp(u), Roles: toRoleResp(roles)}
	return c.JSON(http.StatusOK, resp)
}

// UpdateUser edits a user's profile fields and, when the roles field is
// present, replaces their role assignments with the given role ids.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req adminUserUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id := c.Param("id")
	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.Roles != nil {
		if err := h.Users.UpdateRoles(ctx, id, *req.Roles); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update roles failed"})
		}
	}

	err := h.Users.UpdateProfile(ctx, id, model.ProfileUpdate{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already taken"})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already taken"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "user profile was updated"})
}

// DeleteUser removes a user account and everything assigned to it.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id := c.Param("id")
	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "user " + id + " was deleted"})
}

// GetUserLoginHistory returns one page of a user's login events.
func (h *AdminHandler) GetUserLoginHistory(c echo.Context) error {
	page, size := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	history, err := h.History.ListByUser(ctx, c.Param("id"), page, size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toHistoryResp(history))
}

func toRoleResp(roles []model.Role) []roleResp {
	out := make([]roleResp, len(roles))
	for i, r := range roles {
		out[i] = roleResp{ID: r.ID, Name: r.Name}
	}
	return out
}
