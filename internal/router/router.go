// Package router wires HTTP routes to handlers. Access requirements are
// data: each protected route carries the role spec the gate enforces,
// so the whole authorization surface is readable in one place.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/movieon/auth-service/internal/access"
	"github.com/movieon/auth-service/internal/handler"
	"github.com/movieon/auth-service/internal/middleware"
)

type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	spec    access.Spec
}

// Register mounts every route on e. Routes in the admin table pass
// through the gate with their declared spec; an empty spec only demands
// a valid, unrevoked access token.
func Register(e *echo.Echo, gate *middleware.Gate, auth *handler.AuthHandler, profile *handler.ProfileHandler, admin *handler.AdminHandler) {
	e.GET("/healthz", handler.Health)

	// Session lifecycle. Refresh and logout authenticate through the
	// presented refresh token itself, not the gate.
	e.POST("/user/register", auth.Register)
	e.POST("/user/login", auth.Login)
	e.POST("/user/refresh", auth.Refresh)
	e.DELETE("/user/logout", auth.Logout)

	authed := []route{
		{http.MethodGet, "/user/profile", profile.Get, access.Spec{}},
		{http.MethodPut, "/user/profile", profile.Update, access.Spec{}},
		{http.MethodDelete, "/user/profile", profile.Delete, access.Spec{}},
		{http.MethodGet, "/user/login_history", profile.LoginHistory, access.Spec{}},

		{http.MethodGet, "/admin/roles", admin.ListRoles, access.Spec{Any: []access.Role{access.Internal}}},
		{http.MethodGet, "/admin/roles/:id", admin.GetRole, access.Spec{Any: []access.Role{access.Internal}}},
		{http.MethodPost, "/admin/roles/create", admin.CreateRole, access.Spec{Shorthand: []access.Role{access.Admin, access.Manager}}},
		{http.MethodPut, "/admin/roles/:id", admin.UpdateRole, access.Spec{Shorthand: []access.Role{access.Admin, access.Manager}}},
		{http.MethodDelete, "/admin/roles/:id", admin.DeleteRole, access.Spec{All: []access.Role{access.Admin, access.Manager}}},

		{http.MethodGet, "/admin/users/:id", admin.GetUser, access.Spec{Any: []access.Role{access.Internal}}},
		{http.MethodGet, "/admin/users/:id/login_history", admin.GetUserLoginHistory, access.Spec{Any: []access.Role{access.Internal}}},
		{http.MethodPut, "/admin/users/:id", admin.UpdateUser, access.Spec{All: []access.Role{access.Admin, access.Manager}}},
		{http.MethodDelete, "/admin/users/:id", admin.DeleteUser, access.Spec{All: []access.Role{access.Admin, access.Manager}}},
	}

	for _, r := range authed {
		e.Add(r.method, r.path, r.handler, gate.Require(r.spec))
	}
}
