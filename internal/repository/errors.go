// Package repository contains the persistence layer: relational stores for
// users, roles and login history on MySQL, and the token blocklist on Redis.
// Sentinel errors defined here let handlers map failures to HTTP statuses
// without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a referenced user or role does not exist.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by user creation when the email is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned by profile updates that collide with an
// existing username.
var ErrUsernameExists = errors.New("username already exists")

// ErrRoleExists is returned by role creation when the name is taken.
var ErrRoleExists = errors.New("role already exists")
