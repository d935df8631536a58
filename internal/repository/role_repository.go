package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/movieon/auth-service/internal/model"
)

// RoleRepo persists roles and answers reverse lookups (users of a role).
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Create inserts a new role and returns it.
func (r *RoleRepo) Create(ctx context.Context, name string) (model.Role, error) {
	role := model.Role{ID: uuid.NewString(), Name: name}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (id, name) VALUES (?,?)", role.ID, role.Name)
	if err != nil {
		if isDuplicate(err) {
			return model.Role{}, ErrRoleExists
		}
		return model.Role{}, err
	}
	return role, nil
}

// GetByID fetches a role by id.
func (r *RoleRepo) GetByID(ctx context.Context, id string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE id=? LIMIT 1", id).Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrNotFound
	}
	return role, err
}

// List returns all roles ordered by name.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name FROM roles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Update renames a role.
func (r *RoleRepo) Update(ctx context.Context, id, name string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE roles SET name=? WHERE id=?", name, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrRoleExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		if probe := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM roles WHERE id=? LIMIT 1", id).Scan(&one); probe == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes a role.  user_role rows follow via ON DELETE CASCADE, so
// deleting a role immediately strips it from every user's live role set.
// Tokens that captured the role keep their snapshot until they expire.
func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM roles WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUsers returns the users holding the role.
func (r *RoleRepo) GetUsers(ctx context.Context, roleID string) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.created_at
		   FROM users u
		   JOIN user_role ur ON ur.user_id = u.id
		  WHERE ur.role_id = ?
		  ORDER BY u.email`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			u                             model.User
			username, firstName, lastName sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Email, &username,
			&firstName, &lastName, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Username = username.String
		u.FirstName = firstName.String
		u.LastName = lastName.String
		users = append(users, u)
	}
	return users, rows.Err()
}
