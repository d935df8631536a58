package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/movieon/auth-service/internal/model"
	"github.com/movieon/auth-service/internal/utils"
)

// UserRepo persists users and their role assignments.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,username,password_hash,first_name,last_name,created_at"

// Create inserts a new user with a bcrypt-hashed password and returns the
// stored record.  Email is normalized to lower case before insert.
func (r *UserRepo) Create(ctx context.Context, email, password string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash) VALUES (?,?,?)",
		u.ID, u.Email, u.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateProfile applies the non-nil fields of up to the user row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, up model.ProfileUpdate) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if up.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*up.Email)))
	}
	if up.Username != nil {
		sets = append(sets, "username=?")
		args = append(args, *up.Username)
	}
	if up.FirstName != nil {
		sets = append(sets, "first_name=?")
		args = append(args, *up.FirstName)
	}
	if up.LastName != nil {
		sets = append(sets, "last_name=?")
		args = append(args, *up.LastName)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		if isDuplicate(err) {
			if strings.Contains(err.Error(), "username") {
				return ErrUsernameExists
			}
			return ErrEmailExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		// Either the user is gone or nothing changed; disambiguate with a
		// cheap existence probe so handlers can return 404 for the former.
		var one int
		if probe := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&one); probe == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return err
}

// Delete removes the user.  user_role rows follow via ON DELETE CASCADE;
// login_history is partitioned and carries no foreign key, so its rows are
// removed explicitly in the same transaction.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM login_history WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// GetRoles returns the roles assigned to a user through the user_role join.
func (r *UserRepo) GetRoles(ctx context.Context, userID string) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.name
		   FROM roles r
		   JOIN user_role ur ON ur.role_id = r.id
		  WHERE ur.user_id = ?
		  ORDER BY r.name`, userID)
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

// UpdateRoles makes the user's assignments exactly the given role ids:
// rows for ids not in the list are deleted, missing ones are inserted.
// Runs in a transaction so a concurrent reader never sees a half-applied
// assignment set.
func (r *UserRepo) UpdateRoles(ctx context.Context, userID string, roleIDs []string) error {
	want := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		want[id] = struct{}{}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		"SELECT role_id FROM user_role WHERE user_id=?", userID)
	if err != nil {
		return err
	}
	current := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		current[id] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for id := range current {
		if _, keep := want[id]; !keep {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM user_role WHERE user_id=? AND role_id=?", userID, id); err != nil {
				return err
			}
		}
	}
	for id := range want {
		if _, have := current[id]; !have {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO user_role (id, user_id, role_id) VALUES (?,?,?)",
				uuid.NewString(), userID, id); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u                             model.User
		username, firstName, lastName sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &username, &u.PasswordHash,
		&firstName, &lastName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Username = username.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	return u, nil
}

// isDuplicate reports whether err is a MySQL duplicate-key violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
