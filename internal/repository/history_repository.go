package repository

import (
	"context"
	"database/sql"

	"github.com/movieon/auth-service/internal/model"
)

// DefaultPageSize bounds login history pages when the client does not ask
// for a specific size.
const DefaultPageSize = 50

// HistoryRepo appends and lists login history rows.  Rows are immutable;
// there is no update method on this type.
type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

// Insert appends one login event.
func (r *HistoryRepo) Insert(ctx context.Context, h model.LoginHistory) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO login_history (id, user_id, user_agent, device_type, login_at) VALUES (?,?,?,?,?)",
		h.ID, h.UserID, h.UserAgent, h.DeviceType, h.LoginAt)
	return err
}

// ListByUser returns one page of the user's login history, newest first.
// page is 1-based; non-positive page or size fall back to defaults.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID string, page, size int) ([]model.LoginHistory, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, user_agent, device_type, login_at
		   FROM login_history
		  WHERE user_id = ?
		  ORDER BY login_at DESC
		  LIMIT ? OFFSET ?`, userID, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []model.LoginHistory
	for rows.Next() {
		var h model.LoginHistory
		if err := rows.Scan(&h.ID, &h.UserID, &h.UserAgent, &h.DeviceType, &h.LoginAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
