package model

import "time"

// Device types recorded in login history rows.  The login_history table is
// LIST-partitioned by this column, so the set of values is closed.
const (
	DeviceMobile = "mobile"
	DevicePC     = "pc"
	DeviceTablet = "tablet"
	DeviceOther  = "other"
)

// LoginHistory is an append-only audit record of a login event.  Rows are
// never updated; they are inserted at login and removed only by the cascade
// when their user is deleted.
type LoginHistory struct {
	ID         string    // login_history.id (UUID)
	UserID     string    // login_history.user_id
	UserAgent  string    // raw User-Agent header of the login request
	DeviceType string    // one of the Device* constants
	LoginAt    time.Time // when the login happened
}
