// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into audit log lines.
package queue

// LoginEvent is published to the auth.login queue whenever a user logs in.
// It carries enough information for downstream consumers (audit trail,
// anomaly detection, notifications) without querying the primary database.
type LoginEvent struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	UserAgent  string `json:"user_agent"`
	DeviceType string `json:"device_type"`
	LoginAt    string `json:"login_at"`
}
