package models

import "time"

// Blocking states reported by a Pi-hole.
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
	StatusUnknown  = "unknown"
)

type ServerStatus struct {
	BaseURL   string    `json:"base_url"`
	Blocking  string    `json:"blocking"`        // enabled | disabled | unknown
	Timer     int       `json:"timer,omitempty"` // seconds left on a timed disable
	LastError string    `json:"last_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
