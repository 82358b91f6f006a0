package models

import (
	"strings"
	"time"
)

// Toggle actions as stored in the event log.
const (
	ActionEnable  = "ENABLE"
	ActionDisable = "DISABLE"
)

// ServerOutcome is the result of one toggle against one Pi-hole.
type ServerOutcome struct {
	BaseURL string `json:"base_url"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// ToggleEvent is a single entry of the toggle history.
type ToggleEvent struct {
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Action     string          `json:"action"`            // ENABLE | DISABLE
	Seconds    int             `json:"seconds,omitempty"` // only for DISABLE
	Succeeded  bool            `json:"succeeded"`         // every server acknowledged
	Outcomes   []ServerOutcome `json:"outcomes,omitempty"`
}

// Failed returns the outcomes that did not succeed.
func (e ToggleEvent) Failed() []ServerOutcome {
	var out []ServerOutcome
	for _, o := range e.Outcomes {
		if !o.OK {
			out = append(out, o)
		}
	}
	return out
}

// FailedURLs lists the base URLs of the failed servers, comma separated.
func (e ToggleEvent) FailedURLs() string {
	failed := e.Failed()
	urls := make([]string, 0, len(failed))
	for _, o := range failed {
		urls = append(urls, o.BaseURL)
	}
	return strings.Join(urls, ", ")
}
