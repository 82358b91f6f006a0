package models

import "testing"

func TestToggleEvent_Failed(t *testing.T) {
	e := ToggleEvent{Outcomes: []ServerOutcome{
		{BaseURL: "http://pi1", OK: true},
		{BaseURL: "http://pi2", Error: "timeout"},
		{BaseURL: "http://pi3", Error: "refused"},
	}}

	if got := e.Failed(); len(got) != 2 || got[0].BaseURL != "http://pi2" {
		t.Fatalf("Failed() = %+v", got)
	}
	if got := e.FailedURLs(); got != "http://pi2, http://pi3" {
		t.Fatalf("FailedURLs() = %q", got)
	}
	if got := (ToggleEvent{}).FailedURLs(); got != "" {
		t.Fatalf("empty event: %q", got)
	}
}
