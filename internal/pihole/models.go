package pihole

import "encoding/json"

// authPayload is the body for POST /api/auth.
type authPayload struct {
	Password string `json:"password"`
}

// authResponse captures the session returned by POST /api/auth.
type authResponse struct {
	Session struct {
		Valid    bool   `json:"valid"`
		SID      string `json:"sid"`
		Validity int    `json:"validity"`
		Message  string `json:"message"`
	} `json:"session"`
}

// blockingPayload is the body for POST /api/dns/blocking.
// Timer is omitted to make the change permanent.
type blockingPayload struct {
	Blocking bool  `json:"blocking"`
	Timer    *uint `json:"timer,omitempty"`
}

// BlockingState is returned by GET and POST /api/dns/blocking.
type BlockingState struct {
	Blocking string   `json:"blocking"` // enabled | disabled | failed | unknown
	Timer    *float64 `json:"timer"`    // seconds until the state flips back, nil if permanent
}

type recentBlockedResponse struct {
	Blocked []string `json:"blocked"`
}

// apiError is the error document Pi-hole sends with 4xx/5xx answers.
type apiError struct {
	Error struct {
		Key     string          `json:"key"`
		Message string          `json:"message"`
		Hint    json.RawMessage `json:"hint"`
	} `json:"error"`
}
