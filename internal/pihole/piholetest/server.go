// Package piholetest provides an in-memory Pi-hole API for tests.
package piholetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

const testSID = "test-session-id"

// Server fakes the subset of the Pi-hole v6 API used by this module.
type Server struct {
	*httptest.Server

	Password string

	mu            sync.Mutex
	blocking      string
	timer         *float64
	failBlocking  bool
	blockingCalls int
	authCalls     int
}

// New starts a fake Pi-hole with blocking enabled. It is closed with the test.
func New(t *testing.T, password string) *Server {
	t.Helper()
	s := &Server{Password: password, blocking: "enabled"}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth", s.auth)
	mux.HandleFunc("/api/dns/blocking", s.authed(s.dnsBlocking))
	mux.HandleFunc("/api/stats/summary", s.authed(s.static(`{"queries":{"total":100,"blocked":25},"clients":{"active":3}}`)))
	mux.HandleFunc("/api/info/version", s.authed(s.static(`{"version":{"core":{"local":{"version":"v6.0"}}}}`)))
	mux.HandleFunc("/api/stats/upstreams", s.authed(s.static(`{"upstreams":[{"ip":"1.1.1.1","count":10}]}`)))
	mux.HandleFunc("/api/stats/query_types", s.authed(s.static(`{"types":{"A":60,"AAAA":40}}`)))
	mux.HandleFunc("/api/stats/top_domains", s.authed(s.counted("domains")))
	mux.HandleFunc("/api/stats/top_clients", s.authed(s.counted("clients")))
	mux.HandleFunc("/api/stats/recent_blocked", s.authed(s.recentBlocked))
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// FailBlocking makes blocking changes answer 500.
func (s *Server) FailBlocking(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failBlocking = fail
}

// Blocking returns the current blocking state and timer.
func (s *Server) Blocking() (string, *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocking, s.timer
}

// BlockingCalls counts POST /api/dns/blocking requests.
func (s *Server) BlockingCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockingCalls
}

// AuthCalls counts the POSTs to /api/auth.
func (s *Server) AuthCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authCalls
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func apiErr(w http.ResponseWriter, code int, key, msg string) {
	writeJSON(w, code, map[string]any{"error": map[string]any{"key": key, "message": msg, "hint": nil}})
}

func (s *Server) auth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
		return
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apiErr(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if body.Password != s.Password {
		apiErr(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	s.mu.Lock()
	s.authCalls++
	s.mu.Unlock()
	if s.Password == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"session": map[string]any{"valid": true, "sid": nil, "validity": -1, "message": "no password set"},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session": map[string]any{"valid": true, "sid": testSID, "validity": 300, "message": "password correct"},
	})
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Password != "" && r.Header.Get("X-FTL-SID") != testSID {
			apiErr(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) dnsBlocking(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodPost {
		s.blockingCalls++
		if s.failBlocking {
			apiErr(w, http.StatusInternalServerError, "ftl_error", "FTL not reachable")
			return
		}
		var body struct {
			Blocking bool     `json:"blocking"`
			Timer    *float64 `json:"timer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			apiErr(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		if body.Blocking {
			s.blocking = "enabled"
		} else {
			s.blocking = "disabled"
		}
		s.timer = body.Timer
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocking": s.blocking, "timer": s.timer})
}

func (s *Server) static(doc string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	}
}

func (s *Server) counted(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("count"))
		items := make([]map[string]any, 0, n)
		for i := 0; i < n; i++ {
			items = append(items, map[string]any{"name": key + strconv.Itoa(i), "count": n - i})
		}
		writeJSON(w, http.StatusOK, map[string]any{key: items})
	}
}

func (s *Server) recentBlocked(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("count"))
	blocked := make([]string, 0, n)
	for i := 0; i < n; i++ {
		blocked = append(blocked, "ads"+strconv.Itoa(i)+".example.com")
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocked": blocked})
}
