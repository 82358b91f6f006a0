package handlers

import (
	"context"
	"net/http"
	"sync"

	"mpihole/internal/models"
	"mpihole/internal/notify"
	"mpihole/internal/service"

	"github.com/gin-gonic/gin"
)

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, _ string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(_ context.Context, username, _ string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockToggle struct {
	event models.ToggleEvent
	err   error

	enableCalls  int
	disableCalls []uint
}

func (m *mockToggle) Enable(context.Context) (models.ToggleEvent, error) {
	m.enableCalls++
	return m.event, m.err
}

func (m *mockToggle) Disable(_ context.Context, seconds uint) (models.ToggleEvent, error) {
	m.disableCalls = append(m.disableCalls, seconds)
	return m.event, m.err
}

type mockMonitoring struct {
	status     []models.ServerStatus
	err        error
	refreshErr error
	refreshes  int
}

func (m *mockMonitoring) GetStatus(context.Context) ([]models.ServerStatus, error) {
	return m.status, m.err
}

func (m *mockMonitoring) Refresh(context.Context) ([]models.ServerStatus, error) {
	m.refreshes++
	return m.status, m.refreshErr
}

type mockEventLog struct {
	resp []models.ToggleEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.ToggleEvent, error) {
	m.last = f
	return m.resp, m.err
}

// fakeSubscriber hands out one channel the test writes to.
type fakeSubscriber struct {
	ch       chan notify.Message
	mu       sync.Mutex
	canceled bool
}

func (f *fakeSubscriber) Subscribe() (<-chan notify.Message, func()) {
	return f.ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.canceled = true
	}
}

func newTestRouter(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil, opts).InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
