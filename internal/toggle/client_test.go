package toggle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordingServer answers every request with code and remembers the paths.
type recordingServer struct {
	mu    sync.Mutex
	paths []string
	code  int
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.mu.Unlock()
	w.WriteHeader(s.code)
	_, _ = w.Write([]byte("OK"))
}

func (s *recordingServer) lastPath(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.paths) == 0 {
		t.Fatalf("no request reached the server")
	}
	return s.paths[len(s.paths)-1]
}

func newTestClient(t *testing.T, code int) (*Client, *recordingServer) {
	t.Helper()
	rec := &recordingServer{code: code}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/"}), rec
}

func TestDisable_PathCarriesExactSeconds(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK)

	for _, n := range []uint{0, 1, 59, 300, 86400, 4294967295} {
		res := c.Disable(context.Background(), n)
		if !res.Succeeded {
			t.Fatalf("disable(%d) failed: %s", n, res.Message)
		}
		want := "/disable/" + uintString(n)
		if got := rec.lastPath(t); got != want {
			t.Fatalf("disable(%d) path = %q, want %q", n, got, want)
		}
	}
}

func TestDisable300_Scenario(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK)

	res := c.Disable(context.Background(), 300)

	if got := rec.lastPath(t); got != "/disable/300" {
		t.Fatalf("path = %q", got)
	}
	want := Result{Succeeded: true, Message: "Successfully disabled the pihole servers for 300 seconds"}
	if res != want {
		t.Fatalf("got %+v, want %+v", res, want)
	}
}

func TestEnable_Success(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK)

	res := c.Enable(context.Background())

	if rec.lastPath(t) != "/enable" {
		t.Fatalf("unexpected path %q", rec.lastPath(t))
	}
	if !res.Succeeded || res.Message != "Successfully enabled the pihole servers" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEnable_ServerErrorIsTransportFailure(t *testing.T) {
	c, _ := newTestClient(t, http.StatusInternalServerError)

	res := c.Enable(context.Background())

	if res.Succeeded {
		t.Fatalf("expected failure")
	}
	for _, part := range []string{"(error)", "enabling piholes", "Internal Server Error"} {
		if !strings.Contains(res.Message, part) {
			t.Fatalf("message %q missing %q", res.Message, part)
		}
	}
}

func TestDisable_NotFoundIsTransportFailure(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound)

	res := c.Disable(context.Background(), 10)

	if res.Succeeded || !strings.Contains(res.Message, "disabling piholes: Not Found") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEnable_TimeoutScenario(t *testing.T) {
	res := failed(EnableRequest(), &TransportFailure{Status: "timeout", Reason: "ETIMEDOUT"})

	if res.Succeeded {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Message, "timeout") || !strings.Contains(res.Message, "ETIMEDOUT") {
		t.Fatalf("message %q must carry status and error", res.Message)
	}
}

func TestEnable_DeadlineExceededReportsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := c.Enable(ctx)

	if res.Succeeded || !strings.Contains(res.Message, "(timeout)") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEnable_CancelledContextReportsAbort(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Enable(ctx)

	if res.Succeeded || !strings.Contains(res.Message, "(abort)") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEnable_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := New(Config{BaseURL: url}).Enable(context.Background())

	if res.Succeeded || !strings.Contains(res.Message, "(error) enabling piholes") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDo_InvalidRequestNeverHitsNetwork(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK)

	res := c.Do(context.Background(), Request{Action: Disable})

	if res.Succeeded {
		t.Fatalf("expected failure for disable without seconds")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.paths) != 0 {
		t.Fatalf("invalid request reached the server: %v", rec.paths)
	}
}

func TestSubmit_CallsHandlerExactlyOnce(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusBadGateway} {
		c, _ := newTestClient(t, code)

		var calls atomic.Int32
		got := make(chan Result, 2)
		c.Submit(context.Background(), DisableRequest(5), func(r Result) {
			calls.Add(1)
			got <- r
		})

		select {
		case r := <-got:
			if r.Succeeded != (code == http.StatusOK) {
				t.Fatalf("code %d: unexpected result %+v", code, r)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("code %d: handler was not called", code)
		}

		time.Sleep(50 * time.Millisecond)
		if n := calls.Load(); n != 1 {
			t.Fatalf("code %d: handler called %d times", code, n)
		}
	}
}

func TestSubmit_ConcurrentCallsAreIndependent(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		i := i
		c.Submit(context.Background(), DisableRequest(uint(i)), func(r Result) {
			results[i] = r
			wg.Done()
		})
	}
	wg.Wait()

	for i, r := range results {
		want := "for " + uintString(uint(i)) + " seconds"
		if !r.Succeeded || !strings.HasSuffix(r.Message, want) {
			t.Fatalf("result %d = %+v", i, r)
		}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.paths) != n {
		t.Fatalf("expected %d requests, got %d", n, len(rec.paths))
	}
}

func TestNew_DefaultsBaseURL(t *testing.T) {
	if c := New(Config{}); c.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL = %q", c.BaseURL)
	}
}
