package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"mpihole/internal/config"
	"mpihole/internal/pihole/piholetest"

	"github.com/fatih/color"
)

const testPassword = "pw"

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func writeServers(t *testing.T, servers ...config.PiServer) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.json")
	if err := config.SaveServers(path, &config.PiConfig{Servers: servers}); err != nil {
		t.Fatalf("SaveServers: %v", err)
	}
	return path
}

func TestStatus(t *testing.T) {
	a := piholetest.New(t, testPassword)
	b := piholetest.New(t, testPassword)
	path := writeServers(t, config.NewPiServer(a.URL, testPassword), config.NewPiServer(b.URL, testPassword))

	out, err := run(t, "", "--config", path, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{a.URL + ": enabled", b.URL + ": enabled"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q misses %q", out, want)
		}
	}
}

func TestDisableThenEnable(t *testing.T) {
	srv := piholetest.New(t, testPassword)
	path := writeServers(t, config.NewPiServer(srv.URL, testPassword))

	out, err := run(t, "", "--config", path, "disable", "--time", "60")
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	state, timer := srv.Blocking()
	if state != "disabled" || timer == nil || *timer != 60 {
		t.Fatalf("server state = %s timer=%v", state, timer)
	}
	if !strings.Contains(out, srv.URL+": disabled") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, "", "--config", path, "enable"); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if state, _ := srv.Blocking(); state != "enabled" {
		t.Fatalf("server state = %s", state)
	}
}

func TestEnable_FailingServerFailsTheRun(t *testing.T) {
	good := piholetest.New(t, testPassword)
	bad := piholetest.New(t, testPassword)
	bad.FailBlocking(true)
	path := writeServers(t, config.NewPiServer(bad.URL, testPassword), config.NewPiServer(good.URL, testPassword))

	out, err := run(t, "", "--config", path, "enable")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 servers failed") {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if !strings.Contains(out, good.URL+": enabled") {
		t.Fatalf("healthy server must still be toggled, output %q", out)
	}
}

func TestWrongPasswordStopsBeforeCommand(t *testing.T) {
	srv := piholetest.New(t, testPassword)
	path := writeServers(t, config.NewPiServer(srv.URL, "nope"))

	_, err := run(t, "", "--config", path, "disable")
	if err == nil || !strings.Contains(err.Error(), "failed to authenticate") {
		t.Fatalf("expected auth error, got %v", err)
	}
	if srv.BlockingCalls() != 0 {
		t.Fatalf("no blocking call expected")
	}
}

func TestStatsCommands(t *testing.T) {
	srv := piholetest.New(t, testPassword)
	path := writeServers(t, config.NewPiServer(srv.URL, testPassword))

	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"summary"}, []string{"Summary for " + srv.URL, `"total": 100`}},
		{[]string{"version"}, []string{"Version info for " + srv.URL, `"v6.0"`}},
		{[]string{"upstreams"}, []string{"Forward destinations for " + srv.URL, `"1.1.1.1"`}},
		{[]string{"query-types"}, []string{"Query types for " + srv.URL, `"AAAA": 40`}},
		{[]string{"top-domains", "-n", "3"}, []string{"The top 3 domains for " + srv.URL, "domains2"}},
		{[]string{"top-clients"}, []string{"The top 10 clients for " + srv.URL, "clients9"}},
		{[]string{"recent-blocked", "-n", "2"}, []string{"Most recent blocked for " + srv.URL + "\nads0.example.com\nads1.example.com\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			out, err := run(t, "", append([]string{"--config", path}, tt.args...)...)
			if err != nil {
				t.Fatalf("%v: %v", tt.args, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Fatalf("output %q misses %q", out, w)
				}
			}
		})
	}
}

func TestTopN_RejectsNonPositive(t *testing.T) {
	path := writeServers(t, config.NewPiServer("http://unused.invalid", testPassword))
	if _, err := run(t, "", "--config", path, "top-domains", "-n", "0"); err == nil {
		t.Fatal("expected an error for -n 0")
	}
}

func TestMissingConfigStartsConfiguration(t *testing.T) {
	srv := piholetest.New(t, testPassword)
	path := filepath.Join(t.TempDir(), "new.json")
	answers := fmt.Sprintf("%s/\n%s\nn\n", srv.URL, testPassword)

	out, err := run(t, answers, "--config", path, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Welcome to the mpihole configuration!") {
		t.Fatalf("configuration did not start: %q", out)
	}
	if !strings.Contains(out, srv.URL+": enabled") {
		t.Fatalf("command did not run after configuration: %q", out)
	}

	conf, err := config.LoadServers(path)
	if err != nil || len(conf.Servers) != 1 || conf.Servers[0].BaseURL != srv.URL {
		t.Fatalf("saved config = %+v, %v", conf, err)
	}
}

func TestReconfigureExitsWithoutRunningCommand(t *testing.T) {
	srv := piholetest.New(t, testPassword)
	path := writeServers(t, config.NewPiServer(srv.URL, testPassword))

	// delete the only server, add none
	out, err := run(t, "2\nn\n", "--config", path, "--reconfigure", "disable")
	if err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if srv.BlockingCalls() != 0 {
		t.Fatalf("disable must not run during reconfiguration")
	}
	if !strings.Contains(out, "Found a config for '"+srv.URL+"'") {
		t.Fatalf("unexpected output %q", out)
	}
	conf, err := config.LoadServers(path)
	if err != nil || len(conf.Servers) != 0 {
		t.Fatalf("saved config = %+v, %v", conf, err)
	}
}

func TestShowConfig(t *testing.T) {
	path := writeServers(t, config.NewPiServer("http://pi.example.com", testPassword))

	out, err := run(t, "", "--config", path, "--show-config")
	if err != nil {
		t.Fatalf("show-config: %v", err)
	}
	if !strings.Contains(out, "http://pi.example.com") {
		t.Fatalf("config not printed: %q", out)
	}

	if _, err := run(t, "", "--config", filepath.Join(t.TempDir(), "none.json"), "-s"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

type remoteEndpoint struct {
	*httptest.Server
	mu    sync.Mutex
	paths []string
}

func newRemote(t *testing.T, code int) *remoteEndpoint {
	t.Helper()
	r := &remoteEndpoint{}
	r.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.paths = append(r.paths, req.URL.Path)
		r.mu.Unlock()
		w.WriteHeader(code)
	}))
	t.Cleanup(r.Close)
	return r
}

func (r *remoteEndpoint) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestRemote(t *testing.T) {
	t.Run("disable", func(t *testing.T) {
		r := newRemote(t, http.StatusOK)
		out, err := run(t, "", "remote", "disable", "--time", "300", "--endpoint", r.URL)
		if err != nil {
			t.Fatalf("remote disable: %v", err)
		}
		if strings.TrimSpace(out) != "Successfully disabled the pihole servers for 300 seconds" {
			t.Fatalf("unexpected output %q", out)
		}
		if paths := r.seen(); len(paths) != 1 || paths[0] != "/disable/300" {
			t.Fatalf("paths = %v", paths)
		}
	})

	t.Run("enable failure", func(t *testing.T) {
		r := newRemote(t, http.StatusInternalServerError)
		out, err := run(t, "", "remote", "enable", "--endpoint", r.URL)
		if !errors.Is(err, errReported) {
			t.Fatalf("expected errReported, got %v", err)
		}
		if !strings.Contains(out, "An error occurred (error) enabling piholes: Internal Server Error") {
			t.Fatalf("unexpected output %q", out)
		}
	})
}

func TestLookup_NeedsDomain(t *testing.T) {
	if _, err := run(t, "", "lookup"); err == nil {
		t.Fatal("expected an argument error")
	}
}
