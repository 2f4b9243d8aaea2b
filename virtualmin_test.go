package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "root"
	testPassword = "hunter2"
)

// fakeVirtualmin serves list-users from body with the given status, but only
// to requests carrying the test credentials and the expected query string.
type fakeVirtualmin struct {
	*httptest.Server
	hits atomic.Int32
}

func newFakeVirtualmin(t *testing.T, status int, body string) *fakeVirtualmin {
	t.Helper()

	return newSlowFakeVirtualmin(t, 0, status, body)
}

// newSlowFakeVirtualmin holds every request for delay, or until the client
// goes away, before answering.
func newSlowFakeVirtualmin(t *testing.T, delay time.Duration, status int, body string) *fakeVirtualmin {
	t.Helper()

	f := &fakeVirtualmin{}

	mux := httprouter.New()
	mux.GET(remotePath, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		f.hits.Add(1)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		user, pass, ok := r.BasicAuth()
		if !ok || user != testUsername || pass != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if r.URL.RawQuery != "program=list-users&domain=example.com&multiline&json=1" {
			http.Error(w, "unexpected query: "+r.URL.RawQuery, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})

	f.Server = httptest.NewTLSServer(mux)
	t.Cleanup(f.Close)

	return f
}

func (f *fakeVirtualmin) host() string {
	host, _, _ := net.SplitHostPort(f.Listener.Addr().String())
	return host
}

func (f *fakeVirtualmin) port() int {
	return f.Listener.Addr().(*net.TCPAddr).Port
}

func (f *fakeVirtualmin) config() *Config {
	return &Config{
		port:       f.port(),
		timeout:    5 * time.Second,
		httpClient: f.Client(),
	}
}

func TestClientListURL(t *testing.T) {
	t.Parallel()

	c := newClient(&Config{port: 10000, timeout: time.Second}, Credentials{})

	require.Equal(t,
		"https://vm.example.net:10000/virtual-server/remote.cgi?program=list-users&domain=example.com&multiline&json=1",
		c.listURL("vm.example.net", "example.com", "list-users"))
}

func TestFetchMailboxList(t *testing.T) {
	t.Parallel()

	srv := newFakeVirtualmin(t, http.StatusOK, listUsersSample)
	c := newClient(srv.config(), Credentials{Username: testUsername, Password: testPassword})

	body, err := c.fetchMailboxList(context.Background(), srv.host(), "example.com", "list-users")
	require.NoError(t, err)
	require.Equal(t, listUsersSample, body)
	require.EqualValues(t, 1, srv.hits.Load())
}

func TestFetchMailboxList_BadCredentials(t *testing.T) {
	t.Parallel()

	srv := newFakeVirtualmin(t, http.StatusOK, listUsersSample)
	c := newClient(srv.config(), Credentials{Username: testUsername, Password: "wrong"})

	_, err := c.fetchMailboxList(context.Background(), srv.host(), "example.com", "list-users")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransport))
	require.Contains(t, err.Error(), "401")
	require.EqualValues(t, 1, srv.hits.Load(), "requests must not be retried")
}

func TestFetchMailboxList_ServerError(t *testing.T) {
	t.Parallel()

	srv := newFakeVirtualmin(t, http.StatusInternalServerError, `{"status":"failure"}`)
	c := newClient(srv.config(), Credentials{Username: testUsername, Password: testPassword})

	_, err := c.fetchMailboxList(context.Background(), srv.host(), "example.com", "list-users")
	require.True(t, errors.Is(err, ErrTransport), "expected ErrTransport, got %v", err)
}

func TestFetchMailboxList_Unreachable(t *testing.T) {
	t.Parallel()

	srv := newFakeVirtualmin(t, http.StatusOK, listUsersSample)
	cfg := srv.config()
	srv.Close()

	c := newClient(cfg, Credentials{Username: testUsername, Password: testPassword})

	_, err := c.fetchMailboxList(context.Background(), srv.host(), "example.com", "list-users")
	require.True(t, errors.Is(err, ErrTransport), "expected ErrTransport, got %v", err)
}

func TestFetchMailboxList_Cancelled(t *testing.T) {
	t.Parallel()

	srv := newFakeVirtualmin(t, http.StatusOK, listUsersSample)
	c := newClient(srv.config(), Credentials{Username: testUsername, Password: testPassword})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.fetchMailboxList(ctx, srv.host(), "example.com", "list-users")
	require.True(t, errors.Is(err, ErrTransport))
	require.True(t, errors.Is(err, context.Canceled))
	require.Zero(t, srv.hits.Load())
}

func TestFetchMailboxList_Timeout(t *testing.T) {
	t.Parallel()

	srv := newSlowFakeVirtualmin(t, 5*time.Second, http.StatusOK, listUsersSample)
	cfg := srv.config()
	cfg.timeout = 50 * time.Millisecond

	c := newClient(cfg, Credentials{Username: testUsername, Password: testPassword})

	startTime := time.Now()
	_, err := c.fetchMailboxList(context.Background(), srv.host(), "example.com", "list-users")
	require.True(t, errors.Is(err, ErrTransport), "expected ErrTransport, got %v", err)
	require.Less(t, time.Since(startTime), 5*time.Second)
	// the handshake alone may outlast the timeout on a slow machine
	require.LessOrEqual(t, srv.hits.Load(), int32(1), "requests must not be retried")
}

func TestNewClient_DoesNotMutateSuppliedClient(t *testing.T) {
	t.Parallel()

	supplied := &http.Client{}
	c := newClient(&Config{port: 10000, timeout: 3 * time.Second, httpClient: supplied}, Credentials{})

	require.Equal(t, 3*time.Second, c.http.Timeout)
	require.Zero(t, supplied.Timeout)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MAILQUOTA_TEST_PRESET=fromfile\nMAILQUOTA_TEST_FILEONLY=fromfile\n"), 0600))

	t.Setenv("MAILQUOTA_TEST_PRESET", "fromenv")
	t.Cleanup(func() { _ = os.Unsetenv("MAILQUOTA_TEST_FILEONLY") })

	require.NoError(t, loadEnvFile(path))
	require.Equal(t, "fromenv", os.Getenv("MAILQUOTA_TEST_PRESET"))
	require.Equal(t, "fromfile", os.Getenv("MAILQUOTA_TEST_FILEONLY"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	t.Parallel()

	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "does-not-exist.env")))
}
