package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakura-poetry/poetryctl/internal/session"
)

type reply struct {
	status int
	body   string
}

type seenRequest struct {
	Method   string
	Path     string
	RawQuery string
	Auth     string
	Body     string
}

// fakeServer answers "METHOD /path" routes; unknown routes get a raw 404.
type fakeServer struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]reply
	seen   []seenRequest
	srv    *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{t: t, routes: map[string]reply{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) on(method, path, body string) {
	f.onStatus(method, path, http.StatusOK, body)
}

func (f *fakeServer) onStatus(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = reply{status: status, body: body}
}

func (f *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := r.URL.EscapedPath()

	f.mu.Lock()
	f.seen = append(f.seen, seenRequest{
		Method:   r.Method,
		Path:     path,
		RawQuery: r.URL.RawQuery,
		Auth:     r.Header.Get("Authorization"),
		Body:     string(body),
	})
	rep, ok := f.routes[r.Method+" "+path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (f *fakeServer) requests() []seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]seenRequest(nil), f.seen...)
}

func (f *fakeServer) last() seenRequest {
	reqs := f.requests()
	require.NotEmpty(f.t, reqs, "no request reached the server")
	return reqs[len(reqs)-1]
}

func ok(data string) string {
	return `{"code":200,"message":"success","data":` + data + `}`
}

// env is an isolated poetryctl installation: its own config file and
// session file, pointed at a fake server.
type env struct {
	t           *testing.T
	server      *fakeServer
	configPath  string
	sessionPath string
	stdin       string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		t:           t,
		server:      newFakeServer(t),
		configPath:  filepath.Join(dir, "config.yaml"),
		sessionPath: filepath.Join(dir, "session.json"),
	}

	cfg := fmt.Sprintf(`api:
  base_url: %s
  timeout: 5s
storage:
  backend: file
  path: %s
logging:
  level: error
`, e.server.srv.URL, e.sessionPath)
	require.NoError(t, os.WriteFile(e.configPath, []byte(cfg), 0600))
	return e
}

// login stores token as if a previous run had logged in.
func (e *env) login(token string) {
	e.t.Helper()
	require.NoError(e.t, session.NewFileStorage(e.sessionPath).Save(context.Background(), token))
}

func (e *env) storedToken() string {
	e.t.Helper()
	token, err := session.NewFileStorage(e.sessionPath).Load(context.Background())
	require.NoError(e.t, err)
	return token
}

type result struct {
	stdout string
	stderr string
	code   int
}

func (e *env) run(args ...string) result {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	st := &state{
		stdin:       strings.NewReader(e.stdin),
		stdout:      &stdout,
		stderr:      &stderr,
		interactive: func() bool { return false },
	}
	full := append([]string{"--config", e.configPath, "--no-color"}, args...)
	code := run(context.Background(), st, full)
	e.stdin = ""
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}
