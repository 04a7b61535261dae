package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakura-poetry/poetryctl/internal/gateway"
	"github.com/sakura-poetry/poetryctl/internal/log"
)

// captured is one request seen by the fake backend.
type captured struct {
	Method   string
	Path     string
	RawQuery string
	Auth     string
	Body     string
}

// backend is a fake poetry API. Routes map "METHOD /path" to a response
// body; unknown routes answer 404.
type backend struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]string
	seen   []captured
	srv    *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{t: t, routes: map[string]string{}}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) on(method, path, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = body
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := r.URL.EscapedPath()

	b.mu.Lock()
	b.seen = append(b.seen, captured{
		Method:   r.Method,
		Path:     path,
		RawQuery: r.URL.RawQuery,
		Auth:     r.Header.Get("Authorization"),
		Body:     string(body),
	})
	resp, ok := b.routes[r.Method+" "+path]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, resp)
}

func (b *backend) last() captured {
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(b.t, b.seen, "no request reached the backend")
	return b.seen[len(b.seen)-1]
}

func (b *backend) requests() []captured {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]captured(nil), b.seen...)
}

func ok(data any) string {
	raw, _ := json.Marshal(map[string]any{"code": 200, "message": "success", "data": data})
	return string(raw)
}

// staticSession is a fixed-token gateway.Session.
type staticSession struct {
	mu      sync.Mutex
	token   string
	logouts int
}

func (s *staticSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *staticSession) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.logouts++
	return nil
}

func newGateway(t *testing.T, b *backend, sess gateway.Session) *gateway.Client {
	t.Helper()
	c, err := gateway.New(gateway.Config{BaseURL: b.srv.URL}, sess, gateway.WithLogger(log.Discard()))
	require.NoError(t, err)
	return c
}
