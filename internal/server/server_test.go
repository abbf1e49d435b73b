package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/rsc/internal/config"
	"github.com/conneroisu/rsc/internal/document"
	"github.com/conneroisu/rsc/internal/logging"
	"github.com/conneroisu/rsc/internal/pages"
	"github.com/conneroisu/rsc/internal/reload"
)

func testConfig(t *testing.T, hotReload bool) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			Environment:  "test",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Styles:      config.StylesConfig{Dir: t.TempDir()},
		Development: config.DevelopmentConfig{HotReload: hotReload},
		Log:         config.LogConfig{Level: "error", Format: "text"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, reg *pages.Registry) *Server {
	t.Helper()
	s, err := New(cfg, nil, reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
}

func TestHomeIsWrappedInLayout(t *testing.T) {
	s := newTestServer(t, testConfig(t, false), nil)

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	tree, err := document.Parse(rec.Body)
	require.NoError(t, err)
	require.NoError(t, document.Verify(tree))
	assert.Contains(t, tree.Styles(), "nav.rsc-nav")
}

func TestNamedPage(t *testing.T) {
	s := newTestServer(t, testConfig(t, false), nil)

	rec := get(t, s.Handler(), "/p/about")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>About</h1>")
}

func TestCounterPageReferencesClientEntry(t *testing.T) {
	s := newTestServer(t, testConfig(t, false), nil)

	rec := get(t, s.Handler(), "/p/counter")
	require.Equal(t, http.StatusOK, rec.Code)

	tree, err := document.Parse(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	require.NoError(t, document.Verify(tree))

	content, err := tree.Content()
	require.NoError(t, err)
	assert.Contains(t, content, `<template data-rsc-client-ref="`+pages.CounterEntry+`"></template>`)
}

func TestUnknownPageRendersNotFoundInLayout(t *testing.T) {
	s := newTestServer(t, testConfig(t, false), nil)

	for _, path := range []string{"/p/missing", "/nowhere"} {
		rec := get(t, s.Handler(), path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)

		tree, err := document.Parse(rec.Body)
		require.NoError(t, err)
		assert.NoError(t, document.Verify(tree), path)
	}
}

func TestRenderErrorBecomes500(t *testing.T) {
	reg := pages.NewRegistry()
	require.NoError(t, reg.Register("broken", "Broken", func(*http.Request) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return errors.New("child failed")
		})
	}))

	s := newTestServer(t, testConfig(t, false), reg)

	rec := get(t, s.Handler(), "/p/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<html>")

	rec = get(t, s.Handler(), "/metrics")
	assert.Contains(t, rec.Body.String(), `rsc_render_errors_total{route="/p/{name}"} 1`)
	assert.Contains(t, rec.Body.String(), `rsc_http_requests_total{method="GET",route="/p/{name}",status_code="500"} 1`)
}

func TestSheetsAndMinifyReachBoundary(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Styles.Minify = true
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Styles.Dir, "base.css"), []byte("body {\n  margin: 0;\n}\n"), 0o600))

	s := newTestServer(t, cfg, nil)

	rec := get(t, s.Handler(), "/p/about")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "body{margin:0}")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig(t, false), nil)

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Version)
	assert.Equal(t, []string{"home", "about", "counter"}, body.Pages)
}

func TestReloadDisabled(t *testing.T) {
	s := newTestServer(t, testConfig(t, false), nil)
	assert.Nil(t, s.Hub())

	rec := get(t, s.Handler(), "/ws")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, s.Handler(), "/")
	assert.NotContains(t, rec.Body.String(), reload.ScriptAttr)
}

func TestReloadScriptStaysInsideBoundary(t *testing.T) {
	s := newTestServer(t, testConfig(t, true), nil)
	require.NotNil(t, s.Hub())

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)

	tree, err := document.Parse(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	require.NoError(t, document.Verify(tree))

	content, err := tree.Content()
	require.NoError(t, err)
	assert.Contains(t, content, reload.ScriptAttr)
}

func TestStyleChangeBroadcastsReload(t *testing.T) {
	cfg := testConfig(t, true)
	s := newTestServer(t, cfg, nil)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+ReloadPath, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return s.Hub().Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Styles.Dir, "theme.css"), []byte("p{color:red}"), 0o600))
	require.NoError(t, s.handleStyleChanges(nil))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg reload.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, reload.TypeFullReload, msg.Type)

	sheets := s.Sheets().List()
	require.Len(t, sheets, 1)
	assert.Equal(t, "theme", sheets[0].Name)
}

func TestServeAndShutdown(t *testing.T) {
	cfg := testConfig(t, true)
	s := newTestServer(t, cfg, nil)
	require.NoError(t, s.startWatcher(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestServeFailureStopsReloadHub(t *testing.T) {
	cfg := testConfig(t, true)
	s := newTestServer(t, cfg, nil)
	require.NoError(t, s.startWatcher(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	err = s.Serve(context.Background(), ln)
	require.Error(t, err)

	rec := get(t, s.Handler(), ReloadPath)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestRenderIsTimed(t *testing.T) {
	reg := pages.NewRegistry()
	require.NoError(t, reg.Register("ok", "OK", func(*http.Request) templ.Component {
		return templ.Raw("<p>ok</p>")
	}))
	require.NoError(t, reg.Register("broken", "Broken", func(*http.Request) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return errors.New("child failed")
		})
	}))

	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Format: "text", Output: &buf})
	s, err := New(testConfig(t, false), logger, reg)
	require.NoError(t, err)

	get(t, s.Handler(), "/p/ok")
	assert.Contains(t, buf.String(), `msg="Operation completed"`)
	assert.Contains(t, buf.String(), "operation=render")
	assert.Contains(t, buf.String(), "path=/p/ok")

	buf.Reset()
	get(t, s.Handler(), "/p/broken")
	assert.Contains(t, buf.String(), `msg="Operation failed"`)
	assert.Contains(t, buf.String(), "child failed")
	assert.NotContains(t, buf.String(), `msg="Operation completed"`)
}
