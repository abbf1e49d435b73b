// Package server is the HTTP runtime that wraps every page in the root
// layout.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/rsc/internal/config"
	rscerrors "github.com/conneroisu/rsc/internal/errors"
	"github.com/conneroisu/rsc/internal/layout"
	"github.com/conneroisu/rsc/internal/logging"
	"github.com/conneroisu/rsc/internal/metrics"
	"github.com/conneroisu/rsc/internal/pages"
	"github.com/conneroisu/rsc/internal/reload"
	"github.com/conneroisu/rsc/internal/server/middleware"
	"github.com/conneroisu/rsc/internal/styles"
	"github.com/conneroisu/rsc/internal/version"
	"github.com/conneroisu/rsc/internal/watcher"
)

// ReloadPath is the websocket endpoint of the reload channel.
const ReloadPath = "/ws"

const debounceDelay = 150 * time.Millisecond

// Server serves registered pages inside AppLayout.
type Server struct {
	config *config.Config
	logger logging.Logger
	errs   *rscerrors.Handler

	pages   *pages.Registry
	sheets  *styles.Sheets
	hub     *reload.Hub
	metrics *metrics.Metrics
	router  chi.Router

	httpServer   *http.Server
	serverMutex  sync.Mutex
	watcher      *watcher.FileWatcher
	shutdownOnce sync.Once
}

// New creates a server for cfg. Pages default to pages.Default() when reg is
// nil.
func New(cfg *config.Config, logger logging.Logger, reg *pages.Registry) (*Server, error) {
	if cfg == nil {
		return nil, rscerrors.NewConfigError(rscerrors.ErrCodeConfigInvalid, "server requires a configuration")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if reg == nil {
		reg = pages.Default()
	}

	logger = logger.WithComponent("server")

	sheets := styles.NewSheets(cfg.Styles.Dir)
	if err := sheets.Load(); err != nil {
		return nil, rscerrors.WrapIO(err, rscerrors.ErrCodeFileNotFound, "loading stylesheets")
	}

	s := &Server{
		config: cfg,
		logger: logger,
		errs:   rscerrors.NewHandler(logger),
		pages:  reg,
		sheets: sheets,
	}

	if cfg.Development.HotReload {
		s.hub = reload.NewHub(reload.AllowedOrigins(cfg.Server.AllowedOrigins), logger)
		s.metrics = metrics.New(s.hub.Clients)
	} else {
		s.metrics = metrics.New(nil)
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(s.metrics.Middleware("/metrics", ReloadPath))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.styleOptions)
		r.Get("/", s.handleHome)
		r.Get("/p/{name}", s.handlePage)
	})
	r.NotFound(s.styleOptions(http.HandlerFunc(s.handleNotFound)).ServeHTTP)

	if s.hub != nil {
		r.Get(ReloadPath, s.hub.ServeHTTP)
	}

	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sheets returns the global stylesheet set.
func (s *Server) Sheets() *styles.Sheets {
	return s.sheets
}

// Hub returns the reload hub, or nil when hot reload is disabled.
func (s *Server) Hub() *reload.Hub {
	return s.hub
}

// styleOptions makes the stylesheets and minify setting visible to every
// boundary rendered by the request.
func (s *Server) styleOptions(next http.Handler) http.Handler {
	opts := styles.Options{Sheets: s.sheets, Minify: s.config.Styles.Minify}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(styles.WithOptions(r.Context(), opts)))
	})
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s.hub != nil {
		if err := s.startWatcher(ctx); err != nil {
			s.logger.Warn(ctx, err, "Stylesheet watcher disabled")
		}
	}

	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return rscerrors.Wrap(err, rscerrors.ErrorTypeIO, rscerrors.ErrCodeServerStart, "listening on "+s.config.Addr())
	}

	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	srv := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Server listening", "addr", ln.Addr().String(), "pages", s.pages.Len())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
		return rscerrors.Wrap(err, rscerrors.ErrorTypeIO, rscerrors.ErrCodeServerStart, "serving HTTP")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the HTTP server, the reload hub and the watcher. Only the
// first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.serverMutex.Lock()
		srv, fw := s.httpServer, s.watcher
		s.serverMutex.Unlock()

		if s.hub != nil {
			if err := s.hub.Shutdown(ctx); err != nil {
				shutdownErr = err
			}
		}

		if fw != nil {
			if err := fw.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Stopping watcher")
			}
		}

		if srv != nil {
			if err := srv.Shutdown(ctx); err != nil && shutdownErr == nil {
				shutdownErr = err
			}
		}

		s.logger.Info(ctx, "Server shut down")
	})

	return shutdownErr
}

func (s *Server) startWatcher(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(debounceDelay, s.logger)
	if err != nil {
		return err
	}

	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.CSSFilter)
	fw.AddHandler(s.handleStyleChanges)

	if err := fw.AddPath(s.sheets.Dir()); err != nil {
		_ = fw.Stop()
		return err
	}

	fw.Start(ctx)

	s.serverMutex.Lock()
	s.watcher = fw
	s.serverMutex.Unlock()
	return nil
}

// handleStyleChanges reloads the stylesheets and tells browsers to reload.
func (s *Server) handleStyleChanges(events []watcher.ChangeEvent) error {
	ctx := context.Background()
	if err := s.sheets.Load(); err != nil {
		return rscerrors.WrapIO(err, rscerrors.ErrCodeFileNotFound, "reloading stylesheets")
	}

	s.logger.Info(ctx, "Stylesheets reloaded", "changes", len(events), "sheets", len(s.sheets.List()))
	if s.hub != nil {
		s.hub.Broadcast(reload.Message{Type: reload.TypeFullReload})
	}
	return nil
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string   `json:"status"`
	Version string   `json:"version"`
	Pages   []string `json:"pages"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	list := s.pages.List()
	names := make([]string, 0, len(list))
	for _, info := range list {
		names = append(names, info.Name)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(HealthResponse{
		Status:  "ok",
		Version: version.Get().Short(),
		Pages:   names,
	}); err != nil {
		s.errs.Handle(r.Context(), rscerrors.WrapIO(err, rscerrors.ErrCodeInternalError, "writing health response"))
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, pages.HomeName)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, chi.URLParam(r, "name"))
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, name string) {
	info, ok := s.pages.Get(name)
	if !ok {
		s.errs.Handle(r.Context(), rscerrors.NewNotFoundError(rscerrors.ErrCodePageNotFound, "page not found").
			WithContext("page", name))
		s.render(w, r, http.StatusNotFound, pages.NotFound(name))
		return
	}
	s.render(w, r, http.StatusOK, info.Page(r))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, pages.NotFound(r.URL.Path))
}

// render writes content wrapped in AppLayout. A render failure becomes a
// plain 500 response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, content templ.Component) {
	if s.hub != nil {
		content = withReloadScript(content)
	}

	op := logging.StartOperation(s.logger.With("path", r.URL.Path), "render")
	failed := false

	templ.Handler(layout.AppLayout(content),
		templ.WithStatus(status),
		templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
			failed = true
			s.metrics.RenderFailed(r)
			op.EndWithError(r.Context(), rscerrors.WrapRender(err, "rendering page"))
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			})
		}),
	).ServeHTTP(w, r)

	if !failed {
		op.End(r.Context())
	}
}

// withReloadScript appends the reload script after content so it stays
// inside the style-registry boundary.
func withReloadScript(content templ.Component) templ.Component {
	script := reload.Script(ReloadPath)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		return script.Render(ctx, w)
	})
}
