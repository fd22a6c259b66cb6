// Package bridge runs the application behind a loopback HTTP server for
// platforms whose WebView is owned by the host OS. The WebView loads "/"
// and talks to plugins over a websocket at "/ipc".
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hvacsim/hvacsim-desktop/internal/appctx"
	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// ErrRunning is returned by Start while a previous Start has not returned.
var ErrRunning = errors.New("bridge runtime already running")

// Option configures a Runtime.
type Option func(*Runtime)

// WithAddress overrides the listen address from the application context.
func WithAddress(addr string) Option {
	return func(r *Runtime) {
		r.address = addr
	}
}

// Runtime is the bridge shell.Runtime.
type Runtime struct {
	address string

	mu      sync.Mutex
	running bool
	ready   chan struct{}
	quit    chan struct{}
	addr    net.Addr
}

// New returns a bridge runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	r.reset()
	return r
}

func (r *Runtime) reset() {
	r.ready = make(chan struct{})
	r.quit = make(chan struct{})
	r.addr = nil
}

// Ready is closed once the server accepts connections.
func (r *Runtime) Ready() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Addr returns the listen address, or nil before Ready.
func (r *Runtime) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addr
}

// URL returns the address the WebView should load.
func (r *Runtime) URL() string {
	addr := r.Addr()
	if addr == nil {
		return ""
	}
	return "http://" + addr.String() + "/"
}

// Quit stops a running Start. It is safe to call more than once.
func (r *Runtime) Quit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.quit:
	default:
		close(r.quit)
	}
}

// Start sets the plugins up, serves the frontend and blocks until SIGINT,
// SIGTERM or Quit.
func (r *Runtime) Start(cfg shell.Config) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return shell.Startup(shell.StageRuntime, ErrRunning)
	}
	r.running = true
	ready, quit := r.ready, r.quit
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.reset()
		r.mu.Unlock()
	}()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	hb := newHub(logger)
	h := &host{ctx: cfg.Context, hub: hb, dialogs: newDialogs(hb), logger: logger}
	app, err := shell.Setup(cfg, h)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warnw("Failed to close plugins", "error", err)
		}
	}()

	address := r.address
	if address == "" {
		address = cfg.Context.Mobile().Address
	}
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return shell.Startup(shell.StageRuntime, fmt.Errorf("failed to listen on %s: %w", address, err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hb.handle = func(ctx context.Context, req request) reply {
		if req.Cmd == DialogReplyCommand {
			if err := h.dialogs.resolve(req.Args); err != nil {
				return reply{ID: req.ID, Error: err.Error()}
			}
			return reply{ID: req.ID}
		}
		res, err := app.Invoke(ctx, req.Cmd, req.Args)
		if err != nil {
			return reply{ID: req.ID, Error: err.Error()}
		}
		return reply{ID: req.ID, Result: res}
	}

	hosts := loopbackHosts(ln.Addr())
	hb.allow(hosts)
	srv := &http.Server{
		Handler:           newRouter(ctx, cfg.Context, hb, hosts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	r.mu.Lock()
	r.addr = ln.Addr()
	r.mu.Unlock()
	close(ready)
	logger.Infow("Bridge listening",
		"product", cfg.Context.ProductName(),
		"url", "http://"+ln.Addr().String()+"/",
	)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case <-quit:
		logger.Debug("Quit requested")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = shell.Startup(shell.StageRuntime, err)
		}
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("Bridge shutdown incomplete", "error", err)
	}
	hb.closeAll()
	return runErr
}

func newRouter(ctx context.Context, c *appctx.Context, hb *hub, hosts map[string]bool) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ipc", func(w http.ResponseWriter, r *http.Request) {
		hb.serve(ctx, w, r)
	})
	router.PathPrefix("/").Handler(assetHandler(c.Assets(), c.Manifest())).Methods(http.MethodGet, http.MethodHead)
	router.Use(hostGuard(hosts), cspMiddleware(c.Security().CSP))
	return router
}

// host is the shell.Host of the bridge.
type host struct {
	ctx     *appctx.Context
	hub     *hub
	dialogs *dialogs
	logger  *zap.SugaredLogger
}

func (h *host) Context() *appctx.Context   { return h.ctx }
func (h *host) Dialogs() shell.Dialogs     { return h.dialogs }
func (h *host) Logger() *zap.SugaredLogger { return h.logger }

func (h *host) Emit(name string, payload any) {
	h.hub.broadcast(event{Event: name, Payload: payload})
}
