//go:build !(android || ios)

// Package desktop runs the application in a native window backed by the
// system WebView.
package desktop

import (
	"context"
	"errors"
	"net/http"

	"github.com/hvacsim/hvacsim-desktop/internal/appctx"
	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"go.uber.org/zap"
)

// ErrMissingBuildTags is returned by Start when the binary was built without
// the Wails build tags, in which case Wails cannot open a window.
var ErrMissingBuildTags = errors.New("built without wails build tags; use `wails build` or `go build -tags desktop,production`")

// Runtime is the desktop shell.Runtime.
type Runtime struct {
	run func(*options.App) error
}

// New returns a desktop runtime.
func New() *Runtime {
	return &Runtime{run: func(opts *options.App) error {
		if !wailsTagged {
			return ErrMissingBuildTags
		}
		return wails.Run(opts)
	}}
}

// Start sets the plugins up and blocks in the window event loop until the
// last window closes.
func (r *Runtime) Start(cfg shell.Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	h := newHost(cfg.Context, logger)
	app, err := shell.Setup(cfg, h)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warnw("Failed to close plugins", "error", err)
		}
	}()

	opts := buildOptions(cfg.Context, h, &IPC{app: app, host: h}, logger)
	logger.Infow("Starting desktop runtime",
		"product", cfg.Context.ProductName(),
		"version", cfg.Context.Version().String(),
	)
	if err := r.run(opts); err != nil {
		return shell.Startup(shell.StageRuntime, err)
	}
	return nil
}

// buildOptions maps the first window of the context onto the window options.
func buildOptions(c *appctx.Context, h *host, ipc *IPC, logger *zap.SugaredLogger) *options.App {
	win := c.Windows()[0]

	opts := &options.App{
		Title:         win.Title,
		Width:         win.Width,
		Height:        win.Height,
		MinWidth:      win.MinWidth,
		MinHeight:     win.MinHeight,
		MaxWidth:      win.MaxWidth,
		MaxHeight:     win.MaxHeight,
		DisableResize: !win.Resizable,
		StartHidden:   !win.Visible,
		BackgroundColour: &options.RGBA{
			R: win.Background.R,
			G: win.Background.G,
			B: win.Background.B,
			A: win.Background.A,
		},
		AssetServer: &assetserver.Options{
			Assets:     c.Assets(),
			Middleware: cspMiddleware(c.Security().CSP),
		},
		Bind:   []interface{}{ipc},
		Logger: &wailsLogger{sugar: logger},
		OnStartup: func(ctx context.Context) {
			h.attach(ctx)
			if win.Center {
				windowCenter(ctx)
			}
			logger.Debug("Window attached")
		},
		OnShutdown: func(ctx context.Context) {
			h.detach()
			logger.Debug("Window detached")
		},
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId: c.Identifier(),
			OnSecondInstanceLaunch: func(data options.SecondInstanceData) {
				logger.Infow("Second instance launched", "args", data.Args)
				h.Emit("app://second-instance", data.Args)
			},
		},
		Linux: &linux.Options{ProgramName: c.ProductName()},
		Mac: &mac.Options{
			About: &mac.AboutInfo{
				Title:   c.ProductName() + " " + c.Version().String(),
				Message: c.Copyright(),
			},
		},
	}

	switch {
	case win.Fullscreen:
		opts.WindowStartState = options.Fullscreen
	case win.Maximized:
		opts.WindowStartState = options.Maximised
	}

	if icon, ok := c.LargestIcon(); ok {
		opts.Linux.Icon = icon.Data()
		opts.Mac.About.Icon = icon.Data()
	}
	return opts
}

func cspMiddleware(csp string) assetserver.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if csp != "" {
				w.Header().Set("Content-Security-Policy", csp)
			}
			next.ServeHTTP(w, r)
		})
	}
}
