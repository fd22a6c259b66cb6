// Package app is the application bootstrap shared by the desktop and mobile
// entry points.
package app

import (
	"errors"
	"sync/atomic"

	"github.com/hvacsim/hvacsim-desktop/bundle"
	"github.com/hvacsim/hvacsim-desktop/internal/appctx"
	"github.com/hvacsim/hvacsim-desktop/internal/plugins/dialog"
	"github.com/hvacsim/hvacsim-desktop/internal/plugins/fs"
	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned by Start while the same Bootstrap is running.
var ErrAlreadyRunning = errors.New("application already running")

const (
	stateNotStarted int32 = iota
	stateRunning
)

// Bootstrap assembles the application and starts its runtime. The zero
// value is not usable; call New.
type Bootstrap struct {
	// Generate builds a fresh application context for each start.
	Generate func() (*appctx.Context, error)

	// Runtime hosts the UI and blocks in its event loop.
	Runtime shell.Runtime

	// Plugins returns the capabilities to register, in registration order.
	Plugins func() []shell.Plugin

	// Fatal handles startup failures in Run. It is expected not to return.
	Fatal func(err error)

	Logger *zap.SugaredLogger

	state atomic.Int32
}

// New returns a Bootstrap for the embedded bundle and the platform runtime.
func New() *Bootstrap {
	logger := shell.NewLogger(false)
	return &Bootstrap{
		Generate: func() (*appctx.Context, error) {
			return appctx.Generate(bundle.FS)
		},
		Runtime: newRuntime(),
		Plugins: DefaultPlugins,
		Fatal: func(err error) {
			logger.Fatalf("error while running application: %v", err)
		},
		Logger: logger,
	}
}

// DefaultPlugins returns the dialog and filesystem capabilities.
func DefaultPlugins() []shell.Plugin {
	return []shell.Plugin{dialog.New(), fs.New()}
}

// Run starts the application and blocks until it exits. Any startup failure
// is passed to the fatal handler.
func Run() {
	New().Run()
}

// Run is the method form of the package-level Run.
func (b *Bootstrap) Run() {
	if err := b.Start(); err != nil {
		b.Fatal(err)
	}
}

// Start generates the context, registers the plugins and blocks in the
// runtime. Context generation happens first; when it fails no plugin is
// constructed and the runtime is never started.
func (b *Bootstrap) Start() error {
	if !b.state.CompareAndSwap(stateNotStarted, stateRunning) {
		return ErrAlreadyRunning
	}
	defer b.state.Store(stateNotStarted)

	ctx, err := b.Generate()
	if err != nil {
		return shell.Startup(shell.StageContext, err)
	}

	cfg := shell.Config{
		Context: ctx,
		Plugins: b.Plugins(),
		Logger:  b.Logger,
	}
	if err := b.Runtime.Start(cfg); err != nil {
		return shell.Startup(shell.StageRuntime, err)
	}
	return nil
}

// Running reports whether Start is in progress.
func (b *Bootstrap) Running() bool {
	return b.state.Load() == stateRunning
}
