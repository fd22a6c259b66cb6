package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// App is a started set of plugins with a command router. Runtimes create it
// with Setup and close it when their event loop exits.
type App struct {
	plugins []Plugin
	routes  map[string]Command
	logger  *zap.SugaredLogger
}

// Setup validates cfg, claims its context and sets every plugin up against
// host in registration order. Setup is all-or-nothing: on failure the plugins
// already set up are closed and no App is returned.
func Setup(cfg Config, host Host) (*App, error) {
	if cfg.Context == nil {
		return nil, Startup(StageContext, errors.New("no application context"))
	}
	if len(cfg.Plugins) == 0 {
		return nil, Startup(StageConfig, ErrNoPlugins)
	}

	seen := make(map[string]bool, len(cfg.Plugins))
	for _, p := range cfg.Plugins {
		name := p.Name()
		if name == "" || strings.ContainsAny(name, ":|") {
			return nil, Startup(StageConfig, fmt.Errorf("invalid plugin name %q", name))
		}
		if seen[name] {
			return nil, Startup(StageConfig, fmt.Errorf("plugin %q registered twice", name))
		}
		seen[name] = true
	}

	if err := cfg.Context.Claim(); err != nil {
		return nil, Startup(StageContext, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	app := &App{
		routes: make(map[string]Command),
		logger: logger,
	}
	for _, p := range cfg.Plugins {
		if err := p.Setup(host); err != nil {
			if cerr := app.Close(); cerr != nil {
				logger.Warnw("Failed to close plugins after setup error", "error", cerr)
			}
			return nil, Startup(PluginStage(p.Name()), err)
		}
		app.plugins = append(app.plugins, p)
		for cmd, h := range p.Commands() {
			app.routes[CommandName(p.Name(), cmd)] = h
		}
		logger.Debugw("Plugin ready", "plugin", p.Name())
	}

	return app, nil
}

// Plugins returns the plugins in setup order.
func (a *App) Plugins() []Plugin {
	out := make([]Plugin, len(a.plugins))
	copy(out, a.plugins)
	return out
}

// Has reports whether command is routed.
func (a *App) Has(command string) bool {
	_, ok := a.routes[command]
	return ok
}

// Invoke routes command to its plugin handler.
func (a *App) Invoke(ctx context.Context, command string, args json.RawMessage) (any, error) {
	h, ok := a.routes[command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
	res, err := h(ctx, args)
	if err != nil {
		a.logger.Debugw("Command failed", "command", command, "error", err)
		return nil, err
	}
	return res, nil
}

// Close closes plugins implementing io.Closer in reverse setup order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.plugins) - 1; i >= 0; i-- {
		c, ok := a.plugins[i].(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", a.plugins[i].Name(), err))
		}
	}
	a.plugins = nil
	return errors.Join(errs...)
}
