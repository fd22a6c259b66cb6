// Package fs exposes scoped filesystem access to the web UI.
//
// Every path argument is resolved against a Scope built from the
// [plugins.fs] table of the application bundle:
//
//	[plugins.fs]
//	scope = ["$APPDATA/**", "$DOCUMENT/HVAC/**"]
//	deny = ["$APPDATA/secrets/**"]
//
// An empty scope denies everything.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"go.uber.org/zap"
)

// Name is the plugin name used in command routing.
const Name = "fs"

// ChangeEvent is the event name emitted by watchers.
const ChangeEvent = "fs://change"

// Config is the [plugins.fs] table.
type Config struct {
	Scope []string `toml:"scope"`
	Deny  []string `toml:"deny"`
}

// Plugin is the filesystem capability.
type Plugin struct {
	scope   *Scope
	host    shell.Host
	logger  *zap.SugaredLogger
	lockDir string

	mu       sync.Mutex
	closed   bool
	watchers map[string]*watcher
	wg       sync.WaitGroup
}

// New returns an unconfigured filesystem plugin.
func New() *Plugin {
	return &Plugin{watchers: make(map[string]*watcher)}
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) Setup(h shell.Host) error {
	var cfg Config
	if err := h.Context().PluginConfig(Name, &cfg); err != nil {
		return err
	}

	identifier := h.Context().Identifier()
	scope, err := NewScope(cfg.Scope, cfg.Deny, ResolveBaseDirs(identifier))
	if err != nil {
		return err
	}

	lockDir := filepath.Join(os.TempDir(), identifier+"-locks")
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	p.scope = scope
	p.host = h
	p.logger = h.Logger()
	p.lockDir = lockDir
	p.logger.Debugw("Filesystem scope ready", "allow", len(cfg.Scope), "deny", len(cfg.Deny))
	return nil
}

func (p *Plugin) Commands() shell.Commands {
	return shell.Commands{
		"read_text_file":  shell.Handle(p.readTextFile),
		"read_file":       shell.Handle(p.readFile),
		"write_text_file": shell.Handle(p.writeTextFile),
		"write_file":      shell.Handle(p.writeFile),
		"read_dir":        shell.Handle(p.readDir),
		"mkdir":           shell.Handle(p.mkdir),
		"remove":          shell.Handle(p.remove),
		"rename":          shell.Handle(p.rename),
		"copy_file":       shell.Handle(p.copyFile),
		"exists":          shell.Handle(p.exists),
		"stat":            shell.Handle(p.stat),
		"watch":           shell.Handle(p.watch),
		"unwatch":         shell.Handle(p.unwatch),
	}
}

// Close stops every watcher and waits for their event loops to exit. Later
// watch calls fail with ErrClosed.
func (p *Plugin) Close() error {
	p.mu.Lock()
	p.closed = true
	watchers := p.watchers
	p.watchers = make(map[string]*watcher)
	p.mu.Unlock()

	var errs []error
	for _, w := range watchers {
		if err := w.close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.wg.Wait()
	if len(errs) > 0 {
		return fmt.Errorf("failed to stop %d watcher(s): %w", len(errs), errs[0])
	}
	return nil
}
