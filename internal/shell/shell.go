// Package shell defines the contract between the application bootstrap, the
// platform runtimes that host the web UI, and the capability plugins exposed
// to that UI.
//
// A runtime receives a Config, sets every plugin up against its Host with
// Setup, and then blocks in its event loop until the application closes.
// The web UI reaches plugins by command name, "plugin:<plugin>|<command>".
package shell

import (
	"context"
	"encoding/json"

	"github.com/hvacsim/hvacsim-desktop/internal/appctx"
	"go.uber.org/zap"
)

// Command handles one invocation from the web UI. args is the raw JSON
// argument object and may be empty.
type Command func(ctx context.Context, args json.RawMessage) (any, error)

// Commands maps command names to handlers.
type Commands map[string]Command

// Plugin is a capability exposed to the hosted UI.
type Plugin interface {
	// Name is the unique plugin name used in command routing.
	Name() string

	// Setup is called once, before the event loop starts. An error aborts startup.
	Setup(h Host) error

	// Commands returns the plugin's command table.
	Commands() Commands
}

// Host is the runtime handle given to plugins during Setup.
type Host interface {
	// Context returns the application context the runtime was started with.
	Context() *appctx.Context

	// Emit sends an event to the web UI. Events emitted while no UI is
	// attached are dropped.
	Emit(event string, payload any)

	// Dialogs returns the platform dialog implementation, or nil when the
	// platform has none.
	Dialogs() Dialogs

	// Logger returns the runtime logger.
	Logger() *zap.SugaredLogger
}

// Config is everything a runtime needs to start. It is built field by field
// by the bootstrap and passed once to Runtime.Start.
type Config struct {
	Context *appctx.Context
	Plugins []Plugin
	Logger  *zap.SugaredLogger
}

// Runtime starts the application and blocks in its event loop until the
// application is closed.
type Runtime interface {
	Start(cfg Config) error
}

// CommandName returns the routed name of a plugin command.
func CommandName(plugin, command string) string {
	return "plugin:" + plugin + "|" + command
}
