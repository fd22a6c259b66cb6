package shell

import (
	"errors"
	"fmt"
)

// Startup stages reported by StartupError.
const (
	StageContext = "context"
	StageConfig  = "config"
	StageRuntime = "runtime"
)

var (
	// ErrUnknownCommand is returned for commands no plugin registered.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidArgs is returned when command arguments do not decode.
	ErrInvalidArgs = errors.New("invalid command arguments")

	// ErrNotRunning is returned by host operations that need a live window.
	ErrNotRunning = errors.New("runtime is not running")

	// ErrNoPlugins is returned when a config registers no capability.
	ErrNoPlugins = errors.New("no plugins registered")
)

// StartupError is the single error kind of application startup: anything
// that fails while building the context, setting plugins up, or starting
// the event loop.
type StartupError struct {
	Stage string
	Err   error
}

func (e *StartupError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// Startup wraps err as a StartupError at stage. Errors that already are
// startup errors keep their original stage.
func Startup(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StartupError
	if errors.As(err, &se) {
		return err
	}
	return &StartupError{Stage: stage, Err: err}
}

// PluginStage returns the startup stage naming a plugin.
func PluginStage(name string) string {
	return fmt.Sprintf("plugin:%s", name)
}
