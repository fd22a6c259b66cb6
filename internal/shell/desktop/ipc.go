//go:build !(android || ios)

package desktop

import (
	"context"
	"encoding/json"

	"github.com/hvacsim/hvacsim-desktop/internal/shell"
)

// IPC is bound into the web UI as window.go.desktop.IPC.
type IPC struct {
	app  *shell.App
	host *host
}

// Invoke runs a plugin command, e.g. Invoke("plugin:fs|exists", {"path": ...}).
func (i *IPC) Invoke(command string, args json.RawMessage) (any, error) {
	ctx, err := i.host.window()
	if err != nil {
		ctx = context.Background()
	}
	return i.app.Invoke(ctx, command, args)
}
