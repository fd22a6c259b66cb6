//go:build android || ios

package app

import (
	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"github.com/hvacsim/hvacsim-desktop/internal/shell/bridge"
)

func newRuntime() shell.Runtime {
	return bridge.New()
}
