//go:build !(android || ios)

package app

import (
	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"github.com/hvacsim/hvacsim-desktop/internal/shell/desktop"
)

func newRuntime() shell.Runtime {
	return desktop.New()
}
