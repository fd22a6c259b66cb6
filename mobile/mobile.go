//go:build android || ios

// Package mobile is the entry point registered with the platform launcher
// through gomobile bind. The host activity loads the bridge address of the
// packaged configuration into its WebView once Start is running.
package mobile

import "github.com/hvacsim/hvacsim-desktop/internal/app"

// Start runs the application and blocks until it exits. Call it from a
// background thread.
func Start() {
	app.Run()
}
