// Package bundle embeds the packaged configuration, icons and frontend.
package bundle

import "embed"

// FS holds hvacsim.toml, icons/ and the built frontend under dist/.
//
//go:embed hvacsim.toml icons all:dist
var FS embed.FS
