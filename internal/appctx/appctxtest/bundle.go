// Package appctxtest builds in-memory application bundles for tests.
package appctxtest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing/fstest"
)

// Config is a minimal valid packaged configuration.
const Config = `
product_name = "HVAC Simulator"
identifier = "com.hvacsim.test"
version = "1.2.3"
description = "test bundle"
frontend_dist = "dist"

[[windows]]
label = "main"
title = "HVAC Simulator"
width = 1280
height = 800
min_width = 640
min_height = 480
background = "#0f172a"

[bundle]
icons = ["icons/32x32.png", "icons/128x128.png"]

[security]
csp = "default-src 'self'"

[mobile]
address = "127.0.0.1:1430"

[plugins.fs]
scope = ["$TEMP/**"]
`

// IndexHTML is the index document of the test frontend.
const IndexHTML = `<!doctype html><html><head><title>HVAC Simulator</title></head><body><div id="app"></div><script src="assets/app.js"></script></body></html>`

// PNG encodes a solid w x h image.
func PNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 15, G: 23, B: 42, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Bundle returns a bundle holding config, two icons and a small frontend.
func Bundle(config string) fstest.MapFS {
	return fstest.MapFS{
		"hvacsim.toml":          {Data: []byte(config)},
		"icons/32x32.png":       {Data: PNG(32, 32)},
		"icons/128x128.png":     {Data: PNG(128, 128)},
		"dist/index.html":       {Data: []byte(IndexHTML)},
		"dist/assets/app.js":    {Data: []byte(`console.log("hvacsim");`)},
		"dist/assets/style.css": {Data: []byte(`body { margin: 0; }`)},
		"dist/assets/logo.png":  {Data: PNG(8, 8)},
	}
}
