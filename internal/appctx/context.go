// Package appctx generates the Application Context: the immutable startup
// bundle of window configuration, identifiers, icons and web UI manifest that a
// runtime consumes exactly once.
package appctx

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// ErrContextConsumed is returned when a context is handed to a second runtime.
var ErrContextConsumed = errors.New("application context already consumed")

// Context is the immutable configuration bundle of one application start.
// All accessors return copies.
type Context struct {
	productName string
	identifier  string
	version     *semver.Version
	description string
	copyright   string
	windows     []WindowConfig
	icons       []Icon
	assets      fs.FS
	manifest    Manifest
	security    SecurityConfig
	mobile      MobileConfig
	plugins     map[string]toml.Primitive
	meta        toml.MetaData

	consumed atomic.Bool
}

// WindowConfig is a resolved window description.
type WindowConfig struct {
	Label      string `json:"label" yaml:"label" toml:"label"`
	Title      string `json:"title" yaml:"title" toml:"title"`
	Width      int    `json:"width" yaml:"width" toml:"width"`
	Height     int    `json:"height" yaml:"height" toml:"height"`
	MinWidth   int    `json:"min_width" yaml:"min_width" toml:"min_width"`
	MinHeight  int    `json:"min_height" yaml:"min_height" toml:"min_height"`
	MaxWidth   int    `json:"max_width" yaml:"max_width" toml:"max_width"`
	MaxHeight  int    `json:"max_height" yaml:"max_height" toml:"max_height"`
	Resizable  bool   `json:"resizable" yaml:"resizable" toml:"resizable"`
	Visible    bool   `json:"visible" yaml:"visible" toml:"visible"`
	Center     bool   `json:"center" yaml:"center" toml:"center"`
	Fullscreen bool   `json:"fullscreen" yaml:"fullscreen" toml:"fullscreen"`
	Maximized  bool   `json:"maximized" yaml:"maximized" toml:"maximized"`
	Background RGBA   `json:"background" yaml:"background" toml:"background"`
}

// RGBA is an 8-bit colour.
type RGBA struct {
	R uint8 `json:"r" yaml:"r" toml:"r"`
	G uint8 `json:"g" yaml:"g" toml:"g"`
	B uint8 `json:"b" yaml:"b" toml:"b"`
	A uint8 `json:"a" yaml:"a" toml:"a"`
}

// ProductName returns the display name of the application.
func (c *Context) ProductName() string { return c.productName }

// Identifier returns the reverse-DNS application identifier.
func (c *Context) Identifier() string { return c.identifier }

// Version returns a copy of the application version.
func (c *Context) Version() *semver.Version {
	v := *c.version
	return &v
}

// Description returns the application description.
func (c *Context) Description() string { return c.description }

// Copyright returns the copyright notice.
func (c *Context) Copyright() string { return c.copyright }

// Windows returns the configured windows, the main window first.
func (c *Context) Windows() []WindowConfig {
	out := make([]WindowConfig, len(c.windows))
	copy(out, c.windows)
	return out
}

// Icons returns the packaged icons, largest first.
func (c *Context) Icons() []Icon {
	out := make([]Icon, len(c.icons))
	copy(out, c.icons)
	return out
}

// Assets returns the web UI file tree.
func (c *Context) Assets() fs.FS { return c.assets }

// Manifest returns the generated web UI manifest.
func (c *Context) Manifest() Manifest { return c.manifest }

// Security returns the asset security settings.
func (c *Context) Security() SecurityConfig { return c.security }

// Mobile returns the mobile bridge settings.
func (c *Context) Mobile() MobileConfig { return c.mobile }

// PluginConfig decodes the [plugins.<name>] table into v. v is left
// untouched when the table is absent.
func (c *Context) PluginConfig(name string, v any) error {
	prim, ok := c.plugins[name]
	if !ok {
		return nil
	}
	if err := c.meta.PrimitiveDecode(prim, v); err != nil {
		return fmt.Errorf("failed to decode plugins.%s: %w", name, err)
	}
	return nil
}

// Claim marks the context as consumed by a runtime. Only the first call succeeds.
func (c *Context) Claim() error {
	if !c.consumed.CompareAndSwap(false, true) {
		return ErrContextConsumed
	}
	return nil
}

// Consumed reports whether a runtime has claimed the context.
func (c *Context) Consumed() bool {
	return c.consumed.Load()
}

// Summary is a serializable view of a Context.
type Summary struct {
	ProductName string         `json:"product_name" yaml:"product_name" toml:"product_name"`
	Identifier  string         `json:"identifier" yaml:"identifier" toml:"identifier"`
	Version     string         `json:"version" yaml:"version" toml:"version"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Copyright   string         `json:"copyright,omitempty" yaml:"copyright,omitempty" toml:"copyright,omitempty"`
	Windows     []WindowConfig `json:"windows" yaml:"windows" toml:"windows"`
	Icons       []IconInfo     `json:"icons" yaml:"icons" toml:"icons"`
	Assets      []Asset        `json:"assets" yaml:"assets" toml:"assets"`
	CSP         string         `json:"csp,omitempty" yaml:"csp,omitempty" toml:"csp,omitempty"`
	Plugins     []string       `json:"plugins" yaml:"plugins" toml:"plugins"`
}

// IconInfo describes an icon without its pixel data.
type IconInfo struct {
	Path   string `json:"path" yaml:"path" toml:"path"`
	Width  int    `json:"width" yaml:"width" toml:"width"`
	Height int    `json:"height" yaml:"height" toml:"height"`
}

// Summary returns a serializable view of the context.
func (c *Context) Summary() Summary {
	s := Summary{
		ProductName: c.productName,
		Identifier:  c.identifier,
		Version:     c.version.String(),
		Description: c.description,
		Copyright:   c.copyright,
		Windows:     c.Windows(),
		Assets:      c.manifest.Assets(),
		CSP:         c.security.CSP,
		Plugins:     []string{},
	}
	for _, ic := range c.icons {
		s.Icons = append(s.Icons, IconInfo{Path: ic.Path, Width: ic.Width, Height: ic.Height})
	}
	for name := range c.plugins {
		s.Plugins = append(s.Plugins, name)
	}
	sort.Strings(s.Plugins)
	return s
}
