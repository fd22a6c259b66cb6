package appctx

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Generate materializes a Context from a packaged bundle: the configuration
// file at its root, the icons it lists, and the frontend directory.
func Generate(bundle fs.FS) (*Context, error) {
	cfg, md, err := LoadConfig(bundle)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	version, err := semver.StrictNewVersion(cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", cfg.Version, err)
	}

	windows := make([]WindowConfig, 0, len(cfg.Windows))
	for _, w := range cfg.Windows {
		wc, err := resolveWindow(w)
		if err != nil {
			return nil, err
		}
		windows = append(windows, wc)
	}

	icons, err := loadIcons(bundle, cfg.Bundle.Icons)
	if err != nil {
		return nil, err
	}

	assets, err := fs.Sub(bundle, cfg.FrontendDist)
	if err != nil {
		return nil, fmt.Errorf("invalid frontend_dist %q: %w", cfg.FrontendDist, err)
	}
	manifest, err := BuildManifest(assets)
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest for %s: %w", cfg.FrontendDist, err)
	}

	return &Context{
		productName: cfg.ProductName,
		identifier:  cfg.Identifier,
		version:     version,
		description: cfg.Description,
		copyright:   cfg.Copyright,
		windows:     windows,
		icons:       icons,
		assets:      assets,
		manifest:    manifest,
		security:    cfg.Security,
		mobile:      cfg.Mobile,
		plugins:     cfg.Plugins,
		meta:        md,
	}, nil
}

func resolveWindow(w WindowSpec) (WindowConfig, error) {
	bg := RGBA{R: 255, G: 255, B: 255, A: 255}
	if w.Background != "" {
		c, err := ParseHexColor(w.Background)
		if err != nil {
			return WindowConfig{}, fmt.Errorf("window %q: %w", w.Label, err)
		}
		bg = c
	}
	return WindowConfig{
		Label:      w.Label,
		Title:      w.Title,
		Width:      w.Width,
		Height:     w.Height,
		MinWidth:   w.MinWidth,
		MinHeight:  w.MinHeight,
		MaxWidth:   w.MaxWidth,
		MaxHeight:  w.MaxHeight,
		Resizable:  boolOr(w.Resizable, true),
		Visible:    boolOr(w.Visible, true),
		Center:     boolOr(w.Center, true),
		Fullscreen: w.Fullscreen,
		Maximized:  w.Maximized,
		Background: bg,
	}, nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// ParseHexColor parses #rgb, #rgba, #rrggbb or #rrggbbaa.
func ParseHexColor(s string) (RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 || len(h) == 4 {
		short := h
		h = ""
		for i := 0; i < len(short); i++ {
			h += string([]byte{short[i], short[i]})
		}
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return RGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}
