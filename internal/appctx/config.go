package appctx

import (
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the name of the packaged configuration at the root of a bundle.
const ConfigFile = "hvacsim.toml"

// Config represents the packaged build-time configuration
type Config struct {
	ProductName  string                    `toml:"product_name" validate:"required"`
	Identifier   string                    `toml:"identifier" validate:"required,bundleid"`
	Version      string                    `toml:"version" validate:"required"`
	Description  string                    `toml:"description"`
	Copyright    string                    `toml:"copyright"`
	FrontendDist string                    `toml:"frontend_dist" validate:"required"`
	Windows      []WindowSpec              `toml:"windows" validate:"dive"`
	Bundle       BundleSpec                `toml:"bundle"`
	Security     SecurityConfig            `toml:"security"`
	Mobile       MobileConfig              `toml:"mobile"`
	Plugins      map[string]toml.Primitive `toml:"plugins" validate:"-"`
}

// WindowSpec is a window as written in the configuration file.
// Pointer fields distinguish "unset" from false so defaults can apply.
type WindowSpec struct {
	Label      string `toml:"label" validate:"required"`
	Title      string `toml:"title"`
	Width      int    `toml:"width" validate:"gt=0"`
	Height     int    `toml:"height" validate:"gt=0"`
	MinWidth   int    `toml:"min_width" validate:"gte=0"`
	MinHeight  int    `toml:"min_height" validate:"gte=0"`
	MaxWidth   int    `toml:"max_width" validate:"gte=0"`
	MaxHeight  int    `toml:"max_height" validate:"gte=0"`
	Resizable  *bool  `toml:"resizable"`
	Visible    *bool  `toml:"visible"`
	Center     *bool  `toml:"center"`
	Fullscreen bool   `toml:"fullscreen"`
	Maximized  bool   `toml:"maximized"`
	Background string `toml:"background" validate:"omitempty,hexcolor"`
}

// BundleSpec lists packaged resources
type BundleSpec struct {
	Icons []string `toml:"icons"`
}

// SecurityConfig contains settings applied to every served asset
type SecurityConfig struct {
	CSP string `toml:"csp"`
}

// MobileConfig contains settings for the mobile webview bridge
type MobileConfig struct {
	Address string `toml:"address" validate:"required,hostname_port"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version:      "0.1.0",
		FrontendDist: "dist",
		Security: SecurityConfig{
			CSP: "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; connect-src 'self' ws://127.0.0.1:*",
		},
		Mobile: MobileConfig{
			Address: "127.0.0.1:1430",
		},
	}
}

// DefaultWindow returns the window used when the configuration declares none.
func DefaultWindow(title string) WindowSpec {
	return WindowSpec{
		Label:  "main",
		Title:  title,
		Width:  800,
		Height: 600,
	}
}

// LoadConfig decodes the configuration file from the bundle.
// Missing fields are filled with defaults from DefaultConfig().
func LoadConfig(bundle fs.FS) (*Config, toml.MetaData, error) {
	cfg := DefaultConfig()

	data, err := fs.ReadFile(bundle, ConfigFile)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("failed to decode %s: %w", ConfigFile, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		// plugin tables are decoded later by their plugins
		for _, key := range undecoded {
			if len(key) > 0 && key[0] == "plugins" {
				continue
			}
			return nil, toml.MetaData{}, fmt.Errorf("unknown key %q in %s", key.String(), ConfigFile)
		}
	}

	if len(cfg.Windows) == 0 {
		cfg.Windows = []WindowSpec{DefaultWindow(cfg.ProductName)}
	}
	for i := range cfg.Windows {
		w := &cfg.Windows[i]
		if w.Label == "" && i == 0 {
			w.Label = "main"
		}
		if w.Title == "" {
			w.Title = cfg.ProductName
		}
		if w.Width == 0 {
			w.Width = 800
		}
		if w.Height == 0 {
			w.Height = 600
		}
	}

	return cfg, md, nil
}
