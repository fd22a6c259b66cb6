package appctx

import (
	"strings"
	"testing"

	"github.com/hvacsim/hvacsim-desktop/internal/appctx/appctxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	ctx, err := Generate(appctxtest.Bundle(appctxtest.Config))
	require.NoError(t, err)

	assert.Equal(t, "HVAC Simulator", ctx.ProductName())
	assert.Equal(t, "com.hvacsim.test", ctx.Identifier())
	assert.Equal(t, "1.2.3", ctx.Version().String())
	assert.Equal(t, "test bundle", ctx.Description())
	assert.Equal(t, "default-src 'self'", ctx.Security().CSP)
	assert.Equal(t, "127.0.0.1:1430", ctx.Mobile().Address)

	windows := ctx.Windows()
	require.Len(t, windows, 1)
	assert.Equal(t, "main", windows[0].Label)
	assert.Equal(t, 1280, windows[0].Width)
	assert.Equal(t, 800, windows[0].Height)
	assert.Equal(t, 640, windows[0].MinWidth)
	assert.True(t, windows[0].Resizable)
	assert.True(t, windows[0].Visible)
	assert.Equal(t, RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}, windows[0].Background)

	icons := ctx.Icons()
	require.Len(t, icons, 2)
	assert.Equal(t, "icons/128x128.png", icons[0].Path)
	assert.Equal(t, 128, icons[0].Width)
	assert.Equal(t, 32, icons[1].Height)
	largest, ok := ctx.LargestIcon()
	require.True(t, ok)
	assert.Equal(t, icons[0].Data(), largest.Data())

	assert.Equal(t, 4, ctx.Manifest().Len())
	assert.False(t, ctx.Consumed())
}

func TestGenerateDefaults(t *testing.T) {
	config := `
product_name = "Sim"
identifier = "com.hvacsim.defaults"
`
	ctx, err := Generate(appctxtest.Bundle(config))
	require.NoError(t, err)

	assert.Equal(t, "0.1.0", ctx.Version().String())
	assert.Equal(t, "127.0.0.1:1430", ctx.Mobile().Address)
	assert.NotEmpty(t, ctx.Security().CSP)
	assert.Empty(t, ctx.Icons())

	windows := ctx.Windows()
	require.Len(t, windows, 1)
	assert.Equal(t, "main", windows[0].Label)
	assert.Equal(t, "Sim", windows[0].Title)
	assert.Equal(t, 800, windows[0].Width)
	assert.Equal(t, 600, windows[0].Height)
	assert.True(t, windows[0].Resizable)
	assert.True(t, windows[0].Center)
	assert.Equal(t, RGBA{R: 255, G: 255, B: 255, A: 255}, windows[0].Background)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg string) string
		remove  string
		wantErr string
	}{
		{
			name:    "invalid toml",
			mutate:  func(cfg string) string { return cfg + "\n[[windows\n" },
			wantErr: "failed to decode",
		},
		{
			name:    "bad identifier",
			mutate:  func(cfg string) string { return strings.Replace(cfg, "com.hvacsim.test", "hvacsim", 1) },
			wantErr: "not a reverse-DNS identifier",
		},
		{
			name:    "missing product name",
			mutate:  func(cfg string) string { return strings.Replace(cfg, `product_name = "HVAC Simulator"`, "", 1) },
			wantErr: "product_name is required",
		},
		{
			name:    "non semver version",
			mutate:  func(cfg string) string { return strings.Replace(cfg, `"1.2.3"`, `"1.2"`, 1) },
			wantErr: "invalid version",
		},
		{
			name:    "unknown key",
			mutate:  func(cfg string) string { return "colour_scheme = \"dark\"\n" + cfg },
			wantErr: "unknown key",
		},
		{
			name:    "bad background",
			mutate:  func(cfg string) string { return strings.Replace(cfg, `"#0f172a"`, `"navy"`, 1) },
			wantErr: "not a hex colour",
		},
		{
			name:    "window below minimum",
			mutate:  func(cfg string) string { return strings.Replace(cfg, "width = 1280", "width = 320", 1) },
			wantErr: "below its minimum",
		},
		{
			name: "max below min",
			mutate: func(cfg string) string {
				return strings.Replace(cfg, "min_width = 640", "min_width = 640\nmax_width = 600", 1)
			},
			wantErr: "max_width 600 is below min_width 640",
		},
		{
			name:    "bad mobile address",
			mutate:  func(cfg string) string { return strings.Replace(cfg, `"127.0.0.1:1430"`, `"loopback"`, 1) },
			wantErr: "not a host:port address",
		},
		{
			name:    "missing icon",
			mutate:  func(cfg string) string { return strings.Replace(cfg, "icons/32x32.png", "icons/missing.png", 1) },
			wantErr: "failed to read icon",
		},
		{
			name:    "icon not png",
			mutate:  func(cfg string) string { return strings.Replace(cfg, "icons/32x32.png", "dist/index.html", 1) },
			wantErr: "is not a PNG image",
		},
		{
			name:    "frontend without index",
			remove:  "dist/index.html",
			wantErr: ErrNoIndex.Error(),
		},
		{
			name:    "missing config",
			remove:  ConfigFile,
			wantErr: "failed to read hvacsim.toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := appctxtest.Config
			if tt.mutate != nil {
				cfg = tt.mutate(cfg)
			}
			bundle := appctxtest.Bundle(cfg)
			if tt.remove != "" {
				delete(bundle, tt.remove)
			}

			ctx, err := Generate(bundle)
			require.Error(t, err)
			assert.Nil(t, ctx)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerateDuplicateWindowLabels(t *testing.T) {
	cfg := appctxtest.Config + `
[[windows]]
label = "main"
`
	_, err := Generate(appctxtest.Bundle(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate window label "main"`)
}

func TestClaim(t *testing.T) {
	ctx, err := Generate(appctxtest.Bundle(appctxtest.Config))
	require.NoError(t, err)

	require.NoError(t, ctx.Claim())
	assert.True(t, ctx.Consumed())
	assert.ErrorIs(t, ctx.Claim(), ErrContextConsumed)
	assert.ErrorIs(t, ctx.Claim(), ErrContextConsumed)
}

func TestGenerateIsIndependentPerCall(t *testing.T) {
	bundle := appctxtest.Bundle(appctxtest.Config)

	first, err := Generate(bundle)
	require.NoError(t, err)
	second, err := Generate(bundle)
	require.NoError(t, err)

	require.NoError(t, first.Claim())
	assert.NotSame(t, first, second)
	assert.False(t, second.Consumed())
	assert.NoError(t, second.Claim())
}

func TestPluginConfig(t *testing.T) {
	ctx, err := Generate(appctxtest.Bundle(appctxtest.Config))
	require.NoError(t, err)

	var fsCfg struct {
		Scope []string `toml:"scope"`
	}
	require.NoError(t, ctx.PluginConfig("fs", &fsCfg))
	assert.Equal(t, []string{"$TEMP/**"}, fsCfg.Scope)

	dialogCfg := struct {
		DefaultDirectory string `toml:"default_directory"`
	}{DefaultDirectory: "~"}
	require.NoError(t, ctx.PluginConfig("dialog", &dialogCfg))
	assert.Equal(t, "~", dialogCfg.DefaultDirectory)

	var wrong struct {
		Scope int `toml:"scope"`
	}
	assert.Error(t, ctx.PluginConfig("fs", &wrong))
}

func TestAccessorsReturnCopies(t *testing.T) {
	ctx, err := Generate(appctxtest.Bundle(appctxtest.Config))
	require.NoError(t, err)

	windows := ctx.Windows()
	windows[0].Title = "changed"
	assert.Equal(t, "HVAC Simulator", ctx.Windows()[0].Title)

	v := ctx.Version()
	*v = v.IncMajor()
	assert.Equal(t, "1.2.3", ctx.Version().String())

	data := ctx.Icons()[0].Data()
	data[0] = 0
	assert.NotEqual(t, byte(0), ctx.Icons()[0].Data()[0])
}

func TestSummary(t *testing.T) {
	ctx, err := Generate(appctxtest.Bundle(appctxtest.Config))
	require.NoError(t, err)

	s := ctx.Summary()
	assert.Equal(t, "1.2.3", s.Version)
	assert.Equal(t, []string{"fs"}, s.Plugins)
	require.Len(t, s.Icons, 2)
	assert.Equal(t, IconInfo{Path: "icons/128x128.png", Width: 128, Height: 128}, s.Icons[0])
	assert.Len(t, s.Assets, 4)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    RGBA
		wantErr bool
	}{
		{in: "#fff", want: RGBA{255, 255, 255, 255}},
		{in: "#0f172a", want: RGBA{15, 23, 42, 255}},
		{in: "#0f172a80", want: RGBA{15, 23, 42, 128}},
		{in: "#f008", want: RGBA{255, 0, 0, 136}},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
