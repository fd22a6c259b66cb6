//go:build !(android || ios)

package desktop

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"github.com/hvacsim/hvacsim-desktop/internal/shell/shelltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"
)

func fakeRuntime(run func(*options.App) error) *Runtime {
	return &Runtime{run: run}
}

func TestStartMapsWindowOptions(t *testing.T) {
	ctx := shelltest.NewContext(t)
	plugin := &shelltest.Plugin{ID: "sim"}

	var got *options.App
	r := fakeRuntime(func(opts *options.App) error {
		got = opts
		assert.Equal(t, 0, plugin.Closes(), "plugins stay open while the loop runs")
		return nil
	})

	require.NoError(t, r.Start(shell.Config{Context: ctx, Plugins: []shell.Plugin{plugin}}))
	require.NotNil(t, got)

	assert.Equal(t, "HVAC Simulator", got.Title)
	assert.Equal(t, 1280, got.Width)
	assert.Equal(t, 800, got.Height)
	assert.Equal(t, 640, got.MinWidth)
	assert.Equal(t, 480, got.MinHeight)
	assert.False(t, got.DisableResize)
	assert.False(t, got.StartHidden)
	assert.Equal(t, &options.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}, got.BackgroundColour)
	assert.Equal(t, options.Normal, got.WindowStartState)
	assert.Equal(t, "com.hvacsim.test", got.SingleInstanceLock.UniqueId)
	assert.Equal(t, "HVAC Simulator", got.Linux.ProgramName)
	assert.NotEmpty(t, got.Linux.Icon)
	assert.Equal(t, "HVAC Simulator 1.2.3", got.Mac.About.Title)
	require.Len(t, got.Bind, 1)
	assert.IsType(t, &IPC{}, got.Bind[0])

	assert.True(t, ctx.Consumed())
	assert.Equal(t, 1, plugin.Setups())
	assert.Equal(t, 1, plugin.Closes())
}

func TestStartWindowStates(t *testing.T) {
	tests := []struct {
		name   string
		extra  string
		want   options.WindowStartState
		hidden bool
		fixed  bool
	}{
		{name: "maximized", extra: "maximized = true", want: options.Maximised},
		{name: "fullscreen", extra: "fullscreen = true\nmaximized = true", want: options.Fullscreen},
		{name: "hidden fixed", extra: "visible = false\nresizable = false", want: options.Normal, hidden: true, fixed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := `
product_name = "Sim"
identifier = "com.hvacsim.states"

[[windows]]
` + tt.extra + "\n"
			ctx := shelltest.NewContextFrom(t, config)

			var got *options.App
			r := fakeRuntime(func(opts *options.App) error { got = opts; return nil })
			require.NoError(t, r.Start(shell.Config{Context: ctx, Plugins: []shell.Plugin{&shelltest.Plugin{ID: "x"}}}))

			assert.Equal(t, tt.want, got.WindowStartState)
			assert.Equal(t, tt.hidden, got.StartHidden)
			assert.Equal(t, tt.fixed, got.DisableResize)
			assert.Empty(t, got.Linux.Icon)
		})
	}
}

func TestStartCentersWindow(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		want  bool
	}{
		{name: "default", want: true},
		{name: "explicit", extra: "center = true", want: true},
		{name: "disabled", extra: "center = false", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			centered := false
			prev := windowCenter
			windowCenter = func(context.Context) { centered = true }
			t.Cleanup(func() { windowCenter = prev })

			config := `
product_name = "Sim"
identifier = "com.hvacsim.center"

[[windows]]
` + tt.extra + "\n"
			ctx := shelltest.NewContextFrom(t, config)

			r := fakeRuntime(func(opts *options.App) error {
				opts.OnStartup(context.Background())
				opts.OnShutdown(context.Background())
				return nil
			})
			require.NoError(t, r.Start(shell.Config{Context: ctx, Plugins: []shell.Plugin{&shelltest.Plugin{ID: "x"}}}))
			assert.Equal(t, tt.want, centered)
		})
	}
}

func TestStartRuntimeError(t *testing.T) {
	ctx := shelltest.NewContext(t)
	plugin := &shelltest.Plugin{ID: "sim"}
	boom := errors.New("no webview")

	err := fakeRuntime(func(*options.App) error { return boom }).
		Start(shell.Config{Context: ctx, Plugins: []shell.Plugin{plugin}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var se *shell.StartupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, shell.StageRuntime, se.Stage)
	assert.Equal(t, 1, plugin.Closes())
}

func TestStartSetupErrorNeverRunsLoop(t *testing.T) {
	ctx := shelltest.NewContext(t)
	ran := false
	r := fakeRuntime(func(*options.App) error { ran = true; return nil })

	err := r.Start(shell.Config{Context: ctx, Plugins: []shell.Plugin{&shelltest.Plugin{ID: "x", SetupErr: errors.New("nope")}}})
	require.Error(t, err)
	assert.False(t, ran)
}

func TestIPCInvoke(t *testing.T) {
	ctx := shelltest.NewContext(t)
	plugin := &shelltest.Plugin{ID: "sim", Cmds: shell.Commands{
		"echo": shell.Handle(func(_ context.Context, a map[string]int) (int, error) { return a["n"] * 2, nil }),
	}}

	r := fakeRuntime(func(opts *options.App) error {
		ipc := opts.Bind[0].(*IPC)
		got, err := ipc.Invoke("plugin:sim|echo", json.RawMessage(`{"n":21}`))
		require.NoError(t, err)
		assert.Equal(t, 42, got)

		_, err = ipc.Invoke("plugin:sim|missing", nil)
		assert.ErrorIs(t, err, shell.ErrUnknownCommand)
		return nil
	})
	require.NoError(t, r.Start(shell.Config{Context: ctx, Plugins: []shell.Plugin{plugin}, Logger: zap.NewNop().Sugar()}))
}

func TestDialogsNeedWindow(t *testing.T) {
	h := newHost(shelltest.NewContext(t), zap.NewNop().Sugar())

	_, err := h.Open(context.Background(), shell.OpenDialogOptions{})
	assert.ErrorIs(t, err, shell.ErrNotRunning)
	_, err = h.Save(context.Background(), shell.SaveDialogOptions{})
	assert.ErrorIs(t, err, shell.ErrNotRunning)
	_, err = h.Message(context.Background(), shell.MessageDialogOptions{})
	assert.ErrorIs(t, err, shell.ErrNotRunning)

	h.Emit("dropped", nil)
}

func TestDialogOptionMapping(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator)+"home", "sim")
	o := openOptions(shell.OpenDialogOptions{
		Title:       "Open plan",
		DefaultPath: filepath.Join(dir, "plan.json"),
		Filters:     []shell.FileFilter{{Name: "Plans", Extensions: []string{"json", ".csv"}}},
		ShowHidden:  true,
	})
	assert.Equal(t, dir, o.DefaultDirectory)
	assert.Equal(t, "plan.json", o.DefaultFilename)
	assert.Equal(t, []runtime.FileFilter{{DisplayName: "Plans", Pattern: "*.json;*.csv"}}, o.Filters)
	assert.True(t, o.ShowHiddenFiles)

	o = openOptions(shell.OpenDialogOptions{DefaultPath: dir})
	assert.Equal(t, dir, o.DefaultDirectory)
	assert.Empty(t, o.DefaultFilename)
	assert.Nil(t, o.Filters)

	m := messageOptions(shell.MessageDialogOptions{Message: "Run?", Buttons: []string{"Ok", "Cancel"}})
	assert.Equal(t, runtime.QuestionDialog, m.Type)
	m = messageOptions(shell.MessageDialogOptions{Message: "Failed", Kind: shell.KindError})
	assert.Equal(t, runtime.ErrorDialog, m.Type)
	m = messageOptions(shell.MessageDialogOptions{Message: "Done"})
	assert.Equal(t, runtime.InfoDialog, m.Type)
}

func TestCSPMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	cspMiddleware("default-src 'self'")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	cspMiddleware("")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}
