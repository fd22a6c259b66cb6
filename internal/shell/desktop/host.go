//go:build !(android || ios)

package desktop

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hvacsim/hvacsim-desktop/internal/appctx"
	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"
)

// windowCenter places the window in the middle of its screen.
var windowCenter = runtime.WindowCenter

// host is attached to the window context between OnStartup and OnShutdown.
type host struct {
	ctx    *appctx.Context
	logger *zap.SugaredLogger

	mu  sync.RWMutex
	win context.Context
}

func newHost(c *appctx.Context, logger *zap.SugaredLogger) *host {
	return &host{ctx: c, logger: logger}
}

func (h *host) attach(win context.Context) {
	h.mu.Lock()
	h.win = win
	h.mu.Unlock()
}

func (h *host) detach() {
	h.mu.Lock()
	h.win = nil
	h.mu.Unlock()
}

func (h *host) window() (context.Context, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.win == nil {
		return nil, shell.ErrNotRunning
	}
	return h.win, nil
}

func (h *host) Context() *appctx.Context   { return h.ctx }
func (h *host) Logger() *zap.SugaredLogger { return h.logger }
func (h *host) Dialogs() shell.Dialogs     { return h }

func (h *host) Emit(event string, payload any) {
	win, err := h.window()
	if err != nil {
		h.logger.Debugw("Dropping event without window", "event", event)
		return
	}
	runtime.EventsEmit(win, event, payload)
}

func (h *host) Open(_ context.Context, opts shell.OpenDialogOptions) ([]string, error) {
	win, err := h.window()
	if err != nil {
		return nil, err
	}
	wo := openOptions(opts)

	switch {
	case opts.Directory:
		dir, err := runtime.OpenDirectoryDialog(win, wo)
		return nonEmpty(dir), err
	case opts.Multiple:
		return runtime.OpenMultipleFilesDialog(win, wo)
	default:
		file, err := runtime.OpenFileDialog(win, wo)
		return nonEmpty(file), err
	}
}

func (h *host) Save(_ context.Context, opts shell.SaveDialogOptions) (string, error) {
	win, err := h.window()
	if err != nil {
		return "", err
	}
	dir, file := splitDefaultPath(opts.DefaultPath)
	return runtime.SaveFileDialog(win, runtime.SaveDialogOptions{
		DefaultDirectory:     dir,
		DefaultFilename:      file,
		Title:                opts.Title,
		Filters:              fileFilters(opts.Filters),
		CanCreateDirectories: opts.CanCreateDirectories,
	})
}

func (h *host) Message(_ context.Context, opts shell.MessageDialogOptions) (string, error) {
	win, err := h.window()
	if err != nil {
		return "", err
	}
	return runtime.MessageDialog(win, messageOptions(opts))
}

func openOptions(opts shell.OpenDialogOptions) runtime.OpenDialogOptions {
	dir, file := splitDefaultPath(opts.DefaultPath)
	return runtime.OpenDialogOptions{
		DefaultDirectory:     dir,
		DefaultFilename:      file,
		Title:                opts.Title,
		Filters:              fileFilters(opts.Filters),
		ShowHiddenFiles:      opts.ShowHidden,
		CanCreateDirectories: opts.CanCreateDirectories,
	}
}

func messageOptions(opts shell.MessageDialogOptions) runtime.MessageDialogOptions {
	t := runtime.InfoDialog
	switch opts.Kind {
	case shell.KindWarning:
		t = runtime.WarningDialog
	case shell.KindError:
		t = runtime.ErrorDialog
	case shell.KindQuestion:
		t = runtime.QuestionDialog
	}
	if len(opts.Buttons) > 1 && t == runtime.InfoDialog {
		t = runtime.QuestionDialog
	}
	return runtime.MessageDialogOptions{
		Type:          t,
		Title:         opts.Title,
		Message:       opts.Message,
		Buttons:       opts.Buttons,
		DefaultButton: opts.DefaultButton,
		CancelButton:  opts.CancelButton,
	}
}

// splitDefaultPath treats paths ending in a separator or without an
// extension as directories.
func splitDefaultPath(p string) (dir, file string) {
	if p == "" {
		return "", ""
	}
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator)) || filepath.Ext(p) == "" {
		return filepath.Clean(p), ""
	}
	return filepath.Dir(p), filepath.Base(p)
}

func fileFilters(filters []shell.FileFilter) []runtime.FileFilter {
	if len(filters) == 0 {
		return nil
	}
	out := make([]runtime.FileFilter, 0, len(filters))
	for _, f := range filters {
		patterns := make([]string, 0, len(f.Extensions))
		for _, ext := range f.Extensions {
			patterns = append(patterns, "*."+strings.TrimPrefix(ext, "."))
		}
		out = append(out, runtime.FileFilter{DisplayName: f.Name, Pattern: strings.Join(patterns, ";")})
	}
	return out
}

func nonEmpty(p string) []string {
	if p == "" {
		return nil
	}
	return []string{p}
}
