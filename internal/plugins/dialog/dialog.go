// Package dialog exposes native file and message dialogs to the web UI.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
)

// Name is the plugin name used in command routing.
const Name = "dialog"

// ErrUnsupported is returned by Setup on platforms without dialogs.
var ErrUnsupported = errors.New("platform has no dialog support")

// Config is the [plugins.dialog] table.
type Config struct {
	DefaultDirectory string `toml:"default_directory"`
}

// Plugin is the dialog capability.
type Plugin struct {
	dialogs    shell.Dialogs
	defaultDir string
	logger     *zap.SugaredLogger
}

// New returns an unconfigured dialog plugin.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) Setup(h shell.Host) error {
	d := h.Dialogs()
	if d == nil {
		return ErrUnsupported
	}

	var cfg Config
	if err := h.Context().PluginConfig(Name, &cfg); err != nil {
		return err
	}
	if cfg.DefaultDirectory != "" {
		dir, err := homedir.Expand(cfg.DefaultDirectory)
		if err != nil {
			return fmt.Errorf("failed to expand default_directory: %w", err)
		}
		p.defaultDir = dir
	}

	p.dialogs = d
	p.logger = h.Logger()
	return nil
}

func (p *Plugin) Commands() shell.Commands {
	return shell.Commands{
		"open":    shell.Handle(p.open),
		"save":    shell.Handle(p.save),
		"message": shell.Handle(p.message),
		"ask":     shell.Handle(p.ask),
		"confirm": shell.Handle(p.confirm),
	}
}

// open returns nil when cancelled, a single path, or a list when Multiple is set.
func (p *Plugin) open(ctx context.Context, opts shell.OpenDialogOptions) (any, error) {
	if opts.DefaultPath == "" {
		opts.DefaultPath = p.defaultDir
	}
	paths, err := p.dialogs.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open dialog: %w", err)
	}
	switch {
	case len(paths) == 0:
		return nil, nil
	case opts.Multiple:
		return paths, nil
	default:
		return paths[0], nil
	}
}

// save returns nil when cancelled.
func (p *Plugin) save(ctx context.Context, opts shell.SaveDialogOptions) (any, error) {
	if opts.DefaultPath == "" {
		opts.DefaultPath = p.defaultDir
	}
	path, err := p.dialogs.Save(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("save dialog: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	return path, nil
}

func (p *Plugin) message(ctx context.Context, opts shell.MessageDialogOptions) (string, error) {
	if opts.Kind == "" {
		opts.Kind = shell.KindInfo
	}
	if len(opts.Buttons) == 0 {
		opts.Buttons = []string{"Ok"}
	}
	button, err := p.dialogs.Message(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("message dialog: %w", err)
	}
	return button, nil
}

// Prompt is the argument of ask and confirm.
type Prompt struct {
	Title       string            `json:"title,omitempty"`
	Message     string            `json:"message"`
	Kind        shell.MessageKind `json:"kind,omitempty"`
	OkLabel     string            `json:"okLabel,omitempty"`
	CancelLabel string            `json:"cancelLabel,omitempty"`
}

func (p *Plugin) ask(ctx context.Context, pr Prompt) (bool, error) {
	return p.choose(ctx, pr, "Yes", "No")
}

func (p *Plugin) confirm(ctx context.Context, pr Prompt) (bool, error) {
	return p.choose(ctx, pr, "Ok", "Cancel")
}

func (p *Plugin) choose(ctx context.Context, pr Prompt, ok, cancel string) (bool, error) {
	if pr.OkLabel != "" {
		ok = pr.OkLabel
	}
	if pr.CancelLabel != "" {
		cancel = pr.CancelLabel
	}
	kind := pr.Kind
	if kind == "" {
		kind = shell.KindQuestion
	}

	button, err := p.dialogs.Message(ctx, shell.MessageDialogOptions{
		Title:         pr.Title,
		Message:       pr.Message,
		Kind:          kind,
		Buttons:       []string{ok, cancel},
		DefaultButton: ok,
		CancelButton:  cancel,
	})
	if err != nil {
		return false, fmt.Errorf("message dialog: %w", err)
	}
	p.logger.Debugw("Dialog answered", "button", button)
	return strings.EqualFold(button, ok), nil
}
