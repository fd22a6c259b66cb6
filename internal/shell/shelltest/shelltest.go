// Package shelltest provides in-memory hosts, dialogs and plugins for tests
// of code built on package shell.
package shelltest

import (
	"context"
	"sync"
	"testing"

	"github.com/hvacsim/hvacsim-desktop/internal/appctx"
	"github.com/hvacsim/hvacsim-desktop/internal/appctx/appctxtest"
	"github.com/hvacsim/hvacsim-desktop/internal/shell"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewContext generates a fresh context from the default test bundle.
func NewContext(t testing.TB) *appctx.Context {
	t.Helper()
	return NewContextFrom(t, appctxtest.Config)
}

// NewContextFrom generates a fresh context from a test bundle with config.
func NewContextFrom(t testing.TB, config string) *appctx.Context {
	t.Helper()
	ctx, err := appctx.Generate(appctxtest.Bundle(config))
	if err != nil {
		t.Fatalf("generate context: %v", err)
	}
	return ctx
}

// Event is one recorded emit.
type Event struct {
	Name    string
	Payload any
}

// Host is a shell.Host that records emitted events.
type Host struct {
	Ctx    *appctx.Context
	Dialog shell.Dialogs
	Log    *zap.SugaredLogger

	mu     sync.Mutex
	events []Event
	notify chan Event
}

// NewHost returns a host with a test logger and the given dialogs, which
// may be nil.
func NewHost(t testing.TB, ctx *appctx.Context, dialogs shell.Dialogs) *Host {
	return &Host{
		Ctx:    ctx,
		Dialog: dialogs,
		Log:    zaptest.NewLogger(t).Sugar(),
		notify: make(chan Event, 64),
	}
}

func (h *Host) Context() *appctx.Context   { return h.Ctx }
func (h *Host) Dialogs() shell.Dialogs     { return h.Dialog }
func (h *Host) Logger() *zap.SugaredLogger { return h.Log }

func (h *Host) Emit(event string, payload any) {
	e := Event{Name: event, Payload: payload}
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
	select {
	case h.notify <- e:
	default:
	}
}

// Events returns a copy of everything emitted so far.
func (h *Host) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

// Emitted returns the channel that receives each emitted event.
func (h *Host) Emitted() <-chan Event {
	return h.notify
}

// Dialogs answers every dialog with canned results and records the options
// it was shown with.
type Dialogs struct {
	OpenResult    []string
	SaveResult    string
	MessageResult string
	Err           error

	mu       sync.Mutex
	opened   []shell.OpenDialogOptions
	saved    []shell.SaveDialogOptions
	messages []shell.MessageDialogOptions
}

func (d *Dialogs) Open(_ context.Context, opts shell.OpenDialogOptions) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = append(d.opened, opts)
	return d.OpenResult, d.Err
}

func (d *Dialogs) Save(_ context.Context, opts shell.SaveDialogOptions) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.saved = append(d.saved, opts)
	return d.SaveResult, d.Err
}

func (d *Dialogs) Message(_ context.Context, opts shell.MessageDialogOptions) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, opts)
	return d.MessageResult, d.Err
}

// LastOpen returns the options of the most recent Open call.
func (d *Dialogs) LastOpen() shell.OpenDialogOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.opened) == 0 {
		return shell.OpenDialogOptions{}
	}
	return d.opened[len(d.opened)-1]
}

// LastSave returns the options of the most recent Save call.
func (d *Dialogs) LastSave() shell.SaveDialogOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.saved) == 0 {
		return shell.SaveDialogOptions{}
	}
	return d.saved[len(d.saved)-1]
}

// LastMessage returns the options of the most recent Message call.
func (d *Dialogs) LastMessage() shell.MessageDialogOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.messages) == 0 {
		return shell.MessageDialogOptions{}
	}
	return d.messages[len(d.messages)-1]
}

// Plugin is a configurable plugin recording its lifecycle.
type Plugin struct {
	ID       string
	SetupErr error
	CloseErr error
	Cmds     shell.Commands

	// OnSetup and OnClose, when set, run inside Setup and Close.
	OnSetup func(h shell.Host)
	OnClose func()

	mu     sync.Mutex
	host   shell.Host
	setups int
	closes int
}

func (p *Plugin) Name() string { return p.ID }

func (p *Plugin) Setup(h shell.Host) error {
	p.mu.Lock()
	p.setups++
	p.host = h
	p.mu.Unlock()
	if p.OnSetup != nil {
		p.OnSetup(h)
	}
	return p.SetupErr
}

func (p *Plugin) Commands() shell.Commands { return p.Cmds }

func (p *Plugin) Close() error {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	if p.OnClose != nil {
		p.OnClose()
	}
	return p.CloseErr
}

// Setups returns how many times Setup ran.
func (p *Plugin) Setups() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setups
}

// Closes returns how many times Close ran.
func (p *Plugin) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// Host returns the host the plugin was last set up against.
func (p *Plugin) Host() shell.Host {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.host
}
