package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hvacsim/hvacsim-desktop/internal/shell"
)

// dialogs asks the connected WebView to render dialogs and waits for the
// matching dialog://reply.
type dialogs struct {
	hub *hub

	mu      sync.Mutex
	pending map[string]chan dialogReply
}

func newDialogs(h *hub) *dialogs {
	return &dialogs{hub: h, pending: make(map[string]chan dialogReply)}
}

func (d *dialogs) Open(ctx context.Context, opts shell.OpenDialogOptions) ([]string, error) {
	r, err := d.ask(ctx, "open", opts)
	if err != nil || r.Cancelled {
		return nil, err
	}
	if len(r.Paths) > 0 {
		return r.Paths, nil
	}
	if r.Path != "" {
		return []string{r.Path}, nil
	}
	return nil, nil
}

func (d *dialogs) Save(ctx context.Context, opts shell.SaveDialogOptions) (string, error) {
	r, err := d.ask(ctx, "save", opts)
	if err != nil || r.Cancelled {
		return "", err
	}
	return r.Path, nil
}

func (d *dialogs) Message(ctx context.Context, opts shell.MessageDialogOptions) (string, error) {
	r, err := d.ask(ctx, "message", opts)
	if err != nil || r.Cancelled {
		return opts.CancelButton, err
	}
	return r.Button, nil
}

func (d *dialogs) ask(ctx context.Context, kind string, opts any) (dialogReply, error) {
	if d.hub.count() == 0 {
		return dialogReply{}, shell.ErrNotRunning
	}

	id := uuid.NewString()
	ch := make(chan dialogReply, 1)
	d.mu.Lock()
	d.pending[id] = ch
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.pending, id)
		d.mu.Unlock()
	}()

	d.hub.broadcast(event{
		Event:   DialogRequestEvent,
		Payload: dialogRequest{ID: id, Kind: kind, Options: opts},
	})

	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		return dialogReply{}, fmt.Errorf("%s dialog: %w", kind, ctx.Err())
	}
}

// resolve delivers a dialog://reply to the waiting dialog.
func (d *dialogs) resolve(args json.RawMessage) error {
	var r dialogReply
	if err := json.Unmarshal(args, &r); err != nil {
		return fmt.Errorf("%w: %v", shell.ErrInvalidArgs, err)
	}
	d.mu.Lock()
	ch, ok := d.pending[r.ID]
	delete(d.pending, r.ID)
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("no pending dialog %q", r.ID)
	}
	ch <- r
	return nil
}
