package shell

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handle adapts a typed handler into a Command. Empty or null args decode to
// the zero value of A.
func Handle[A, R any](fn func(ctx context.Context, args A) (R, error)) Command {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args A
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
			}
		}
		return fn(ctx, args)
	}
}
