package progress

import (
	"context"
	"fmt"
)

// Quiet only reports the first failed file; all other progress is suppressed.
type Quiet struct{}

// Run consumes events and returns the first failure encountered.
// It returns when ch is closed or ctx is cancelled.
func (*Quiet) Run(ctx context.Context, label string, ch <-chan Event) error {
	var firstErr error
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("progress display cancelled: %w", ctx.Err())
		case e, ok := <-ch:
			if !ok {
				return firstErr
			}
			if e.Err != nil && firstErr == nil {
				firstErr = fmt.Errorf("run %q file %s: %w", label, e.Path, e.Err)
			}
		}
	}
}
