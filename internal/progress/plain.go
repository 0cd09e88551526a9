package progress

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdxwikis/pdxtree/internal/logging"
)

// Plain consumes parse events and emits them as slog messages. The slog
// handler (pretty/json/text) decides how to render.
type Plain struct{}

// Run consumes events and logs one line per file.
// It returns when ch is closed or ctx is cancelled.
func (*Plain) Run(ctx context.Context, label string, ch <-chan Event) error {
	log := logging.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			// Drain so senders can finish; a sender blocked on ch<- could
			// otherwise never return to close the channel.
			//revive:disable-next-line:empty-block // intentionally draining
			for range ch {
			}
			return fmt.Errorf("progress display cancelled: %w", ctx.Err())
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			if e.Err != nil {
				//nolint:sloglint // dynamic msg encodes user-facing formatted output
				log.LogAttrs(ctx, slog.LevelError, fmt.Sprintf("[%s] FAIL %s: %v", label, e.Path, e.Err),
					slog.String("event", "file.failed"),
					slog.String("file", e.Path),
					slog.String("error", e.Err.Error()),
				)
				continue
			}
			//nolint:sloglint // dynamic msg encodes user-facing formatted output
			log.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("[%s] parsed %s", label, e.Path),
				slog.String("event", "file.parsed"),
				slog.String("file", e.Path),
			)
		}
	}
}
