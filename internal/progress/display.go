// Package progress provides display adapters for multi-file parse progress.
package progress

import "context"

// Event reports the outcome of parsing one file.
type Event struct {
	// Path is the parsed file.
	Path string
	// Err is non-nil when the file failed to parse.
	Err error
}

// Display renders parse progress to the user.
type Display interface {
	// Run consumes events for a labelled parse run and renders them.
	// It returns when ch is closed or ctx is cancelled.
	Run(ctx context.Context, label string, ch <-chan Event) error
}
