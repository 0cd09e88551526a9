// Package decoder invokes the external script-decoding CLI and captures its
// intermediate JSON output.
package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrBinaryNotFound indicates the decoder binary is not in PATH.
var ErrBinaryNotFound = errors.New("decoder binary not found")

// ErrDecodeFailed indicates the decoder exited non-zero for a file.
var ErrDecodeFailed = errors.New("decoding failed")

const _decodeTimeout = 2 * time.Minute

// DuplicateKeys is the value passed to the decoder's --duplicate-keys flag.
// "preserve" repeats object members; "group" wraps every value in an array
// of bindings.
type DuplicateKeys string

const (
	// Preserve repeats object members per binding.
	Preserve DuplicateKeys = "preserve"
	// Group wraps each key's bindings in an array.
	Group DuplicateKeys = "group"
)

// CLI runs a rakaly-compatible decoder binary, one process per file. The
// execCmd and lookPath fields are injected for testability.
type CLI struct {
	// Binary is the decoder executable, resolved through PATH when relative.
	Binary string
	// Mode selects the duplicate-key convention of the output.
	Mode DuplicateKeys

	execCmd  func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
	lookPath func(file string) (string, error)
}

// New returns a CLI decoder for the given binary using preserve mode.
func New(binary string) *CLI {
	return &CLI{
		Binary:   binary,
		Mode:     Preserve,
		execCmd:  defaultExec,
		lookPath: exec.LookPath,
	}
}

func defaultExec(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, _decodeTimeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Decode runs the decoder on path and returns its intermediate JSON output.
// Process spawn and I/O live here; the Tree Builder downstream never
// retries or times out on its own.
func (c *CLI) Decode(ctx context.Context, path string) ([]byte, error) {
	bin, err := c.lookPath(c.Binary)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", c.Binary, ErrBinaryNotFound)
	}

	mode := c.Mode
	if mode == "" {
		mode = Preserve
	}

	stdout, stderr, err := c.execCmd(ctx, bin, "json", "--duplicate-keys", string(mode), path)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("decoding %s: %s: %w", path, msg, ErrDecodeFailed)
	}
	return stdout, nil
}
