package database

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	stderrLimit = 4096
	waitDelay   = 10 * time.Second
)

// runTool runs a database client binary. stdout may be nil. A non-zero exit
// status is always an error, whatever was written to stdout before it.
func runTool(ctx context.Context, name string, args, env []string, stdout io.Writer) error {
	stderr := &tailBuffer{limit: stderrLimit}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), env...)
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		if output := strings.TrimSpace(stderr.String()); output != "" {
			return fmt.Errorf("%s failed: %w, output: %s", name, err, output)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}

	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) > t.limit {
		p = p[len(p)-t.limit:]
	}
	if over := t.buf.Len() + len(p) - t.limit; over > 0 {
		t.buf.Next(over)
	}
	t.buf.Write(p)
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}
