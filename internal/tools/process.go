package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Output runs name and returns its trimmed standard output. When the
// command fails, whatever it wrote to standard error is added to err.
func Output(ctx context.Context, name string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
	}
	return strings.TrimSpace(string(out)), err
}
