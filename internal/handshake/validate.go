package handshake

import (
	"context"

	"github.com/wifibear/capcheck/internal/tools"
)

// Counter counts EAPOL key frames in a capture file. It backs the optional
// cross-check shown next to the native result; it never changes a verdict.
type Counter interface {
	Name() string
	CountEAPOL(ctx context.Context, capFile string) (int, error)
}

// TsharkCounter asks tshark for the EAPOL frame count.
type TsharkCounter struct {
	tshark *tools.Tshark
}

func NewTsharkCounter(tshark *tools.Tshark) *TsharkCounter {
	return &TsharkCounter{tshark: tshark}
}

func (c *TsharkCounter) Name() string {
	return "tshark"
}

func (c *TsharkCounter) CountEAPOL(ctx context.Context, capFile string) (int, error) {
	return c.tshark.CountEAPOLFrames(ctx, capFile)
}
