package tools

import (
	"context"
	"fmt"
	"strings"
)

// Tshark gives a second opinion on how many EAPOL-Key frames a capture
// holds, using Wireshark's dissectors instead of the marker scan.
// Check Checker.Available("tshark") before using it.
type Tshark struct {
	name string
}

func NewTshark() *Tshark {
	return &Tshark{name: "tshark"}
}

// CountEAPOLFrames returns the number of EAPOL-Key frames tshark dissects
// in capFile.
func (t *Tshark) CountEAPOLFrames(ctx context.Context, capFile string) (int, error) {
	out, err := Output(ctx, t.name,
		"-r", capFile,
		"-Y", "eapol.type == 3",
		"-T", "fields",
		"-e", "frame.number",
	)
	if err != nil {
		return 0, fmt.Errorf("tshark: %w", err)
	}
	return countLines(out), nil
}

// countLines counts the frame numbers tshark printed, one per line.
func countLines(out string) int {
	return len(strings.Fields(out))
}
