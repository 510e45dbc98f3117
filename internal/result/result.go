package result

import (
	"encoding/json"
	"time"

	"github.com/wifibear/capcheck/internal/handshake"
)

// CheckRecord is the persisted outcome of checking one capture file.
type CheckRecord struct {
	File         string    `json:"file"`
	SSID         string    `json:"ssid,omitempty"`
	Status       string    `json:"status"`
	Compatible   bool      `json:"wpasec_compatible"`
	HashcatReady bool      `json:"hashcat_ready"`
	Messages     []string  `json:"messages,omitempty"`
	Diagnostics  []string  `json:"diagnostics,omitempty"`
	Packets      int       `json:"packets"`
	Size         int       `json:"size"`
	Duration     Duration  `json:"duration,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewCheckRecord flattens an analysis result for storage.
func NewCheckRecord(r handshake.Result, elapsed time.Duration, at time.Time) *CheckRecord {
	rec := &CheckRecord{
		File:         r.File,
		SSID:         r.SSID,
		Status:       string(r.Status()),
		Compatible:   r.Verdict.WPASecCompatible,
		HashcatReady: r.Verdict.HashcatReady,
		Packets:      r.Packets,
		Size:         r.Size,
		Duration:     Duration(elapsed),
		Timestamp:    at,
	}
	for _, m := range r.Distinct() {
		rec.Messages = append(rec.Messages, m.String())
	}
	for _, d := range r.Diagnostics {
		rec.Diagnostics = append(rec.Diagnostics, d.Message)
	}
	return rec
}

// Duration wraps time.Duration for JSON serialization.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (r *CheckRecord) Passed() bool {
	return r.Compatible
}
