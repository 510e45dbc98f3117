package result

import (
	"github.com/montanaflynn/stats"
	"github.com/wifibear/capcheck/internal/handshake"
	"github.com/wifibear/capcheck/pkg/wifi"
)

// Summary aggregates a finished batch. It only reads the results.
type Summary struct {
	Total         int
	Compatible    int
	Percent       int
	FullHandshake int
	Beacons       int
	MissingSNonce int // messages seen but no crackable pair

	MeanPackets float64
	MedianSize  float64

	Failures []Failure
}

// Failure lists why one file would be rejected by the upload pipeline.
type Failure struct {
	File    string
	Reasons []string
}

func Summarize(results []handshake.Result) Summary {
	s := Summary{Total: len(results)}
	if s.Total == 0 {
		return s
	}

	packets := make(stats.Float64Data, 0, len(results))
	sizes := make(stats.Float64Data, 0, len(results))

	for _, r := range results {
		packets = append(packets, float64(r.Packets))
		sizes = append(sizes, float64(r.Size))

		if r.Verdict.WPASecCompatible {
			s.Compatible++
		} else {
			s.Failures = append(s.Failures, Failure{File: r.File, Reasons: Reasons(r)})
		}
		if r.Verdict.FullHandshake {
			s.FullHandshake++
		}
		if r.Beacon {
			s.Beacons++
		}
		if len(r.Messages) > 0 && !r.Verdict.CrackablePair {
			s.MissingSNonce++
		}
	}

	s.Percent = 100 * s.Compatible / s.Total
	// stats only fails on empty input
	s.MeanPackets, _ = stats.Mean(packets)
	s.MedianSize, _ = stats.Median(sizes)
	return s
}

// AllCompatible reports whether the batch is non-empty and every file passed.
func (s Summary) AllCompatible() bool {
	return s.Total > 0 && s.Compatible == s.Total
}

// Reasons explains a failing result, most actionable first, followed by
// every diagnostic the scan recorded.
func Reasons(r handshake.Result) []string {
	var reasons []string
	if !r.Beacon {
		reasons = append(reasons, "missing beacon")
	}
	switch {
	case r.MissingSNonce():
		reasons = append(reasons, "M1+M4 without SNonce (UNCRACKABLE)")
	case !r.Has(wifi.HandshakeMsg2) && !r.Has(wifi.HandshakeMsg4):
		reasons = append(reasons, "no M2/M4 frames")
	}
	if !r.ContainerValid {
		reasons = append(reasons, "invalid pcap")
	}
	if !r.LinkTypeValid {
		reasons = append(reasons, "wrong linktype")
	}
	for _, d := range r.Diagnostics {
		reasons = append(reasons, d.Message)
	}
	return reasons
}
