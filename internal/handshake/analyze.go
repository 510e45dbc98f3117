package handshake

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/wifibear/capcheck/pkg/wifi"
)

// Options tunes a check run. The zero value is ready to use.
type Options struct {
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// AnalyzeFile reads path and checks it. A read failure yields an empty
// result carrying a read-error diagnostic.
func AnalyzeFile(path string, opts Options) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		r := Result{File: path}.withDiagnostic(CodeReadError, SeverityIO, fmt.Sprintf("can't read file: %v", err))
		return finish(r, opts.logger().With("file", path))
	}
	return Analyze(path, data, opts)
}

// Analyze checks one capture held in memory. It never fails: structural
// problems stop the scan early and are reported as diagnostics.
func Analyze(name string, data []byte, opts Options) Result {
	log := opts.logger().With("file", name)
	r := Result{File: name, Size: len(data)}

	capture, err := wifi.OpenCapture(data)
	if err != nil {
		code := CodeBadMagic
		if errors.Is(err, wifi.ErrTooSmall) {
			code = CodeTooSmall
		}
		return finish(r.withDiagnostic(code, SeverityStructural, err.Error()), log)
	}
	r.Container = capture.Kind
	r.ContainerValid = true

	switch capture.Kind {
	case wifi.ContainerPcapBE:
		r = r.withDiagnostic(CodeBigEndian, SeverityAdvisory, "big-endian pcap detected")
	case wifi.ContainerPcapNG:
		r = r.withDiagnostic(CodePcapNG, SeverityAdvisory, "pcapng detected; block parsing is not supported, file not scanned")
		return finish(r, log)
	}

	r.LinkType = capture.LinkType
	if err := capture.CheckLinkType(); err != nil {
		return finish(r.withDiagnostic(CodeLinkType, SeverityStructural, err.Error()), log)
	}
	r.LinkTypeValid = true

	records := capture.Records()
	for records.Next() {
		rec := records.Record()
		next := Step(r, rec)
		if len(next.Messages) > len(r.Messages) {
			m := next.Messages[len(next.Messages)-1]
			log.Debug("eapol key message", "message", m, "record", rec.Offset)
		}
		r = next
	}
	if err := records.Err(); err != nil {
		r = r.withDiagnostic(CodeTruncated, SeverityStructural, err.Error()+"; truncated capture?")
	}

	return finish(r, log)
}

// Step folds one packet record into r. The first record with at least four
// bytes decides the radiotap length used for every later record.
func Step(r Result, rec wifi.Record) Result {
	r.Packets++

	if !r.radiotapSampled {
		if hdr, ok := wifi.ParseRadiotapHeader(rec.Data); ok {
			r.radiotapSampled = true
			r.RadiotapLen = int(hdr.Length)
			if hdr.Valid() {
				r.RadiotapValid = true
			} else {
				r = r.withDiagnostic(CodeRadiotap, SeverityAdvisory, fmt.Sprintf(
					"unexpected radiotap header: version=%d, len=%d; expected version 0, len >= %d",
					hdr.Version, hdr.Length, wifi.DefaultRadiotapLen))
			}
		}
	}

	obs, ok := observe(rec.Data, r.RadiotapLen)
	if !ok {
		return r
	}

	if obs.frame.IsBeacon() {
		r.Beacon = true
		if obs.frame.SSIDState == wifi.SSIDPresent && r.SSID == "" {
			r.SSID = obs.frame.SSID
		}
	}

	if obs.hasKey {
		r = r.withMessage(obs.key.Message, obs.key.Nonce)
	}
	return r
}

// observation is what one packet contributes to a result.
type observation struct {
	frame  wifi.Frame
	key    wifi.KeyMessage
	hasKey bool // key holds a classified handshake message
}

func observe(packet []byte, radiotapLen int) (observation, bool) {
	offset := wifi.RadiotapHeader{Length: uint16(radiotapLen)}.FrameOffset()
	frame, ok := wifi.ClassifyFrame(packet, offset)
	if !ok {
		return observation{}, false
	}

	obs := observation{frame: frame}
	if km, ok := wifi.FindKeyMessage(frame.Body); ok && km.Message != wifi.HandshakeMsgUnknown {
		obs.key = km
		obs.hasKey = true
	}
	return obs, true
}

func finish(r Result, log *slog.Logger) Result {
	r.Verdict = Evaluate(r)
	if len(r.Verdict.Diagnostics) > 0 {
		r.Diagnostics = append(slices.Clip(r.Diagnostics), r.Verdict.Diagnostics...)
	}
	log.Info("checked capture",
		"packets", r.Packets,
		"messages", len(r.Messages),
		"status", r.Status(),
		"compatible", r.Verdict.WPASecCompatible)
	return r
}
