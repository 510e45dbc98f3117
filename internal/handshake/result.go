package handshake

import (
	"encoding/hex"
	"encoding/json"
	"slices"

	"github.com/wifibear/capcheck/pkg/wifi"
)

type Severity string

const (
	SeverityStructural Severity = "structural"
	SeverityAdvisory   Severity = "advisory"
	SeverityIO         Severity = "io"
)

type Code string

const (
	CodeTooSmall    Code = "too-small"
	CodeBadMagic    Code = "bad-magic"
	CodeBigEndian   Code = "big-endian"
	CodePcapNG      Code = "pcapng"
	CodeLinkType    Code = "link-type"
	CodeRadiotap    Code = "radiotap"
	CodeTruncated   Code = "truncated"
	CodeUncrackable Code = "uncrackable"
	CodeReadError   Code = "read-error"
)

// Diagnostic is one human readable finding attached to a Result.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return d.Message
}

// Nonces keeps the first nonce seen for each handshake message.
type Nonces struct {
	vals   [4]wifi.Nonce
	stored [4]bool
}

// Get returns the stored nonce for m and whether one was stored.
func (n Nonces) Get(m wifi.HandshakeMessage) (wifi.Nonce, bool) {
	i := m.Index()
	if i < 0 || !n.stored[i] {
		return wifi.Nonce{}, false
	}
	return n.vals[i], true
}

// Present reports whether m was seen with a non-zero nonce.
func (n Nonces) Present(m wifi.HandshakeMessage) bool {
	v, ok := n.Get(m)
	return ok && v.Present()
}

// with stores nonce for m unless one is already stored.
func (n Nonces) with(m wifi.HandshakeMessage, nonce wifi.Nonce) Nonces {
	i := m.Index()
	if i < 0 || n.stored[i] {
		return n
	}
	n.vals[i] = nonce
	n.stored[i] = true
	return n
}

func (n Nonces) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, 4)
	for _, m := range wifi.HandshakeMessages {
		if v, ok := n.Get(m); ok {
			out[m.String()] = hex.EncodeToString(v[:])
		}
	}
	return json.Marshal(out)
}

// Result is the outcome of checking one capture file. Values are never
// modified in place: Step returns a new Result whose slices do not share
// backing arrays with its input.
type Result struct {
	File string `json:"file"`
	Size int    `json:"size"`

	Container      wifi.ContainerKind `json:"container"`
	LinkType       uint32             `json:"link_type"`
	ContainerValid bool               `json:"container_valid"`
	LinkTypeValid  bool               `json:"link_type_valid"`
	RadiotapValid  bool               `json:"radiotap_valid"`
	RadiotapLen    int                `json:"radiotap_len"`

	Beacon bool   `json:"beacon"`
	SSID   string `json:"ssid,omitempty"`

	Messages []wifi.HandshakeMessage `json:"messages"`
	Nonces   Nonces                  `json:"nonces"`

	Packets     int          `json:"packets"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Verdict     Verdict      `json:"verdict"`

	radiotapSampled bool
}

// Has reports whether message m was observed at least once.
func (r Result) Has(m wifi.HandshakeMessage) bool {
	return slices.Contains(r.Messages, m)
}

// Distinct returns the observed messages without repeats, in first-seen order.
func (r Result) Distinct() []wifi.HandshakeMessage {
	var out []wifi.HandshakeMessage
	for _, m := range r.Messages {
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// CountCode returns how many diagnostics carry code c.
func (r Result) CountCode(c Code) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Code == c {
			n++
		}
	}
	return n
}

func (r Result) withDiagnostic(code Code, sev Severity, msg string) Result {
	r.Diagnostics = append(slices.Clip(r.Diagnostics), Diagnostic{Code: code, Severity: sev, Message: msg})
	return r
}

func (r Result) withMessage(m wifi.HandshakeMessage, nonce wifi.Nonce) Result {
	r.Messages = append(slices.Clip(r.Messages), m)
	r.Nonces = r.Nonces.with(m, nonce)
	return r
}
