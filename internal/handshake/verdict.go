package handshake

import "github.com/wifibear/capcheck/pkg/wifi"

// Verdict is derived once from a finished scan.
type Verdict struct {
	// ANonce and SNonce report non-zero nonces in M1 and M2. M4SNonce is
	// set when M4 repeats the SNonce; most clients zero that field.
	ANonce   bool `json:"anonce"`
	SNonce   bool `json:"snonce"`
	M4SNonce bool `json:"m4_snonce"`

	FullHandshake    bool `json:"full_handshake"`
	CrackablePair    bool `json:"crackable_pair"`
	WPASecCompatible bool `json:"wpasec_compatible"`
	HashcatReady     bool `json:"hashcat_ready"`

	Diagnostics []Diagnostic `json:"-"`
}

// Evaluate applies the crackability rules to r. Deriving the PTK needs both
// the ANonce (M1 or M3) and the SNonce, which only M2 is guaranteed to carry.
// M1+M4 or M3+M4 without M2 only works when M4 repeats the SNonce.
func Evaluate(r Result) Verdict {
	v := Verdict{
		ANonce:   r.Nonces.Present(wifi.HandshakeMsg1),
		SNonce:   r.Nonces.Present(wifi.HandshakeMsg2),
		M4SNonce: r.Nonces.Present(wifi.HandshakeMsg4),
	}

	m1, m2, m3, m4 := r.Has(wifi.HandshakeMsg1), r.Has(wifi.HandshakeMsg2), r.Has(wifi.HandshakeMsg3), r.Has(wifi.HandshakeMsg4)
	apSide := m1 || m3

	v.FullHandshake = m1 && m2 && m3 && m4

	switch {
	case m2 && apSide:
		v.CrackablePair = true
	case m4 && apSide:
		v.CrackablePair = v.M4SNonce
		if !v.M4SNonce {
			v.Diagnostics = append(v.Diagnostics, Diagnostic{
				Code:     CodeUncrackable,
				Severity: SeverityAdvisory,
				Message:  "uncrackable: SNonce only in M2; M1+M4 or M3+M4 pair has an all-zero M4 nonce",
			})
		}
	}

	v.HashcatReady = r.Beacon && v.CrackablePair
	v.WPASecCompatible = r.ContainerValid && r.LinkTypeValid && r.RadiotapValid && v.HashcatReady
	return v
}

// Status labels how usable the handshake in a result is.
type Status string

const (
	StatusFull     Status = "FULL-4WAY"
	StatusHashcat  Status = "HASHCAT"
	StatusNoSNonce Status = "NO-SNONCE"
	StatusPartial  Status = "PARTIAL"
	StatusNoEAPOL  Status = "NO-EAPOL"
)

// Status picks the most specific label for r. It reads r.Verdict, so it is
// only meaningful on results returned by Analyze or AnalyzeFile.
func (r Result) Status() Status {
	switch {
	case r.Verdict.FullHandshake:
		return StatusFull
	case r.Verdict.CrackablePair:
		return StatusHashcat
	case len(r.Messages) > 0 && !r.Has(wifi.HandshakeMsg2) && r.Has(wifi.HandshakeMsg4) && !r.Verdict.M4SNonce:
		return StatusNoSNonce
	case len(r.Messages) > 0:
		return StatusPartial
	default:
		return StatusNoEAPOL
	}
}

// MissingSNonce reports an M4-only client side: M4 seen without M2 and
// with a zeroed nonce.
func (r Result) MissingSNonce() bool {
	return r.Has(wifi.HandshakeMsg4) && !r.Has(wifi.HandshakeMsg2) && !r.Verdict.M4SNonce
}
