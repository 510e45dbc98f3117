package wifi

import (
	"strings"
	"unicode/utf8"

	"github.com/google/gopacket/layers"
)

const (
	mgmtHeaderLen   = 24
	beaconFixedLen  = 12 // timestamp(8) + interval(2) + capability(2)
	beaconTagOffset = mgmtHeaderLen + beaconFixedLen
)

// SSIDState tells why a Frame does or does not carry a network name.
type SSIDState int

const (
	SSIDNotBeacon SSIDState = iota
	SSIDPresent
	SSIDHidden
	SSIDMissing // beacon without a usable SSID element
)

func (s SSIDState) String() string {
	switch s {
	case SSIDPresent:
		return "present"
	case SSIDHidden:
		return "hidden"
	case SSIDMissing:
		return "missing"
	default:
		return "not-beacon"
	}
}

// Frame is the classification of one 802.11 frame.
type Frame struct {
	// Type combines type and subtype the way gopacket does: (fc >> 2).
	Type      layers.Dot11Type
	SSID      string
	SSIDState SSIDState
	// Body is the frame from the frame control field to the end of the packet.
	Body []byte
}

func (f Frame) IsBeacon() bool {
	return f.Type == layers.Dot11TypeMgmtBeacon
}

// ClassifyFrame inspects the frame control byte of the 802.11 frame that
// starts offset bytes into packet. ok is false when fewer than two bytes of
// frame are present.
func ClassifyFrame(packet []byte, offset int) (f Frame, ok bool) {
	if offset < 0 || offset+2 > len(packet) {
		return Frame{}, false
	}
	body := packet[offset:]
	f = Frame{
		Type: layers.Dot11Type(body[0] >> 2),
		Body: body,
	}
	if f.IsBeacon() {
		f.SSID, f.SSIDState = BeaconSSID(body)
	}
	return f, true
}

// BeaconSSID walks the tagged elements of a beacon body looking for the
// SSID element. A zero-length SSID means the network is hidden. The walk
// stops quietly on elements that run off the end of the buffer or on a
// zero-length element of any other type.
func BeaconSSID(frame []byte) (string, SSIDState) {
	for pos := beaconTagOffset; pos+2 < len(frame); {
		id := layers.Dot11InformationElementID(frame[pos])
		n := int(frame[pos+1])

		if id == layers.Dot11InformationElementIDSSID {
			if n == 0 {
				return "", SSIDHidden
			}
			if pos+2+n > len(frame) {
				return "", SSIDMissing
			}
			return decodeSSID(frame[pos+2 : pos+2+n]), SSIDPresent
		}

		if n == 0 {
			break
		}
		pos += 2 + n
	}
	return "", SSIDMissing
}

// decodeSSID returns b as UTF-8, with one U+FFFD for every byte that does
// not start a valid sequence.
func decodeSSID(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r) // RuneError for an invalid byte, with size 1
		b = b[size:]
	}
	return sb.String()
}
