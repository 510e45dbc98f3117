package wifi

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/google/gopacket/layers"
)

// Key Information bits (IEEE 802.11i 12.7.2).
const (
	EAPOLKeyInfoPairwise = 0x0008
	EAPOLKeyInfoInstall  = 0x0040
	EAPOLKeyInfoACK      = 0x0080
	EAPOLKeyInfoMIC      = 0x0100
	EAPOLKeyInfoSecure   = 0x0200
)

// Offsets relative to the first byte of the 0x888E marker, using the layout
// the upload pipeline's checker applies: version, reserved, type, length,
// descriptor, key info, key length, replay counter, nonce.
const (
	eapolTypeOffset    = 4
	eapolKeyInfoOffset = 8
	eapolNonceOffset   = 20
	// marker(2) + version(1) + reserved(1) + type(1) + length(2) +
	// descriptor(1) + key info(2) + key length(2) + replay(8) + nonce(32)
	eapolMinSpan = 52
)

const NonceLen = 32

var eapolMarker = binary.BigEndian.AppendUint16(nil, uint16(layers.EthernetTypeEAPOL))

// Nonce is the 32 byte key nonce field of an EAPOL-Key frame.
type Nonce [NonceLen]byte

// Present reports whether the nonce carries a value. An all-zero nonce is
// treated as absent whichever message it came from.
func (n Nonce) Present() bool {
	return n != Nonce{}
}

// Preview returns the first 8 bytes in hex, or "ALL ZEROS".
func (n Nonce) Preview() string {
	if !n.Present() {
		return "ALL ZEROS"
	}
	return hex.EncodeToString(n[:8]) + "..."
}

type HandshakeMessage int

const (
	HandshakeMsgUnknown HandshakeMessage = 0
	HandshakeMsg1       HandshakeMessage = 1
	HandshakeMsg2       HandshakeMessage = 2
	HandshakeMsg3       HandshakeMessage = 3
	HandshakeMsg4       HandshakeMessage = 4
)

// HandshakeMessages lists the four messages in handshake order.
var HandshakeMessages = [...]HandshakeMessage{HandshakeMsg1, HandshakeMsg2, HandshakeMsg3, HandshakeMsg4}

func (h HandshakeMessage) String() string {
	switch h {
	case HandshakeMsg1:
		return "M1"
	case HandshakeMsg2:
		return "M2"
	case HandshakeMsg3:
		return "M3"
	case HandshakeMsg4:
		return "M4"
	default:
		return "Unknown"
	}
}

// Index returns the zero-based position of a classified message, or -1.
func (h HandshakeMessage) Index() int {
	if h < HandshakeMsg1 || h > HandshakeMsg4 {
		return -1
	}
	return int(h) - 1
}

func (h HandshakeMessage) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// ClassifyKeyInfo maps key information bits to a 4-way handshake message.
// The checks run in order, so M1 wins over M3 when MIC is clear.
//
//	M1: Ack, no MIC
//	M2: MIC, no Ack, no Secure
//	M3: Ack, MIC, Install
//	M4: MIC, no Ack, Secure
func ClassifyKeyInfo(keyInfo uint16) HandshakeMessage {
	ack := keyInfo&EAPOLKeyInfoACK != 0
	mic := keyInfo&EAPOLKeyInfoMIC != 0
	install := keyInfo&EAPOLKeyInfoInstall != 0
	secure := keyInfo&EAPOLKeyInfoSecure != 0

	switch {
	case ack && !mic:
		return HandshakeMsg1
	case !ack && mic && !secure:
		return HandshakeMsg2
	case ack && mic && install:
		return HandshakeMsg3
	case !ack && mic && secure:
		return HandshakeMsg4
	default:
		return HandshakeMsgUnknown
	}
}

// KeyMessage is an EAPOL-Key frame located inside a packet.
type KeyMessage struct {
	Offset  int // offset of the 0x888E marker within the searched bytes
	KeyInfo uint16
	Message HandshakeMessage
	Nonce   Nonce
}

// FindKeyMessage looks for the first 0x888E marker in data and decodes the
// EAPOL-Key fields behind it. The search is a byte pattern match and does
// not walk the 802.11/LLC headers, so payload bytes that happen to contain
// the marker can be mistaken for a key frame. ok is false when there is no
// marker, fewer than 52 bytes follow it, or the EAPOL type is not Key.
// Message is HandshakeMsgUnknown when the key info matches no handshake
// message.
func FindKeyMessage(data []byte) (km KeyMessage, ok bool) {
	pos := bytes.Index(data, eapolMarker)
	if pos < 0 || pos+eapolMinSpan > len(data) {
		return KeyMessage{}, false
	}
	if layers.EAPOLType(data[pos+eapolTypeOffset]) != layers.EAPOLTypeKey {
		return KeyMessage{}, false
	}

	km = KeyMessage{
		Offset:  pos,
		KeyInfo: binary.BigEndian.Uint16(data[pos+eapolKeyInfoOffset:]),
	}
	km.Message = ClassifyKeyInfo(km.KeyInfo)
	copy(km.Nonce[:], data[pos+eapolNonceOffset:pos+eapolNonceOffset+NonceLen])
	return km, true
}
