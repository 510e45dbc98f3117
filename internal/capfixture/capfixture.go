// Package capfixture builds small radiotap capture files in memory for
// tests. Frames are assembled byte by byte so that the offsets under test
// are explicit.
package capfixture

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Key info values as sent by common access points and clients
// (descriptor version 2, pairwise).
const (
	KeyInfoM1 uint16 = 0x008a // Ack
	KeyInfoM2 uint16 = 0x010a // MIC
	KeyInfoM3 uint16 = 0x13ca // Ack, MIC, Install, Secure, Encrypted
	KeyInfoM4 uint16 = 0x030a // MIC, Secure
)

var (
	apMAC     = []byte{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
	clientMAC = []byte{0x02, 0xaa, 0xbb, 0xcc, 0xdd, 0xee}
)

// Builder accumulates a little-endian libpcap file.
type Builder struct {
	buf bytes.Buffer
	w   *pcapgo.Writer
	ts  time.Time
	err error
}

// New starts a capture with the given link type.
func New(linkType layers.LinkType) *Builder {
	b := &Builder{ts: time.Unix(1700000000, 0)}
	b.w = pcapgo.NewWriter(&b.buf)
	b.err = b.w.WriteFileHeader(65536, linkType)
	return b
}

// NewRadiotap starts a capture with link type 127.
func NewRadiotap() *Builder {
	return New(layers.LinkTypeIEEE80211Radio)
}

// Add appends one packet record.
func (b *Builder) Add(data []byte) *Builder {
	if b.err != nil {
		return b
	}
	b.ts = b.ts.Add(10 * time.Millisecond)
	ci := gopacket.CaptureInfo{
		Timestamp:     b.ts,
		CaptureLength: len(data),
		Length:        len(data),
	}
	b.err = b.w.WritePacket(ci, data)
	return b
}

// AddTruncated appends a record header declaring declared bytes followed by
// only the bytes in data.
func (b *Builder) AddTruncated(declared uint32, data []byte) *Builder {
	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[8:], declared)
	binary.LittleEndian.PutUint32(hdr[12:], declared)
	b.buf.Write(hdr[:])
	b.buf.Write(data)
	return b
}

// Bytes returns the capture. It panics if the writer failed, which only
// happens on a programming error in the fixture itself.
func (b *Builder) Bytes() []byte {
	if b.err != nil {
		panic(b.err)
	}
	return bytes.Clone(b.buf.Bytes())
}

// Header returns a 24 byte global header with the given raw magic and a
// little-endian link type.
func Header(magic []byte, linkType uint32) []byte {
	hdr := make([]byte, 24)
	copy(hdr, magic)
	binary.LittleEndian.PutUint16(hdr[4:], 2)
	binary.LittleEndian.PutUint16(hdr[6:], 4)
	binary.LittleEndian.PutUint32(hdr[16:], 65536)
	binary.LittleEndian.PutUint32(hdr[20:], linkType)
	return hdr
}

// Radiotap returns a radiotap header of n bytes (n >= 8) with no fields.
func Radiotap(n int) []byte {
	return RadiotapVersion(0, n)
}

// RadiotapVersion returns a radiotap prefix of n bytes declaring version v
// and length n.
func RadiotapVersion(v uint8, n int) []byte {
	rt := make([]byte, max(n, 4))
	rt[0] = v
	binary.LittleEndian.PutUint16(rt[2:], uint16(n))
	return rt
}

// Packet joins a radiotap header and an 802.11 frame.
func Packet(radiotap, frame []byte) []byte {
	return append(bytes.Clone(radiotap), frame...)
}

func mgmtHeader(fc byte, da, sa, bssid []byte) []byte {
	h := make([]byte, 0, 24)
	h = append(h, fc, 0x00, 0x00, 0x00)
	h = append(h, da...)
	h = append(h, sa...)
	h = append(h, bssid...)
	h = append(h, 0x10, 0x00)
	return h
}

// BeaconTags returns a beacon frame whose tagged parameters are tags,
// copied verbatim.
func BeaconTags(tags []byte) []byte {
	broadcast := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	f := mgmtHeader(0x80, broadcast, apMAC, apMAC)
	fixed := make([]byte, 12)
	// beacon interval, then capability (ESS, privacy)
	binary.LittleEndian.PutUint16(fixed[8:], 100)
	binary.LittleEndian.PutUint16(fixed[10:], 0x0411)
	f = append(f, fixed...)
	return append(f, tags...)
}

// Beacon returns a beacon advertising ssid. An empty ssid gives a hidden
// network (zero-length SSID element).
func Beacon(ssid string) []byte {
	tags := []byte{0x00, byte(len(ssid))}
	tags = append(tags, ssid...)
	tags = append(tags, 0x01, 0x04, 0x82, 0x84, 0x8b, 0x96) // supported rates
	return BeaconTags(tags)
}

// KeyFrame returns an 802.11 data frame carrying an EAPOL-Key body with the
// given key info and nonce. Behind the 0x888E marker the body follows the
// layout the checker reads: version, reserved, type, length(2),
// descriptor, key info(2), key length(2), replay counter(8), nonce(32),
// then IV, RSC, ID, MIC and a zero key data length.
func KeyFrame(keyInfo uint16, nonce [32]byte) []byte {
	fromAP := keyInfo&0x0080 != 0
	var f []byte
	if fromAP {
		f = mgmtHeader(0x08, clientMAC, apMAC, apMAC)
		f[1] = 0x02 // FromDS
	} else {
		f = mgmtHeader(0x08, apMAC, clientMAC, apMAC)
		f[1] = 0x01 // ToDS
	}

	f = append(f, 0xaa, 0xaa, 0x03, 0x00, 0x00, 0x00) // LLC/SNAP
	f = append(f, 0x88, 0x8e)

	body := make([]byte, 100)
	body[0] = 0x02 // version
	body[2] = 0x03 // type: Key
	binary.BigEndian.PutUint16(body[3:], 95)
	body[5] = 0x02 // RSN descriptor
	binary.BigEndian.PutUint16(body[6:], keyInfo)
	binary.BigEndian.PutUint16(body[8:], 16)
	binary.BigEndian.PutUint64(body[10:], 1)
	copy(body[18:], nonce[:])
	return append(f, body...)
}

// Nonce returns a nonce filled with b.
func Nonce(b byte) [32]byte {
	var n [32]byte
	for i := range n {
		n[i] = b
	}
	return n
}

// ZeroNonce is the all-zero nonce most clients send in M4.
var ZeroNonce [32]byte
