package wifi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/gopacket/layers"
)

const (
	// FileHeaderLen is the size of the libpcap global header.
	FileHeaderLen = 24
	// RecordHeaderLen is the size of a libpcap per-packet record header.
	RecordHeaderLen = 16

	linkTypeOffset = 20
	capLenOffset   = 8
	origLenOffset  = 12
)

// LinkTypeRadiotap is the only link type the upload pipeline accepts:
// 802.11 frames prefixed with a radiotap header.
const LinkTypeRadiotap = uint32(layers.LinkTypeIEEE80211Radio)

var (
	magicPcapLE = []byte{0xd4, 0xc3, 0xb2, 0xa1}
	magicPcapBE = []byte{0xa1, 0xb2, 0xc3, 0xd4}
	magicPcapNG = []byte{0x0a, 0x0d, 0x0d, 0x0a}
)

var (
	ErrTooSmall        = errors.New("file too small to be a pcap")
	ErrUnknownMagic    = errors.New("unknown magic")
	ErrLinkType        = errors.New("link type is not radiotap")
	ErrTruncatedRecord = errors.New("packet extends beyond end of file")
)

type ContainerKind int

const (
	ContainerUnknown ContainerKind = iota
	ContainerPcapLE
	ContainerPcapBE
	ContainerPcapNG
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerPcapLE:
		return "pcap (little-endian)"
	case ContainerPcapBE:
		return "pcap (big-endian)"
	case ContainerPcapNG:
		return "pcapng"
	default:
		return "unknown"
	}
}

func (k ContainerKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Legacy reports whether the container is a classic libpcap file whose
// records this package can iterate.
func (k ContainerKind) Legacy() bool {
	return k == ContainerPcapLE || k == ContainerPcapBE
}

// DetectContainer classifies data by its leading magic bytes.
func DetectContainer(data []byte) ContainerKind {
	if len(data) < 4 {
		return ContainerUnknown
	}
	magic := data[:4]
	switch {
	case bytes.Equal(magic, magicPcapLE):
		return ContainerPcapLE
	case bytes.Equal(magic, magicPcapBE):
		return ContainerPcapBE
	case bytes.Equal(magic, magicPcapNG):
		return ContainerPcapNG
	default:
		return ContainerUnknown
	}
}

// Capture is a capture file held fully in memory.
type Capture struct {
	data     []byte
	Kind     ContainerKind
	LinkType uint32
}

// OpenCapture validates the global header of data. A pcapng container is
// recognized but its blocks are never parsed: the returned Capture has no
// link type and yields no records. For a legacy container the link type is
// read little-endian at offset 20 regardless of the magic's byte order.
func OpenCapture(data []byte) (*Capture, error) {
	if len(data) < FileHeaderLen {
		return nil, fmt.Errorf("%w (%d bytes, need %d)", ErrTooSmall, len(data), FileHeaderLen)
	}

	c := &Capture{data: data, Kind: DetectContainer(data)}
	switch {
	case c.Kind == ContainerUnknown:
		return nil, fmt.Errorf("%w: %x", ErrUnknownMagic, data[:4])
	case c.Kind == ContainerPcapNG:
		return c, nil
	}

	c.LinkType = binary.LittleEndian.Uint32(data[linkTypeOffset:])
	return c, nil
}

// CheckLinkType returns ErrLinkType unless the capture carries radiotap
// tagged 802.11 frames.
func (c *Capture) CheckLinkType() error {
	if c.LinkType != LinkTypeRadiotap {
		return fmt.Errorf("%w: got %d, want %d", ErrLinkType, c.LinkType, LinkTypeRadiotap)
	}
	return nil
}

// Size returns the length of the underlying buffer.
func (c *Capture) Size() int {
	return len(c.data)
}

// Record is one captured packet. Data aliases the capture buffer.
type Record struct {
	Offset  int // offset of the record header in the file
	TsSec   uint32
	TsUsec  uint32
	CapLen  uint32
	OrigLen uint32
	Data    []byte
}

// Records returns an iterator over the packet records of a legacy capture.
func (c *Capture) Records() *RecordReader {
	r := &RecordReader{data: c.data, off: FileHeaderLen}
	if !c.Kind.Legacy() {
		r.off = len(c.data)
	}
	return r
}

// RecordReader walks packet records forward, bufio.Scanner style. A record
// whose declared length runs past the end of the buffer stops iteration and
// is reported by Err; records already returned stay valid.
type RecordReader struct {
	data []byte
	off  int
	rec  Record
	err  error
}

func (r *RecordReader) Next() bool {
	if r.err != nil || r.off+RecordHeaderLen > len(r.data) {
		return false
	}

	hdr := r.data[r.off : r.off+RecordHeaderLen]
	capLen := binary.LittleEndian.Uint32(hdr[capLenOffset:])
	start := r.off + RecordHeaderLen
	end := uint64(start) + uint64(capLen)
	if end > uint64(len(r.data)) {
		r.err = fmt.Errorf("%w at offset %d (declared %d bytes, %d available)",
			ErrTruncatedRecord, r.off, capLen, len(r.data)-start)
		return false
	}

	r.rec = Record{
		Offset:  r.off,
		TsSec:   binary.LittleEndian.Uint32(hdr[0:]),
		TsUsec:  binary.LittleEndian.Uint32(hdr[4:]),
		CapLen:  capLen,
		OrigLen: binary.LittleEndian.Uint32(hdr[origLenOffset:]),
		Data:    r.data[start:end:end],
	}
	r.off = int(end)
	return true
}

func (r *RecordReader) Record() Record {
	return r.rec
}

func (r *RecordReader) Err() error {
	return r.err
}
