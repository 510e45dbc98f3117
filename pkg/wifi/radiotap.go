package wifi

import "encoding/binary"

// DefaultRadiotapLen is the frame offset used when no usable radiotap
// length has been sampled.
const DefaultRadiotapLen = 8

// RadiotapHeader holds the fixed prefix of a radiotap header.
type RadiotapHeader struct {
	Version uint8
	Length  uint16
}

// ParseRadiotapHeader reads the version and total length at the start of a
// packet. ok is false when fewer than 4 bytes are available.
func ParseRadiotapHeader(data []byte) (hdr RadiotapHeader, ok bool) {
	if len(data) < 4 {
		return RadiotapHeader{}, false
	}
	return RadiotapHeader{
		Version: data[0],
		Length:  binary.LittleEndian.Uint16(data[2:4]),
	}, true
}

// Valid reports whether the header looks like real radiotap: version 0 and
// at least the 8 byte fixed part.
func (h RadiotapHeader) Valid() bool {
	return h.Version == 0 && h.Length >= DefaultRadiotapLen
}

// FrameOffset returns where the 802.11 frame starts for this header,
// falling back to DefaultRadiotapLen for a zero length.
func (h RadiotapHeader) FrameOffset() int {
	if h.Length == 0 {
		return DefaultRadiotapLen
	}
	return int(h.Length)
}
