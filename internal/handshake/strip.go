package handshake

import (
	"fmt"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/wifibear/capcheck/pkg/wifi"
)

const stripSnapLen = 65536

// StripCapture writes a new capture holding only the beacons and classified
// EAPOL-Key frames of inputFile. It returns the number of packets kept.
// A truncated trailing record is dropped and reported after the packets
// before it have been written. No output file is left behind when the call
// fails before any packet was kept.
func StripCapture(inputFile, outputFile string) (kept int, err error) {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}

	capture, err := wifi.OpenCapture(data)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", inputFile, err)
	}
	if !capture.Kind.Legacy() {
		return 0, fmt.Errorf("open %s: %s is not supported for stripping", inputFile, capture.Kind)
	}
	if err := capture.CheckLinkType(); err != nil {
		return 0, fmt.Errorf("open %s: %w", inputFile, err)
	}

	outFile, err := os.Create(outputFile)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		outFile.Close()
		if err != nil && kept == 0 {
			os.Remove(outputFile)
		}
	}()

	writer := pcapgo.NewWriter(outFile)
	if err := writer.WriteFileHeader(stripSnapLen, layers.LinkTypeIEEE80211Radio); err != nil {
		return 0, fmt.Errorf("write pcap header: %w", err)
	}

	var r Result
	records := capture.Records()
	for records.Next() {
		rec := records.Record()
		r = Step(r, rec)

		obs, ok := observe(rec.Data, r.RadiotapLen)
		if !ok || (!obs.frame.IsBeacon() && !obs.hasKey) {
			continue
		}

		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(int64(rec.TsSec), int64(rec.TsUsec)*int64(time.Microsecond)),
			CaptureLength: len(rec.Data),
			Length:        max(int(rec.OrigLen), len(rec.Data)),
		}
		if err := writer.WritePacket(ci, rec.Data); err != nil {
			return kept, fmt.Errorf("write packet: %w", err)
		}
		kept++
	}
	if err := records.Err(); err != nil {
		return kept, fmt.Errorf("read %s: %w", inputFile, err)
	}

	return kept, nil
}
