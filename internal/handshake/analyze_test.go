package handshake

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wifibear/capcheck/internal/capfixture"
	"github.com/wifibear/capcheck/pkg/wifi"
)

var rt = capfixture.Radiotap(18)

func keyPacket(keyInfo uint16, nonce [32]byte) []byte {
	return capfixture.Packet(rt, capfixture.KeyFrame(keyInfo, nonce))
}

func beaconPacket(ssid string) []byte {
	return capfixture.Packet(rt, capfixture.Beacon(ssid))
}

// Little-endian capture with a named beacon and an M1+M2 pair.
func TestAnalyzeCrackableM1M2(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(beaconPacket("TestNet")).
		Add(keyPacket(capfixture.KeyInfoM1, capfixture.Nonce(0x11))).
		Add(keyPacket(capfixture.KeyInfoM2, capfixture.Nonce(0x22))).
		Bytes()

	r := Analyze("m1m2.pcap", data, Options{})

	assert.Equal(t, wifi.ContainerPcapLE, r.Container)
	assert.True(t, r.ContainerValid)
	assert.True(t, r.LinkTypeValid)
	assert.True(t, r.RadiotapValid)
	assert.Equal(t, 18, r.RadiotapLen)
	assert.True(t, r.Beacon)
	assert.Equal(t, "TestNet", r.SSID)
	assert.Equal(t, []wifi.HandshakeMessage{wifi.HandshakeMsg1, wifi.HandshakeMsg2}, r.Messages)
	assert.Equal(t, 3, r.Packets)
	assert.Equal(t, len(data), r.Size)
	assert.Empty(t, r.Diagnostics)

	v := r.Verdict
	assert.True(t, v.ANonce)
	assert.True(t, v.SNonce)
	assert.False(t, v.FullHandshake)
	assert.True(t, v.CrackablePair)
	assert.True(t, v.HashcatReady)
	assert.True(t, v.WPASecCompatible)
	assert.Equal(t, StatusHashcat, r.Status())
}

// Only M1 and M4, with M4's nonce zeroed.
func TestAnalyzeUncrackableM1M4(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(beaconPacket("TestNet")).
		Add(keyPacket(capfixture.KeyInfoM1, capfixture.Nonce(0x11))).
		Add(keyPacket(capfixture.KeyInfoM4, capfixture.ZeroNonce)).
		Bytes()

	r := Analyze("m1m4.pcap", data, Options{})

	assert.False(t, r.Verdict.CrackablePair)
	assert.False(t, r.Verdict.M4SNonce)
	assert.False(t, r.Verdict.HashcatReady)
	assert.False(t, r.Verdict.WPASecCompatible)
	assert.Equal(t, 1, r.CountCode(CodeUncrackable))
	assert.Contains(t, r.Diagnostics[0].Message, "uncrackable")
	assert.Equal(t, StatusNoSNonce, r.Status())
	assert.True(t, r.MissingSNonce())
}

func TestAnalyzeM1M4WithSNonceIsCrackable(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(beaconPacket("TestNet")).
		Add(keyPacket(capfixture.KeyInfoM1, capfixture.Nonce(0x11))).
		Add(keyPacket(capfixture.KeyInfoM4, capfixture.Nonce(0x44))).
		Bytes()

	r := Analyze("m1m4.pcap", data, Options{})

	assert.True(t, r.Verdict.M4SNonce)
	assert.True(t, r.Verdict.CrackablePair)
	assert.True(t, r.Verdict.WPASecCompatible)
	assert.Zero(t, r.CountCode(CodeUncrackable))
}

func TestAnalyzeWrongLinkType(t *testing.T) {
	data := capfixture.New(layers.LinkTypeEthernet).
		Add(beaconPacket("TestNet")).
		Bytes()

	r := Analyze("eth.pcap", data, Options{})

	assert.True(t, r.ContainerValid)
	assert.False(t, r.LinkTypeValid)
	assert.EqualValues(t, 1, r.LinkType)
	assert.Zero(t, r.Packets)
	assert.False(t, r.Beacon)
	assert.False(t, r.Verdict.WPASecCompatible)
	assert.Equal(t, 1, r.CountCode(CodeLinkType))
}

func TestAnalyzeTooSmall(t *testing.T) {
	r := Analyze("tiny.pcap", make([]byte, 10), Options{})

	assert.Equal(t, 10, r.Size)
	assert.False(t, r.ContainerValid)
	assert.False(t, r.LinkTypeValid)
	assert.False(t, r.RadiotapValid)
	assert.False(t, r.Beacon)
	assert.Equal(t, wifi.ContainerUnknown, r.Container)
	assert.False(t, r.Verdict.WPASecCompatible)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, CodeTooSmall, r.Diagnostics[0].Code)
	assert.Equal(t, SeverityStructural, r.Diagnostics[0].Severity)
	assert.Contains(t, r.Diagnostics[0].Message, "too small")
	assert.Equal(t, StatusNoEAPOL, r.Status())
}

func TestAnalyzeUnknownMagic(t *testing.T) {
	r := Analyze("x.pcap", bytes.Repeat([]byte{0x42}, 64), Options{})

	assert.False(t, r.ContainerValid)
	assert.Equal(t, 1, r.CountCode(CodeBadMagic))
}

func TestAnalyzePcapNG(t *testing.T) {
	data := append(capfixture.Header([]byte{0x0a, 0x0d, 0x0d, 0x0a}, 127), keyPacket(capfixture.KeyInfoM1, capfixture.Nonce(1))...)

	r := Analyze("ng.pcapng", data, Options{})

	assert.Equal(t, wifi.ContainerPcapNG, r.Container)
	assert.True(t, r.ContainerValid)
	assert.False(t, r.LinkTypeValid)
	assert.Zero(t, r.Packets)
	assert.Empty(t, r.Messages)
	assert.Equal(t, 1, r.CountCode(CodePcapNG))
	assert.False(t, r.Verdict.WPASecCompatible)
}

func TestAnalyzeBigEndianAdvisory(t *testing.T) {
	data := capfixture.Header([]byte{0xa1, 0xb2, 0xc3, 0xd4}, 127)

	r := Analyze("be.pcap", data, Options{})

	assert.Equal(t, wifi.ContainerPcapBE, r.Container)
	assert.True(t, r.LinkTypeValid)
	assert.Equal(t, 1, r.CountCode(CodeBigEndian))
}

func TestAnalyzeHiddenBeacon(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(beaconPacket("")).
		Bytes()

	r := Analyze("hidden.pcap", data, Options{})

	assert.True(t, r.Beacon)
	assert.Empty(t, r.SSID)
	assert.Empty(t, r.Diagnostics)
}

func TestAnalyzeFirstSSIDWins(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(beaconPacket("")).
		Add(beaconPacket("First")).
		Add(beaconPacket("Second")).
		Bytes()

	r := Analyze("ssid.pcap", data, Options{})
	assert.Equal(t, "First", r.SSID)
}

func TestAnalyzeTruncatedRecord(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(beaconPacket("TestNet")).
		Add(keyPacket(capfixture.KeyInfoM1, capfixture.Nonce(0x11))).
		AddTruncated(4096, keyPacket(capfixture.KeyInfoM2, capfixture.Nonce(0x22))).
		Bytes()

	r := Analyze("trunc.pcap", data, Options{})

	assert.Equal(t, 2, r.Packets)
	assert.True(t, r.Beacon)
	assert.Equal(t, []wifi.HandshakeMessage{wifi.HandshakeMsg1}, r.Messages)
	assert.Equal(t, 1, r.CountCode(CodeTruncated))
	assert.Equal(t, StatusPartial, r.Status())
}

func TestAnalyzeDuplicatesKeepFirstNonce(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(keyPacket(capfixture.KeyInfoM1, capfixture.ZeroNonce)).
		Add(keyPacket(capfixture.KeyInfoM1, capfixture.Nonce(0x11))).
		Add(keyPacket(capfixture.KeyInfoM2, capfixture.Nonce(0x22))).
		Bytes()

	r := Analyze("dup.pcap", data, Options{})

	assert.Equal(t, []wifi.HandshakeMessage{wifi.HandshakeMsg1, wifi.HandshakeMsg1, wifi.HandshakeMsg2}, r.Messages)
	n, ok := r.Nonces.Get(wifi.HandshakeMsg1)
	require.True(t, ok)
	assert.False(t, n.Present(), "first M1 nonce must be kept")
	assert.False(t, r.Verdict.ANonce)
	assert.True(t, r.Verdict.CrackablePair, "M1+M2 is crackable from message presence")
	assert.Equal(t, []wifi.HandshakeMessage{wifi.HandshakeMsg1, wifi.HandshakeMsg2}, r.Distinct())
}

func TestAnalyzeUnclassifiedKeyFrameIgnored(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(keyPacket(wifi.EAPOLKeyInfoSecure, capfixture.Nonce(0x11))).
		Bytes()

	r := Analyze("group.pcap", data, Options{})

	assert.Equal(t, 1, r.Packets)
	assert.Empty(t, r.Messages)
	_, ok := r.Nonces.Get(wifi.HandshakeMsg1)
	assert.False(t, ok)
	assert.Empty(t, r.Diagnostics)
}

func TestAnalyzeRadiotapSampledOnce(t *testing.T) {
	// The first packet is too short to sample; the second declares 18
	// bytes; the third would say otherwise but is never sampled.
	data := capfixture.NewRadiotap().
		Add([]byte{0x00, 0x00}).
		Add(beaconPacket("TestNet")).
		Add(capfixture.Packet(capfixture.RadiotapVersion(0, 12), capfixture.Beacon("Other"))).
		Bytes()

	r := Analyze("rt.pcap", data, Options{})

	assert.Equal(t, 3, r.Packets)
	assert.True(t, r.RadiotapValid)
	assert.Equal(t, 18, r.RadiotapLen)
	assert.Equal(t, "TestNet", r.SSID)
}

func TestAnalyzeInvalidRadiotapIsAdvisory(t *testing.T) {
	bad := capfixture.RadiotapVersion(1, 18)
	data := capfixture.NewRadiotap().
		Add(capfixture.Packet(bad, capfixture.Beacon("TestNet"))).
		Add(capfixture.Packet(bad, capfixture.KeyFrame(capfixture.KeyInfoM1, capfixture.Nonce(1)))).
		Add(capfixture.Packet(bad, capfixture.KeyFrame(capfixture.KeyInfoM2, capfixture.Nonce(2)))).
		Bytes()

	r := Analyze("badrt.pcap", data, Options{})

	assert.False(t, r.RadiotapValid)
	assert.Equal(t, 1, r.CountCode(CodeRadiotap))
	assert.Equal(t, SeverityAdvisory, r.Diagnostics[0].Severity)
	assert.True(t, r.Beacon, "frames are still parsed at the declared offset")
	assert.True(t, r.Verdict.CrackablePair)
	assert.True(t, r.Verdict.HashcatReady)
	assert.False(t, r.Verdict.WPASecCompatible)
}

func TestAnalyzeZeroRadiotapLengthFallsBack(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(capfixture.Packet(capfixture.RadiotapVersion(0, 0)[:4], append(make([]byte, 4), capfixture.Beacon("TestNet")...))).
		Bytes()

	r := Analyze("zerort.pcap", data, Options{})

	assert.False(t, r.RadiotapValid)
	assert.Zero(t, r.RadiotapLen)
	assert.True(t, r.Beacon, "frame read at the default offset of 8")
	assert.Equal(t, "TestNet", r.SSID)
}

func TestStepDoesNotMutateInput(t *testing.T) {
	data := capfixture.NewRadiotap().
		Add(keyPacket(capfixture.KeyInfoM1, capfixture.Nonce(1))).
		Add(keyPacket(capfixture.KeyInfoM2, capfixture.Nonce(2))).
		Bytes()
	c, err := wifi.OpenCapture(data)
	require.NoError(t, err)

	it := c.Records()
	require.True(t, it.Next())
	first := Step(Result{}, it.Record())
	require.True(t, it.Next())
	second := Step(first, it.Record())
	again := Step(first, it.Record())

	assert.Equal(t, 1, first.Packets)
	assert.Equal(t, []wifi.HandshakeMessage{wifi.HandshakeMsg1}, first.Messages)
	assert.Equal(t, []wifi.HandshakeMessage{wifi.HandshakeMsg1, wifi.HandshakeMsg2}, second.Messages)
	assert.Equal(t, second.Messages, again.Messages)
	assert.False(t, first.Nonces.Present(wifi.HandshakeMsg2))
}

func TestAnalyzeFileReadError(t *testing.T) {
	r := AnalyzeFile(filepath.Join(t.TempDir(), "missing.pcap"), Options{})

	assert.Zero(t, r.Size)
	assert.False(t, r.ContainerValid)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, CodeReadError, r.Diagnostics[0].Code)
	assert.Equal(t, SeverityIO, r.Diagnostics[0].Severity)
}

func TestAnalyzeFileLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.pcap")
	data := capfixture.NewRadiotap().
		Add(keyPacket(capfixture.KeyInfoM1, capfixture.Nonce(1))).
		Bytes()
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := AnalyzeFile(path, Options{Logger: log})

	assert.Equal(t, path, r.File)
	assert.Contains(t, buf.String(), "eapol key message")
	assert.Contains(t, buf.String(), "message=M1")
	assert.Contains(t, buf.String(), "checked capture")
}
