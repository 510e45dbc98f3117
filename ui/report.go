package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wifibear/capcheck/internal/handshake"
	"github.com/wifibear/capcheck/internal/result"
	"github.com/wifibear/capcheck/pkg/wifi"
)

const lineWidth = 70

var rule = strings.Repeat("=", lineWidth)

// FormatHeader returns the banner and column header of a text report.
func FormatHeader() string {
	var sb strings.Builder
	sb.WriteString(rule + "\n")
	sb.WriteString(titleStyle.Render("WPA-SEC PCAP COMPLIANCE CHECK") + "\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "%-3s %-24s %-12s %-20s | %s\n", "OK", "FILENAME", "HANDSHAKE", "FLAGS", "FRAMES")
	sb.WriteString(strings.Repeat("-", lineWidth) + "\n")
	return sb.String()
}

// Flags lists the structural checks a result passed, e.g. "PCAP:OK RT:127 HDR:18B BCN".
func Flags(r handshake.Result) []string {
	var flags []string
	if r.ContainerValid {
		flags = append(flags, "PCAP:OK")
	} else {
		flags = append(flags, "PCAP:BAD")
	}
	if r.LinkTypeValid {
		flags = append(flags, fmt.Sprintf("RT:%d", wifi.LinkTypeRadiotap))
	}
	if r.RadiotapValid {
		flags = append(flags, fmt.Sprintf("HDR:%dB", r.RadiotapLen))
	}
	if r.Beacon {
		flags = append(flags, "BCN")
	}
	return flags
}

// FormatResult renders one file's line, plus details when verbose is set.
func FormatResult(r handshake.Result, verbose bool) string {
	var sb strings.Builder

	mark := failStyle.Render("✘")
	if r.Verdict.WPASecCompatible {
		mark = passStyle.Render("✔")
	}

	frames := "none"
	if distinct := r.Distinct(); len(distinct) > 0 {
		names := make([]string, len(distinct))
		for i, m := range distinct {
			names[i] = m.String()
		}
		frames = strings.Join(names, " ")
	}

	status := string(r.Status())
	fmt.Fprintf(&sb, "%s   %-24s %s %-20s | %s\n",
		mark,
		filepath.Base(r.File),
		padRight(StatusColor(status), len(status)+2, 12),
		strings.Join(Flags(r), " "),
		frames)

	if verbose {
		sb.WriteString(formatDetails(r))
	}
	return sb.String()
}

func formatDetails(r handshake.Result) string {
	var sb strings.Builder

	if r.SSID != "" {
		fmt.Fprintf(&sb, "   SSID: %s\n", infoStyle.Render(r.SSID))
	}

	var nonces []string
	for _, m := range wifi.HandshakeMessages {
		n, ok := r.Nonces.Get(m)
		if !ok {
			continue
		}
		icon := passStyle.Render("✔")
		if !n.Present() {
			icon = failStyle.Render("✘")
		}
		nonces = append(nonces, fmt.Sprintf("      %s: %s %s\n", m, icon, n.Preview()))
	}
	if len(nonces) > 0 {
		sb.WriteString("   Nonces:\n")
		for _, line := range nonces {
			sb.WriteString(line)
		}
	}

	for _, d := range r.Diagnostics {
		fmt.Fprintf(&sb, "   %s %s\n", warnStyle.Render("!"), d.Message)
	}
	fmt.Fprintf(&sb, "   %s\n", dimStyle.Render(fmt.Sprintf("Packets: %d, Size: %d bytes", r.Packets, r.Size)))
	return sb.String()
}

// FormatCrossCheck shows a second opinion on the EAPOL frame count.
func FormatCrossCheck(name string, native, other int) string {
	note := ""
	if native != other {
		note = " " + warnStyle.Render("(differs)")
	}
	return fmt.Sprintf("   EAPOL frames: native %d, %s %d%s\n", native, name, other, note)
}

// FormatSummary renders the batch summary and the failure list.
func FormatSummary(s result.Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", headerStyle.Render("SUMMARY"))
	fmt.Fprintf(&sb, "Total files:            %d\n", s.Total)
	fmt.Fprintf(&sb, "WPA-SEC compatible:     %d/%d (%d%%)\n", s.Compatible, s.Total, s.Percent)
	fmt.Fprintf(&sb, "Full 4-way handshake:   %d/%d\n", s.FullHandshake, s.Total)
	fmt.Fprintf(&sb, "Has beacon frame:       %d/%d\n", s.Beacons, s.Total)
	if s.MissingSNonce > 0 {
		fmt.Fprintf(&sb, "Missing SNonce:         %s\n", warnStyle.Render(fmt.Sprintf("%d/%d", s.MissingSNonce, s.Total)))
	}
	fmt.Fprintf(&sb, "Packets per file (avg): %.1f\n", s.MeanPackets)
	fmt.Fprintf(&sb, "File size (median):     %s", formatBytes(int64(s.MedianSize)))

	out := "\n" + summaryStyle.Render(sb.String()) + "\n"

	if len(s.Failures) > 0 {
		var fb strings.Builder
		fb.WriteString("\n" + warnStyle.Render("Some files may fail WPA-SEC upload:") + "\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&fb, "   - %s: %s\n", filepath.Base(f.File), strings.Join(f.Reasons, ", "))
		}
		out += fb.String()
	}
	return out
}

// padRight pads a styled string whose visible width is visible.
func padRight(styled string, visible, width int) string {
	if visible >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-visible)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
