package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorBrand  = lipgloss.Color("#FF6B35")
	colorGreen  = lipgloss.Color("#00B894")
	colorRed    = lipgloss.Color("#D63031")
	colorYellow = lipgloss.Color("#FDCB6E")
	colorBlue   = lipgloss.Color("#0984E3")
	colorCyan   = lipgloss.Color("#00CEC9")
	colorGray   = lipgloss.Color("#636E72")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	// Verdict marks
	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	// Handshake status tags
	tagGoodStyle = lipgloss.NewStyle().Foreground(colorGreen)
	tagWarnStyle = lipgloss.NewStyle().Foreground(colorYellow)
	tagBadStyle  = lipgloss.NewStyle().Foreground(colorRed)
	tagNoneStyle = lipgloss.NewStyle().Foreground(colorGray)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)
)

// StatusColor returns the styled handshake status tag.
func StatusColor(status string) string {
	tag := "[" + status + "]"
	switch status {
	case "FULL-4WAY", "HASHCAT":
		return tagGoodStyle.Render(tag)
	case "PARTIAL":
		return tagWarnStyle.Render(tag)
	case "NO-SNONCE":
		return tagBadStyle.Render(tag)
	default:
		return tagNoneStyle.Render(tag)
	}
}
