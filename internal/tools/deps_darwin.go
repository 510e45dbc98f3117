//go:build darwin

package tools

func platformInstallHint() string {
	return "brew install wireshark hcxtools hashcat"
}
