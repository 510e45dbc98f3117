//go:build linux

package tools

func platformInstallHint() string {
	return "sudo apt install tshark hcxtools hashcat"
}
