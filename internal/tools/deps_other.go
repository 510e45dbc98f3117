//go:build !linux && !darwin

package tools

func platformInstallHint() string {
	return "install tshark, hcxtools and hashcat from their project pages"
}
