package config

import "log/slog"

type Config struct {
	Verbose bool
	Debug   bool
	JSON    bool
	Tshark  bool

	Scan   ScanConfig
	Output OutputConfig
	Strip  StripConfig
}

type ScanConfig struct {
	// Extensions are the glob patterns used when a directory is given.
	Extensions []string
}

type OutputConfig struct {
	// ReportFile receives the JSON results when set.
	ReportFile string
}

type StripConfig struct {
	OutputDir string
	Suffix    string
}

func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions: []string{"*.pcap", "*.cap", "*.pcapng"},
		},
		Strip: StripConfig{
			OutputDir: "./stripped/",
			Suffix:    ".stripped.pcap",
		},
	}
}

// LogLevel maps the debug flag onto a slog level. Verbose only widens the
// report on stdout; it never adds log lines.
func (c *Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
