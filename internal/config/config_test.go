package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel())

	cfg.Verbose = true
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel(), "verbose must not add log lines")

	cfg.Debug = true
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"*.pcap", "*.cap", "*.pcapng"}, cfg.Scan.Extensions)
	assert.Empty(t, cfg.Output.ReportFile)
	assert.Equal(t, ".stripped.pcap", cfg.Strip.Suffix)
}
