package config

import (
	"bytes"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 2*time.Second, cfg.Serial.Timeout)
	assert.Equal(t, float32(50), cfg.Analyzer.Z0)
	assert.Equal(t, 256, cfg.Analyzer.Capacity)
	assert.Equal(t, uint32(14_000_000), cfg.Sweep.StartFq)
	assert.Equal(t, uint32(14_350_000), cfg.Sweep.EndFq)
	assert.Equal(t, 50, cfg.Sweep.Steps)
	assert.Equal(t, "zeroii-analyzer", cfg.Storage.Root)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, uint32(14_175_000), cfg.Mock.Resonance)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB1"
  baud_rate: 57600
  timeout: 500ms

analyzer:
  z0: 75
  capacity: 101
  averaging: 4

sweep:
  start_fq: 7000000
  end_fq: 7300000
  steps: 21
  band: 40m

storage:
  root: /tmp/zeroii

log:
  level: debug

metrics:
  addr: ":9100"

mock:
  resistance: 60
  resonance: 7100000
  q: 8
  directivity: [0.01, 0.0]
  source_match: [0.02, 0.01]
  tracking: [0.8, -0.2]
  noise_level: 0.001
  delay: 1ms
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Serial.Timeout)
	assert.Equal(t, float32(75), cfg.Analyzer.Z0)
	assert.Equal(t, 101, cfg.Analyzer.Capacity)
	assert.Equal(t, 4, cfg.Analyzer.Averaging)
	assert.Equal(t, uint32(7_000_000), cfg.Sweep.StartFq)
	assert.Equal(t, uint32(7_300_000), cfg.Sweep.EndFq)
	assert.Equal(t, 21, cfg.Sweep.Steps)
	assert.Equal(t, "40m", cfg.Sweep.Band)
	assert.Equal(t, "/tmp/zeroii", cfg.Storage.Root)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
	assert.Equal(t, [2]float32{0.8, -0.2}, cfg.Mock.Tracking)
	assert.Equal(t, time.Millisecond, cfg.Mock.Delay)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "COM4"
analyzer:
  z0: -1
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing or invalid fields
	assert.Equal(t, "COM4", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)         // default
	assert.Equal(t, float32(50), cfg.Analyzer.Z0)        // invalid, reset
	assert.Equal(t, 50, cfg.Sweep.Steps)                 // default
	assert.Equal(t, "zeroii-analyzer", cfg.Storage.Root) // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Sweep.Steps = 15

	filename := t.TempDir() + "/saved.yaml"
	require.NoError(t, cfg.Save(filename))

	loaded, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 15, loaded.Sweep.Steps)
	assert.Equal(t, cfg.Mock, loaded.Mock)
}

func TestLogConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LogConfig{Level: tt.level}.SlogLevel(), tt.level)
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "component", "test")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "component=test")
}
