package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains the measurement bridge serial port configuration.
type SerialConfig struct {
	Port     string        `yaml:"port"`
	BaudRate int           `yaml:"baud_rate"`
	Timeout  time.Duration `yaml:"timeout"` // Per-measurement reply timeout
}

// AnalyzerConfig contains measurement and calibration parameters.
type AnalyzerConfig struct {
	Z0        float32 `yaml:"z0"`        // Reference impedance (ohms)
	Capacity  int     `yaml:"capacity"`  // Maximum points per sweep / calibration table
	Averaging int     `yaml:"averaging"` // Readings averaged per frequency (0 or 1 = disabled)
}

// SweepConfig contains the default sweep range.
type SweepConfig struct {
	StartFq uint32 `yaml:"start_fq"`
	EndFq   uint32 `yaml:"end_fq"`
	Steps   int    `yaml:"steps"`
	Band    string `yaml:"band"` // Optional band name, overrides start/end when set
}

// StorageConfig contains persistence parameters.
type StorageConfig struct {
	Root string `yaml:"root"` // Directory holding settings/ and results/
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// MetricsConfig contains the prometheus endpoint parameters.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Listen address for /metrics, empty = disabled
}

// MockConfig contains simulated front-end configuration.
type MockConfig struct {
	Resistance  float32       `yaml:"resistance"`   // Antenna radiation resistance at resonance (ohms)
	Resonance   uint32        `yaml:"resonance"`    // Antenna resonant frequency (Hz)
	Q           float32       `yaml:"q"`            // Antenna loaded Q
	Directivity [2]float32    `yaml:"directivity"`  // Fixture e00 [real, imag]
	SourceMatch [2]float32    `yaml:"source_match"` // Fixture e11 [real, imag]
	Tracking    [2]float32    `yaml:"tracking"`     // Fixture e01e10 [real, imag]
	NoiseLevel  float32       `yaml:"noise_level"`  // Gamma-space noise amplitude
	Delay       time.Duration `yaml:"delay"`        // Simulated measurement time
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
			Timeout:  2 * time.Second,
		},
		Analyzer: AnalyzerConfig{
			Z0:        50,
			Capacity:  256,
			Averaging: 0,
		},
		Sweep: SweepConfig{
			StartFq: 14_000_000,
			EndFq:   14_350_000,
			Steps:   50,
		},
		Storage: StorageConfig{
			Root: "zeroii-analyzer",
		},
		Log: LogConfig{
			Level: "info",
		},
		Mock: MockConfig{
			Resistance:  42,
			Resonance:   14_175_000,
			Q:           12,
			Directivity: [2]float32{0.03, -0.01},
			SourceMatch: [2]float32{0.06, 0.02},
			Tracking:    [2]float32{0.92, -0.15},
			NoiseLevel:  0,
			Delay:       2 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.Timeout == 0 {
		c.Serial.Timeout = def.Serial.Timeout
	}

	if c.Analyzer.Z0 <= 0 {
		c.Analyzer.Z0 = def.Analyzer.Z0
	}
	if c.Analyzer.Capacity <= 0 {
		c.Analyzer.Capacity = def.Analyzer.Capacity
	}

	if c.Sweep.StartFq == 0 && c.Sweep.EndFq == 0 {
		c.Sweep.StartFq = def.Sweep.StartFq
		c.Sweep.EndFq = def.Sweep.EndFq
	}
	if c.Sweep.Steps == 0 {
		c.Sweep.Steps = def.Sweep.Steps
	}

	if c.Storage.Root == "" {
		c.Storage.Root = def.Storage.Root
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if c.Mock.Resistance == 0 {
		c.Mock.Resistance = def.Mock.Resistance
	}
	if c.Mock.Resonance == 0 {
		c.Mock.Resonance = def.Mock.Resonance
	}
	if c.Mock.Q == 0 {
		c.Mock.Q = def.Mock.Q
	}
	if c.Mock.Tracking == [2]float32{} {
		c.Mock.Tracking = def.Mock.Tracking
	}
}
