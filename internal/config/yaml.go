// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"voccal/internal/log"
	"voccal/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug mode (forces DEBUG logging).
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Audio     AudioConfig     `yaml:"audio"`     // Device settings shared by preview and recording.
	Recording RecordingConfig `yaml:"recording"` // Recording front-end limits.
	Render    RenderConfig    `yaml:"render"`    // Offline render settings.
	Filters   FiltersConfig   `yaml:"filters"`   // Catalog visibility.
	Monitor   MonitorConfig   `yaml:"monitor"`   // Preview monitor broadcast.
}

// AudioConfig holds settings related to audio input/output.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for recording (-1 for default).
	OutputDevice    int     `yaml:"output_device"`     // PortAudio device index for preview (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Capture sample rate in Hz (e.g., 44100, 48000).
	InputChannels   int     `yaml:"input_channels"`    // Number of channels to capture.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per device callback.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
}

// RecordingConfig holds settings for the recording front-end.
type RecordingConfig struct {
	MaxBytes    int64         `yaml:"max_bytes"`    // Largest encoded recording or import accepted.
	MaxDuration time.Duration `yaml:"max_duration"` // Longest single recording (0 for unlimited).
	OutputDir   string        `yaml:"output_dir"`   // Directory for recordings saved without an explicit path.
}

// RenderConfig holds settings for the offline renderer.
type RenderConfig struct {
	Quantum         int `yaml:"quantum"`           // Frames processed per render block.
	MaxOutputFrames int `yaml:"max_output_frames"` // Renders longer than this fail.
}

// FiltersConfig controls which catalog entries the front-ends offer.
type FiltersConfig struct {
	SpatialEnabled bool `yaml:"spatial_enabled"` // Offer echo, stadium and space.
}

// MonitorConfig holds settings for the preview monitor.
type MonitorConfig struct {
	Enabled   bool   `yaml:"enabled"`    // Serve spectrum frames over WebSocket while previewing.
	Address   string `yaml:"address"`    // Listen address for the monitor (e.g., "127.0.0.1:8089").
	FFTSize   int    `yaml:"fft_size"`   // Spectrum analysis size (power of 2).
	FFTWindow string `yaml:"fft_window"` // Window function name (e.g., "Hann", "Hamming").
}

// DefaultPath is read when LoadConfig is called with an empty path and the
// file exists in the working directory.
const DefaultPath = "voccal.yaml"

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it looks for DefaultPath. If no file is found, it uses built-in defaults. After
// loading, it applies environment variable overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every section against the engine limits.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level %q is not recognised", c.LogLevel))
	}

	a := c.Audio
	if a.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device must be >= %d", MinDeviceID))
	}
	if a.OutputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.output_device must be >= %d", MinDeviceID))
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if a.InputChannels < 1 || a.InputChannels > MaxChannels {
		errs = append(errs, fmt.Errorf("audio.input_channels %d outside [1, %d]", a.InputChannels, MaxChannels))
	}
	if a.FramesPerBuffer < 0 || a.FramesPerBuffer > MaxBufferFrames {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer %d outside [0, %d]", a.FramesPerBuffer, MaxBufferFrames))
	}

	if c.Recording.MaxBytes <= 0 {
		errs = append(errs, errors.New("recording.max_bytes must be positive"))
	}
	if c.Recording.MaxDuration < 0 {
		errs = append(errs, errors.New("recording.max_duration must not be negative"))
	}

	if c.Render.Quantum < 1 || c.Render.Quantum > MaxRenderQuantum {
		errs = append(errs, fmt.Errorf("render.quantum %d outside [1, %d]", c.Render.Quantum, MaxRenderQuantum))
	}
	if c.Render.MaxOutputFrames < 1 {
		errs = append(errs, errors.New("render.max_output_frames must be positive"))
	}

	if c.Monitor.Enabled {
		if !strings.Contains(c.Monitor.Address, ":") {
			errs = append(errs, fmt.Errorf("monitor.address %q appears invalid (missing port?)", c.Monitor.Address))
		}
		if !bitint.IsPowerOfTwo(c.Monitor.FFTSize) {
			errs = append(errs, fmt.Errorf("monitor.fft_size %d must be a power of two (try %d)",
				c.Monitor.FFTSize, bitint.NextPowerOfTwo(c.Monitor.FFTSize)))
		}
	}

	return errors.Join(errs...)
}

// applyEnvOverrides lets VOCCAL_* variables replace individual settings.
// Malformed values are reported instead of being silently ignored.
func (c *Config) applyEnvOverrides() error {
	overrides := []struct {
		key   string
		apply func(string) error
	}{
		{"VOCCAL_DEBUG", boolVar(&c.Debug)},
		{"VOCCAL_LOG_LEVEL", stringVar(&c.LogLevel)},
		{"VOCCAL_INPUT_DEVICE", intVar(&c.Audio.InputDevice)},
		{"VOCCAL_OUTPUT_DEVICE", intVar(&c.Audio.OutputDevice)},
		{"VOCCAL_SAMPLE_RATE", floatVar(&c.Audio.SampleRate)},
		{"VOCCAL_FRAMES_PER_BUFFER", intVar(&c.Audio.FramesPerBuffer)},
		{"VOCCAL_RENDER_QUANTUM", intVar(&c.Render.Quantum)},
		{"VOCCAL_SPATIAL_FILTERS", boolVar(&c.Filters.SpatialEnabled)},
		{"VOCCAL_MONITOR_ENABLED", boolVar(&c.Monitor.Enabled)},
		{"VOCCAL_MONITOR_ADDRESS", stringVar(&c.Monitor.Address)},
	}
	for _, o := range overrides {
		val, ok := os.LookupEnv(o.key)
		if !ok {
			continue
		}
		if err := o.apply(val); err != nil {
			return fmt.Errorf("configuration: %s: %w", o.key, err)
		}
		log.Debugf("configuration: overriding from %s=%s", o.key, val)
	}
	return nil
}

func boolVar(dst *bool) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func intVar(dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func floatVar(dst *float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func stringVar(dst *string) func(string) error {
	return func(s string) error {
		*dst = s
		return nil
	}
}
