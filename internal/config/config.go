// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the voice filter engine.
const (
	DefaultLogLevel        = "info"
	DefaultDeviceID        = MinDeviceID // System default device.
	DefaultSampleRate      = 48000
	DefaultInputChannels   = 1
	DefaultFramesPerBuffer = 512
	DefaultLowLatency      = false

	DefaultRecordingMaxBytes = 50 * 1024 * 1024 // Upload cap enforced by the recording front-end.
	DefaultRecordingDir      = "./recordings"

	DefaultRenderQuantum   = 128
	DefaultMaxOutputFrames = 192000 * 60 * 20 // 20 minutes at the highest supported rate.

	DefaultMonitorAddress = "127.0.0.1:8089"
	DefaultFFTSize        = 1024
	DefaultFFTWindow      = "Hann"

	// Hardware and processing limits
	MinDeviceID      = -1     // -1 represents system default device
	MinSampleRate    = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate    = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames  = 8192   // Maximum frames per buffer (power of 2)
	MaxChannels      = 8
	MaxRenderQuantum = 16384
)

// DefaultMaxDuration bounds a single recording; zero disables the limit.
const DefaultMaxDuration = 5 * time.Minute

// Default returns the built-in configuration that LoadConfig starts from.
func Default() *Config {
	return &Config{
		Debug:    false,
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			OutputDevice:    DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			InputChannels:   DefaultInputChannels,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
		},
		Recording: RecordingConfig{
			MaxBytes:    DefaultRecordingMaxBytes,
			MaxDuration: DefaultMaxDuration,
			OutputDir:   DefaultRecordingDir,
		},
		Render: RenderConfig{
			Quantum:         DefaultRenderQuantum,
			MaxOutputFrames: DefaultMaxOutputFrames,
		},
		Filters: FiltersConfig{
			SpatialEnabled: false,
		},
		Monitor: MonitorConfig{
			Enabled:   false,
			Address:   DefaultMonitorAddress,
			FFTSize:   DefaultFFTSize,
			FFTWindow: DefaultFFTWindow,
		},
	}
}
