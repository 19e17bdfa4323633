// SPDX-License-Identifier: MIT
//
// Package utils holds signal generators and fakes shared by package tests.
package utils

import (
	"math"
	"math/rand/v2"
	"sync"
)

// MockTransport records every message it is sent.
type MockTransport struct {
	mu     sync.Mutex
	sent   []any
	closed bool
	// Err is returned from Send when set.
	Err error
}

// Send stores data for later inspection. Slices of float64 are copied so
// callers may reuse their buffers.
func (m *MockTransport) Send(data any) error {
	if v, ok := data.([]float64); ok {
		data = append([]float64(nil), v...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	return m.Err
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MockTransport) Messages() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.sent...)
}

// Closed reports whether Close was called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GenerateComplexWave returns a 440 Hz tone with two harmonics, peaking
// below full scale.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = signal * 0.9
	}
	return buffer
}

// GenerateSineWave returns size samples of a sine at frequency.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buffer
}

// GenerateNoise returns uniform white noise in [-amplitude, amplitude).
// The same seed always yields the same samples.
func GenerateNoise(size int, seed uint64, amplitude float64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	buffer := make([]float64, size)
	for i := range buffer {
		buffer[i] = amplitude * (2*rng.Float64() - 1)
	}
	return buffer
}

// GenerateImpulse returns size zeros with a unit sample at position at.
func GenerateImpulse(size, at int) []float64 {
	buffer := make([]float64, size)
	if at >= 0 && at < size {
		buffer[at] = 1
	}
	return buffer
}

// Planar repeats mono across channels, copying it for each.
func Planar(mono []float64, channels int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = append([]float64(nil), mono...)
	}
	return out
}

// FindPeakBin returns the index of the largest magnitude in
// [startBin, endBin], clamping the range to the slice.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}
