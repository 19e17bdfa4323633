// SPDX-License-Identifier: MIT
//
// Package analysis measures the processed preview signal for the monitor:
// a windowed magnitude spectrum and per-band levels over the voice range.
package analysis

// BlockProcessor consumes mono blocks of samples in [-1, 1]. Process may be
// called from a real-time path and should not allocate.
type BlockProcessor interface {
	Process(block []float64)
}

// SpectrumProvider exposes the latest magnitude spectrum. Band measurement
// reads through it so it does not depend on a concrete FFT.
type SpectrumProvider interface {
	GetMagnitudes() []float64                // Copy of the latest spectrum.
	GetFrequencyForBin(binIndex int) float64 // Center frequency of a bin in Hz.
	GetFFTSize() int                         // Transform length.
	GetSampleRate() float64                  // Rate the bins are labelled against.
}
