// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"
)

// FrequencyBand is a named range [LowHz, HighHz).
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// VoiceBands splits the speech range roughly where voice effects act:
// body, fundamental and low formants, intelligibility, presence and air.
var VoiceBands = []FrequencyBand{
	{Name: "body", LowHz: 80, HighHz: 300},
	{Name: "low_mid", LowHz: 300, HighHz: 1000},
	{Name: "mid", LowHz: 1000, HighHz: 3400},
	{Name: "presence", LowHz: 3400, HighHz: 8000},
	{Name: "air", LowHz: 8000, HighHz: 20000},
}

// BandLevel is the RMS magnitude of one band, clamped to [0, 1].
type BandLevel struct {
	Name  string  `json:"name"`
	Level float64 `json:"level"`
}

// BandEnergyProcessor reduces a spectrum to per-band levels.
type BandEnergyProcessor struct {
	bands    []FrequencyBand
	provider SpectrumProvider
	energy   []float64
	bins     []int
}

// NewBandEnergyProcessor measures bands against provider's spectrum.
func NewBandEnergyProcessor(provider SpectrumProvider, bands []FrequencyBand) (*BandEnergyProcessor, error) {
	if provider == nil {
		return nil, errors.New("analysis: band energy requires a spectrum provider")
	}
	if len(bands) == 0 {
		bands = VoiceBands
	}
	return &BandEnergyProcessor{
		bands:    append([]FrequencyBand(nil), bands...),
		provider: provider,
		energy:   make([]float64, len(bands)),
		bins:     make([]int, len(bands)),
	}, nil
}

// Levels computes the current level of every band in order. Bands above
// Nyquist report zero.
func (p *BandEnergyProcessor) Levels() []BandLevel {
	magnitudes := p.provider.GetMagnitudes()

	clear(p.energy)
	clear(p.bins)
	for i, m := range magnitudes {
		freq := p.provider.GetFrequencyForBin(i)
		for b, band := range p.bands {
			if freq >= band.LowHz && freq < band.HighHz {
				p.energy[b] += m * m
				p.bins[b]++
				break
			}
		}
	}

	levels := make([]BandLevel, len(p.bands))
	for b, band := range p.bands {
		level := 0.0
		if p.bins[b] > 0 {
			level = math.Sqrt(p.energy[b] / float64(p.bins[b]))
		}
		levels[b] = BandLevel{Name: band.Name, Level: math.Min(1.0, level)}
	}
	return levels
}
