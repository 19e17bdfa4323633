// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
)

// Compressor is a soft-knee feed-forward compressor. Makeup gain is left
// at 0 dB; recipes that need it follow with a Gain stage.
type Compressor struct {
	ThresholdDB float64
	Ratio       float64
	KneeDB      float64
	Attack      time.Duration
	Release     time.Duration
}

func (s Compressor) Kind() Kind { return KindCompressor }

func (s Compressor) New(f Format) (Stage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	comps := make([]*dynamics.Compressor, f.Channels)
	for i := range comps {
		c, err := dynamics.NewCompressor(f.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("dsp: compressor: %w", err)
		}
		if err := s.configure(c); err != nil {
			return nil, err
		}
		comps[i] = c
	}
	return &compressorStage{comps: comps}, nil
}

func (s Compressor) configure(c *dynamics.Compressor) error {
	steps := []struct {
		name string
		set  func() error
	}{
		{"threshold", func() error { return c.SetThreshold(s.ThresholdDB) }},
		{"ratio", func() error { return c.SetRatio(s.Ratio) }},
		{"knee", func() error { return c.SetKnee(s.KneeDB) }},
		{"attack", func() error { return c.SetAttack(durationMs(s.Attack)) }},
		{"release", func() error { return c.SetRelease(durationMs(s.Release)) }},
		{"makeup", func() error { return c.SetMakeupGain(0) }},
	}
	for _, step := range steps {
		if err := step.set(); err != nil {
			return fmt.Errorf("dsp: compressor %s: %w", step.name, err)
		}
	}
	return nil
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type compressorStage struct {
	comps []*dynamics.Compressor
}

func (s *compressorStage) Kind() Kind { return KindCompressor }

func (s *compressorStage) Process(block [][]float64) {
	for c, ch := range block {
		s.comps[c].ProcessInPlace(ch)
	}
}

func (s *compressorStage) Reset() {
	for _, c := range s.comps {
		c.Reset()
	}
}
