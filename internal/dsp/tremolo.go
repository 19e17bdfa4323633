// SPDX-License-Identifier: MIT
package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Tremolo modulates amplitude with a sine LFO. The LFO is precomputed as
// one period of gain values at the processing rate and multiplied into the
// signal element-wise.
//
// With Ring unset the gain swings between 1-Depth and 1. With Ring set the
// carrier is bipolar, gain = (1-Depth) + Depth*sin, so Depth 1 is plain
// ring modulation.
type Tremolo struct {
	Rate  float64 // Hz
	Depth float64
	Ring  bool
}

func (s Tremolo) Kind() Kind { return KindTremolo }

func (s Tremolo) New(f Format) (Stage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !finite(s.Rate) || s.Rate <= 0 || s.Rate >= f.SampleRate/2 {
		return nil, &ParamError{Kind: KindTremolo, Param: "rate", Value: s.Rate, Reason: "must be in (0, Nyquist)"}
	}
	if !finite(s.Depth) || s.Depth < 0 || s.Depth > 1 {
		return nil, &ParamError{Kind: KindTremolo, Param: "depth", Value: s.Depth, Reason: "must be in [0, 1]"}
	}
	return &tremoloStage{table: s.Table(f.SampleRate)}, nil
}

// Table returns one LFO period sampled at sampleRate.
func (s Tremolo) Table(sampleRate float64) []float64 {
	period := max(int(math.Round(sampleRate/s.Rate)), 2)
	table := make([]float64, period)
	for i := range table {
		lfo := math.Sin(2 * math.Pi * float64(i) / float64(period))
		if s.Ring {
			table[i] = (1 - s.Depth) + s.Depth*lfo
		} else {
			table[i] = 1 - s.Depth*0.5*(1-lfo)
		}
	}
	return table
}

type tremoloStage struct {
	table []float64
	phase int
}

func (s *tremoloStage) Kind() Kind { return KindTremolo }

func (s *tremoloStage) Process(block [][]float64) {
	if len(block) == 0 {
		return
	}
	n := len(block[0])
	for _, ch := range block {
		phase := s.phase
		for off := 0; off < n; {
			step := min(n-off, len(s.table)-phase)
			floats.Mul(ch[off:off+step], s.table[phase:phase+step])
			off += step
			phase = (phase + step) % len(s.table)
		}
	}
	s.phase = (s.phase + n) % len(s.table)
}

func (s *tremoloStage) Reset() { s.phase = 0 }
