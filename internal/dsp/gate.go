// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
)

// Gate is a per-sample noise gate. Below ThresholdDB the signal is expanded
// downward by Ratio, never by more than RangeDB. Hold keeps the gate open
// after the level drops, so short pauses inside a word are not chopped.
type Gate struct {
	ThresholdDB float64
	Ratio       float64
	RangeDB     float64
	Attack      time.Duration
	Hold        time.Duration
	Release     time.Duration
}

func (s Gate) Kind() Kind { return KindGate }

func (s Gate) New(f Format) (Stage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	gates := make([]*dynamics.Gate, f.Channels)
	for i := range gates {
		g, err := dynamics.NewGate(f.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("dsp: gate: %w", err)
		}
		if err := s.configure(g); err != nil {
			return nil, err
		}
		gates[i] = g
	}
	return &gateStage{gates: gates}, nil
}

func (s Gate) configure(g *dynamics.Gate) error {
	steps := []struct {
		name string
		set  func() error
	}{
		{"threshold", func() error { return g.SetThreshold(s.ThresholdDB) }},
		{"ratio", func() error { return g.SetRatio(s.Ratio) }},
		{"range", func() error { return g.SetRange(s.RangeDB) }},
		{"attack", func() error { return g.SetAttack(durationMs(s.Attack)) }},
		{"hold", func() error { return g.SetHold(durationMs(s.Hold)) }},
		{"release", func() error { return g.SetRelease(durationMs(s.Release)) }},
	}
	for _, step := range steps {
		if err := step.set(); err != nil {
			return fmt.Errorf("dsp: gate %s: %w", step.name, err)
		}
	}
	return nil
}

type gateStage struct {
	gates []*dynamics.Gate
}

func (s *gateStage) Kind() Kind { return KindGate }

func (s *gateStage) Process(block [][]float64) {
	for c, ch := range block {
		s.gates[c].ProcessInPlace(ch)
	}
}

func (s *gateStage) Reset() {
	for _, g := range s.gates {
		g.Reset()
	}
}
