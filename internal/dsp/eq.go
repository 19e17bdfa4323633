// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// EQType selects the biquad response of an EQ stage.
type EQType int

const (
	Lowpass EQType = iota
	Highpass
	LowShelf
	HighShelf
	Peaking
)

func (t EQType) String() string {
	switch t {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case LowShelf:
		return "lowshelf"
	case HighShelf:
		return "highshelf"
	case Peaking:
		return "peaking"
	default:
		return fmt.Sprintf("EQType(%d)", int(t))
	}
}

// maxFreqRatio keeps corner frequencies below Nyquist. Recipes are written
// for 44.1/48 kHz material; at lower rates the corner is pulled down.
const maxFreqRatio = 0.49

// EQ is a single biquad filter. GainDB is ignored by the pass types. A zero
// Q selects 1/sqrt(2).
type EQ struct {
	Type   EQType
	Freq   float64
	GainDB float64
	Q      float64
}

func (s EQ) Kind() Kind { return KindEQ }

func (s EQ) New(f Format) (Stage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !finite(s.Freq) || s.Freq <= 0 {
		return nil, &ParamError{Kind: KindEQ, Param: "freq", Value: s.Freq, Reason: "must be positive"}
	}
	if !finite(s.GainDB) {
		return nil, &ParamError{Kind: KindEQ, Param: "gain", Value: s.GainDB, Reason: "must be finite"}
	}
	if !finite(s.Q) || s.Q < 0 {
		return nil, &ParamError{Kind: KindEQ, Param: "q", Value: s.Q, Reason: "must not be negative"}
	}

	freq := min(s.Freq, f.SampleRate*maxFreqRatio)
	var c biquad.Coefficients
	switch s.Type {
	case Lowpass:
		c = design.Lowpass(freq, s.Q, f.SampleRate)
	case Highpass:
		c = design.Highpass(freq, s.Q, f.SampleRate)
	case LowShelf:
		c = design.LowShelf(freq, s.GainDB, s.Q, f.SampleRate)
	case HighShelf:
		c = design.HighShelf(freq, s.GainDB, s.Q, f.SampleRate)
	case Peaking:
		c = design.Peak(freq, s.GainDB, s.Q, f.SampleRate)
	default:
		return nil, fmt.Errorf("dsp: unknown EQ type %v", s.Type)
	}

	sections := make([]*biquad.Section, f.Channels)
	for i := range sections {
		sections[i] = biquad.NewSection(c)
	}
	return &eqStage{sections: sections}, nil
}

type eqStage struct {
	sections []*biquad.Section
}

func (s *eqStage) Kind() Kind { return KindEQ }

func (s *eqStage) Process(block [][]float64) {
	for c, ch := range block {
		s.sections[c].ProcessBlock(ch)
	}
}

func (s *eqStage) Reset() {
	for _, sec := range s.sections {
		sec.Reset()
	}
}
