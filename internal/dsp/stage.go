// SPDX-License-Identifier: MIT
//
// Package dsp provides the signal-processing stages that filter recipes
// are assembled from. A Spec is a plain parameter value; New instantiates
// a fresh, stateful Stage for one processing Format. Stages process planar
// blocks in place and are never shared between chains.
package dsp

import (
	"fmt"
	"math"
)

// Format is the processing context stages are built against.
type Format struct {
	SampleRate float64
	Channels   int
}

// Validate reports whether stages can be instantiated for f.
func (f Format) Validate() error {
	if f.SampleRate <= 0 || math.IsNaN(f.SampleRate) || math.IsInf(f.SampleRate, 0) {
		return fmt.Errorf("dsp: sample rate must be positive and finite: %v", f.SampleRate)
	}
	if f.Channels < 1 {
		return fmt.Errorf("dsp: channel count must be >= 1: %d", f.Channels)
	}
	return nil
}

// Kind names a stage family.
type Kind string

const (
	KindEQ         Kind = "eq"
	KindCompressor Kind = "compressor"
	KindWaveshaper Kind = "waveshaper"
	KindDelay      Kind = "delay"
	KindReverb     Kind = "reverb"
	KindGain       Kind = "gain"
	KindTremolo    Kind = "tremolo"
	KindGate       Kind = "gate"
)

// Stage is one instantiated processing step.
type Stage interface {
	// Kind returns the family the stage was built from.
	Kind() Kind
	// Process transforms block in place. block holds one slice per channel,
	// all of equal length.
	Process(block [][]float64)
	// Reset clears internal state such as filter memory or envelopes.
	Reset()
}

// Spec describes a stage and builds fresh instances of it.
type Spec interface {
	Kind() Kind
	New(f Format) (Stage, error)
}

// ParamError reports a stage parameter outside its legal range.
type ParamError struct {
	Kind   Kind
	Param  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("dsp: %s %s=%v: %s", e.Kind, e.Param, e.Value, e.Reason)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Compile-time checks to ensure every spec builds stages.
var (
	_ Spec = EQ{}
	_ Spec = Compressor{}
	_ Spec = Waveshaper{}
	_ Spec = Delay{}
	_ Spec = Reverb{}
	_ Spec = Gain{}
	_ Spec = Tremolo{}
	_ Spec = Gate{}
)
