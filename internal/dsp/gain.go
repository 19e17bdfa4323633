// SPDX-License-Identifier: MIT
package dsp

import "gonum.org/v1/gonum/floats"

// Gain multiplies every sample by Value.
type Gain struct {
	Value float64
}

func (s Gain) Kind() Kind { return KindGain }

func (s Gain) New(f Format) (Stage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !finite(s.Value) {
		return nil, &ParamError{Kind: KindGain, Param: "value", Value: s.Value, Reason: "must be finite"}
	}
	return &gainStage{value: s.Value}, nil
}

type gainStage struct {
	value float64
}

func (s *gainStage) Kind() Kind { return KindGain }

func (s *gainStage) Process(block [][]float64) {
	for _, ch := range block {
		floats.Scale(s.value, ch)
	}
}

func (s *gainStage) Reset() {}
