// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
)

// Waveshaper maps each sample through a transfer curve spanning input
// [-1, 1]. Inputs outside that range clamp to the curve ends; values
// between table points are linearly interpolated.
type Waveshaper struct {
	Curve []float64
}

func (s Waveshaper) Kind() Kind { return KindWaveshaper }

func (s Waveshaper) New(f Format) (Stage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(s.Curve) < 2 {
		return nil, &ParamError{Kind: KindWaveshaper, Param: "curve", Value: float64(len(s.Curve)), Reason: "needs at least 2 points"}
	}
	for _, v := range s.Curve {
		if !finite(v) {
			return nil, &ParamError{Kind: KindWaveshaper, Param: "curve", Value: v, Reason: "points must be finite"}
		}
	}
	return &waveshaperStage{curve: append([]float64(nil), s.Curve...)}, nil
}

type waveshaperStage struct {
	curve []float64
}

func (s *waveshaperStage) Kind() Kind { return KindWaveshaper }

func (s *waveshaperStage) Process(block [][]float64) {
	for _, ch := range block {
		for i, x := range ch {
			ch[i] = s.shape(x)
		}
	}
}

func (s *waveshaperStage) shape(x float64) float64 {
	last := len(s.curve) - 1
	if math.IsNaN(x) {
		x = 0
	}
	pos := (x + 1) * 0.5 * float64(last)
	if pos <= 0 {
		return s.curve[0]
	}
	if pos >= float64(last) {
		return s.curve[last]
	}
	i := int(pos)
	frac := pos - float64(i)
	return s.curve[i] + frac*(s.curve[i+1]-s.curve[i])
}

// Reset is a no-op: the curve is memoryless.
func (s *waveshaperStage) Reset() {}

// DefaultCurveSize is the table length used by the built-in recipes.
const DefaultCurveSize = 4096

// SoftClipCurve returns a saturating curve y = (1+k)x / (1+k|x|). amount 0
// is the identity line; larger values drive harder toward the rails while
// keeping y(±1) = ±1.
func SoftClipCurve(amount float64, n int) []float64 {
	k := max(amount, 0)
	curve := make([]float64, n)
	for i := range curve {
		x := curveX(i, n)
		curve[i] = (1 + k) * x / (1 + k*math.Abs(x))
	}
	return curve
}

// BitReduceCurve returns a staircase quantizing input to 2^(bits-1) steps
// per polarity.
func BitReduceCurve(bits int, n int) []float64 {
	levels := math.Exp2(float64(max(bits, 1) - 1))
	curve := make([]float64, n)
	for i := range curve {
		curve[i] = math.Round(curveX(i, n)*levels) / levels
	}
	return curve
}

func curveX(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i)*2/float64(n-1) - 1
}
