// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/conv"
	"gonum.org/v1/gonum/floats"
)

// The convolver starts with 512-frame partitions and grows them up to 8192
// frames along the impulse. The wet path lags the dry path by the smallest
// partition.
const (
	convMinOrder  = 9
	convMaxOrder  = 13
	convPartition = 1 << convMinOrder
)

// MaxReverbDuration bounds the synthetic impulse length.
const MaxReverbDuration = 10 * time.Second

// Reverb convolves the signal with a synthetic impulse response: white
// noise shaped by (1 - t/Duration)^Decay, one independent response per
// channel, normalised to unit energy. Mix is the wet proportion. Seed makes
// the noise reproducible.
type Reverb struct {
	Duration time.Duration
	Decay    float64
	Mix      float64
	Seed     uint64
}

func (s Reverb) Kind() Kind { return KindReverb }

func (s Reverb) New(f Format) (Stage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if s.Duration <= 0 || s.Duration > MaxReverbDuration {
		return nil, &ParamError{Kind: KindReverb, Param: "duration", Value: s.Duration.Seconds(), Reason: "must be in (0, 10s]"}
	}
	if !finite(s.Decay) || s.Decay < 0 {
		return nil, &ParamError{Kind: KindReverb, Param: "decay", Value: s.Decay, Reason: "must not be negative"}
	}
	if !finite(s.Mix) || s.Mix < 0 || s.Mix > 1 {
		return nil, &ParamError{Kind: KindReverb, Param: "mix", Value: s.Mix, Reason: "must be in [0, 1]"}
	}

	length := max(int(s.Duration.Seconds()*f.SampleRate), 1)
	convs := make([]*conv.PartitionedConvolution, f.Channels)
	for c := range convs {
		pc, err := conv.NewPartitionedConvolution(s.Impulse(length, c), convMinOrder, convMaxOrder)
		if err != nil {
			return nil, fmt.Errorf("dsp: reverb: %w", err)
		}
		convs[c] = pc
	}
	return &reverbStage{convs: convs, mix: s.Mix}, nil
}

// Impulse synthesises the response for one channel at the given length.
func (s Reverb) Impulse(length, channel int) []float64 {
	rng := rand.New(rand.NewPCG(s.Seed, uint64(channel)))
	ir := make([]float64, length)
	for i := range ir {
		env := math.Pow(1-float64(i)/float64(length), s.Decay)
		ir[i] = (rng.Float64()*2 - 1) * env
	}
	if norm := floats.Norm(ir, 2); norm > 0 {
		floats.Scale(1/norm, ir)
	}
	return ir
}

type reverbStage struct {
	convs []*conv.PartitionedConvolution
	mix   float64
	wet   []float64
}

func (s *reverbStage) Kind() Kind { return KindReverb }

func (s *reverbStage) Process(block [][]float64) {
	dry := 1 - s.mix
	for c, ch := range block {
		if cap(s.wet) < len(ch) {
			s.wet = make([]float64, len(ch))
		}
		wet := s.wet[:len(ch)]
		// Lengths match, the only error ProcessBlock reports.
		_ = s.convs[c].ProcessBlock(ch, wet)
		for i, x := range ch {
			ch[i] = dry*x + s.mix*wet[i]
		}
	}
}

func (s *reverbStage) Reset() {
	for _, c := range s.convs {
		c.Reset()
	}
}
