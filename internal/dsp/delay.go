// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/delay"
)

// MaxDelayTime is the exclusive upper bound on Delay.Time. Longer lines
// with feedback build up into a wash instead of an echo.
const MaxDelayTime = 300 * time.Millisecond

// Delay is a feedback echo. Mix is the wet proportion:
// out = (1-Mix)*dry + Mix*echo. Feedback must stay below 1 so every echo
// decays.
type Delay struct {
	Time     time.Duration
	Feedback float64
	Mix      float64
}

func (s Delay) Kind() Kind { return KindDelay }

func (s Delay) New(f Format) (Stage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if s.Time <= 0 || s.Time >= MaxDelayTime {
		return nil, &ParamError{Kind: KindDelay, Param: "time", Value: s.Time.Seconds(), Reason: fmt.Sprintf("must be in (0, %v)", MaxDelayTime)}
	}
	if !finite(s.Feedback) || s.Feedback < 0 || s.Feedback >= 1 {
		return nil, &ParamError{Kind: KindDelay, Param: "feedback", Value: s.Feedback, Reason: "must be in [0, 1)"}
	}
	if !finite(s.Mix) || s.Mix < 0 || s.Mix > 1 {
		return nil, &ParamError{Kind: KindDelay, Param: "mix", Value: s.Mix, Reason: "must be in [0, 1]"}
	}

	samples := max(int(math.Round(s.Time.Seconds()*f.SampleRate)), 1)
	lines := make([]*delay.Line, f.Channels)
	for i := range lines {
		l, err := delay.New(samples)
		if err != nil {
			return nil, fmt.Errorf("dsp: delay: %w", err)
		}
		lines[i] = l
	}
	return &delayStage{
		lines:    lines,
		samples:  samples,
		feedback: s.Feedback,
		mix:      s.Mix,
	}, nil
}

type delayStage struct {
	lines    []*delay.Line
	samples  int
	feedback float64
	mix      float64
}

func (s *delayStage) Kind() Kind { return KindDelay }

func (s *delayStage) Process(block [][]float64) {
	dry := 1 - s.mix
	for c, ch := range block {
		line := s.lines[c]
		for i, x := range ch {
			// The line holds exactly `samples` values, so the slot about
			// to be overwritten is the one written `samples` ago.
			echo := line.Read(s.samples)
			line.Write(x + s.feedback*echo)
			ch[i] = dry*x + s.mix*echo
		}
	}
}

func (s *delayStage) Reset() {
	for _, l := range s.lines {
		l.Reset()
	}
}
