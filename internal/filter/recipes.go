// SPDX-License-Identifier: MIT
package filter

import (
	"time"

	"voccal/internal/dsp"
)

const ms = time.Millisecond

// recipes maps a catalog id to its ordered stage list. The identity entry
// has no stages. Specs are values; every Build instantiates new stages
// from them.
var recipes = map[string][]dsp.Spec{
	IdentityID: nil,

	"warm": {
		dsp.EQ{Type: dsp.LowShelf, Freq: 250, GainDB: 4},
		dsp.EQ{Type: dsp.Peaking, Freq: 3000, GainDB: -2, Q: 1},
		dsp.EQ{Type: dsp.HighShelf, Freq: 8000, GainDB: -3},
		dsp.Compressor{ThresholdDB: -24, Ratio: 3, KneeDB: 6, Attack: 10 * ms, Release: 250 * ms},
		dsp.Gain{Value: 1.1},
	},
	"bright": {
		dsp.EQ{Type: dsp.LowShelf, Freq: 200, GainDB: -2},
		dsp.EQ{Type: dsp.Peaking, Freq: 4000, GainDB: 3, Q: 0.8},
		dsp.EQ{Type: dsp.HighShelf, Freq: 8000, GainDB: 5},
		dsp.Compressor{ThresholdDB: -20, Ratio: 2.5, KneeDB: 6, Attack: 5 * ms, Release: 150 * ms},
	},

	// Register shifts change the source rate; the EQ leans against the
	// shift and the compressor evens out the level change.
	"deep": {
		dsp.EQ{Type: dsp.LowShelf, Freq: 200, GainDB: 6},
		dsp.EQ{Type: dsp.HighShelf, Freq: 4000, GainDB: -4},
		dsp.Compressor{ThresholdDB: -22, Ratio: 4, KneeDB: 6, Attack: 5 * ms, Release: 200 * ms},
		dsp.Gain{Value: 1.2},
	},
	"chipmunk": {
		dsp.EQ{Type: dsp.LowShelf, Freq: 300, GainDB: -6},
		dsp.EQ{Type: dsp.HighShelf, Freq: 3000, GainDB: 4},
		dsp.Compressor{ThresholdDB: -18, Ratio: 4, KneeDB: 6, Attack: 3 * ms, Release: 120 * ms},
	},

	"radio": {
		dsp.EQ{Type: dsp.Highpass, Freq: 500},
		dsp.EQ{Type: dsp.Lowpass, Freq: 4000},
		dsp.EQ{Type: dsp.Peaking, Freq: 1800, GainDB: 6, Q: 1.2},
		dsp.Waveshaper{Curve: dsp.SoftClipCurve(4, dsp.DefaultCurveSize)},
		dsp.Compressor{ThresholdDB: -30, Ratio: 8, KneeDB: 3, Attack: 2 * ms, Release: 100 * ms},
		dsp.Gain{Value: 1.3},
	},
	"robot": {
		dsp.EQ{Type: dsp.Highpass, Freq: 200},
		dsp.EQ{Type: dsp.Lowpass, Freq: 6000},
		dsp.Tremolo{Rate: 50, Depth: 1, Ring: true},
		dsp.EQ{Type: dsp.Peaking, Freq: 1000, GainDB: 4, Q: 1},
		dsp.Waveshaper{Curve: dsp.BitReduceCurve(6, dsp.DefaultCurveSize)},
		dsp.Compressor{ThresholdDB: -25, Ratio: 6, KneeDB: 3, Attack: 3 * ms, Release: 120 * ms},
	},
	"telephone": {
		dsp.EQ{Type: dsp.Highpass, Freq: 300},
		dsp.EQ{Type: dsp.Lowpass, Freq: 3400},
		dsp.EQ{Type: dsp.Peaking, Freq: 1500, GainDB: 5, Q: 1},
		dsp.Gate{ThresholdDB: -40, Ratio: 10, RangeDB: -60, Attack: ms, Hold: 50 * ms, Release: 100 * ms},
		dsp.Waveshaper{Curve: dsp.SoftClipCurve(8, dsp.DefaultCurveSize)},
		dsp.Compressor{ThresholdDB: -28, Ratio: 10, KneeDB: 3, Attack: 2 * ms, Release: 80 * ms},
		dsp.Gain{Value: 1.4},
	},

	"echo": {
		dsp.Delay{Time: 250 * ms, Feedback: 0.4, Mix: 0.35},
		dsp.Compressor{ThresholdDB: -20, Ratio: 3, KneeDB: 6, Attack: 5 * ms, Release: 200 * ms},
	},
	"stadium": {
		dsp.Reverb{Duration: 2500 * ms, Decay: 2, Mix: 0.35, Seed: 0x57AD},
		dsp.Delay{Time: 120 * ms, Feedback: 0.25, Mix: 0.2},
		dsp.EQ{Type: dsp.HighShelf, Freq: 6000, GainDB: -3},
	},
	"space": {
		dsp.Reverb{Duration: 4 * time.Second, Decay: 3, Mix: 0.5, Seed: 0x5ACE},
		dsp.Delay{Time: 280 * ms, Feedback: 0.5, Mix: 0.3},
		dsp.EQ{Type: dsp.Lowpass, Freq: 7000},
		dsp.Tremolo{Rate: 0.5, Depth: 0.2},
	},
}

// Recipe returns a copy of the ordered stage specs for id.
func Recipe(id string) ([]dsp.Spec, error) {
	if _, err := Resolve(id); err != nil {
		return nil, err
	}
	return append([]dsp.Spec(nil), recipes[id]...), nil
}
