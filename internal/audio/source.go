// SPDX-License-Identifier: MIT
package audio

import (
	"math"

	"voccal/internal/pcm"
)

// OutputFrames is the length of buf played at rate: floor(frames / rate).
// Pitch follows rate, so 0.8 plays longer and lower, 1.5 shorter and higher.
func OutputFrames(frames int, rate float64) int {
	if frames <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Floor(float64(frames) / rate))
}

// rateReader reads a buffer at a playback rate, interpolating linearly
// between neighbouring frames. At rate 1.0 it returns the samples as-is.
type rateReader struct {
	buf   *pcm.Buffer
	rate  float64
	total int
	pos   int
}

func newRateReader(buf *pcm.Buffer, rate float64) *rateReader {
	return &rateReader{buf: buf, rate: rate, total: OutputFrames(buf.NumFrames(), rate)}
}

// Read fills up to len(dst[0]) frames of every channel and returns how many
// were written. It returns 0 once the source is exhausted.
func (r *rateReader) Read(dst [][]float64) int {
	if len(dst) == 0 {
		return 0
	}
	n := min(len(dst[0]), r.total-r.pos)
	if n <= 0 {
		return 0
	}
	last := r.buf.NumFrames() - 1
	for ch := range dst {
		src := r.buf.Channel(ch)
		out := dst[ch][:n]
		for i := range out {
			// Position from the frame index, so long reads do not drift.
			at := float64(r.pos+i) * r.rate
			idx := int(at)
			if idx >= last {
				out[i] = src[last]
				continue
			}
			frac := at - float64(idx)
			a := src[idx]
			out[i] = a + (src[idx+1]-a)*frac
		}
	}
	r.pos += n
	return n
}

// Remaining returns the frames left to read.
func (r *rateReader) Remaining() int { return r.total - r.pos }

// Len returns the total output length in frames.
func (r *rateReader) Len() int { return r.total }
