// SPDX-License-Identifier: MIT
//
// Package pcm holds decoded audio and the 16-bit WAV container the engine
// emits. A Buffer is immutable once built: effects read from it and write
// into freshly allocated output regions.
package pcm

import (
	"errors"
	"fmt"
	"time"
)

// MIMEType is the declared type of every container this package produces.
const MIMEType = "audio/wav"

// Buffer is a fixed-length, multi-channel sequence of samples in [-1, 1]
// at a known sample rate, together with the encoded bytes it came from.
type Buffer struct {
	sampleRate int
	channels   [][]float64
	encoded    []byte
}

// NewBuffer copies planar samples into a Buffer and encodes them so the
// identity render has bytes to hand back. All channels must be the same
// length.
func NewBuffer(sampleRate int, channels [][]float64) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("pcm: sample rate must be positive: %d", sampleRate)
	}
	if len(channels) == 0 {
		return nil, errors.New("pcm: at least one channel required")
	}
	frames := len(channels[0])
	owned := make([][]float64, len(channels))
	for i, ch := range channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("pcm: channel %d has %d frames, want %d", i, len(ch), frames)
		}
		owned[i] = append([]float64(nil), ch...)
	}
	encoded, err := EncodeWAV(sampleRate, owned)
	if err != nil {
		return nil, err
	}
	return &Buffer{sampleRate: sampleRate, channels: owned, encoded: encoded}, nil
}

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.channels) }

// NumFrames returns the per-channel sample count.
func (b *Buffer) NumFrames() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Duration returns the playing time at rate 1.0.
func (b *Buffer) Duration() time.Duration {
	return FramesDuration(b.NumFrames(), b.sampleRate)
}

// Channel returns the samples of channel i. The slice is shared with the
// buffer and must not be written to.
func (b *Buffer) Channel(i int) []float64 {
	return b.channels[i]
}

// Bytes returns a copy of the encoded container the buffer was built from.
func (b *Buffer) Bytes() []byte {
	return append([]byte(nil), b.encoded...)
}

// FramesDuration converts a frame count at sampleRate to a duration.
func FramesDuration(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(frames) * int64(time.Second) / int64(sampleRate))
}
