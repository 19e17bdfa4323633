// SPDX-License-Identifier: MIT
package pcm

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag. Float and compressed payloads
// are rejected.
const wavFormatPCM = 1

// DecodeError reports input bytes that are not a decodable audio format.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses a PCM WAV container of 8, 16, 24 or 32 bits into a Buffer.
// A container without audio frames is rejected. The input bytes are retained so an identity render can return them
// unchanged.
func Decode(data []byte) (*Buffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, &DecodeError{Reason: "not a valid WAV stream", Err: d.Err()}
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported WAV audio format %d", d.WavAudioFormat)}
	}
	if d.SampleRate == 0 {
		return nil, &DecodeError{Reason: "sample rate is zero"}
	}

	bitDepth := int(d.BitDepth)
	var (
		scale  float64
		offset int
	)
	switch bitDepth {
	case 8:
		// 8-bit samples are unsigned around 128.
		scale, offset = 128, 128
	case 16, 24, 32:
		scale = float64(int64(1) << (bitDepth - 1))
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported bit depth %d", bitDepth)}
	}

	ib, err := d.FullPCMBuffer()
	if err != nil {
		return nil, &DecodeError{Reason: "reading PCM data", Err: err}
	}

	numChans := int(d.NumChans)
	if numChans == 0 {
		return nil, &DecodeError{Reason: "no channels"}
	}
	frames := len(ib.Data) / numChans
	if frames == 0 {
		return nil, &DecodeError{Reason: "no audio frames"}
	}
	channels := make([][]float64, numChans)
	for c := range channels {
		channels[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		base := i * numChans
		for c := 0; c < numChans; c++ {
			channels[c][i] = float64(ib.Data[base+c]-offset) / scale
		}
	}

	return &Buffer{
		sampleRate: int(d.SampleRate),
		channels:   channels,
		encoded:    append([]byte(nil), data...),
	}, nil
}
