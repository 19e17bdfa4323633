// SPDX-License-Identifier: MIT
package pcm

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// BitDepth is the sample width of every container the engine writes.
const BitDepth = 16

// encodeChunkFrames bounds the interleaved scratch buffer handed to the
// encoder per Write.
const encodeChunkFrames = 4096

// Quantize clamps s to [-1, 1] and converts it to signed 16-bit PCM.
// Negative values scale by 32768 and positive values by 32767, truncating
// toward zero, so -1 maps to -32768 and 1 maps to 32767. NaN maps to 0.
func Quantize(s float64) int16 {
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		s = 1
	case s < -1:
		s = -1
	}
	if s < 0 {
		return int16(s * 32768)
	}
	return int16(s * 32767)
}

// EncodeWAV serialises planar samples into a canonical 44-byte-header
// 16-bit PCM WAV container.
func EncodeWAV(sampleRate int, channels [][]float64) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("pcm: sample rate must be positive: %d", sampleRate)
	}
	numChans := len(channels)
	if numChans == 0 {
		return nil, errors.New("pcm: at least one channel required")
	}
	frames := len(channels[0])

	ws := &writeSeeker{buf: make([]byte, 0, 44+frames*numChans*BitDepth/8)}
	enc := wav.NewEncoder(ws, sampleRate, BitDepth, numChans, wavFormatPCM)

	chunk := min(frames, encodeChunkFrames)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: sampleRate},
		Data:           make([]int, chunk*numChans),
		SourceBitDepth: BitDepth,
	}

	// An empty write still emits the header and a zero-length data chunk.
	if frames == 0 {
		ib.Data = ib.Data[:0]
		if err := enc.Write(ib); err != nil {
			return nil, fmt.Errorf("pcm: encoding: %w", err)
		}
	}
	for start := 0; start < frames; start += chunk {
		n := min(chunk, frames-start)
		ib.Data = ib.Data[:n*numChans]
		for i := 0; i < n; i++ {
			for c := 0; c < numChans; c++ {
				ib.Data[i*numChans+c] = int(Quantize(channels[c][start+i]))
			}
		}
		if err := enc.Write(ib); err != nil {
			return nil, fmt.Errorf("pcm: encoding: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("pcm: finalising container: %w", err)
	}
	return ws.buf, nil
}

// writeSeeker is an in-memory io.WriteSeeker; the encoder seeks back to
// patch the RIFF and data sizes on Close.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	if end := w.pos + len(p); end > len(w.buf) {
		if end > cap(w.buf) {
			grown := make([]byte, end, max(end, 2*cap(w.buf)))
			copy(grown, w.buf)
			w.buf = grown
		} else {
			w.buf = w.buf[:end]
		}
	}
	n := copy(w.buf[w.pos:], p)
	w.pos += n
	return n, nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(w.pos) + offset
	case io.SeekEnd:
		abs = int64(len(w.buf)) + offset
	default:
		return 0, fmt.Errorf("pcm: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("pcm: negative seek position")
	}
	w.pos = int(abs)
	return abs, nil
}
