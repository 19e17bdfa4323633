// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"voccal/internal/config"
	"voccal/internal/dsp"
	"voccal/internal/filter"
	"voccal/internal/log"
	"voccal/internal/pcm"
)

// ErrRenderInProgress is returned when a render is requested while another
// is still running on the same Renderer.
var ErrRenderInProgress = errors.New("audio: render already in progress")

// RenderError reports a failure after rendering started. No partial result
// accompanies it.
type RenderError struct {
	FilterID string
	Op       string // "build", "process", "limit" or "encode"
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("audio: rendering %q failed during %s: %v", e.FilterID, e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Result is an encoded render. It is not modified after it is returned.
type Result struct {
	Bytes      []byte
	Size       int
	Channels   int
	SampleRate int
	Frames     int
	Duration   time.Duration
	MIMEType   string
}

// Outcome is the eventual value of RenderAsync.
type Outcome struct {
	Result *Result
	Err    error
}

// Renderer processes a whole buffer through a filter chain offline.
type Renderer struct {
	quantum   int
	maxFrames int
	busy      atomic.Bool
	log       *log.Logger
}

// NewRenderer creates a Renderer with the given block size and output cap.
// Zero values fall back to the defaults.
func NewRenderer(cfg config.RenderConfig) *Renderer {
	r := &Renderer{
		quantum:   cfg.Quantum,
		maxFrames: cfg.MaxOutputFrames,
		log:       log.Named("renderer"),
	}
	if r.quantum <= 0 {
		r.quantum = config.DefaultRenderQuantum
	}
	if r.maxFrames <= 0 {
		r.maxFrames = config.DefaultMaxOutputFrames
	}
	return r
}

// Render applies filterID to buf. The identity filter returns the buffer's
// original bytes unchanged. Other filters produce floor(frames / rate)
// frames of 16-bit PCM WAV.
func (r *Renderer) Render(buf *pcm.Buffer, filterID string) (*Result, error) {
	if _, err := filter.Resolve(filterID); err != nil {
		return nil, err
	}
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrRenderInProgress
	}
	defer r.busy.Store(false)
	return r.render(buf, filterID)
}

// RenderBytes decodes data and renders it. Decode failures return a
// *pcm.DecodeError before any stage is built.
func (r *Renderer) RenderBytes(data []byte, filterID string) (*Result, error) {
	if _, err := filter.Resolve(filterID); err != nil {
		return nil, err
	}
	buf, err := pcm.Decode(data)
	if err != nil {
		return nil, err
	}
	return r.Render(buf, filterID)
}

// RenderAsync starts Render on its own goroutine. The returned channel
// yields exactly one Outcome. A render already in progress is detected
// before this returns, so the outcome is immediate in that case.
func (r *Renderer) RenderAsync(buf *pcm.Buffer, filterID string) <-chan Outcome {
	out := make(chan Outcome, 1)
	if _, err := filter.Resolve(filterID); err != nil {
		out <- Outcome{Err: err}
		return out
	}
	if !r.busy.CompareAndSwap(false, true) {
		out <- Outcome{Err: ErrRenderInProgress}
		return out
	}
	go func() {
		res, err := r.render(buf, filterID)
		r.busy.Store(false)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

// Busy reports whether a render is running.
func (r *Renderer) Busy() bool { return r.busy.Load() }

func (r *Renderer) render(buf *pcm.Buffer, filterID string) (res *Result, err error) {
	desc, err := filter.Resolve(filterID)
	if err != nil {
		return nil, err
	}
	if desc.IsIdentity() {
		data := buf.Bytes()
		return &Result{
			Bytes:      data,
			Size:       len(data),
			Channels:   buf.NumChannels(),
			SampleRate: buf.SampleRate(),
			Frames:     buf.NumFrames(),
			Duration:   buf.Duration(),
			MIMEType:   pcm.MIMEType,
		}, nil
	}

	frames := OutputFrames(buf.NumFrames(), desc.PlaybackRate)
	if frames > r.maxFrames {
		return nil, &RenderError{FilterID: filterID, Op: "limit",
			Err: fmt.Errorf("%d output frames exceeds limit of %d", frames, r.maxFrames)}
	}

	chain, err := filter.Build(filterID, dsp.Format{SampleRate: float64(buf.SampleRate()), Channels: buf.NumChannels()})
	if err != nil {
		return nil, &RenderError{FilterID: filterID, Op: "build", Err: err}
	}
	defer chain.Release()

	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = &RenderError{FilterID: filterID, Op: "process", Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	start := time.Now()
	out := make([][]float64, buf.NumChannels())
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	src := newRateReader(buf, desc.PlaybackRate)
	block := make([][]float64, len(out))
	for pos := 0; pos < frames; pos += r.quantum {
		end := min(pos+r.quantum, frames)
		for ch := range out {
			block[ch] = out[ch][pos:end]
		}
		src.Read(block)
		if err := chain.Process(block); err != nil {
			return nil, &RenderError{FilterID: filterID, Op: "process", Err: err}
		}
	}

	data, err := pcm.EncodeWAV(buf.SampleRate(), out)
	if err != nil {
		return nil, &RenderError{FilterID: filterID, Op: "encode", Err: err}
	}
	r.log.Debugf("rendered %s: %d frames in %s", filterID, frames, time.Since(start))

	return &Result{
		Bytes:      data,
		Size:       len(data),
		Channels:   buf.NumChannels(),
		SampleRate: buf.SampleRate(),
		Frames:     frames,
		Duration:   pcm.FramesDuration(frames, buf.SampleRate()),
		MIMEType:   pcm.MIMEType,
	}, nil
}
