// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"voccal/internal/log"
	"voccal/internal/pcm"
)

var (
	// ErrAlreadyRecording is returned by Start while a capture is running.
	ErrAlreadyRecording = errors.New("audio: already recording")
	// ErrNotRecording is returned by Stop when nothing is being captured.
	ErrNotRecording = errors.New("audio: not recording")
)

// wavHeaderBytes is the size of the container header pcm.EncodeWAV writes.
const wavHeaderBytes = 44

// capture accumulates input frames up to a fixed limit.
type capture struct {
	mu        sync.Mutex
	channels  [][]float64
	maxFrames int
	full      atomic.Bool
	limit     chan struct{} // Closed when maxFrames is reached.
	stream    stream
}

func (c *capture) consume(in [][]float32) {
	if len(in) == 0 || c.full.Load() {
		return
	}
	c.mu.Lock()
	if c.channels == nil {
		c.mu.Unlock()
		return
	}
	have := len(c.channels[0])
	n := min(len(in[0]), c.maxFrames-have)
	for ch := range c.channels {
		for _, v := range in[ch][:n] {
			c.channels[ch] = append(c.channels[ch], float64(v))
		}
	}
	reached := have+n >= c.maxFrames
	c.mu.Unlock()

	if reached && c.full.CompareAndSwap(false, true) {
		close(c.limit)
	}
}

// Recorder captures from the configured input device into a pcm.Buffer.
// Captures stop growing once the encoded size would pass
// recording.max_bytes or the capture reaches recording.max_duration.
type Recorder struct {
	ctx *Context
	log *log.Logger

	mu     sync.Mutex
	active *capture
}

// NewRecorder attaches a recorder to ctx.
func NewRecorder(ctx *Context) (*Recorder, error) {
	r := &Recorder{ctx: ctx, log: log.Named("recorder")}
	if err := ctx.attachRecorder(r); err != nil {
		return nil, err
	}
	return r, nil
}

// MaxFrames is the longest capture the configuration allows at the
// configured rate and channel count.
func (r *Recorder) MaxFrames() int {
	cfg := r.ctx.cfg
	frameBytes := int64(cfg.Audio.InputChannels) * pcm.BitDepth / 8
	frames := int((cfg.Recording.MaxBytes - wavHeaderBytes) / frameBytes)
	if d := cfg.Recording.MaxDuration; d > 0 {
		frames = min(frames, int(d.Seconds()*cfg.Audio.SampleRate))
	}
	return max(frames, 0)
}

// Start opens the input stream and begins capturing.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return ErrAlreadyRecording
	}
	if r.ctx.Closed() {
		return ErrContextClosed
	}

	cfg := r.ctx.cfg.Audio
	c := &capture{
		channels:  make([][]float64, cfg.InputChannels),
		maxFrames: r.MaxFrames(),
		limit:     make(chan struct{}),
	}
	// Preallocate ten seconds so the callback rarely grows the slices.
	prealloc := min(c.maxFrames, int(cfg.SampleRate)*10)
	for ch := range c.channels {
		c.channels[ch] = make([]float64, 0, prealloc)
	}

	st, err := r.ctx.host.openInput(streamConfig{
		device:          cfg.InputDevice,
		channels:        cfg.InputChannels,
		sampleRate:      cfg.SampleRate,
		framesPerBuffer: cfg.FramesPerBuffer,
		lowLatency:      cfg.LowLatency,
	}, c.consume)
	if err != nil {
		return &DeviceError{Op: "open", Device: cfg.InputDevice, Err: err}
	}
	if err := st.Start(); err != nil {
		st.Close()
		return &DeviceError{Op: "start", Device: cfg.InputDevice, Err: err}
	}
	c.stream = st
	r.active = c
	r.log.Debugf("recording started: %d channels at %.0f Hz, limit %d frames", cfg.InputChannels, cfg.SampleRate, c.maxFrames)
	return nil
}

// Limit returns a channel closed when the active capture hits its size or
// duration cap. It returns nil when not recording.
func (r *Recorder) Limit() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil
	}
	return r.active.limit
}

// Recording reports whether a capture is running.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Stop ends the capture and returns what was recorded.
func (r *Recorder) Stop() (*pcm.Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.active
	if c == nil {
		return nil, ErrNotRecording
	}
	r.active = nil

	var stopErr error
	if err := c.stream.Stop(); err != nil {
		stopErr = &DeviceError{Op: "stop", Device: r.ctx.cfg.Audio.InputDevice, Err: err}
	}
	c.stream.Close()

	c.mu.Lock()
	channels := c.channels
	c.channels = nil
	c.mu.Unlock()

	buf, err := pcm.NewBuffer(int(r.ctx.cfg.Audio.SampleRate), channels)
	if err != nil {
		return nil, errors.Join(stopErr, err)
	}
	r.log.Debugf("recording stopped: %d frames (%s)", buf.NumFrames(), buf.Duration().Round(time.Millisecond))
	return buf, stopErr
}
