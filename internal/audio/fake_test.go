// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"sync"
	"testing"
	"time"

	"voccal/internal/config"
	"voccal/internal/pcm"
	"voccal/pkg/utils"
)

// fakeStream stands in for a device stream. Tests drive its callback with
// pump instead of a device clock.
type fakeStream struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	closed   bool
	startErr error
	stopErr  error
	fill     func([][]float32)
	consume  func([][]float32)
	channels int
}

func (s *fakeStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return s.stopErr
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) running() bool {
	return s.started && !s.stopped && !s.closed
}

// pump runs one output callback of frames frames and returns what the
// player wrote. It returns nil when the stream is not running. The lock is
// held for the callback, matching a host whose Stop waits for it.
func (s *fakeStream) pump(frames int) [][]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() || s.fill == nil {
		return nil
	}
	out := make([][]float32, s.channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	s.fill(out)
	return out
}

// feed runs one input callback with in.
func (s *fakeStream) feed(in [][]float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running() || s.consume == nil {
		return false
	}
	s.consume(in)
	return true
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeHost struct {
	mu         sync.Mutex
	streams    []*fakeStream
	configs    []streamConfig
	openErr    error
	startErr   error
	terminated int
}

func (h *fakeHost) open(sc streamConfig) (*fakeStream, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.openErr != nil {
		return nil, h.openErr
	}
	s := &fakeStream{startErr: h.startErr, channels: sc.channels}
	h.streams = append(h.streams, s)
	h.configs = append(h.configs, sc)
	return s, nil
}

func (h *fakeHost) openOutput(sc streamConfig, fill func([][]float32)) (stream, error) {
	s, err := h.open(sc)
	if err != nil {
		return nil, err
	}
	s.fill = fill
	return s, nil
}

func (h *fakeHost) openInput(sc streamConfig, consume func([][]float32)) (stream, error) {
	s, err := h.open(sc)
	if err != nil {
		return nil, err
	}
	s.consume = consume
	return s, nil
}

func (h *fakeHost) terminate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.terminated++
	return nil
}

func (h *fakeHost) last() *fakeStream {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.streams[len(h.streams)-1]
}

func (h *fakeHost) activeStreams() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, s := range h.streams {
		s.mu.Lock()
		if s.running() {
			n++
		}
		s.mu.Unlock()
	}
	return n
}

func newTestContext(t *testing.T) (*Context, *fakeHost) {
	t.Helper()
	cfg := config.Default()
	cfg.Audio.FramesPerBuffer = 256
	h := &fakeHost{}
	ctx := newContext(cfg, h)
	t.Cleanup(func() { ctx.Close() })
	return ctx, h
}

// testBuffer returns a mono or stereo 440 Hz tone.
func testBuffer(t *testing.T, rate, frames, channels int) *pcm.Buffer {
	t.Helper()
	tone := utils.GenerateSineWave(frames, float64(rate), 440, 0.5)
	buf, err := pcm.NewBuffer(rate, utils.Planar(tone, channels))
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

var errFake = errors.New("fake device failure")
