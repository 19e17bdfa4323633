// SPDX-License-Identifier: MIT
/*
Package audio drives the engine's audio: live preview of a filtered
recording, capture from an input device and offline rendering to a WAV
container.

Resources:
  - A Context owns the audio host. It is created explicitly, shared by the
    players and recorders of one surface, and closed explicitly.
  - A Player connects at most one filter chain to the output at a time.
  - A Renderer needs no device and may be used without a Context.
*/
package audio

import (
	"errors"
	"fmt"
	"sync"

	"voccal/internal/config"
	"voccal/internal/log"
)

// ErrContextClosed is returned when a closed Context is asked for audio.
var ErrContextClosed = errors.New("audio: context closed")

// DeviceError reports a failure to open, start or stop a host stream.
type DeviceError struct {
	Op     string // "init", "open", "start" or "stop"
	Device int
	Err    error
}

func (e *DeviceError) Error() string {
	if e.Device == config.MinDeviceID {
		return fmt.Sprintf("audio: %s default device: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("audio: %s device %d: %v", e.Op, e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// stream is the subset of a host stream the engine drives.
type stream interface {
	Start() error
	Stop() error
	Close() error
}

// streamConfig describes one stream to open.
type streamConfig struct {
	device          int
	channels        int
	sampleRate      float64
	framesPerBuffer int
	lowLatency      bool
}

// host opens streams on an audio backend. Callbacks receive planar
// float32 buffers, one slice per channel.
type host interface {
	openOutput(sc streamConfig, fill func(out [][]float32)) (stream, error)
	openInput(sc streamConfig, consume func(in [][]float32)) (stream, error)
	terminate() error
}

// Context owns the audio host for one surface.
type Context struct {
	cfg  *config.Config
	host host
	log  *log.Logger

	mu        sync.Mutex
	closed    bool
	players   map[*Player]struct{}
	recorders map[*Recorder]struct{}
}

// NewContext initializes PortAudio and returns a Context bound to it. A
// host that is missing or denies access yields a *DeviceError.
func NewContext(cfg *config.Config) (*Context, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := Initialize(); err != nil {
		return nil, &DeviceError{Op: "init", Device: config.MinDeviceID, Err: err}
	}
	return newContext(cfg, portAudioHost{}), nil
}

func newContext(cfg *config.Config, h host) *Context {
	c := &Context{
		cfg:       cfg,
		host:      h,
		log:       log.Named("audio"),
		players:   make(map[*Player]struct{}),
		recorders: make(map[*Recorder]struct{}),
	}
	c.log.Debugf("context created")
	return c
}

// Config returns the configuration the context was created with.
func (c *Context) Config() *config.Config { return c.cfg }

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close stops every player and recorder attached to the context and
// terminates the host. It is safe to call more than once.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	players := make([]*Player, 0, len(c.players))
	for p := range c.players {
		players = append(players, p)
	}
	recorders := make([]*Recorder, 0, len(c.recorders))
	for r := range c.recorders {
		recorders = append(recorders, r)
	}
	c.mu.Unlock()

	var errs []error
	for _, p := range players {
		errs = append(errs, p.Stop())
	}
	for _, r := range recorders {
		_, err := r.Stop()
		if !errors.Is(err, ErrNotRecording) {
			errs = append(errs, err)
		}
	}
	errs = append(errs, c.host.terminate())
	c.log.Debugf("context closed")
	return errors.Join(errs...)
}

func (c *Context) attachPlayer(p *Player) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrContextClosed
	}
	c.players[p] = struct{}{}
	return nil
}

func (c *Context) attachRecorder(r *Recorder) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrContextClosed
	}
	c.recorders[r] = struct{}{}
	return nil
}
