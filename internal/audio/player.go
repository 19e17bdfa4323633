// SPDX-License-Identifier: MIT
package audio

import (
	"sync"
	"sync/atomic"

	"voccal/internal/dsp"
	"voccal/internal/filter"
	"voccal/internal/log"
	"voccal/internal/pcm"
	"voccal/internal/transport"
)

// preview is one connected source, chain and stream. Its fill method runs
// on the device callback; everything else runs under the player's mutex.
type preview struct {
	filterID   string
	sampleRate float64
	src        *rateReader
	chain      *filter.Chain
	stream     stream
	monitor    *Monitor

	block   [][]float64 // Scratch reused by every callback.
	ended   atomic.Bool
	done    chan struct{} // Closed when the source is exhausted.
	stopped chan struct{} // Closed when the preview is torn down.
}

func (pv *preview) fill(out [][]float32) {
	if len(out) == 0 {
		return
	}
	frames := len(out[0])
	if pv.ended.Load() {
		zero(out, 0)
		return
	}

	if cap(pv.block[0]) < frames {
		// The host asked for more than it was opened with.
		for ch := range pv.block {
			pv.block[ch] = make([]float64, frames)
		}
	}
	for ch := range pv.block {
		pv.block[ch] = pv.block[ch][:frames]
	}

	got := pv.src.Read(pv.block)
	if got > 0 {
		for ch := range pv.block {
			pv.block[ch] = pv.block[ch][:got]
		}
		if err := pv.chain.Process(pv.block); err != nil {
			got = 0
		}
	}
	for ch := range out {
		for i, v := range pv.block[ch][:got] {
			out[ch][i] = float32(clamp(v))
		}
	}
	zero(out, got)

	if got > 0 && pv.monitor != nil {
		pv.monitor.Observe(pv.block, pv.sampleRate, pv.filterID)
	}
	if pv.src.Remaining() == 0 || got == 0 {
		if pv.ended.CompareAndSwap(false, true) {
			close(pv.done)
		}
	}
}

func zero(out [][]float32, from int) {
	for ch := range out {
		clear(out[ch][from:])
	}
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	case v != v: // NaN
		return 0
	}
	return v
}

// Player previews one filtered buffer at a time on the context's output
// device. Starting a preview tears down the previous one first, so at most
// one chain is ever connected.
type Player struct {
	ctx     *Context
	monitor *Monitor
	log     *log.Logger

	mu     sync.Mutex
	active *preview
}

// NewPlayer attaches a player to ctx. monitor may be nil.
func NewPlayer(ctx *Context, monitor *Monitor) (*Player, error) {
	p := &Player{ctx: ctx, monitor: monitor, log: log.Named("player")}
	if err := ctx.attachPlayer(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Play stops any active preview, builds filterID's chain against buf and
// starts playback at the filter's rate. onEnded, if not nil, is called
// exactly once when the buffer plays out; it is never called for a preview
// that was stopped or replaced.
func (p *Player) Play(buf *pcm.Buffer, filterID string, onEnded func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.stopLocked(transport.EventPreviewStopped); err != nil {
		p.log.Debugf("stopping previous preview: %v", err)
	}
	if p.ctx.Closed() {
		return ErrContextClosed
	}

	desc, err := filter.Resolve(filterID)
	if err != nil {
		return err
	}
	format := dsp.Format{SampleRate: float64(buf.SampleRate()), Channels: buf.NumChannels()}
	chain, err := filter.Build(filterID, format)
	if err != nil {
		return err
	}

	cfg := p.ctx.cfg.Audio
	pv := &preview{
		filterID:   filterID,
		sampleRate: format.SampleRate,
		src:        newRateReader(buf, desc.PlaybackRate),
		chain:      chain,
		monitor:    p.monitor,
		block:      make([][]float64, format.Channels),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	for ch := range pv.block {
		pv.block[ch] = make([]float64, cfg.FramesPerBuffer)
	}

	st, err := p.ctx.host.openOutput(streamConfig{
		device:          cfg.OutputDevice,
		channels:        format.Channels,
		sampleRate:      format.SampleRate,
		framesPerBuffer: cfg.FramesPerBuffer,
		lowLatency:      cfg.LowLatency,
	}, pv.fill)
	if err != nil {
		chain.Release()
		return &DeviceError{Op: "open", Device: cfg.OutputDevice, Err: err}
	}
	if err := st.Start(); err != nil {
		st.Close()
		chain.Release()
		return &DeviceError{Op: "start", Device: cfg.OutputDevice, Err: err}
	}
	pv.stream = st
	p.active = pv

	go p.watch(pv, onEnded)

	p.log.Debugf("preview started: filter=%s frames=%d rate=%.2f", filterID, pv.src.Len(), desc.PlaybackRate)
	if p.monitor != nil {
		p.monitor.Event(transport.EventPreviewStarted, filterID)
	}
	return nil
}

// watch tears the preview down when its source runs out and reports the
// natural end, unless the preview was stopped or replaced first.
func (p *Player) watch(pv *preview, onEnded func()) {
	select {
	case <-pv.done:
	case <-pv.stopped:
		return
	}

	p.mu.Lock()
	if p.active != pv {
		p.mu.Unlock()
		return
	}
	if err := p.stopLocked(transport.EventPreviewEnded); err != nil {
		p.log.Debugf("stopping ended preview: %v", err)
	}
	p.mu.Unlock()

	if onEnded != nil {
		onEnded()
	}
}

// Stop halts the active preview and releases its chain. It is a no-op when
// nothing is playing and safe to call repeatedly.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked(transport.EventPreviewStopped)
}

// stopLocked tears the active preview down. The chain is released only
// after the stream has stopped calling back.
func (p *Player) stopLocked(event string) error {
	pv := p.active
	if pv == nil {
		return nil
	}
	p.active = nil
	close(pv.stopped)

	var stopErr error
	if err := pv.stream.Stop(); err != nil {
		stopErr = &DeviceError{Op: "stop", Device: p.ctx.cfg.Audio.OutputDevice, Err: err}
	}
	pv.stream.Close()
	pv.chain.Release()

	p.log.Debugf("%s: filter=%s", event, pv.filterID)
	if p.monitor != nil {
		p.monitor.Event(event, pv.filterID)
	}
	return stopErr
}

// Playing returns the filter id of the active preview.
func (p *Player) Playing() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return "", false
	}
	return p.active.filterID, true
}
