// SPDX-License-Identifier: MIT
package audio

import (
	"sync"

	"voccal/internal/analysis"
	"voccal/internal/log"
	"voccal/internal/transport"
)

// monitorQueue bounds the blocks waiting for analysis. Blocks beyond it
// are dropped rather than stalling the device callback.
const monitorQueue = 8

type monitorBlock struct {
	samples    []float64
	sampleRate float64
	filterID   string
}

// Monitor analyzes the processed preview signal off the audio thread and
// publishes spectrum frames and lifecycle events to a transport.
type Monitor struct {
	t       transport.Transport
	fftSize int
	window  analysis.WindowFunc
	log     *log.Logger

	free   chan []float64
	blocks chan monitorBlock
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewMonitor starts the analysis goroutine. fftSize must be a power of two.
func NewMonitor(t transport.Transport, fftSize int, window analysis.WindowFunc) *Monitor {
	m := &Monitor{
		t:       t,
		fftSize: fftSize,
		window:  window,
		log:     log.Named("monitor"),
		free:    make(chan []float64, monitorQueue),
		blocks:  make(chan monitorBlock, monitorQueue),
		done:    make(chan struct{}),
	}
	for range monitorQueue {
		m.free <- make([]float64, fftSize)
	}
	m.wg.Add(1)
	go m.run()
	return m
}

// Observe queues a mono mix of block for analysis. It never blocks or
// allocates; when no buffer is free the block is skipped.
func (m *Monitor) Observe(block [][]float64, sampleRate float64, filterID string) {
	if len(block) == 0 {
		return
	}
	var buf []float64
	select {
	case buf = <-m.free:
	default:
		return
	}

	n := min(len(block[0]), len(buf))
	scale := 1 / float64(len(block))
	for i := range n {
		sum := 0.0
		for ch := range block {
			sum += block[ch][i]
		}
		buf[i] = sum * scale
	}

	select {
	case m.blocks <- monitorBlock{samples: buf[:n], sampleRate: sampleRate, filterID: filterID}:
	default:
		m.free <- buf[:cap(buf)]
	}
}

// Event publishes a lifecycle event.
func (m *Monitor) Event(kind, filterID string) {
	if err := m.t.Send(transport.NewEvent(kind, filterID)); err != nil {
		m.log.Warnf("sending %s: %v", kind, err)
	}
}

func (m *Monitor) run() {
	defer m.wg.Done()

	var (
		spectrum *analysis.SpectrumProcessor
		bands    *analysis.BandEnergyProcessor
	)
	for {
		select {
		case <-m.done:
			return
		case b := <-m.blocks:
			if spectrum == nil || spectrum.GetSampleRate() != b.sampleRate {
				var err error
				spectrum, err = analysis.NewSpectrumProcessor(m.fftSize, b.sampleRate, m.window)
				if err != nil {
					m.log.Errorf("spectrum: %v", err)
					m.free <- b.samples[:cap(b.samples)]
					continue
				}
				bands, _ = analysis.NewBandEnergyProcessor(spectrum, analysis.VoiceBands)
			}
			spectrum.Process(b.samples)
			m.free <- b.samples[:cap(b.samples)]

			frame := transport.SpectrumFrame{
				Type:       transport.SpectrumFrameType,
				FilterID:   b.filterID,
				SampleRate: b.sampleRate,
				BinHz:      spectrum.GetFrequencyForBin(1),
				Magnitudes: spectrum.GetMagnitudes(),
				Bands:      bands.Levels(),
			}
			if err := m.t.Send(frame); err != nil {
				m.log.Warnf("sending spectrum: %v", err)
			}
		}
	}
}

// Close stops the analysis goroutine. The transport is left open.
func (m *Monitor) Close() {
	m.once.Do(func() { close(m.done) })
	m.wg.Wait()
}
