// SPDX-License-Identifier: MIT
//
// Package transport carries preview monitor messages out of the engine.
package transport

import (
	"time"

	"voccal/internal/analysis"
)

// Transport sends monitor messages. Implementations must be safe for
// concurrent use and must not block the caller for long.
type Transport interface {
	Send(data any) error
	Close() error
}

// Preview lifecycle event types.
const (
	EventPreviewStarted = "preview.started"
	EventPreviewEnded   = "preview.ended"
	EventPreviewStopped = "preview.stopped"
)

// Event reports a preview lifecycle change.
type Event struct {
	Type     string    `json:"type"`
	FilterID string    `json:"filter"`
	At       time.Time `json:"at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(kind, filterID string) Event {
	return Event{Type: kind, FilterID: filterID, At: time.Now()}
}

// SpectrumFrame is one analysis frame of the processed preview output.
type SpectrumFrame struct {
	Type       string               `json:"type"`
	FilterID   string               `json:"filter"`
	SampleRate float64              `json:"sample_rate"`
	BinHz      float64              `json:"bin_hz"`
	Magnitudes []float64            `json:"magnitudes"`
	Bands      []analysis.BandLevel `json:"bands"`
}

// SpectrumFrameType is the Type of every SpectrumFrame.
const SpectrumFrameType = "spectrum"
