// SPDX-License-Identifier: MIT
package cmd

import (
	"voccal/internal/analysis"
	"voccal/internal/audio"
	"voccal/internal/config"
	"voccal/internal/log"
	"voccal/internal/transport"
)

// startMonitor sets up preview analysis. With monitor.enabled it serves
// WebSocket clients on monitor.address; otherwise, at debug level, frames
// go to the log. It returns a nil Monitor when neither applies.
func startMonitor(cfg config.MonitorConfig) (*audio.Monitor, func(), error) {
	var t transport.Transport
	switch {
	case cfg.Enabled:
		ws := transport.NewWebSocketTransport(cfg.Address)
		if err := ws.ListenAndServe(); err != nil {
			ws.Close()
			return nil, func() {}, err
		}
		t = ws
	case log.GetLevel() == log.LevelDebug:
		t = transport.NewLoggingTransport()
	default:
		return nil, func() {}, nil
	}

	window, err := analysis.ParseWindowFunc(cfg.FFTWindow)
	if err != nil {
		t.Close()
		return nil, func() {}, err
	}
	m := audio.NewMonitor(t, cfg.FFTSize, window)
	return m, func() {
		m.Close()
		if err := t.Close(); err != nil {
			log.Warnf("closing monitor transport: %v", err)
		}
	}, nil
}
