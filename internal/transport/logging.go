// SPDX-License-Identifier: MIT
package transport

import (
	"voccal/internal/log"
)

// LoggingTransport writes monitor messages to the logger. It is used when
// the monitor is enabled without a network listener.
type LoggingTransport struct {
	log *log.Logger
}

// NewLoggingTransport creates a LoggingTransport.
func NewLoggingTransport() *LoggingTransport {
	lt := &LoggingTransport{log: log.Named("monitor")}
	lt.log.Debugf("using logging transport")
	return lt
}

// Send logs events at DEBUG. Spectrum frames are summarized to their band
// levels since full spectra would flood the log.
func (lt *LoggingTransport) Send(data any) error {
	switch v := data.(type) {
	case Event:
		lt.log.Debugf("%s filter=%s", v.Type, v.FilterID)
	case SpectrumFrame:
		lt.log.Debugf("spectrum filter=%s bands=%v", v.FilterID, v.Bands)
	default:
		lt.log.Debugf("message %T: %+v", data, data)
	}
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error {
	lt.log.Debugf("logging transport closed")
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
