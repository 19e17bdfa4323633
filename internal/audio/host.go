// SPDX-License-Identifier: MIT
package audio

import (
	"github.com/gordonklaus/portaudio"
)

// portAudioHost opens non-interleaved float32 streams through PortAudio.
type portAudioHost struct{}

func (portAudioHost) openOutput(sc streamConfig, fill func(out [][]float32)) (stream, error) {
	dev, err := OutputDevice(sc.device)
	if err != nil {
		return nil, err
	}
	latency := dev.DefaultHighOutputLatency
	if sc.lowLatency {
		latency = dev.DefaultLowOutputLatency
	}
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: sc.channels,
			Latency:  latency,
		},
		SampleRate:      sc.sampleRate,
		FramesPerBuffer: sc.framesPerBuffer,
	}
	return openStream(params, fill)
}

func (portAudioHost) openInput(sc streamConfig, consume func(in [][]float32)) (stream, error) {
	dev, err := InputDevice(sc.device)
	if err != nil {
		return nil, err
	}
	latency := dev.DefaultHighInputLatency
	if sc.lowLatency {
		latency = dev.DefaultLowInputLatency
	}
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: sc.channels,
			Latency:  latency,
		},
		SampleRate:      sc.sampleRate,
		FramesPerBuffer: sc.framesPerBuffer,
	}
	return openStream(params, consume)
}

// openStream keeps a nil *portaudio.Stream from becoming a non-nil stream.
func openStream(params portaudio.StreamParameters, callback any) (stream, error) {
	s, err := paLibOpenStream(params, callback)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (portAudioHost) terminate() error {
	return Terminate()
}
