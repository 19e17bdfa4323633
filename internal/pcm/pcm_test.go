// SPDX-License-Identifier: MIT
package pcm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{1.0, 32767},
		{-1.0, -32768},
		{0, 0},
		{0.5, 16383},   // 16383.5 truncates toward zero
		{-0.5, -16384}, // exact
		{1e-6, 0},
		{-1e-6, 0},
		{2.5, 32767},
		{-7, -32768},
		{math.Inf(1), 32767},
		{math.Inf(-1), -32768},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Quantize(tt.in); got != tt.want {
			t.Errorf("Quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQuantizeBounds(t *testing.T) {
	for i := -1000; i <= 1000; i++ {
		s := float64(i) / 1000
		q := int32(Quantize(s))
		if q < -32768 || q > 32767 {
			t.Fatalf("Quantize(%v) = %d out of range", s, q)
		}
		if s > 0 && q < 0 || s < 0 && q > 0 {
			t.Fatalf("Quantize(%v) = %d changed sign", s, q)
		}
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		channels int
		frames   int
	}{
		{"mono 48k", 48000, 1, 1000},
		{"stereo 44.1k", 44100, 2, 777},
		{"empty", 22050, 2, 0},
		{"multi chunk", 8000, 1, encodeChunkFrames*2 + 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chans := make([][]float64, tt.channels)
			for c := range chans {
				chans[c] = make([]float64, tt.frames)
				for i := range chans[c] {
					chans[c][i] = math.Sin(float64(i) * 0.01 * float64(c+1))
				}
			}
			data, err := EncodeWAV(tt.rate, chans)
			if err != nil {
				t.Fatalf("EncodeWAV: %v", err)
			}

			dataLen := tt.frames * tt.channels * 2
			if len(data) != 44+dataLen {
				t.Fatalf("len = %d, want %d", len(data), 44+dataLen)
			}
			le := binary.LittleEndian
			checks := []struct {
				field string
				got   uint32
				want  uint32
			}{
				{"riff size", le.Uint32(data[4:8]), uint32(36 + dataLen)},
				{"format", uint32(le.Uint16(data[20:22])), 1},
				{"channels", uint32(le.Uint16(data[22:24])), uint32(tt.channels)},
				{"sample rate", le.Uint32(data[24:28]), uint32(tt.rate)},
				{"byte rate", le.Uint32(data[28:32]), uint32(tt.rate * tt.channels * 2)},
				{"block align", uint32(le.Uint16(data[32:34])), uint32(tt.channels * 2)},
				{"bits", uint32(le.Uint16(data[34:36])), 16},
				{"data length", le.Uint32(data[40:44]), uint32(dataLen)},
			}
			for _, c := range checks {
				if c.got != c.want {
					t.Errorf("%s = %d, want %d", c.field, c.got, c.want)
				}
			}
			if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
				t.Errorf("bad chunk ids in header % x", data[:44])
			}
		})
	}
}

func TestEncodeWAVSamples(t *testing.T) {
	data, err := EncodeWAV(8000, [][]float64{{1, -1, 0, 0.25}, {-2, 2, -0.25, 0}})
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{32767, -32768, -32768, 32767, 0, -8192, 8191, 0}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(data[44+2*i:]))
		if got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestEncodeWAVErrors(t *testing.T) {
	if _, err := EncodeWAV(0, [][]float64{{0}}); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := EncodeWAV(8000, nil); err == nil {
		t.Error("expected error for no channels")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	src := [][]float64{{0, 0.5, -0.5, 0.999}, {-1, 0.25, 0, -0.125}}
	data, err := EncodeWAV(16000, src)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.SampleRate() != 16000 || buf.NumChannels() != 2 || buf.NumFrames() != 4 {
		t.Fatalf("got rate=%d ch=%d frames=%d", buf.SampleRate(), buf.NumChannels(), buf.NumFrames())
	}
	for c := range src {
		for i, want := range src[c] {
			if got := buf.Channel(c)[i]; math.Abs(got-want) > 2.0/32768 {
				t.Errorf("ch %d frame %d = %v, want %v", c, i, got, want)
			}
		}
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Error("Bytes() does not return the decoded input")
	}
}

func TestDecodeBitDepths(t *testing.T) {
	tests := []struct {
		bits    int
		raw     []int
		want    []float64
		epsilon float64
	}{
		{8, []int{128, 255, 0, 192}, []float64{0, 127.0 / 128, -1, 0.5}, 1e-12},
		{16, []int{0, 16384, -32768}, []float64{0, 0.5, -1}, 1e-12},
		{24, []int{0, 1 << 22, -(1 << 23)}, []float64{0, 0.5, -1}, 1e-12},
		{32, []int{0, 1 << 30, math.MinInt32}, []float64{0, 0.5, -1}, 1e-12},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-bit", tt.bits), func(t *testing.T) {
			data := encodeRaw(t, 8000, tt.bits, tt.raw)
			buf, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			for i, want := range tt.want {
				if got := buf.Channel(0)[i]; math.Abs(got-want) > tt.epsilon {
					t.Errorf("sample %d = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	valid, err := EncodeWAV(8000, [][]float64{{0.1, 0.2}})
	if err != nil {
		t.Fatal(err)
	}
	float := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint16(float[20:22], 3) // WAVE_FORMAT_IEEE_FLOAT
	silent, err := EncodeWAV(8000, [][]float64{{}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("definitely not audio, just some words")},
		{"truncated", valid[:20]},
		{"float format", float},
		{"no frames", silent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Decode(tt.data)
			if buf != nil {
				t.Error("expected nil buffer")
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("Decode() error = %v, want *DecodeError", err)
			}
		})
	}
}

func TestNewBuffer(t *testing.T) {
	src := [][]float64{{0.1, 0.2, 0.3}}
	buf, err := NewBuffer(8000, src)
	if err != nil {
		t.Fatal(err)
	}
	src[0][0] = 0.9
	if buf.Channel(0)[0] != 0.1 {
		t.Error("NewBuffer kept a reference to the caller's slice")
	}
	b := buf.Bytes()
	b[0] = 'X'
	if buf.Bytes()[0] != 'R' {
		t.Error("Bytes() exposed internal storage")
	}
	if got := buf.Duration(); got != 375*time.Microsecond {
		t.Errorf("Duration() = %v", got)
	}

	if _, err := NewBuffer(8000, [][]float64{{0, 0}, {0}}); err == nil {
		t.Error("expected error for ragged channels")
	}
	if _, err := NewBuffer(-1, [][]float64{{0}}); err == nil {
		t.Error("expected error for negative rate")
	}
}

func TestWriteSeeker(t *testing.T) {
	ws := &writeSeeker{}
	ws.Write([]byte("abcdef"))
	if _, err := ws.Seek(2, 0); err != nil {
		t.Fatal(err)
	}
	ws.Write([]byte("XY"))
	if _, err := ws.Seek(0, 2); err != nil {
		t.Fatal(err)
	}
	ws.Write([]byte("!"))
	if got := string(ws.buf); got != "abXYef!" {
		t.Errorf("buf = %q", got)
	}
	if _, err := ws.Seek(-10, 1); err == nil {
		t.Error("expected error for negative position")
	}
}

func encodeRaw(t *testing.T, rate, bits int, samples []int) []byte {
	t.Helper()
	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, rate, bits, 1, wavFormatPCM)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: bits,
	}
	if err := enc.Write(ib); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return ws.buf
}

func BenchmarkEncodeWAV(b *testing.B) {
	chans := [][]float64{make([]float64, 48000), make([]float64, 48000)}
	for b.Loop() {
		if _, err := EncodeWAV(48000, chans); err != nil {
			b.Fatal(err)
		}
	}
}
