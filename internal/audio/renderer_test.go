// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"voccal/internal/config"
	"voccal/internal/filter"
	"voccal/internal/pcm"
	"voccal/pkg/utils"
)

func newTestRenderer() *Renderer {
	return NewRenderer(config.Default().Render)
}

func TestOutputFrames(t *testing.T) {
	tests := []struct {
		frames int
		rate   float64
		want   int
	}{
		{48000, 1, 48000},
		{48000, 1.5, 32000},
		{1000, 1.5, 666},
		{1000, 0.5, 2000},
		{10, 0.8, 12},
		{0, 1, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := OutputFrames(tt.frames, tt.rate); got != tt.want {
			t.Errorf("OutputFrames(%d, %v) = %d, want %d", tt.frames, tt.rate, got, tt.want)
		}
	}
}

func TestRateReader(t *testing.T) {
	buf, err := pcm.NewBuffer(8000, [][]float64{{0, 0.5, 1, 0.5, 0, -0.5}})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("unity", func(t *testing.T) {
		r := newRateReader(buf, 1)
		dst := [][]float64{make([]float64, 4)}
		if n := r.Read(dst); n != 4 {
			t.Fatalf("n = %d", n)
		}
		if n := r.Read(dst); n != 2 || r.Remaining() != 0 {
			t.Fatalf("second read n = %d remaining %d", n, r.Remaining())
		}
		if n := r.Read(dst); n != 0 {
			t.Errorf("read after end = %d", n)
		}
	})

	t.Run("half speed interpolates", func(t *testing.T) {
		r := newRateReader(buf, 0.5)
		dst := [][]float64{make([]float64, 12)}
		n := r.Read(dst)
		if n != 12 {
			t.Fatalf("n = %d", n)
		}
		want := []float64{0, 0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25, 0, -0.25, -0.5, -0.5}
		for i := range want {
			if math.Abs(dst[0][i]-want[i]) > 1e-12 {
				t.Errorf("frame %d = %v, want %v", i, dst[0][i], want[i])
			}
		}
	})
}

func TestRenderBypassIsByteIdentical(t *testing.T) {
	r := newTestRenderer()
	in := testBuffer(t, 44100, 5000, 2)

	res, err := r.Render(in, filter.IdentityID)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(res.Bytes, in.Bytes()) {
		t.Error("bypass output differs from input bytes")
	}
	if res.Size != len(res.Bytes) || res.Frames != 5000 || res.Channels != 2 || res.SampleRate != 44100 || res.MIMEType != "audio/wav" {
		t.Errorf("result = %+v", res)
	}

	// Decoded input round trips through the bypass untouched too.
	dec, err := pcm.Decode(in.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	res2, err := r.Render(dec, filter.IdentityID)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(res2.Bytes, in.Bytes()) {
		t.Error("bypass of decoded buffer differs from source bytes")
	}
}

func TestRenderLengthLaw(t *testing.T) {
	r := newTestRenderer()
	in := testBuffer(t, 48000, 48000, 1)

	for _, d := range filter.List() {
		t.Run(d.ID, func(t *testing.T) {
			res, err := r.Render(in, d.ID)
			if err != nil {
				t.Fatal(err)
			}
			want := OutputFrames(in.NumFrames(), d.PlaybackRate)
			if res.Frames != want {
				t.Errorf("Frames = %d, want %d", res.Frames, want)
			}
			if res.Channels != 1 || res.SampleRate != 48000 {
				t.Errorf("format = %d ch @ %d", res.Channels, res.SampleRate)
			}
			checkHeader(t, res.Bytes, 48000, 1, want)
		})
	}
}

func TestRenderRegisterShiftLengths(t *testing.T) {
	r := newTestRenderer()
	in := testBuffer(t, 48000, 48000, 2)

	deep, err := r.Render(in, "deep")
	if err != nil {
		t.Fatal(err)
	}
	chip, err := r.Render(in, "chipmunk")
	if err != nil {
		t.Fatal(err)
	}
	if chip.Frames != 32000 {
		t.Errorf("chipmunk frames = %d, want 32000", chip.Frames)
	}
	if deep.Frames <= in.NumFrames() || chip.Frames >= in.NumFrames() {
		t.Errorf("deep=%d chipmunk=%d input=%d", deep.Frames, chip.Frames, in.NumFrames())
	}
}

// checkHeader verifies the canonical 44-byte PCM header.
func checkHeader(t *testing.T, data []byte, rate, channels, frames int) {
	t.Helper()
	if len(data) != 44+frames*channels*2 {
		t.Fatalf("len = %d, want %d", len(data), 44+frames*channels*2)
	}
	le := binary.LittleEndian
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
		t.Errorf("bad chunk ids")
	}
	if got := le.Uint32(data[4:8]); got != uint32(len(data)-8) {
		t.Errorf("riff size = %d", got)
	}
	if got := le.Uint16(data[20:22]); got != 1 {
		t.Errorf("format = %d, want PCM", got)
	}
	if got := le.Uint16(data[22:24]); got != uint16(channels) {
		t.Errorf("channels = %d", got)
	}
	if got := le.Uint32(data[24:28]); got != uint32(rate) {
		t.Errorf("sample rate = %d", got)
	}
	if got := le.Uint32(data[28:32]); got != uint32(rate*channels*2) {
		t.Errorf("byte rate = %d, want %d", got, rate*channels*2)
	}
	if got := le.Uint16(data[32:34]); got != uint16(channels*2) {
		t.Errorf("block align = %d", got)
	}
	if got := le.Uint16(data[34:36]); got != 16 {
		t.Errorf("bits = %d", got)
	}
	if got := le.Uint32(data[40:44]); got != uint32(frames*channels*2) {
		t.Errorf("data size = %d, want %d", got, frames*channels*2)
	}
}

func TestRenderClampsAndQuantizes(t *testing.T) {
	// A full-scale square wave through a boosting filter must clip, not
	// wrap around.
	square := make([]float64, 4800)
	for i := range square {
		if (i/24)%2 == 0 {
			square[i] = 1
		} else {
			square[i] = -1
		}
	}
	in, err := pcm.NewBuffer(48000, [][]float64{square})
	if err != nil {
		t.Fatal(err)
	}
	res, err := newTestRenderer().Render(in, "telephone")
	if err != nil {
		t.Fatal(err)
	}
	dec, err := pcm.Decode(res.Bytes)
	if err != nil {
		t.Fatalf("rendered output does not decode: %v", err)
	}
	for _, v := range dec.Channel(0) {
		if v < -1 || v > 1 {
			t.Fatalf("decoded sample %v outside [-1, 1]", v)
		}
	}
}

func TestRenderUnknownFilter(t *testing.T) {
	r := newTestRenderer()
	var ue *filter.UnknownFilterError
	if _, err := r.Render(testBuffer(t, 8000, 10, 1), "nope"); !errors.As(err, &ue) {
		t.Errorf("Render() = %v", err)
	}
	if _, err := r.RenderBytes([]byte("not audio"), "nope"); !errors.As(err, &ue) {
		t.Errorf("RenderBytes() = %v, want unknown id before decode", err)
	}
	if o := <-r.RenderAsync(testBuffer(t, 8000, 10, 1), "nope"); !errors.As(o.Err, &ue) {
		t.Errorf("RenderAsync() = %v", o.Err)
	}
}

func TestRenderBytes(t *testing.T) {
	r := newTestRenderer()

	var de *pcm.DecodeError
	if _, err := r.RenderBytes([]byte("definitely not a wav file"), "warm"); !errors.As(err, &de) {
		t.Errorf("RenderBytes(garbage) = %v, want DecodeError", err)
	}

	in := testBuffer(t, 16000, 1600, 1)
	res, err := r.RenderBytes(in.Bytes(), "radio")
	if err != nil {
		t.Fatal(err)
	}
	checkHeader(t, res.Bytes, 16000, 1, 1600)
}

func TestRenderRejectsOverlap(t *testing.T) {
	r := newTestRenderer()
	in := testBuffer(t, 48000, 4800, 1)

	r.busy.Store(true)
	if _, err := r.Render(in, "warm"); !errors.Is(err, ErrRenderInProgress) {
		t.Errorf("Render while busy = %v", err)
	}
	if o := <-r.RenderAsync(in, "warm"); !errors.Is(o.Err, ErrRenderInProgress) {
		t.Errorf("RenderAsync while busy = %v", o.Err)
	}
	r.busy.Store(false)

	first := r.RenderAsync(in, "stadium")
	second := r.RenderAsync(in, "warm")
	o2 := <-second
	o1 := <-first
	if o1.Err != nil {
		t.Fatalf("first render failed: %v", o1.Err)
	}
	if !errors.Is(o2.Err, ErrRenderInProgress) {
		t.Errorf("overlapping render = %v, want ErrRenderInProgress", o2.Err)
	}
	if o2.Result != nil {
		t.Error("rejected render returned a result")
	}
	if r.Busy() {
		t.Error("renderer still busy after completion")
	}

	// Sequential renders are fine.
	if o := <-r.RenderAsync(in, "warm"); o.Err != nil {
		t.Errorf("render after completion = %v", o.Err)
	}
}

func TestRenderOutputLimit(t *testing.T) {
	r := NewRenderer(config.RenderConfig{Quantum: 64, MaxOutputFrames: 1000})
	in := testBuffer(t, 8000, 900, 1)

	if _, err := r.Render(in, "warm"); err != nil {
		t.Fatalf("900 frames under the limit: %v", err)
	}
	// deep stretches 900 frames to 1125.
	_, err := r.Render(in, "deep")
	var re *RenderError
	if !errors.As(err, &re) || re.Op != "limit" || re.FilterID != "deep" {
		t.Errorf("Render() = %v, want limit RenderError", err)
	}
	if r.Busy() {
		t.Error("busy flag left set after failure")
	}
}

func TestRenderIsDeterministicAndQuantumIndependent(t *testing.T) {
	tone := utils.GenerateComplexWave(9000, 48000)
	in, err := pcm.NewBuffer(48000, [][]float64{tone})
	if err != nil {
		t.Fatal(err)
	}
	small := NewRenderer(config.RenderConfig{Quantum: 128})
	large := NewRenderer(config.RenderConfig{Quantum: 4096})
	for _, id := range []string{"warm", "deep", "robot", "telephone", "echo", "stadium"} {
		a, err := small.Render(in, id)
		if err != nil {
			t.Fatal(err)
		}
		b, err := large.Render(in, id)
		if err != nil {
			t.Fatal(err)
		}
		c, _ := small.Render(in, id)
		if !bytes.Equal(a.Bytes, c.Bytes) {
			t.Errorf("%s: repeated render differs", id)
		}
		if !bytes.Equal(a.Bytes, b.Bytes) {
			t.Errorf("%s: output depends on the render quantum", id)
		}
	}
}

func TestRenderLeavesInputUntouched(t *testing.T) {
	in := testBuffer(t, 22050, 2205, 2)
	before := append([]float64(nil), in.Channel(0)...)
	orig := in.Bytes()
	if _, err := newTestRenderer().Render(in, "space"); err != nil {
		t.Fatal(err)
	}
	for i, v := range in.Channel(0) {
		if v != before[i] {
			t.Fatalf("input sample %d modified", i)
		}
	}
	if !bytes.Equal(in.Bytes(), orig) {
		t.Error("input bytes modified")
	}
}

func BenchmarkRender(b *testing.B) {
	r := newTestRenderer()
	tone := utils.GenerateComplexWave(48000, 48000)
	in, _ := pcm.NewBuffer(48000, [][]float64{tone, tone})
	for _, id := range []string{"warm", "robot", "stadium"} {
		b.Run(id, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := r.Render(in, id); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
