// SPDX-License-Identifier: MIT
package utils

import (
	"errors"
	"math"
	"os"
	"reflect"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
	testFrequency  = 440.0 // A4 note
)

var testMagnitudes []float64

func TestMain(m *testing.M) {
	testMagnitudes = make([]float64, testSize)

	// A "hill" with its peak at testSize/4.
	for i := range testMagnitudes {
		testMagnitudes[i] = math.Exp(-0.01 * math.Pow(float64(i-testSize/4), 2))
	}

	os.Exit(m.Run())
}

func TestMockTransport(t *testing.T) {
	tests := []struct {
		name      string
		inputData []float64
	}{
		{"Empty Data", []float64{}},
		{"Single Value", []float64{0.5}},
		{"Multiple Values", []float64{0.1, 0.2, 0.3, 0.4, 0.5}},
		{"Large Dataset", make([]float64, 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := &MockTransport{}
			if err := mt.Send(tt.inputData); err != nil {
				t.Errorf("MockTransport.Send() error = %v", err)
			}

			msgs := mt.Messages()
			if len(msgs) != 1 {
				t.Fatalf("got %d messages, want 1", len(msgs))
			}
			stored := msgs[0].([]float64)
			if len(stored) != len(tt.inputData) {
				t.Errorf("stored length = %d, want %d", len(stored), len(tt.inputData))
			}

			if len(tt.inputData) > 0 {
				tt.inputData[0] = 999.999
				if stored[0] == 999.999 {
					t.Errorf("MockTransport.Send() stored reference instead of copy")
				}
				tt.inputData[0] = 0
			}
		})
	}
}

func TestMockTransportErrorAndClose(t *testing.T) {
	want := errors.New("send failed")
	mt := &MockTransport{Err: want}
	if err := mt.Send("event"); !errors.Is(err, want) {
		t.Errorf("Send() = %v, want %v", err, want)
	}
	if mt.Closed() {
		t.Error("closed before Close()")
	}
	mt.Close()
	if !mt.Closed() {
		t.Error("Close() not recorded")
	}
}

func TestGenerateComplexWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
	}{
		{"Standard", 1024, 44100},
		{"Small", 16, 8000},
		{"Large", 8192, 96000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateComplexWave(tt.size, tt.sampleRate)
			if len(result) != tt.size {
				t.Errorf("buffer size = %d, want %d", len(result), tt.size)
			}
			hasNonZero := false
			for _, v := range result {
				if v > 1 || v < -1 {
					t.Fatalf("sample %v outside [-1, 1]", v)
				}
				if v != 0 {
					hasNonZero = true
				}
			}
			if !hasNonZero {
				t.Errorf("GenerateComplexWave() produced all zeros")
			}
		})
	}
}

func TestGenerateSineWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
		frequency  float64
	}{
		{"A4 Note", 1024, 44100, 440.0},
		{"Middle C", 1024, 44100, 261.63},
		{"High Sample Rate", 1024, 192000, 440.0},
		{"Low Sample Rate", 1024, 8000, 440.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSineWave(tt.size, tt.sampleRate, tt.frequency, 0.5)
			if len(result) != tt.size {
				t.Errorf("buffer size = %d, want %d", len(result), tt.size)
			}

			samplesPerCycle := tt.sampleRate / tt.frequency
			if samplesPerCycle > 2 && float64(tt.size) > samplesPerCycle {
				crossCount := 0
				for i := 1; i < tt.size; i++ {
					if (result[i-1] < 0 && result[i] >= 0) ||
						(result[i-1] >= 0 && result[i] < 0) {
						crossCount++
					}
				}

				// Two crossings per cycle, 20% margin for phase alignment.
				expectedCrossings := float64(tt.size) / (samplesPerCycle / 2)
				tolerance := 0.2 * expectedCrossings
				if math.Abs(float64(crossCount)-expectedCrossings) > tolerance {
					t.Errorf("zero crossings = %d, expected approximately %.1f±%.1f",
						crossCount, expectedCrossings, tolerance)
				}
			}
		})
	}
}

func TestGenerateNoise(t *testing.T) {
	a := GenerateNoise(testSize, 7, 0.25)
	b := GenerateNoise(testSize, 7, 0.25)
	c := GenerateNoise(testSize, 8, 0.25)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different noise")
	}
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical noise")
	}
	for _, v := range a {
		if v < -0.25 || v >= 0.25 {
			t.Fatalf("sample %v outside amplitude", v)
		}
	}
}

func TestGenerateImpulse(t *testing.T) {
	imp := GenerateImpulse(8, 3)
	want := []float64{0, 0, 0, 1, 0, 0, 0, 0}
	if !reflect.DeepEqual(imp, want) {
		t.Errorf("GenerateImpulse() = %v", imp)
	}
	if out := GenerateImpulse(4, 9); !reflect.DeepEqual(out, make([]float64, 4)) {
		t.Errorf("out of range impulse = %v", out)
	}
}

func TestPlanar(t *testing.T) {
	mono := []float64{1, 2, 3}
	p := Planar(mono, 2)
	if len(p) != 2 || !reflect.DeepEqual(p[0], mono) || !reflect.DeepEqual(p[1], mono) {
		t.Fatalf("Planar() = %v", p)
	}
	p[0][0] = 9
	if p[1][0] != 1 || mono[0] != 1 {
		t.Error("channels share storage")
	}
}

func TestFindPeakBin(t *testing.T) {
	tests := []struct {
		name     string
		mags     []float64
		start    int
		end      int
		expected int
	}{
		{"Full Range", testMagnitudes, 0, testSize - 1, testSize / 4},
		{"Partial Range Start", testMagnitudes, testSize / 8, testSize - 1, testSize / 4},
		{"Partial Range End", testMagnitudes, 0, testSize / 3, testSize / 4},
		{"Negative Start", testMagnitudes, -10, testSize - 1, testSize / 4},
		{"Out of Range End", testMagnitudes, 0, testSize * 2, testSize / 4},
		{"Empty Slice", []float64{}, 0, 10, 0},
		{"Single Value", []float64{1.0}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := FindPeakBin(tt.mags, tt.start, tt.end); result != tt.expected {
				t.Errorf("FindPeakBin() = %d, want %d", result, tt.expected)
			}
		})
	}

	allocs := testing.AllocsPerRun(100, func() {
		FindPeakBin(testMagnitudes, 0, len(testMagnitudes)-1)
	})
	if allocs > 0 {
		t.Errorf("FindPeakBin allocated memory: got %.1f allocs, want 0", allocs)
	}
}

func BenchmarkGenerateComplexWave(b *testing.B) {
	benchmarks := []struct {
		name string
		size int
	}{
		{"Small", 64},
		{"Standard", 1024},
		{"Large", 8192},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				GenerateComplexWave(bm.size, testSampleRate)
			}
		})
	}
}
