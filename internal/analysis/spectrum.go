// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math/cmplx"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"voccal/pkg/bitint"
)

// WindowFunc selects the window applied before each transform.
type WindowFunc int

const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

var windowNames = [...]string{"BartlettHann", "Blackman", "BlackmanNuttall", "Hann", "Hamming", "Lanczos", "Nuttall"}

func (w WindowFunc) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
	return windowNames[w]
}

// Pre-allocated buffers for FFT calculations.
type fftWorkspace struct {
	input     []float64    // Windowed input signal.
	fftOutput []complex128 // FFT complex results.
	magnitude []float64    // Magnitudes of the latest frame.
	window    []float64    // Pre-calculated window coefficients.
	mu        sync.RWMutex // Protects magnitude.
}

// SpectrumProcessor computes the magnitude spectrum of mono blocks. Readers
// may query results from other goroutines while Process runs.
type SpectrumProcessor struct {
	fftCalculator *fourier.FFT
	fftSize       int
	sampleRate    float64
	windowType    WindowFunc
	workspace     fftWorkspace
}

var _ SpectrumProvider = (*SpectrumProcessor)(nil)
var _ BlockProcessor = (*SpectrumProcessor)(nil)

// NewSpectrumProcessor allocates every buffer up front so Process does not
// allocate. fftSize must be a power of two.
func NewSpectrumProcessor(fftSize int, sampleRate float64, windowType WindowFunc) (*SpectrumProcessor, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("analysis: fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("analysis: sample rate must be positive, got %f", sampleRate)
	}

	windowCoeffs := make([]float64, fftSize)
	applyWindow(windowCoeffs, windowType)

	// Real input yields N/2 + 1 complex values.
	magnitudeSize := fftSize/2 + 1

	return &SpectrumProcessor{
		fftCalculator: fourier.NewFFT(fftSize),
		fftSize:       fftSize,
		sampleRate:    sampleRate,
		windowType:    windowType,
		workspace: fftWorkspace{
			input:     make([]float64, fftSize),
			fftOutput: make([]complex128, magnitudeSize),
			magnitude: make([]float64, magnitudeSize),
			window:    windowCoeffs,
		},
	}, nil
}

// Process windows block, transforms it and stores the magnitudes. Blocks
// shorter than the FFT size are zero padded; longer ones are truncated.
func (p *SpectrumProcessor) Process(block []float64) {
	p.workspace.mu.Lock()
	defer p.workspace.mu.Unlock()

	n := min(len(block), p.fftSize)
	for i := range n {
		p.workspace.input[i] = block[i] * p.workspace.window[i]
	}
	clear(p.workspace.input[n:])

	p.fftCalculator.Coefficients(p.workspace.fftOutput, p.workspace.input)

	// Scale so a full-scale sine in the rectangular window reads as 1.
	scale := 2 / float64(p.fftSize)
	for i, c := range p.workspace.fftOutput {
		p.workspace.magnitude[i] = cmplx.Abs(c) * scale
	}
}

// GetMagnitudes returns a copy of the latest magnitudes.
func (p *SpectrumProcessor) GetMagnitudes() []float64 {
	p.workspace.mu.RLock()
	defer p.workspace.mu.RUnlock()
	return append([]float64(nil), p.workspace.magnitude...)
}

// GetMagnitudesInto copies the latest magnitudes into dest, which must hold
// exactly fftSize/2 + 1 values.
func (p *SpectrumProcessor) GetMagnitudesInto(dest []float64) error {
	p.workspace.mu.RLock()
	defer p.workspace.mu.RUnlock()

	if len(dest) != len(p.workspace.magnitude) {
		return fmt.Errorf("analysis: destination length %d does not match required length %d", len(dest), len(p.workspace.magnitude))
	}
	copy(dest, p.workspace.magnitude)
	return nil
}

// GetFrequencyForBin returns the center frequency in Hz of binIndex, or 0
// when the index is out of range.
func (p *SpectrumProcessor) GetFrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= len(p.workspace.fftOutput) {
		return 0.0
	}
	return float64(binIndex) * (p.sampleRate / float64(p.fftSize))
}

// GetFFTSize returns the transform length.
func (p *SpectrumProcessor) GetFFTSize() int {
	return p.fftSize
}

// GetSampleRate returns the sample rate the bins are labelled against.
func (p *SpectrumProcessor) GetSampleRate() float64 {
	return p.sampleRate
}

// Window returns the window function in use.
func (p *SpectrumProcessor) Window() WindowFunc {
	return p.windowType
}

// ParseWindowFunc converts a case-insensitive name to a WindowFunc. Unknown
// names return Hann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("analysis: unknown FFT window function name: '%s'", name)
	}
}

// applyWindow fills coeffs with the selected window. Unknown types fall
// back to Hann.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	// The gonum windows scale their input in place.
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hann(coeffs)
	}
}
