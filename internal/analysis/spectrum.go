package analysis

import (
	"fmt"
	"math/cmplx"
	"time"

	"github.com/mjibson/go-dsp/fft"
)

// Bin is one frequency bin of a power spectrum.
type Bin struct {
	Hz    float64
	Power float64
}

// Spectrum returns the one-sided amplitude spectrum of samples taken every
// step. The mean is removed first and the DC bin is dropped.
func Spectrum(samples []float64, step time.Duration) ([]Bin, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}
	n := len(samples)
	if n < 4 {
		return nil, fmt.Errorf("need at least 4 samples, got %d", n)
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	rate := float64(time.Second) / float64(step)

	bins := make([]Bin, 0, n/2)
	for k := 1; k <= n/2; k++ {
		bins = append(bins, Bin{
			Hz:    float64(k) * rate / float64(n),
			Power: 2 * cmplx.Abs(coeffs[k]) / float64(n),
		})
	}
	return bins, nil
}

// Dominant returns the strongest bin, or the zero Bin for an empty slice.
func Dominant(bins []Bin) Bin {
	var best Bin
	for _, b := range bins {
		if b.Power > best.Power {
			best = b
		}
	}
	return best
}

// Powers extracts the power column, for plotting.
func Powers(bins []Bin) []float64 {
	out := make([]float64, len(bins))
	for i, b := range bins {
		out[i] = b.Power
	}
	return out
}
