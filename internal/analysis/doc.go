// Package analysis characterizes recorded cell motion.
//
//   - [Spectrum]: one-sided power spectrum of a series, for spotting ringing
//   - [Portrait]: value against velocity, the phase plane of a cell
//   - [Crossings]: how many times a series passes through its rest value
//
// # Ringing
//
// An underdamped spring shows a clear spectral peak near its damped
// frequency and several crossings of the target:
//
//	bins, _ := analysis.Spectrum(res.Series("scale"), 16*time.Millisecond)
//	peak := analysis.Dominant(bins)
package analysis
