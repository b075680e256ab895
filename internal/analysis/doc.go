// Package analysis characterizes recorded and simulated spring scenes.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation content of a
//     recorded series
//   - [LyapunovExponent]: sensitivity of a scene to a small displacement
//   - [Portrait]: a trajectory in one atom's phase plane, drawn in braille
//
// # Chaos Detection
//
// Harmonic scenes give an exponent near zero; a clearly positive value means
// nearby starts separate exponentially:
//
//	lambda, err := analysis.LyapunovExponent(cfg, "leapfrog", 2000, 1e-6)
//	if err == nil && lambda > 0.05 {
//	    // the scene is sensitive to its initial conditions
//	}
package analysis
