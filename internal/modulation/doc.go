// Package modulation maps per-cell parameter records and elapsed animation
// time to transform samples.
//
// Each strategy reproduces one family of brightness-driven motion:
//
//   - [ConstantBlend]: cumulative spin whose speed blends two brightness channels
//   - [TriangleLerp]: ping-pong interpolation between two target orientations
//   - [ContinuousHarmonic]: constant angular velocity with sinusoidal scale breathing
//   - [TriHarmonic]: independent rotation, scale and hue oscillators
//   - [PhaseShiftedTri]: one oscillator driving rotation, scale and opacity 120° apart
//   - [ResonantHarmonic]: power-of-two harmonics quantised from brightness
//   - [SingleSpin]: one-image spin from a brightness-scaled random start
//
// Angles are radians, periods are milliseconds. Every strategy except
// [ConstantBlend] and [SingleSpin] is a pure function of (record, elapsed
// time); those two advance a per-cell [Accumulator] once per call.
//
// Strategies are looked up by name through a [Registry]:
//
//	reg := modulation.NewRegistry()
//	s, _ := reg.Get("resonant_harmonic")
//	sample := s.Sample(rec, elapsedMs, nil)
package modulation
