package modulation

import (
	"math"

	"github.com/san-kum/lumagrid/internal/geom"
	"github.com/san-kum/lumagrid/internal/params"
)

// ContinuousHarmonic rotates every cell about y at one angular velocity,
// offset by its base angle, while the scale breathes with a phase taken
// from slot 2. Scale stays within [1-Amplitude, 1+Amplitude].
type ContinuousHarmonic struct {
	PeriodMs  float64
	Amplitude float64
}

func NewContinuousHarmonic() *ContinuousHarmonic {
	return &ContinuousHarmonic{PeriodMs: 3000, Amplitude: 0.5}
}

func (h *ContinuousHarmonic) Name() string       { return "continuous_harmonic" }
func (h *ContinuousHarmonic) RequiredSlots() int { return 2 }
func (h *ContinuousHarmonic) Stateful() bool     { return false }

func (h *ContinuousHarmonic) Sample(rec params.Record, elapsedMs float64, _ *Accumulator) Sample {
	w := Omega(h.PeriodMs)
	s := Identity()
	s.Rotation.Y = geom.WrapAngle(w*elapsedMs + rec.BaseAngle)
	s.Scale = 1 + h.Amplitude*math.Sin(w*elapsedMs+rec.ScaleSeed*geom.TwoPi)
	return s
}

func (h *ContinuousHarmonic) GetParams() map[string]float64 {
	return map[string]float64{
		"period_ms": h.PeriodMs,
		"amplitude": h.Amplitude,
	}
}

func (h *ContinuousHarmonic) SetParam(name string, value float64) error {
	switch name {
	case "period_ms":
		if err := checkPeriod(name, value); err != nil {
			return err
		}
		h.PeriodMs = value
	case "amplitude":
		if err := checkAmplitude(name, value); err != nil {
			return err
		}
		h.Amplitude = value
	default:
		return unknownParam(h.Name(), name)
	}
	return nil
}

// TriHarmonic drives rotation, scale and hue from three brightness channels
// with three independent periods.
type TriHarmonic struct {
	RotationPeriodMs float64
	ScalePeriodMs    float64
	ColorPeriodMs    float64
	Amplitude        float64
}

func NewTriHarmonic() *TriHarmonic {
	return &TriHarmonic{
		RotationPeriodMs: 10000,
		ScalePeriodMs:    15000,
		ColorPeriodMs:    20000,
		Amplitude:        0.5,
	}
}

func (h *TriHarmonic) Name() string       { return "tri_harmonic" }
func (h *TriHarmonic) RequiredSlots() int { return 3 }
func (h *TriHarmonic) Stateful() bool     { return false }

func (h *TriHarmonic) Sample(rec params.Record, elapsedMs float64, _ *Accumulator) Sample {
	wr := Omega(h.RotationPeriodMs)
	ws := Omega(h.ScalePeriodMs)
	wc := Omega(h.ColorPeriodMs)

	s := Identity()
	s.Rotation.Y = geom.WrapAngle(wr*elapsedMs + rec.BaseAngle)
	s.Scale = 1 + h.Amplitude*math.Sin(ws*elapsedMs+rec.ScaleSeed*geom.TwoPi)
	s.Hue = geom.Fract(rec.HueSeed + math.Sin(wc*elapsedMs))
	s.HasHue = true
	return s
}

func (h *TriHarmonic) GetParams() map[string]float64 {
	return map[string]float64{
		"rotation_period_ms": h.RotationPeriodMs,
		"scale_period_ms":    h.ScalePeriodMs,
		"color_period_ms":    h.ColorPeriodMs,
		"amplitude":          h.Amplitude,
	}
}

func (h *TriHarmonic) SetParam(name string, value float64) error {
	var target *float64
	switch name {
	case "rotation_period_ms":
		target = &h.RotationPeriodMs
	case "scale_period_ms":
		target = &h.ScalePeriodMs
	case "color_period_ms":
		target = &h.ColorPeriodMs
	case "amplitude":
		if err := checkAmplitude(name, value); err != nil {
			return err
		}
		h.Amplitude = value
		return nil
	default:
		return unknownParam(h.Name(), name)
	}
	if err := checkPeriod(name, value); err != nil {
		return err
	}
	*target = value
	return nil
}
