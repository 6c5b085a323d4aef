package modulation

import (
	"math"

	"github.com/san-kum/lumagrid/internal/geom"
	"github.com/san-kum/lumagrid/internal/params"
)

// ResonantHarmonic rotates each cell about one principal axis. The rotation
// and modulation frequencies are the base frequency times the record's
// power-of-two harmonic multipliers, and both start at the cell's random
// phase:
//
//	angle = base + sin(ωmod·t + φ) · ((ωrot·t + φ) mod 2π)
type ResonantHarmonic struct {
	BasePeriodMs float64
	Axis         Axis
}

func NewResonantHarmonic() *ResonantHarmonic {
	return &ResonantHarmonic{BasePeriodMs: 30000, Axis: AxisY}
}

func (r *ResonantHarmonic) Name() string       { return "resonant_harmonic" }
func (r *ResonantHarmonic) RequiredSlots() int { return 2 }
func (r *ResonantHarmonic) Stateful() bool     { return false }

func (r *ResonantHarmonic) SetAxis(a Axis) { r.Axis = a }

// Angle returns the axis angle of rec at elapsedMs.
func (r *ResonantHarmonic) Angle(rec params.Record, elapsedMs float64) float64 {
	base := Omega(r.BasePeriodMs)
	wRot := base * rec.RotHarmonic
	wMod := base * rec.ModHarmonic

	rotation := geom.WrapAngle(wRot*elapsedMs + rec.Phase)
	modulation := math.Sin(wMod*elapsedMs + rec.Phase)
	return rec.BaseAngle + modulation*rotation
}

func (r *ResonantHarmonic) Sample(rec params.Record, elapsedMs float64, _ *Accumulator) Sample {
	s := Identity()
	s.Rotation = r.Axis.Vec(r.Angle(rec, elapsedMs))
	return s
}

func (r *ResonantHarmonic) GetParams() map[string]float64 {
	return map[string]float64{"base_period_ms": r.BasePeriodMs}
}

func (r *ResonantHarmonic) SetParam(name string, value float64) error {
	switch name {
	case "base_period_ms":
		if err := checkPeriod(name, value); err != nil {
			return err
		}
		r.BasePeriodMs = value
	default:
		return unknownParam(r.Name(), name)
	}
	return nil
}
