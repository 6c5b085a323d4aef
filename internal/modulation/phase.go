package modulation

import (
	"math"

	"github.com/san-kum/lumagrid/internal/params"
)

const (
	phaseScale   = 2 * math.Pi / 3
	phaseOpacity = 4 * math.Pi / 3
)

// PhaseShiftedTri derives rotation, scale and opacity from a single
// oscillator whose three taps sit 120° apart.
// Scale stays in [1, 1+ScaleAmplitude], opacity in [1-OpacityAmplitude, 1].
type PhaseShiftedTri struct {
	PeriodMs          float64
	RotationAmplitude float64
	ScaleAmplitude    float64
	OpacityAmplitude  float64
}

func NewPhaseShiftedTri() *PhaseShiftedTri {
	return &PhaseShiftedTri{
		PeriodMs:          15000,
		RotationAmplitude: math.Pi / 2,
		ScaleAmplitude:    0.5,
		OpacityAmplitude:  0.5,
	}
}

func (p *PhaseShiftedTri) Name() string       { return "phase_shifted_tri" }
func (p *PhaseShiftedTri) RequiredSlots() int { return 3 }
func (p *PhaseShiftedTri) Stateful() bool     { return false }

// unit maps cos(x) into [0,1].
func unit(x float64) float64 {
	return (math.Cos(x) + 1) / 2
}

func (p *PhaseShiftedTri) Sample(rec params.Record, elapsedMs float64, _ *Accumulator) Sample {
	phase := Omega(p.PeriodMs) * elapsedMs

	s := Identity()
	s.Rotation.Y = rec.BaseAngle + p.RotationAmplitude*unit(phase)
	s.Scale = 1 + p.ScaleAmplitude*unit(phase-phaseScale)*rec.ScaleSeed
	s.Opacity = 1 - p.OpacityAmplitude*unit(phase-phaseOpacity)*rec.HueSeed
	s.HasOpacity = true
	return s
}

func (p *PhaseShiftedTri) GetParams() map[string]float64 {
	return map[string]float64{
		"period_ms":          p.PeriodMs,
		"rotation_amplitude": p.RotationAmplitude,
		"scale_amplitude":    p.ScaleAmplitude,
		"opacity_amplitude":  p.OpacityAmplitude,
	}
}

func (p *PhaseShiftedTri) SetParam(name string, value float64) error {
	if name == "period_ms" {
		if err := checkPeriod(name, value); err != nil {
			return err
		}
		p.PeriodMs = value
		return nil
	}

	var target *float64
	switch name {
	case "rotation_amplitude":
		target = &p.RotationAmplitude
	case "scale_amplitude":
		target = &p.ScaleAmplitude
	case "opacity_amplitude":
		target = &p.OpacityAmplitude
	default:
		return unknownParam(p.Name(), name)
	}
	if err := checkAmplitude(name, value); err != nil {
		return err
	}
	*target = value
	return nil
}
