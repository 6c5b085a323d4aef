package modulation

import (
	"github.com/san-kum/lumagrid/internal/geom"
	"github.com/san-kum/lumagrid/internal/params"
)

// SingleSpin needs one image. Each cell starts at a random orientation whose
// range shrinks as the cell gets brighter, then spins about x and y by a
// fixed increment per tick.
type SingleSpin struct {
	Spin float64 // radians added to x and y per tick
}

func NewSingleSpin() *SingleSpin {
	return &SingleSpin{Spin: 11}
}

func (s *SingleSpin) Name() string       { return "single_spin" }
func (s *SingleSpin) RequiredSlots() int { return 1 }
func (s *SingleSpin) Stateful() bool     { return true }

// Initial is (1-b)·2π times the cell's fixed random factor on each axis.
func (s *SingleSpin) Initial(rec params.Record) geom.Vec3 {
	f := (1 - rec.Brightness[0]) * geom.TwoPi
	return geom.Vec3{
		X: f * rec.Jitter.X,
		Y: f * rec.Jitter.Y,
		Z: f * rec.Jitter.Z,
	}
}

func (s *SingleSpin) Sample(rec params.Record, _ float64, acc *Accumulator) Sample {
	if acc == nil {
		acc = &Accumulator{}
	}
	acc.Rotation.X += s.Spin
	acc.Rotation.Y += s.Spin

	init := s.Initial(rec)
	out := Identity()
	out.Rotation = geom.Vec3{
		X: init.X + acc.Rotation.X,
		Y: init.Y + acc.Rotation.Y,
		Z: init.Z,
	}
	return out
}

func (s *SingleSpin) GetParams() map[string]float64 {
	return map[string]float64{"spin": s.Spin}
}

func (s *SingleSpin) SetParam(name string, value float64) error {
	switch name {
	case "spin":
		if err := checkAmplitude(name, value); err != nil {
			return err
		}
		s.Spin = value
	default:
		return unknownParam(s.Name(), name)
	}
	return nil
}
