package modulation

import (
	"math"

	"github.com/san-kum/lumagrid/internal/params"
)

// ConstantBlend spins every cell about x and y by a per-tick increment that
// blends two brightness-derived speeds. Rotation accumulates across ticks.
type ConstantBlend struct {
	SpeedScale float64 // speedN = brightnessN * SpeedScale
	BlendRate  float64 // k in sin(t*k), per millisecond
	Signed     bool    // use raw sin(t*k) instead of sin(t*k)*0.5+0.5
}

func NewConstantBlend() *ConstantBlend {
	return &ConstantBlend{
		SpeedScale: 0.1,
		BlendRate:  0.001,
	}
}

func (c *ConstantBlend) Name() string       { return "constant_blend" }
func (c *ConstantBlend) RequiredSlots() int { return 2 }
func (c *ConstantBlend) Stateful() bool     { return true }

// BlendFactor is sin(t*k)*0.5+0.5, or sin(t*k) when signed.
func BlendFactor(elapsedMs, k float64, signed bool) float64 {
	s := math.Sin(elapsedMs * k)
	if signed {
		return s
	}
	return s*0.5 + 0.5
}

// BlendedSpeed weights speed1 by f and speed2 by 1-f.
func BlendedSpeed(f, speed1, speed2 float64) float64 {
	return f*speed1 + (1-f)*speed2
}

// Speed returns the per-tick increment of rec at elapsedMs.
func (c *ConstantBlend) Speed(rec params.Record, elapsedMs float64) float64 {
	f := BlendFactor(elapsedMs, c.BlendRate, c.Signed)
	return BlendedSpeed(f, rec.Brightness[0]*c.SpeedScale, rec.Brightness[1]*c.SpeedScale)
}

// Sample advances acc by one tick. A nil acc yields the single increment.
func (c *ConstantBlend) Sample(rec params.Record, elapsedMs float64, acc *Accumulator) Sample {
	if acc == nil {
		acc = &Accumulator{}
	}
	speed := c.Speed(rec, elapsedMs)
	acc.Rotation.X += speed
	acc.Rotation.Y += speed

	s := Identity()
	s.Rotation = acc.Rotation
	return s
}

func (c *ConstantBlend) GetParams() map[string]float64 {
	signed := 0.0
	if c.Signed {
		signed = 1
	}
	return map[string]float64{
		"speed_scale": c.SpeedScale,
		"blend_rate":  c.BlendRate,
		"signed":      signed,
	}
}

func (c *ConstantBlend) SetParam(name string, value float64) error {
	switch name {
	case "speed_scale":
		if err := checkAmplitude(name, value); err != nil {
			return err
		}
		c.SpeedScale = value
	case "blend_rate":
		if err := checkAmplitude(name, value); err != nil {
			return err
		}
		c.BlendRate = value
	case "signed":
		c.Signed = value != 0
	default:
		return unknownParam(c.Name(), name)
	}
	return nil
}
