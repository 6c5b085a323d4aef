package modulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/lumagrid/internal/geom"
	"github.com/san-kum/lumagrid/internal/params"
)

var (
	// ErrUnknownStrategy indicates a strategy name missing from the registry.
	ErrUnknownStrategy = errors.New("modulation: unknown strategy")

	// ErrUnknownParam indicates a parameter name the strategy does not expose.
	ErrUnknownParam = errors.New("modulation: unknown parameter")

	// ErrParameterBounds indicates a parameter value outside its valid range.
	ErrParameterBounds = errors.New("modulation: parameter out of valid bounds")

	// ErrUnknownAxis indicates an axis name other than x, y or z.
	ErrUnknownAxis = errors.New("modulation: unknown axis")
)

// Sample is the transform of one cell for one tick.
type Sample struct {
	Rotation   geom.Vec3
	Scale      float64
	Opacity    float64
	Hue        float64
	HasOpacity bool
	HasHue     bool
}

// Identity is the untransformed sample.
func Identity() Sample {
	return Sample{Scale: 1, Opacity: 1}
}

// Accumulator carries the per-cell state of stateful strategies between
// ticks. It is reset on every rebuild.
type Accumulator struct {
	Rotation geom.Vec3
}

func (a *Accumulator) Reset() { *a = Accumulator{} }

type Strategy interface {
	Name() string
	RequiredSlots() int
	Stateful() bool
	Sample(rec params.Record, elapsedMs float64, acc *Accumulator) Sample
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ParseAxis accepts x, y or z; the empty string is y.
func ParseAxis(name string) (Axis, error) {
	switch name {
	case "x", "X":
		return AxisX, nil
	case "", "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return AxisY, fmt.Errorf("%w: %q", ErrUnknownAxis, name)
}

// Vec returns a rotation of angle radians about the axis.
func (a Axis) Vec(angle float64) geom.Vec3 {
	switch a {
	case AxisX:
		return geom.Vec3{X: angle}
	case AxisZ:
		return geom.Vec3{Z: angle}
	}
	return geom.Vec3{Y: angle}
}

// Triangle maps progress p in [0,1) to 0→1→0.
func Triangle(p float64) float64 {
	if p < 0.5 {
		return 2 * p
	}
	return 2 * (1 - p)
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Omega converts a period in milliseconds to radians per millisecond.
func Omega(periodMs float64) float64 {
	return geom.TwoPi / periodMs
}

func checkPeriod(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrParameterBounds, name, v)
	}
	return nil
}

func checkAmplitude(name string, v float64) error {
	if !(v >= 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be non-negative, got %v", ErrParameterBounds, name, v)
	}
	return nil
}

func unknownParam(strategy, name string) error {
	return fmt.Errorf("%w: %s has no %q", ErrUnknownParam, strategy, name)
}
