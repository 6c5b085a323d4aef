package modulation

import (
	"math"

	"github.com/san-kum/lumagrid/internal/geom"
	"github.com/san-kum/lumagrid/internal/params"
)

// TriangleLerp swings each cell between the orientation encoded by slot 1
// and the one encoded by slot 2, reaching slot 2 at half period.
type TriangleLerp struct {
	PeriodMs float64
}

func NewTriangleLerp() *TriangleLerp {
	return &TriangleLerp{PeriodMs: 3000}
}

func (l *TriangleLerp) Name() string       { return "triangle_lerp" }
func (l *TriangleLerp) RequiredSlots() int { return 2 }
func (l *TriangleLerp) Stateful() bool     { return false }

// Targets returns the two orientations of rec: brightness * π on every axis.
func (l *TriangleLerp) Targets(rec params.Record) (geom.Vec3, geom.Vec3) {
	return geom.Splat(rec.Brightness[0] * math.Pi), geom.Splat(rec.Brightness[1] * math.Pi)
}

// Progress is (t mod period) / period.
func (l *TriangleLerp) Progress(elapsedMs float64) float64 {
	p := math.Mod(elapsedMs, l.PeriodMs)
	if p < 0 {
		p += l.PeriodMs
	}
	return p / l.PeriodMs
}

func (l *TriangleLerp) Sample(rec params.Record, elapsedMs float64, _ *Accumulator) Sample {
	t1, t2 := l.Targets(rec)
	s := Identity()
	s.Rotation = t1.Lerp(t2, Triangle(l.Progress(elapsedMs)))
	return s
}

func (l *TriangleLerp) GetParams() map[string]float64 {
	return map[string]float64{"period_ms": l.PeriodMs}
}

func (l *TriangleLerp) SetParam(name string, value float64) error {
	switch name {
	case "period_ms":
		if err := checkPeriod(name, value); err != nil {
			return err
		}
		l.PeriodMs = value
	default:
		return unknownParam(l.Name(), name)
	}
	return nil
}
