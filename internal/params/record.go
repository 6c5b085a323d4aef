package params

import (
	"log/slog"
	"math"

	"github.com/san-kum/lumagrid/internal/geom"
)

// MaxSlots is the largest number of image slots a builder can hold.
const MaxSlots = 3

// HarmonicBands is the largest harmonic exponent; brightness maps onto the
// five multipliers 1, 2, 4, 8, 16.
const HarmonicBands = 4

// Record holds the derived animation inputs of one grid cell. Records are
// values; a grid never hands out pointers into its record slice.
type Record struct {
	Index int
	X, Y  int

	Brightness [MaxSlots]float64

	BaseAngle float64 // slot 1 brightness * 2π
	ScaleSeed float64 // slot 2 brightness
	HueSeed   float64 // slot 3 brightness, also drives opacity

	RotHarmonic float64 // 2^round(b1*4)
	ModHarmonic float64 // 2^round(b2*4)

	Phase  float64   // random, [0, 2π)
	Jitter geom.Vec3 // random per axis, [0, 1)
	Culled bool
}

// HarmonicMultiplier quantises a brightness in [0,1] into a power-of-two
// frequency multiplier.
func HarmonicMultiplier(b float64) float64 {
	return math.Pow(2, math.Round(b*HarmonicBands))
}

func newRecord(index, x, y int, b [MaxSlots]float64, phase float64, jitter geom.Vec3, cull float64) Record {
	return Record{
		Index:       index,
		X:           x,
		Y:           y,
		Brightness:  b,
		BaseAngle:   b[0] * geom.TwoPi,
		ScaleSeed:   b[1],
		HueSeed:     b[2],
		RotHarmonic: HarmonicMultiplier(b[0]),
		ModHarmonic: HarmonicMultiplier(b[1]),
		Phase:       phase,
		Jitter:      jitter,
		Culled:      cull > 0 && b[0] >= cull,
	}
}

// Grid is one immutable generation of records.
type Grid struct {
	Width      int
	Height     int
	Generation int
	records    []Record
}

func (g *Grid) Len() int { return len(g.records) }

// At returns the record of cell i (row-major).
func (g *Grid) At(i int) Record { return g.records[i] }

// Cell returns the record at column x, row y.
func (g *Grid) Cell(x, y int) Record { return g.records[y*g.Width+x] }

// Each calls fn for every record in row-major order.
func (g *Grid) Each(fn func(Record)) {
	for i := range g.records {
		fn(g.records[i])
	}
}

// Visible counts the records that are not culled.
func (g *Grid) Visible() int {
	n := 0
	for i := range g.records {
		if !g.records[i].Culled {
			n++
		}
	}
	return n
}

// LogValue implements slog.LogValuer.
func (g *Grid) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", g.Generation),
		slog.Int("width", g.Width),
		slog.Int("height", g.Height),
		slog.Int("visible", g.Visible()),
	)
}
