// Package binding maps grid cells onto renderable instances owned by a
// Surface and pushes per-tick transform samples to them.
package binding

import (
	"github.com/san-kum/lumagrid/internal/geom"
	"github.com/san-kum/lumagrid/internal/modulation"
	"github.com/san-kum/lumagrid/internal/params"
)

// Handle identifies an instance on a Surface.
type Handle int

// NoHandle marks a cell without an instance.
const NoHandle Handle = -1

// Surface is the rendering backend.
type Surface interface {
	CreateInstance() Handle
	DestroyInstance(h Handle)
	SetTransform(h Handle, pos, rot geom.Vec3, scale float64)
	SetOpacity(h Handle, opacity float64)
	SetColorHSL(h Handle, hue, sat, light float64)
}

// Layout places cells in world space. Spacing is the distance between cell
// centres and Size the edge length of each instance at scale 1.
type Layout struct {
	Spacing float64 `yaml:"spacing"`
	Size    float64 `yaml:"size,omitempty"`
	Depth   float64 `yaml:"depth"`
}

func DefaultLayout() Layout {
	return Layout{Spacing: 1}
}

// InstanceScale is the surface scale of a sample scale. A zero Size means 1.
func (l Layout) InstanceScale(scale float64) float64 {
	if l.Size <= 0 {
		return scale
	}
	return scale * l.Size
}

// Position places cell (x, y) of a w×h grid centred on the origin, with y up.
func (l Layout) Position(x, y, w, h int) geom.Vec3 {
	return geom.Vec3{
		X: (float64(x) - float64(w)/2) * l.Spacing,
		Y: (-float64(y) + float64(h)/2) * l.Spacing,
		Z: l.Depth,
	}
}

type Binding struct {
	surface   Surface
	layout    Layout
	handles   []Handle
	positions []geom.Vec3
}

func New(surface Surface, layout Layout) *Binding {
	return &Binding{surface: surface, layout: layout}
}

func (b *Binding) Layout() Layout { return b.layout }

// Bind destroys every instance of the previous grid and creates one per
// visible cell of g.
func (b *Binding) Bind(g *params.Grid) []Handle {
	b.Release()
	if g == nil {
		return nil
	}

	n := g.Len()
	b.handles = make([]Handle, n)
	b.positions = make([]geom.Vec3, n)
	for i := 0; i < n; i++ {
		rec := g.At(i)
		b.positions[i] = b.layout.Position(rec.X, rec.Y, g.Width, g.Height)
		if rec.Culled {
			b.handles[i] = NoHandle
			continue
		}
		b.handles[i] = b.surface.CreateInstance()
	}

	out := make([]Handle, n)
	copy(out, b.handles)
	return out
}

// Apply pushes s to the instance of cell. Culled or unknown cells are ignored.
func (b *Binding) Apply(cell int, s modulation.Sample) {
	if cell < 0 || cell >= len(b.handles) {
		return
	}
	h := b.handles[cell]
	if h == NoHandle {
		return
	}
	b.surface.SetTransform(h, b.positions[cell], s.Rotation, b.layout.InstanceScale(s.Scale))
	if s.HasOpacity {
		b.surface.SetOpacity(h, s.Opacity)
	}
	if s.HasHue {
		b.surface.SetColorHSL(h, s.Hue, 1, 0.5)
	}
}

func (b *Binding) Handle(cell int) Handle {
	if cell < 0 || cell >= len(b.handles) {
		return NoHandle
	}
	return b.handles[cell]
}

// Live reports the number of instances currently created.
func (b *Binding) Live() int {
	n := 0
	for _, h := range b.handles {
		if h != NoHandle {
			n++
		}
	}
	return n
}

func (b *Binding) Release() {
	for _, h := range b.handles {
		if h != NoHandle {
			b.surface.DestroyInstance(h)
		}
	}
	b.handles = nil
	b.positions = nil
}
