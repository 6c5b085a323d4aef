package viz

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/lumagrid/internal/binding"
	"github.com/san-kum/lumagrid/internal/geom"
)

// glyphs run from edge-on to face-on.
var glyphs = []rune{'·', '░', '▒', '▓', '█'}

type instance struct {
	pos     geom.Vec3
	rot     geom.Vec3
	scale   float64
	opacity float64
	hue     float64
	sat     float64
	light   float64
	colored bool
}

// Glyph is one rendered terminal cell.
type Glyph struct {
	Rune  rune
	Color string // hex, empty for blank cells
}

// TermSurface renders instances as coloured glyphs on a character grid, one
// terminal cell per grid cell.
type TermSurface struct {
	mu        sync.Mutex
	spacing   float64
	base      colorful.Color
	next      binding.Handle
	instances map[binding.Handle]*instance
}

func NewTermSurface(layout binding.Layout) *TermSurface {
	spacing := layout.Spacing
	if spacing <= 0 {
		spacing = 1
	}
	base, _ := colorful.Hex("#e0e0ff")
	return &TermSurface{
		spacing:   spacing,
		base:      base,
		instances: make(map[binding.Handle]*instance),
	}
}

func (s *TermSurface) CreateInstance() binding.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.next
	s.next++
	s.instances[h] = &instance{scale: 1, opacity: 1}
	return h
}

func (s *TermSurface) DestroyInstance(h binding.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, h)
}

func (s *TermSurface) SetTransform(h binding.Handle, pos, rot geom.Vec3, scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in, ok := s.instances[h]; ok {
		in.pos, in.rot, in.scale = pos, rot, scale
	}
}

func (s *TermSurface) SetOpacity(h binding.Handle, opacity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in, ok := s.instances[h]; ok {
		in.opacity = opacity
	}
}

func (s *TermSurface) SetColorHSL(h binding.Handle, hue, sat, light float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in, ok := s.instances[h]; ok {
		in.hue, in.sat, in.light = hue, sat, light
		in.colored = true
	}
}

func (s *TermSurface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}

// facing is how much of a unit card rotated by rot faces the viewer,
// weighted by its scale.
func facing(rot geom.Vec3, scale float64) float64 {
	f := math.Abs(math.Cos(rot.X)*math.Cos(rot.Y)) * scale
	return math.Max(0, math.Min(1, f))
}

func glyphFor(in *instance) rune {
	i := int(math.Round(facing(in.rot, in.scale) * float64(len(glyphs)-1)))
	return glyphs[i]
}

func (s *TermSurface) colorFor(in *instance) colorful.Color {
	op := math.Max(0, math.Min(1, in.opacity))
	if in.colored {
		return colorful.Hsl(in.hue*360, in.sat, in.light*op).Clamped()
	}
	h, c, l := s.base.Hcl()
	return colorful.Hcl(h, c, l*op).Clamped()
}

// Frame lays every instance out on a rows×cols grid. Grid coordinates are
// recovered from positions and the layout spacing.
func (s *TermSurface) Frame() [][]Glyph {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.instances) == 0 {
		return nil
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, in := range s.instances {
		minX = math.Min(minX, in.pos.X)
		maxX = math.Max(maxX, in.pos.X)
		minY = math.Min(minY, in.pos.Y)
		maxY = math.Max(maxY, in.pos.Y)
	}
	cols := int(math.Round((maxX-minX)/s.spacing)) + 1
	rows := int(math.Round((maxY-minY)/s.spacing)) + 1

	frame := make([][]Glyph, rows)
	for r := range frame {
		frame[r] = make([]Glyph, cols)
		for c := range frame[r] {
			frame[r][c] = Glyph{Rune: ' '}
		}
	}

	for _, in := range s.instances {
		c := int(math.Round((in.pos.X - minX) / s.spacing))
		r := int(math.Round((maxY - in.pos.Y) / s.spacing))
		frame[r][c] = Glyph{Rune: glyphFor(in), Color: s.colorFor(in).Hex()}
	}
	return frame
}

// Render draws the current frame with lipgloss colours.
func (s *TermSurface) Render() string {
	var b strings.Builder
	for _, row := range s.Frame() {
		for _, g := range row {
			if g.Color == "" {
				b.WriteRune(g.Rune)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render(string(g.Rune)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
