package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/lumagrid/internal/brightness"
)

var shades = []rune{' ', '░', '▒', '▓', '█'}

// FieldPreview renders a brightness field as shaded blocks, one per cell.
// With color set each block is also tinted by its brightness.
func FieldPreview(f *brightness.Field, color bool) string {
	var b strings.Builder
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			v := math.Max(0, math.Min(1, f.At(x, y)))
			r := string(shades[int(math.Round(v*float64(len(shades)-1)))])
			if color {
				c := colorful.Hsl(0, 0, v)
				r = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(r)
			}
			b.WriteString(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
