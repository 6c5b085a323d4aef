package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/lumagrid/internal/viz"
)

// glyphFill maps a rendered glyph back to the fraction of its square that
// is drawn.
var glyphFill = map[rune]float64{
	'·': 0.15,
	'░': 0.35,
	'▒': 0.55,
	'▓': 0.8,
	'█': 1,
}

// FrameToSVG draws a terminal frame as one coloured square per glyph.
// Squares shrink around their centre as the glyph thins out.
func FrameToSVG(frame [][]viz.Glyph, cell float64) string {
	if len(frame) == 0 || len(frame[0]) == 0 {
		return ""
	}
	if cell <= 0 {
		cell = 8
	}

	width := float64(len(frame[0])) * cell
	height := float64(len(frame)) * cell

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for row, glyphs := range frame {
		for col, g := range glyphs {
			fill, ok := glyphFill[g.Rune]
			if !ok || g.Color == "" {
				continue
			}
			side := cell * math.Sqrt(fill)
			x := float64(col)*cell + (cell-side)/2
			y := float64(row)*cell + (cell-side)/2
			sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>
`, x, y, side, side, g.Color))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their index as a single polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func WriteFile(path, svg string) error {
	if svg == "" {
		return fmt.Errorf("export: nothing to draw")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
