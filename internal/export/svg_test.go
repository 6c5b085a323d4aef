package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/lumagrid/internal/viz"
)

func TestFrameToSVG(t *testing.T) {
	frame := [][]viz.Glyph{
		{{Rune: '█', Color: "#ff0000"}, {Rune: ' '}},
		{{Rune: ' '}, {Rune: '░', Color: "#00ff00"}},
	}
	svg := FrameToSVG(frame, 10)

	if !strings.Contains(svg, `width="20" height="20"`) {
		t.Error("expected a 20x20 canvas")
	}
	if got := strings.Count(svg, `fill="#`); got != 3 {
		t.Errorf("expected background plus 2 squares, got %d fills", got)
	}
	if !strings.Contains(svg, `<rect x="0.00" y="0.00" width="10.00" height="10.00" fill="#ff0000"/>`) {
		t.Error("full block should fill its whole cell")
	}
	if !strings.Contains(svg, `fill="#00ff00"`) {
		t.Error("missing light glyph")
	}
}

func TestFrameToSVGEmpty(t *testing.T) {
	if FrameToSVG(nil, 10) != "" {
		t.Error("empty frame should produce nothing")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("a single point is not a line")
	}
	svg := SeriesToSVG([]float64{0, 1, 0}, 100, 50, "#00ffff")
	if !strings.Contains(svg, `stroke="#00ffff"`) {
		t.Error("stroke colour not applied")
	}
	if got := strings.Count(svg, " L"); got != 2 {
		t.Errorf("expected 2 line segments, got %d", got)
	}
	if !strings.Contains(svg, "M0.0,") || !strings.Contains(svg, "L100.0,") {
		t.Errorf("series should span the full width: %s", svg)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	if err := WriteFile(path, ""); err == nil {
		t.Error("expected error for empty svg")
	}
	if err := WriteFile(path, "<svg/>"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("got %q", data)
	}
}
