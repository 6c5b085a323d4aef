package brightness

import (
	"image"
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Image is a decoded RGBA image: 4 bytes per pixel, rows of 4*Width bytes.
// The extractor only reads it.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// FromRGBA wraps an *image.RGBA without copying when its stride is tight.
func FromRGBA(img *image.RGBA) Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if img.Stride == 4*w && b.Min == (image.Point{}) {
		return Image{Width: w, Height: h, Pix: img.Pix[:4*w*h]}
	}
	pix := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*4*w:(y+1)*4*w], img.Pix[off:off+4*w])
	}
	return Image{Width: w, Height: h, Pix: pix}
}

func (img Image) validate() error {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pix) < 4*img.Width*img.Height {
		return &InvalidImageError{Width: img.Width, Height: img.Height, PixLen: len(img.Pix)}
	}
	return nil
}

// rgba exposes the buffer as an *image.RGBA for the library resamplers.
func (img Image) rgba() *image.RGBA {
	return &image.RGBA{
		Pix:    img.Pix,
		Stride: 4 * img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// luminance is the plain channel average (R+G+B)/(3*255).
func luminance(r, g, b uint8) float64 {
	return float64(int(r)+int(g)+int(b)) / (3 * 255)
}

// Field is an immutable W×H grid of brightness values in [0,1].
type Field struct {
	width  int
	height int
	values []float64
}

// NewField copies values (row-major, len == w*h) into a new field.
func NewField(w, h int, values []float64) (*Field, error) {
	if w <= 0 || h <= 0 || len(values) != w*h {
		return nil, &InvalidImageError{Width: w, Height: h, PixLen: 4 * len(values)}
	}
	v := make([]float64, len(values))
	copy(v, values)
	return &Field{width: w, height: h, values: v}, nil
}

func (f *Field) Width() int  { return f.width }
func (f *Field) Height() int { return f.height }
func (f *Field) Len() int    { return len(f.values) }

// At returns the brightness of cell (x, y).
func (f *Field) At(x, y int) float64 {
	return f.values[y*f.width+x]
}

// Index returns the brightness of the i-th cell in row-major order.
func (f *Field) Index(i int) float64 {
	return f.values[i]
}

// Values returns a copy of the row-major values.
func (f *Field) Values() []float64 {
	v := make([]float64, len(f.values))
	copy(v, f.values)
	return v
}

// SameSize reports whether f and o have identical dimensions.
func (f *Field) SameSize(o *Field) bool {
	return f.width == o.width && f.height == o.height
}

// Stats summarises a field.
type Stats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func (f *Field) Stats() Stats {
	mean, std := stat.MeanStdDev(f.values, nil)
	if len(f.values) < 2 {
		std = 0
	}
	return Stats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(f.values),
		Max:    floats.Max(f.values),
	}
}

// LogValue implements slog.LogValuer.
func (f *Field) LogValue() slog.Value {
	s := f.Stats()
	return slog.GroupValue(
		slog.Int("width", f.width),
		slog.Int("height", f.height),
		slog.Float64("mean", s.Mean),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
	)
}
