// Package brightness turns decoded images into downsampled brightness fields.
//
// The default extraction point-samples one source pixel per target cell,
// which keeps hard edges of the source intact. The library resamplers
// ([Bilinear], [CatmullRom]) filter the whole image first and are opt-in:
//
//	field, err := brightness.Extract(img, 80)
//	field, err := brightness.Sampler{Mode: brightness.Bilinear}.Extract(img, 80)
package brightness

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
)

type Sampling int

const (
	Point Sampling = iota
	Bilinear
	CatmullRom
)

var samplingNames = map[Sampling]string{
	Point:      "point",
	Bilinear:   "bilinear",
	CatmullRom: "catmullrom",
}

func (s Sampling) String() string {
	if n, ok := samplingNames[s]; ok {
		return n
	}
	return fmt.Sprintf("sampling(%d)", int(s))
}

// ParseSampling maps a config name to a Sampling. The empty string is Point.
func ParseSampling(name string) (Sampling, error) {
	if name == "" {
		return Point, nil
	}
	for s, n := range samplingNames {
		if n == name {
			return s, nil
		}
	}
	return Point, fmt.Errorf("%w: %q", ErrUnknownSampling, name)
}

// TargetHeight preserves the aspect ratio of a w×h image scaled to targetWidth.
func TargetHeight(w, h, targetWidth int) int {
	th := int(math.Round(float64(h) * float64(targetWidth) / float64(w)))
	if th < 1 {
		th = 1
	}
	return th
}

// Sampler extracts fields with a fixed sampling mode.
type Sampler struct {
	Mode Sampling
}

// Extract downsamples img to targetWidth columns with point sampling.
func Extract(img Image, targetWidth int) (*Field, error) {
	return Sampler{Mode: Point}.Extract(img, targetWidth)
}

func (s Sampler) Extract(img Image, targetWidth int) (*Field, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	if targetWidth <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTarget, targetWidth)
	}
	tw := targetWidth
	th := TargetHeight(img.Width, img.Height, tw)

	switch s.Mode {
	case Point:
		return pointSample(img, tw, th), nil
	case Bilinear:
		return fromRGBA(transform.Resize(img.rgba(), tw, th, transform.Linear)), nil
	case CatmullRom:
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		src := img.rgba()
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		return fromRGBA(dst), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownSampling, s.Mode)
	}
}

func pointSample(img Image, tw, th int) *Field {
	values := make([]float64, tw*th)
	sx := float64(img.Width) / float64(tw)
	sy := float64(img.Height) / float64(th)
	for y := 0; y < th; y++ {
		py := clampIndex(int((float64(y)+0.5)*sy), img.Height)
		for x := 0; x < tw; x++ {
			px := clampIndex(int((float64(x)+0.5)*sx), img.Width)
			i := 4 * (py*img.Width + px)
			values[y*tw+x] = luminance(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		}
	}
	return &Field{width: tw, height: th, values: values}
}

func fromRGBA(dst *image.RGBA) *Field {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	values := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			values[y*w+x] = luminance(dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2])
		}
	}
	return &Field{width: w, height: h, values: values}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
