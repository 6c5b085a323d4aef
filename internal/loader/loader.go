// Package loader decodes image files into brightness.Image buffers, either
// synchronously or as single-fire futures.
package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/san-kum/lumagrid/internal/brightness"
)

var ErrDecode = errors.New("loader: cannot decode image")

// Result is the single value delivered by Load.
type Result struct {
	Slot   int
	Path   string
	Format string
	Image  brightness.Image
	Err    error
}

// Decode reads any registered format and converts it to tightly packed RGBA.
func Decode(r io.Reader) (brightness.Image, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return brightness.Image{}, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return toImage(src), format, nil
}

func toImage(src image.Image) brightness.Image {
	if rgba, ok := src.(*image.RGBA); ok {
		return brightness.FromRGBA(rgba)
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return brightness.FromRGBA(dst)
}

func LoadFile(path string) (brightness.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return brightness.Image{}, err
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return brightness.Image{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Load decodes path in a new goroutine. The returned channel yields exactly
// one Result and is then closed. If ctx ends first the Result carries
// ctx.Err().
func Load(ctx context.Context, slot int, path string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		res := Result{Slot: slot, Path: path}

		if err := ctx.Err(); err != nil {
			res.Err = err
			out <- res
			return
		}

		done := make(chan Result, 1)
		go func() {
			r := res
			f, err := os.Open(path)
			if err != nil {
				r.Err = err
				done <- r
				return
			}
			defer f.Close()
			r.Image, r.Format, r.Err = Decode(f)
			if r.Err != nil {
				r.Err = fmt.Errorf("%s: %w", path, r.Err)
			}
			done <- r
		}()

		select {
		case r := <-done:
			out <- r
		case <-ctx.Done():
			res.Err = ctx.Err()
			out <- res
		}
	}()
	return out
}

// LoadAll starts one future per path, slot i for paths[i].
func LoadAll(ctx context.Context, paths []string) []<-chan Result {
	futures := make([]<-chan Result, len(paths))
	for i, p := range paths {
		futures[i] = Load(ctx, i, p)
	}
	return futures
}
