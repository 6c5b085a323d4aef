package brightness

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage indicates an image with a zero dimension or a truncated pixel buffer.
	ErrInvalidImage = errors.New("brightness: invalid image")

	// ErrInvalidTarget indicates a non-positive target width.
	ErrInvalidTarget = errors.New("brightness: target width must be positive")

	// ErrUnknownSampling indicates a sampling mode name that is not registered.
	ErrUnknownSampling = errors.New("brightness: unknown sampling mode")
)

// InvalidImageError reports why an image was rejected.
type InvalidImageError struct {
	Width, Height int
	PixLen        int
}

func (e *InvalidImageError) Error() string {
	if e.Width <= 0 || e.Height <= 0 {
		return fmt.Sprintf("%v: zero dimension %dx%d", ErrInvalidImage, e.Width, e.Height)
	}
	return fmt.Sprintf("%v: %dx%d needs %d bytes, got %d", ErrInvalidImage, e.Width, e.Height, 4*e.Width*e.Height, e.PixLen)
}

func (e *InvalidImageError) Unwrap() error {
	return ErrInvalidImage
}
