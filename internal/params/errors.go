package params

import (
	"errors"
	"fmt"
)

var (
	// ErrConsistency indicates populated slots whose fields disagree on size.
	ErrConsistency = errors.New("params: slot fields disagree on size")

	// ErrSlotRange indicates a slot index outside the configured slot count.
	ErrSlotRange = errors.New("params: slot index out of range")

	// ErrNilField indicates a nil field submitted to a slot.
	ErrNilField = errors.New("params: nil field")

	// ErrSlotCount indicates a slot count other than 1, 2 or 3.
	ErrSlotCount = errors.New("params: slot count must be 1, 2 or 3")
)

// ConsistencyError reports the slot whose field did not match the others.
// All slots are cleared when it is returned.
type ConsistencyError struct {
	Slot          int
	Width, Height int
	WantW, WantH  int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%v: slot %d is %dx%d, other slots are %dx%d",
		ErrConsistency, e.Slot, e.Width, e.Height, e.WantW, e.WantH)
}

func (e *ConsistencyError) Unwrap() error {
	return ErrConsistency
}
