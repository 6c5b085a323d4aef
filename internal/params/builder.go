// Package params combines per-slot brightness fields into generations of
// per-cell animation records.
//
// A [Builder] buffers one field per configured slot and rebuilds its [Grid]
// only when every slot is populated and all fields agree on size:
//
//	b, _ := params.NewBuilder(params.Options{Slots: 2, Seed: 1})
//	b.UpdateSlot(0, field1) // buffered, no grid yet
//	b.UpdateSlot(1, field2) // rebuilds generation 1
//
// Builders are not safe for concurrent use; the engine serialises access.
package params

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/lumagrid/internal/brightness"
	"github.com/san-kum/lumagrid/internal/geom"
)

type Options struct {
	Slots         int
	CullThreshold float64
	Seed          int64
}

type Builder struct {
	opts  Options
	slots []*brightness.Field
	grid  *Grid
	gen   int
	rng   *rand.Rand

	// OnRebuild runs synchronously after a new grid is installed.
	OnRebuild func(*Grid)
}

func NewBuilder(opts Options) (*Builder, error) {
	if opts.Slots < 1 || opts.Slots > MaxSlots {
		return nil, fmt.Errorf("%w: got %d", ErrSlotCount, opts.Slots)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Builder{
		opts:  opts,
		slots: make([]*brightness.Field, opts.Slots),
		rng:   rand.New(rand.NewSource(seed)),
	}, nil
}

func (b *Builder) SlotCount() int { return len(b.slots) }

// CurrentGrid returns the active grid, or nil before the first rebuild.
func (b *Builder) CurrentGrid() *Grid { return b.grid }

// Generation counts successful rebuilds.
func (b *Builder) Generation() int { return b.gen }

// Populated reports which slots currently hold a field.
func (b *Builder) Populated() []bool {
	p := make([]bool, len(b.slots))
	for i, f := range b.slots {
		p[i] = f != nil
	}
	return p
}

// UpdateSlot replaces the field in slot and rebuilds when every slot is
// populated. A size mismatch between populated slots clears all slots and
// returns a *ConsistencyError; the current grid is left untouched.
func (b *Builder) UpdateSlot(slot int, field *brightness.Field) (bool, error) {
	if slot < 0 || slot >= len(b.slots) {
		return false, fmt.Errorf("%w: %d (slots: %d)", ErrSlotRange, slot, len(b.slots))
	}
	if field == nil {
		return false, ErrNilField
	}
	b.slots[slot] = field

	if err := b.checkConsistency(slot); err != nil {
		b.Clear()
		return false, err
	}

	for _, f := range b.slots {
		if f == nil {
			return false, nil
		}
	}

	b.rebuild()
	return true, nil
}

// Clear drops every buffered field. The current grid stays active.
func (b *Builder) Clear() {
	for i := range b.slots {
		b.slots[i] = nil
	}
}

func (b *Builder) checkConsistency(slot int) error {
	f := b.slots[slot]
	for i, o := range b.slots {
		if i == slot || o == nil {
			continue
		}
		if !f.SameSize(o) {
			return &ConsistencyError{
				Slot:   slot,
				Width:  f.Width(),
				Height: f.Height(),
				WantW:  o.Width(),
				WantH:  o.Height(),
			}
		}
	}
	return nil
}

func (b *Builder) rebuild() {
	w, h := b.slots[0].Width(), b.slots[0].Height()
	records := make([]Record, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			var br [MaxSlots]float64
			for s, f := range b.slots {
				br[s] = f.Index(i)
			}
			phase := b.rng.Float64() * geom.TwoPi
			jitter := geom.Vec3{X: b.rng.Float64(), Y: b.rng.Float64(), Z: b.rng.Float64()}
			records[i] = newRecord(i, x, y, br, phase, jitter, b.opts.CullThreshold)
		}
	}

	b.gen++
	b.grid = &Grid{Width: w, Height: h, Generation: b.gen, records: records}

	if b.OnRebuild != nil {
		b.OnRebuild(b.grid)
	}
}
