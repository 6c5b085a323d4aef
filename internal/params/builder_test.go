package params

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lumagrid/internal/brightness"
)

func uniform(t *testing.T, w, h int, v float64) *brightness.Field {
	t.Helper()
	values := make([]float64, w*h)
	for i := range values {
		values[i] = v
	}
	f, err := brightness.NewField(w, h, values)
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	return f
}

func TestNewBuilderSlotCount(t *testing.T) {
	for _, n := range []int{0, 4, -1} {
		if _, err := NewBuilder(Options{Slots: n}); !errors.Is(err, ErrSlotCount) {
			t.Errorf("slots=%d: expected ErrSlotCount, got %v", n, err)
		}
	}
	for _, n := range []int{1, 2, 3} {
		b, err := NewBuilder(Options{Slots: n, Seed: 1})
		if err != nil {
			t.Fatalf("slots=%d: %v", n, err)
		}
		if b.SlotCount() != n {
			t.Errorf("expected %d slots, got %d", n, b.SlotCount())
		}
	}
}

func TestRebuildWaitsForAllSlots(t *testing.T) {
	b, _ := NewBuilder(Options{Slots: 2, Seed: 1})
	rebuilds := 0
	b.OnRebuild = func(*Grid) { rebuilds++ }

	for i := 0; i < 2; i++ {
		rebuilt, err := b.UpdateSlot(0, uniform(t, 3, 2, 0.5))
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if rebuilt {
			t.Error("rebuild with slot 1 missing")
		}
	}

	if rebuilds != 0 {
		t.Errorf("expected 0 rebuilds, got %d", rebuilds)
	}
	if b.CurrentGrid() != nil {
		t.Error("expected no grid")
	}
	if b.Generation() != 0 {
		t.Errorf("expected generation 0, got %d", b.Generation())
	}

	rebuilt, err := b.UpdateSlot(1, uniform(t, 3, 2, 0.25))
	if err != nil || !rebuilt {
		t.Fatalf("expected rebuild, got %v %v", rebuilt, err)
	}
	if rebuilds != 1 {
		t.Errorf("expected 1 rebuild, got %d", rebuilds)
	}
}

func TestRebuildOrderIndependent(t *testing.T) {
	b, _ := NewBuilder(Options{Slots: 3, Seed: 1})

	order := []int{2, 0, 1}
	for i, s := range order {
		rebuilt, err := b.UpdateSlot(s, uniform(t, 2, 2, float64(s)/2))
		if err != nil {
			t.Fatal(err)
		}
		if rebuilt != (i == len(order)-1) {
			t.Errorf("step %d: rebuilt=%v", i, rebuilt)
		}
	}
}

func TestGridRecords(t *testing.T) {
	b, _ := NewBuilder(Options{Slots: 3, Seed: 7})
	b.UpdateSlot(0, uniform(t, 4, 3, 0.5))
	b.UpdateSlot(1, uniform(t, 4, 3, 1.0))
	b.UpdateSlot(2, uniform(t, 4, 3, 0.25))

	g := b.CurrentGrid()
	if g == nil {
		t.Fatal("expected grid")
	}
	if g.Len() != 12 || g.Width != 4 || g.Height != 3 {
		t.Fatalf("expected 4x3 grid with 12 records, got %dx%d/%d", g.Width, g.Height, g.Len())
	}

	r := g.Cell(3, 2)
	if r.Index != 11 || r.X != 3 || r.Y != 2 {
		t.Errorf("bad cell coordinates: %+v", r)
	}
	if math.Abs(r.BaseAngle-math.Pi) > 1e-12 {
		t.Errorf("expected base angle pi, got %f", r.BaseAngle)
	}
	if r.ScaleSeed != 1.0 || r.HueSeed != 0.25 {
		t.Errorf("bad seeds: %+v", r)
	}
	if r.RotHarmonic != 4 || r.ModHarmonic != 16 {
		t.Errorf("expected harmonics 4/16, got %v/%v", r.RotHarmonic, r.ModHarmonic)
	}
	g.Each(func(r Record) {
		if r.Phase < 0 || r.Phase >= 2*math.Pi {
			t.Errorf("phase out of range: %f", r.Phase)
		}
	})
}

func TestHarmonicMultiplier(t *testing.T) {
	tests := []struct {
		b    float64
		want float64
	}{
		{0, 1},
		{0.1, 1},
		{0.125, 2},
		{0.25, 2},
		{0.5, 4},
		{0.75, 8},
		{1.0, 16},
	}

	for _, tt := range tests {
		if got := HarmonicMultiplier(tt.b); got != tt.want {
			t.Errorf("HarmonicMultiplier(%v) = %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestConsistencyErrorClearsSlots(t *testing.T) {
	b, _ := NewBuilder(Options{Slots: 2, Seed: 1})
	b.UpdateSlot(0, uniform(t, 2, 2, 0.1))
	b.UpdateSlot(1, uniform(t, 2, 2, 0.2))
	first := b.CurrentGrid()

	b.UpdateSlot(0, uniform(t, 2, 2, 0.3))
	if b.Generation() != 2 {
		t.Fatalf("expected generation 2, got %d", b.Generation())
	}
	current := b.CurrentGrid()
	if current == first {
		t.Fatal("expected new grid")
	}

	_, err := b.UpdateSlot(1, uniform(t, 3, 2, 0.2))
	var ce *ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConsistencyError, got %v", err)
	}
	if !errors.Is(err, ErrConsistency) {
		t.Error("expected errors.Is ErrConsistency")
	}
	if ce.Slot != 1 || ce.Width != 3 || ce.WantW != 2 {
		t.Errorf("unexpected error fields: %+v", ce)
	}

	for i, p := range b.Populated() {
		if p {
			t.Errorf("slot %d still populated", i)
		}
	}
	if b.CurrentGrid() != current {
		t.Error("grid changed after consistency error")
	}

	// Resubmitting only one slot must not rebuild.
	rebuilt, _ := b.UpdateSlot(0, uniform(t, 3, 2, 0.2))
	if rebuilt {
		t.Error("rebuild after partial resubmit")
	}
}

func TestUpdateSlotRejectsBadInput(t *testing.T) {
	b, _ := NewBuilder(Options{Slots: 1, Seed: 1})

	if _, err := b.UpdateSlot(1, uniform(t, 1, 1, 0)); !errors.Is(err, ErrSlotRange) {
		t.Errorf("expected ErrSlotRange, got %v", err)
	}
	if _, err := b.UpdateSlot(-1, uniform(t, 1, 1, 0)); !errors.Is(err, ErrSlotRange) {
		t.Errorf("expected ErrSlotRange, got %v", err)
	}
	if _, err := b.UpdateSlot(0, nil); !errors.Is(err, ErrNilField) {
		t.Errorf("expected ErrNilField, got %v", err)
	}
}

func TestPhaseFixedWithinGeneration(t *testing.T) {
	b1, _ := NewBuilder(Options{Slots: 1, Seed: 42})
	b2, _ := NewBuilder(Options{Slots: 1, Seed: 42})
	b1.UpdateSlot(0, uniform(t, 5, 5, 0.5))
	b2.UpdateSlot(0, uniform(t, 5, 5, 0.5))

	g1, g2 := b1.CurrentGrid(), b2.CurrentGrid()
	for i := 0; i < g1.Len(); i++ {
		if g1.At(i).Phase != g2.At(i).Phase {
			t.Fatalf("cell %d: same seed produced different phases", i)
		}
	}

	b1.UpdateSlot(0, uniform(t, 5, 5, 0.5))
	g3 := b1.CurrentGrid()
	same := 0
	for i := 0; i < g1.Len(); i++ {
		if g1.At(i).Phase == g3.At(i).Phase {
			same++
		}
	}
	if same == g1.Len() {
		t.Error("expected fresh phases on rebuild")
	}
}

func TestCullThreshold(t *testing.T) {
	b, _ := NewBuilder(Options{Slots: 1, Seed: 1, CullThreshold: 0.9})
	f, _ := brightness.NewField(3, 1, []float64{0.2, 0.9, 1.0})
	b.UpdateSlot(0, f)

	g := b.CurrentGrid()
	if g.At(0).Culled || !g.At(1).Culled || !g.At(2).Culled {
		t.Errorf("unexpected culling: %v %v %v", g.At(0).Culled, g.At(1).Culled, g.At(2).Culled)
	}
	if g.Visible() != 1 {
		t.Errorf("expected 1 visible, got %d", g.Visible())
	}
	if g.Len() != 3 {
		t.Errorf("culling must keep every record, got %d", g.Len())
	}
}
