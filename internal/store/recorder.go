package store

import (
	"fmt"
	"slices"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lumagrid/internal/modulation"
)

// Channels lists the recorded sample channels in CSV column order.
var Channels = []string{"rot_x", "rot_y", "rot_z", "scale", "opacity", "hue"}

// Row is one sample of one cell.
type Row struct {
	Frame     int     `csv:"frame" json:"frame"`
	ElapsedMs float64 `csv:"elapsed_ms" json:"elapsed_ms"`
	Cell      int     `csv:"cell" json:"cell"`
	RotX      float64 `csv:"rot_x" json:"rot_x"`
	RotY      float64 `csv:"rot_y" json:"rot_y"`
	RotZ      float64 `csv:"rot_z" json:"rot_z"`
	Scale     float64 `csv:"scale" json:"scale"`
	Opacity   float64 `csv:"opacity" json:"opacity"`
	Hue       float64 `csv:"hue" json:"hue"`
}

// Value returns the named channel of r.
func (r Row) Value(channel string) (float64, error) {
	switch channel {
	case "rot_x":
		return r.RotX, nil
	case "rot_y":
		return r.RotY, nil
	case "rot_z":
		return r.RotZ, nil
	case "scale":
		return r.Scale, nil
	case "opacity":
		return r.Opacity, nil
	case "hue":
		return r.Hue, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
}

// Recorder collects samples of selected cells. It satisfies engine.Observer.
type Recorder struct {
	mu       sync.Mutex
	cells    map[int]bool
	rows     []Row
	frame    int
	lastCell int
}

// NewRecorder records the given cells, or every cell when none are given.
func NewRecorder(cells ...int) *Recorder {
	r := &Recorder{lastCell: -1}
	if len(cells) > 0 {
		r.cells = make(map[int]bool, len(cells))
		for _, c := range cells {
			r.cells[c] = true
		}
	}
	return r
}

func (r *Recorder) OnSample(elapsedMs float64, cell int, s modulation.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Cells arrive in ascending order within a tick.
	if cell <= r.lastCell {
		r.frame++
	}
	r.lastCell = cell

	if r.cells != nil && !r.cells[cell] {
		return
	}
	r.rows = append(r.rows, Row{
		Frame:     r.frame,
		ElapsedMs: elapsedMs,
		Cell:      cell,
		RotX:      s.Rotation.X,
		RotY:      s.Rotation.Y,
		RotZ:      s.Rotation.Z,
		Scale:     s.Scale,
		Opacity:   s.Opacity,
		Hue:       s.Hue,
	})
}

// Rows returns a copy of everything recorded so far.
func (r *Recorder) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.rows)
}

// Cells returns the recorded cell indices in ascending order.
func (r *Recorder) Cells() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int]bool{}
	var out []int
	for _, row := range r.rows {
		if !seen[row.Cell] {
			seen[row.Cell] = true
			out = append(out, row.Cell)
		}
	}
	slices.Sort(out)
	return out
}

// Trace filters rows down to one cell.
func Trace(rows []Row, cell int) []Row {
	var out []Row
	for _, row := range rows {
		if row.Cell == cell {
			out = append(out, row)
		}
	}
	return out
}

// Series extracts one channel from rows.
func Series(rows []Row, channel string) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		v, err := row.Value(channel)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type ChannelStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes statistics for every channel over rows.
func Summarize(rows []Row) map[string]ChannelStats {
	out := make(map[string]ChannelStats, len(Channels))
	if len(rows) == 0 {
		return out
	}
	for _, ch := range Channels {
		xs, _ := Series(rows, ch)
		mean, std := stat.MeanStdDev(xs, nil)
		if len(xs) < 2 {
			std = 0
		}
		out[ch] = ChannelStats{
			Mean:   mean,
			StdDev: std,
			Min:    floats.Min(xs),
			Max:    floats.Max(xs),
		}
	}
	return out
}

// Metrics flattens Summarize into "channel_stat" keys for run metadata.
func Metrics(rows []Row) map[string]float64 {
	m := make(map[string]float64)
	for ch, s := range Summarize(rows) {
		m[ch+"_mean"] = s.Mean
		m[ch+"_std"] = s.StdDev
		m[ch+"_min"] = s.Min
		m[ch+"_max"] = s.Max
	}
	return m
}
