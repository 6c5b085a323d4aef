package binding

import (
	"sort"
	"sync"

	"github.com/san-kum/lumagrid/internal/geom"
)

// Instance is the last state pushed to one instance of a MemorySurface.
type Instance struct {
	Position geom.Vec3
	Rotation geom.Vec3
	Scale    float64
	Opacity  float64
	Hue      float64
	Sat      float64
	Light    float64
	Updates  int
}

// MemorySurface keeps instances in a map. It backs headless runs and tests.
type MemorySurface struct {
	mu        sync.Mutex
	next      Handle
	instances map[Handle]*Instance
	created   int
	destroyed int
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{instances: make(map[Handle]*Instance)}
}

func (m *MemorySurface) CreateInstance() Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.next
	m.next++
	m.instances[h] = &Instance{Scale: 1, Opacity: 1}
	m.created++
	return h
}

func (m *MemorySurface) DestroyInstance(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.instances[h]; ok {
		delete(m.instances, h)
		m.destroyed++
	}
}

func (m *MemorySurface) SetTransform(h Handle, pos, rot geom.Vec3, scale float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in, ok := m.instances[h]; ok {
		in.Position = pos
		in.Rotation = rot
		in.Scale = scale
		in.Updates++
	}
}

func (m *MemorySurface) SetOpacity(h Handle, opacity float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in, ok := m.instances[h]; ok {
		in.Opacity = opacity
	}
}

func (m *MemorySurface) SetColorHSL(h Handle, hue, sat, light float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in, ok := m.instances[h]; ok {
		in.Hue, in.Sat, in.Light = hue, sat, light
	}
}

// Get returns a copy of the instance state.
func (m *MemorySurface) Get(h Handle) (Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.instances[h]
	if !ok {
		return Instance{}, false
	}
	return *in, true
}

// Handles returns the live handles in ascending order.
func (m *MemorySurface) Handles() []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Handle, 0, len(m.instances))
	for h := range m.instances {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *MemorySurface) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.instances)
}

// Counts returns the total number of created and destroyed instances.
func (m *MemorySurface) Counts() (created, destroyed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created, m.destroyed
}
