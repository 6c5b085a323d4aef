package modulation

import (
	"fmt"
	"sort"
)

type Registry struct {
	strategies map[string]func() Strategy
}

func NewRegistry() *Registry {
	r := &Registry{
		strategies: make(map[string]func() Strategy),
	}

	r.Register("constant_blend", func() Strategy { return NewConstantBlend() })
	r.Register("triangle_lerp", func() Strategy { return NewTriangleLerp() })
	r.Register("continuous_harmonic", func() Strategy { return NewContinuousHarmonic() })
	r.Register("tri_harmonic", func() Strategy { return NewTriHarmonic() })
	r.Register("phase_shifted_tri", func() Strategy { return NewPhaseShiftedTri() })
	r.Register("resonant_harmonic", func() Strategy { return NewResonantHarmonic() })
	r.Register("single_spin", func() Strategy { return NewSingleSpin() })

	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, fn func() Strategy) {
	r.strategies[name] = fn
}

// Get returns a fresh strategy with default parameters.
func (r *Registry) Get(name string) (Strategy, error) {
	fn, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	return fn(), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Configure applies every entry of p through SetParam, in name order so that
// the first failing parameter is reported deterministically.
func Configure(s Strategy, p map[string]float64) error {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.SetParam(name, p[name]); err != nil {
			return err
		}
	}
	return nil
}
