package config

import (
	"math"
	"sort"

	"github.com/san-kum/lumagrid/internal/binding"
)

var Presets = map[string]map[string]*Config{
	"constant_blend": {
		"trials2": {
			GridWidth: 80, Slots: 2, Strategy: "constant_blend", Sampling: "point", Axis: "y", FPS: 60,
			Layout: binding.Layout{Spacing: 1, Size: 0.6},
			Params: map[string]float64{"speed_scale": 0.1, "blend_rate": 0.001, "signed": 1},
		},
		"free_move": {
			GridWidth: 80, Slots: 2, Strategy: "constant_blend", Sampling: "point", Axis: "y", FPS: 60,
			Layout: binding.Layout{Spacing: 1.1, Size: 1.1, Depth: -100},
			Params: map[string]float64{"speed_scale": 0.1, "blend_rate": 0.001, "signed": 0},
		},
	},
	"triangle_lerp": {
		"harmony": {
			GridWidth: 50, Slots: 2, Strategy: "triangle_lerp", Sampling: "point", Axis: "y", FPS: 60,
			Layout: binding.Layout{Spacing: 1, Size: 0.8},
			Params: map[string]float64{"period_ms": 3000},
		},
	},
	"continuous_harmonic": {
		"ars": {
			GridWidth: 50, Slots: 2, Strategy: "continuous_harmonic", Sampling: "point", Axis: "y", FPS: 60,
			Layout: binding.Layout{Spacing: 1, Size: 0.707},
			Params: map[string]float64{"period_ms": 3000, "amplitude": 0.5},
		},
	},
	"tri_harmonic": {
		"ars3": {
			GridWidth: 50, Slots: 3, Strategy: "tri_harmonic", Sampling: "point", Axis: "y", FPS: 60,
			Layout: binding.Layout{Spacing: 1, Size: 0.9},
			Params: map[string]float64{
				"rotation_period_ms": 10000,
				"scale_period_ms":    15000,
				"color_period_ms":    20000,
				"amplitude":          0.5,
			},
		},
	},
	"phase_shifted_tri": {
		"ars4": {
			GridWidth: 50, Slots: 3, Strategy: "phase_shifted_tri", Sampling: "point", Axis: "y", FPS: 60,
			Layout: binding.Layout{Spacing: 1, Size: 0.6},
			Params: map[string]float64{
				"period_ms":          15000,
				"rotation_amplitude": math.Pi / 2,
				"scale_amplitude":    0.5,
				"opacity_amplitude":  0.5,
			},
		},
	},
	"single_spin": {
		"root": {
			GridWidth: 100, Slots: 1, Strategy: "single_spin", Sampling: "point", Axis: "y", FPS: 60,
			CullThreshold: 0.9,
			Layout:        binding.Layout{Spacing: 1, Size: 0.5},
			Params:        map[string]float64{"spin": 11},
		},
	},
	"resonant_harmonic": {
		"ars5": {
			GridWidth: 80, Slots: 2, Strategy: "resonant_harmonic", Sampling: "point", Axis: "y", FPS: 60,
			Layout: binding.Layout{Spacing: 1, Size: 0.777},
			Params: map[string]float64{"base_period_ms": 30000},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(strategy, preset string) *Config {
	strategyPresets, ok := Presets[strategy]
	if !ok {
		return nil
	}
	cfg, ok := strategyPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// FindPreset looks a preset up by name alone.
func FindPreset(preset string) *Config {
	for strategy := range Presets {
		if cfg := GetPreset(strategy, preset); cfg != nil {
			return cfg
		}
	}
	return nil
}

func ListPresets(strategy string) []string {
	strategyPresets, ok := Presets[strategy]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(strategyPresets))
	for name := range strategyPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
