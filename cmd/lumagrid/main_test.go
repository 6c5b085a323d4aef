package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/lumagrid/internal/brightness"
	"github.com/san-kum/lumagrid/internal/params"
)

func grid(t *testing.T, w, h int, values []float64, cull float64) *params.Grid {
	t.Helper()
	b, err := params.NewBuilder(params.Options{Slots: 1, CullThreshold: cull, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	f, err := brightness.NewField(w, h, values)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.UpdateSlot(0, f); err != nil {
		t.Fatal(err)
	}
	return b.CurrentGrid()
}

func TestDefaultCell(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
		ok     bool
	}{
		{"centre visible", []float64{0, 0, 0, 0, 0, 0, 0, 0, 0}, 4, true},
		{"centre culled", []float64{1, 1, 0.2, 0, 1, 0, 0, 0, 0}, 2, true},
		{"all culled", []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}, 0, false},
	}
	for _, tt := range tests {
		got, ok := defaultCell(grid(t, 3, 3, tt.values, 0.9))
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: got (%d, %v), want (%d, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	images, preset, configFile, paramFlags = nil, "", "", nil
	cmd := &cobra.Command{Use: "run"}
	addEngineFlags(cmd)
	return cmd
}

func TestBuildConfigLayersFileOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("grid_width: 32\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand(t)
	for flag, v := range map[string]string{"preset": "ars5", "config": path, "fps": "24"} {
		if err := cmd.Flags().Set(flag, v); err != nil {
			t.Fatal(err)
		}
	}
	cmd.Flags().Set("image", "a.png")
	cmd.Flags().Set("image", "b.png")

	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strategy != "resonant_harmonic" || cfg.Params["base_period_ms"] != 30000 {
		t.Errorf("preset lost under config file: %+v", cfg)
	}
	if cfg.GridWidth != 32 {
		t.Errorf("config file should set width, got %d", cfg.GridWidth)
	}
	if cfg.FPS != 24 {
		t.Errorf("flag should win over preset, got fps %d", cfg.FPS)
	}
}

func TestBuildConfigSingleSlot(t *testing.T) {
	cmd := newTestCommand(t)
	cmd.Flags().Set("image", "a.png")

	cfg, err := buildConfig(cmd, []string{"single_spin"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Slots != 1 {
		t.Errorf("one image for a one-slot strategy should give 1 slot, got %d", cfg.Slots)
	}
}
