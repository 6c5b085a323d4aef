// Package engine owns the whole animation state: image slots, the active
// record grid, the clock, the strategy and the render binding.
//
// All methods are safe for concurrent use. Slot updates usually arrive from
// decode goroutines while a single driver calls Update once per frame; a
// rebuild and a tick never interleave, so every tick sees exactly one grid
// generation.
package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/san-kum/lumagrid/internal/binding"
	"github.com/san-kum/lumagrid/internal/brightness"
	"github.com/san-kum/lumagrid/internal/clock"
	"github.com/san-kum/lumagrid/internal/config"
	"github.com/san-kum/lumagrid/internal/modulation"
	"github.com/san-kum/lumagrid/internal/params"
)

// Observer receives every sample applied during a tick. It is called with
// the engine lock held and must not call back into the engine.
type Observer interface {
	OnSample(elapsedMs float64, cell int, s modulation.Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(elapsedMs float64, cell int, s modulation.Sample)

func (f ObserverFunc) OnSample(elapsedMs float64, cell int, s modulation.Sample) {
	f(elapsedMs, cell, s)
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithClockSource(src clock.Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.now = src
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

type axisSetter interface {
	SetAxis(modulation.Axis)
}

type Engine struct {
	mu sync.Mutex

	cfg       *config.Config
	strategy  modulation.Strategy
	sampler   brightness.Sampler
	builder   *params.Builder
	clock     clock.Clock
	now       clock.Source
	binding   *binding.Binding
	acc       []modulation.Accumulator
	observers []Observer
	logger    *slog.Logger
	frames    int
}

// New validates cfg and prepares an engine without a grid. A nil surface
// renders into a binding.MemorySurface.
func New(cfg *config.Config, surface binding.Surface, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg = cfg.Clone()

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Field: "config", Err: err}
	}

	strategy, err := modulation.NewRegistry().Get(cfg.Strategy)
	if err != nil {
		return nil, &ConfigError{Field: "strategy", Err: err}
	}
	if need := strategy.RequiredSlots(); need > cfg.Slots {
		return nil, &ConfigError{
			Field: "slots",
			Err:   fmt.Errorf("%s needs %d slots, configured %d", strategy.Name(), need, cfg.Slots),
		}
	}
	if err := modulation.Configure(strategy, cfg.Params); err != nil {
		return nil, &ConfigError{Field: "params", Err: err}
	}

	axis, _ := modulation.ParseAxis(cfg.Axis)
	if as, ok := strategy.(axisSetter); ok {
		as.SetAxis(axis)
	}
	mode, _ := brightness.ParseSampling(cfg.Sampling)

	builder, err := params.NewBuilder(params.Options{
		Slots:         cfg.Slots,
		CullThreshold: cfg.CullThreshold,
		Seed:          cfg.Seed,
	})
	if err != nil {
		return nil, &ConfigError{Field: "slots", Err: err}
	}

	if surface == nil {
		surface = binding.NewMemorySurface()
	}

	e := &Engine{
		cfg:      cfg,
		strategy: strategy,
		sampler:  brightness.Sampler{Mode: mode},
		builder:  builder,
		now:      clock.NewWallSource(),
		binding:  binding.New(surface, cfg.Layout),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	builder.OnRebuild = e.onRebuild

	e.logger.Debug("engine ready",
		"strategy", strategy.Name(),
		"slots", cfg.Slots,
		"grid_width", cfg.GridWidth,
		"sampling", mode.String(),
	)
	return e, nil
}

// onRebuild runs inside builder.UpdateSlot, with e.mu held.
func (e *Engine) onRebuild(g *params.Grid) {
	e.clock.Reset(e.now())
	e.binding.Bind(g)
	e.acc = make([]modulation.Accumulator, g.Len())
	e.logger.Info("grid rebuilt", "grid", g)
}

// UpdateSlot installs field in slot and rebuilds the grid once every slot
// holds a field of the same size.
func (e *Engine) UpdateSlot(slot int, field *brightness.Field) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rebuilt, err := e.builder.UpdateSlot(slot, field)
	if err != nil {
		e.logger.Warn("slot update rejected", "slot", slot, "err", err)
		return err
	}
	if !rebuilt {
		e.logger.Debug("slot stored", "slot", slot, "field", field)
	}
	return nil
}

// SubmitImage extracts a field at the configured width and sampling, then
// calls UpdateSlot. On extraction failure the slot is left as it was.
func (e *Engine) SubmitImage(slot int, img brightness.Image) error {
	field, err := e.sampler.Extract(img, e.cfg.GridWidth)
	if err != nil {
		return fmt.Errorf("engine: extract slot %d: %w", slot, err)
	}
	return e.UpdateSlot(slot, field)
}

// Update samples every visible cell at nowMs and applies the result through
// the binding. It does nothing before the first grid.
func (e *Engine) Update(nowMs float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.builder.CurrentGrid()
	if g == nil {
		return
	}

	elapsed := e.clock.Elapsed(nowMs)
	for i := 0; i < g.Len(); i++ {
		rec := g.At(i)
		if rec.Culled {
			continue
		}
		s := e.strategy.Sample(rec, elapsed, &e.acc[i])
		e.binding.Apply(i, s)
		for _, o := range e.observers {
			o.OnSample(elapsed, i, s)
		}
	}
	e.frames++
}

// Tick calls Update with the engine's clock source.
func (e *Engine) Tick() {
	e.Update(e.now())
}

func (e *Engine) Now() float64 { return e.now() }

func (e *Engine) Elapsed(nowMs float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Elapsed(nowMs)
}

// Grid returns the active grid, or nil. Grids are immutable.
func (e *Engine) Grid() *params.Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.CurrentGrid()
}

func (e *Engine) Generation() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Generation()
}

func (e *Engine) Populated() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Populated()
}

// Frames counts ticks that sampled a grid.
func (e *Engine) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Strategy returns the strategy name.
func (e *Engine) Strategy() string {
	return e.strategy.Name()
}

// Config returns a copy of the configuration the engine runs with.
func (e *Engine) Config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.cfg.Clone()
	c.Params = e.strategy.GetParams()
	return c
}

func (e *Engine) SetParam(name string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.strategy.SetParam(name, value); err != nil {
		return err
	}
	e.logger.Debug("param changed", "strategy", e.strategy.Name(), "name", name, "value", value)
	return nil
}

func (e *Engine) Params() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.strategy.GetParams())
}

func (e *Engine) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Close destroys every instance on the surface. The engine stays usable;
// the next rebuild binds a fresh set.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.binding.Release()
}
