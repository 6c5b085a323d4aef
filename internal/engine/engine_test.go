package engine_test

import (
	"errors"
	"image"
	"image/color"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lumagrid/internal/binding"
	"github.com/san-kum/lumagrid/internal/brightness"
	"github.com/san-kum/lumagrid/internal/config"
	"github.com/san-kum/lumagrid/internal/engine"
	"github.com/san-kum/lumagrid/internal/modulation"
	"github.com/san-kum/lumagrid/internal/params"
)

func uniformField(w, h int, v float64) *brightness.Field {
	values := make([]float64, w*h)
	for i := range values {
		values[i] = v
	}
	f, err := brightness.NewField(w, h, values)
	Expect(err).NotTo(HaveOccurred())
	return f
}

func grayImage(w, h int, v uint8) brightness.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return brightness.FromRGBA(img)
}

type fakeClock struct{ now float64 }

func (c *fakeClock) source() float64 { return c.now }

var _ = Describe("Engine", func() {
	var (
		cfg     *config.Config
		surface *binding.MemorySurface
		clk     *fakeClock
		eng     *engine.Engine
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		cfg.Strategy = "triangle_lerp"
		cfg.Slots = 2
		cfg.GridWidth = 4
		cfg.Seed = 1
		surface = binding.NewMemorySurface()
		clk = &fakeClock{}

		var err error
		eng, err = engine.New(cfg, surface, engine.WithClockSource(clk.source))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("rejects a strategy needing more slots than configured", func() {
			cfg.Strategy = "tri_harmonic"
			_, err := engine.New(cfg, surface)
			Expect(errors.Is(err, engine.ErrConfig)).To(BeTrue())

			var ce *engine.ConfigError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Field).To(Equal("slots"))
		})

		It("rejects an unknown strategy", func() {
			cfg.Strategy = "spiral"
			_, err := engine.New(cfg, surface)
			Expect(errors.Is(err, engine.ErrConfig)).To(BeTrue())
			Expect(errors.Is(err, modulation.ErrUnknownStrategy)).To(BeTrue())
		})

		It("rejects invalid structural fields", func() {
			cfg.GridWidth = 0
			_, err := engine.New(cfg, surface)
			Expect(errors.Is(err, engine.ErrConfig)).To(BeTrue())
			Expect(errors.Is(err, config.ErrInvalid)).To(BeTrue())
		})

		It("rejects invalid parameters", func() {
			cfg.Params = map[string]float64{"period_ms": -1}
			_, err := engine.New(cfg, surface)
			Expect(errors.Is(err, engine.ErrConfig)).To(BeTrue())
			Expect(errors.Is(err, modulation.ErrParameterBounds)).To(BeTrue())
		})

		It("applies configured parameters", func() {
			cfg.Params = map[string]float64{"period_ms": 1200}
			e, err := engine.New(cfg, surface)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Params()).To(HaveKeyWithValue("period_ms", 1200.0))
			Expect(e.Strategy()).To(Equal("triangle_lerp"))
		})

		It("does not alias the caller's config", func() {
			cfg.GridWidth = 99
			Expect(eng.Config().GridWidth).To(Equal(4))
		})
	})

	Describe("single slot", func() {
		It("builds and ticks a one-image grid", func() {
			single := config.DefaultConfig()
			single.Strategy = "single_spin"
			single.Slots = 1
			single.GridWidth = 3
			single.CullThreshold = 0.9
			single.Seed = 1

			s := binding.NewMemorySurface()
			e, err := engine.New(single, s, engine.WithClockSource(clk.source))
			Expect(err).NotTo(HaveOccurred())

			f, err := brightness.NewField(3, 1, []float64{0.2, 0.95, 0.5})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.UpdateSlot(0, f)).To(Succeed())
			Expect(e.Generation()).To(Equal(1))
			Expect(s.Len()).To(Equal(2))

			var cells []int
			e.AddObserver(engine.ObserverFunc(func(_ float64, cell int, _ modulation.Sample) {
				cells = append(cells, cell)
			}))
			e.Update(0)
			e.Update(16)
			Expect(cells).To(Equal([]int{0, 2, 0, 2}))

			rec := e.Grid().At(0)
			in, ok := s.Get(binding.Handle(0))
			Expect(ok).To(BeTrue())
			start := modulation.NewSingleSpin().Initial(rec)
			Expect(in.Rotation.X).To(BeNumerically("~", start.X+22, 1e-9))
			Expect(in.Rotation.Z).To(BeNumerically("~", start.Z, 1e-9))
		})
	})

	Describe("slots", func() {
		It("does not rebuild until every slot is populated", func() {
			f := uniformField(4, 3, 0.5)
			Expect(eng.UpdateSlot(0, f)).To(Succeed())
			Expect(eng.UpdateSlot(0, f)).To(Succeed())

			Expect(eng.Generation()).To(Equal(0))
			Expect(eng.Grid()).To(BeNil())

			eng.Update(100)
			Expect(surface.Len()).To(Equal(0))
			Expect(eng.Frames()).To(Equal(0))
		})

		It("rebuilds and binds one instance per cell", func() {
			Expect(eng.UpdateSlot(1, uniformField(4, 3, 0.2))).To(Succeed())
			Expect(eng.UpdateSlot(0, uniformField(4, 3, 0.8))).To(Succeed())

			Expect(eng.Generation()).To(Equal(1))
			Expect(eng.Grid().Len()).To(Equal(12))
			Expect(surface.Len()).To(Equal(12))
		})

		It("clears all slots on a size mismatch and keeps the grid", func() {
			Expect(eng.UpdateSlot(0, uniformField(4, 3, 0.2))).To(Succeed())
			Expect(eng.UpdateSlot(1, uniformField(4, 3, 0.2))).To(Succeed())

			err := eng.UpdateSlot(1, uniformField(5, 3, 0.2))
			var ce *params.ConsistencyError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(errors.Is(err, params.ErrConsistency)).To(BeTrue())

			Expect(eng.Populated()).To(Equal([]bool{false, false}))
			Expect(eng.Generation()).To(Equal(1))
			Expect(eng.Grid().Width).To(Equal(4))
		})

		It("leaves the slot unset when extraction fails", func() {
			err := eng.SubmitImage(0, brightness.Image{})
			Expect(errors.Is(err, brightness.ErrInvalidImage)).To(BeTrue())
			Expect(eng.Populated()[0]).To(BeFalse())
		})

		It("extracts submitted images at the configured width", func() {
			Expect(eng.SubmitImage(0, grayImage(8, 4, 255))).To(Succeed())
			Expect(eng.SubmitImage(1, grayImage(8, 4, 0))).To(Succeed())

			g := eng.Grid()
			Expect(g).NotTo(BeNil())
			Expect(g.Width).To(Equal(4))
			Expect(g.Height).To(Equal(2))
			Expect(g.At(0).Brightness[0]).To(BeNumerically("~", 1, 1e-9))
			Expect(g.At(0).Brightness[1]).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("clock", func() {
		It("restarts at zero on every rebuild", func() {
			clk.now = 1000
			Expect(eng.UpdateSlot(0, uniformField(4, 3, 0.3))).To(Succeed())
			Expect(eng.UpdateSlot(1, uniformField(4, 3, 0.6))).To(Succeed())
			Expect(eng.Elapsed(1100)).To(BeNumerically("==", 100))

			clk.now = 5000
			Expect(eng.UpdateSlot(0, uniformField(4, 3, 0.9))).To(Succeed())
			Expect(eng.Generation()).To(Equal(2))
			Expect(eng.Elapsed(5100)).To(BeNumerically("==", 100))
		})

		It("reports zero before the first grid", func() {
			Expect(eng.Elapsed(12345)).To(BeZero())
		})
	})

	Describe("ticks", func() {
		var samples []float64

		BeforeEach(func() {
			samples = nil
			eng.AddObserver(engine.ObserverFunc(func(elapsed float64, cell int, s modulation.Sample) {
				samples = append(samples, elapsed)
			}))
		})

		It("samples every cell with the elapsed time", func() {
			clk.now = 200
			Expect(eng.UpdateSlot(0, uniformField(4, 3, 0.3))).To(Succeed())
			Expect(eng.UpdateSlot(1, uniformField(4, 3, 0.6))).To(Succeed())

			eng.Update(1700)
			Expect(samples).To(HaveLen(12))
			for _, el := range samples {
				Expect(el).To(BeNumerically("==", 1500))
			}

			// Half period of 3000 ms: every cell sits at its second target.
			h := surface.Handles()[0]
			in, ok := surface.Get(h)
			Expect(ok).To(BeTrue())
			Expect(in.Rotation.X).To(BeNumerically("~", 0.6*3.141592653589793, 1e-9))
		})

		It("skips culled cells", func() {
			cfg.CullThreshold = 0.9
			e, err := engine.New(cfg, surface, engine.WithClockSource(clk.source))
			Expect(err).NotTo(HaveOccurred())

			values := []float64{0.1, 0.95, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 1, 0.1, 0.1, 0.1}
			f, err := brightness.NewField(4, 3, values)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.UpdateSlot(0, f)).To(Succeed())
			Expect(e.UpdateSlot(1, uniformField(4, 3, 0))).To(Succeed())

			n := 0
			e.AddObserver(engine.ObserverFunc(func(float64, int, modulation.Sample) { n++ }))
			e.Tick()
			Expect(n).To(Equal(10))
			Expect(surface.Len()).To(Equal(10))
		})

		It("resets accumulators on rebuild", func() {
			cfg.Strategy = "constant_blend"
			var last modulation.Sample
			e, err := engine.New(cfg, surface,
				engine.WithClockSource(clk.source),
				engine.WithObserver(engine.ObserverFunc(func(_ float64, cell int, s modulation.Sample) {
					if cell == 0 {
						last = s
					}
				})),
			)
			Expect(err).NotTo(HaveOccurred())

			Expect(e.UpdateSlot(0, uniformField(4, 3, 0.5))).To(Succeed())
			Expect(e.UpdateSlot(1, uniformField(4, 3, 0.2))).To(Succeed())
			for i := 0; i < 5; i++ {
				e.Update(0)
			}
			Expect(last.Rotation.X).To(BeNumerically("~", 5*0.035, 1e-9))

			Expect(e.UpdateSlot(1, uniformField(4, 3, 0.2))).To(Succeed())
			e.Update(0)
			Expect(last.Rotation.X).To(BeNumerically("~", 0.035, 1e-9))
		})

		It("never observes a mix of generations", func() {
			small := [2]*brightness.Field{uniformField(2, 2, 0.1), uniformField(2, 2, 0.2)}
			large := [2]*brightness.Field{uniformField(3, 3, 0.1), uniformField(3, 3, 0.2)}
			Expect(eng.UpdateSlot(0, small[0])).To(Succeed())
			Expect(eng.UpdateSlot(1, small[1])).To(Succeed())

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				for i := 0; i < 200; i++ {
					next := small
					if i%2 == 0 {
						next = large
					}
					// Fill slot 1 first with a mismatching size so the pair is
					// cleared, then install both.
					_ = eng.UpdateSlot(1, next[1])
					_ = eng.UpdateSlot(0, next[0])
					_ = eng.UpdateSlot(1, next[1])
				}
			}()

			for i := 0; i < 500; i++ {
				samples = samples[:0]
				eng.Update(float64(i))
				Expect(len(samples)).To(BeElementOf(4, 9))
			}
			wg.Wait()
		})
	})

	Describe("parameters", func() {
		It("changes and validates parameters at runtime", func() {
			Expect(eng.SetParam("period_ms", 6000)).To(Succeed())
			Expect(eng.Params()).To(HaveKeyWithValue("period_ms", 6000.0))
			Expect(eng.Config().Params).To(HaveKeyWithValue("period_ms", 6000.0))

			Expect(errors.Is(eng.SetParam("period_ms", 0), modulation.ErrParameterBounds)).To(BeTrue())
			Expect(errors.Is(eng.SetParam("bogus", 1), modulation.ErrUnknownParam)).To(BeTrue())
		})
	})

	Describe("Close", func() {
		It("destroys every instance", func() {
			Expect(eng.UpdateSlot(0, uniformField(4, 3, 0.3))).To(Succeed())
			Expect(eng.UpdateSlot(1, uniformField(4, 3, 0.6))).To(Succeed())
			Expect(surface.Len()).To(Equal(12))

			eng.Close()
			Expect(surface.Len()).To(Equal(0))
			eng.Update(10)
		})
	})
})
