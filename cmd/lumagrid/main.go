package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lumagrid/internal/binding"
	"github.com/san-kum/lumagrid/internal/brightness"
	"github.com/san-kum/lumagrid/internal/config"
	"github.com/san-kum/lumagrid/internal/engine"
	"github.com/san-kum/lumagrid/internal/export"
	"github.com/san-kum/lumagrid/internal/loader"
	"github.com/san-kum/lumagrid/internal/modulation"
	"github.com/san-kum/lumagrid/internal/params"
	"github.com/san-kum/lumagrid/internal/store"
	"github.com/san-kum/lumagrid/internal/viz"
)

var (
	dataDir  string
	logLevel string

	images     []string
	preset     string
	configFile string
	gridWidth  int
	slots      int
	frames     int
	frameRate  int
	seed       int64
	sampling   string
	axis       string
	cull       float64
	spacing    float64
	cubeSize   float64
	depth      float64
	paramFlags map[string]string
	cells      []int
	save       bool
	snapshot   string

	plotCell    int
	plotChannel string
	plotSVG     string
	outFile     string
	colorOut    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "lumagrid",
		Short:        "image-driven grid animation engine",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lumagrid", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [strategy]",
		Short: "run headless and record cell traces",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	addEngineFlags(runCmd)
	runCmd.Flags().IntVar(&frames, "frames", 300, "number of frames")
	runCmd.Flags().IntSliceVar(&cells, "cell", nil, "cell index to record (repeatable, default centre)")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run under --data")
	runCmd.Flags().StringVar(&snapshot, "snapshot", "", "write the last frame to an SVG file")

	liveCmd := &cobra.Command{
		Use:   "live [strategy]",
		Short: "animate the grid in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addEngineFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded channels of a cell",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotCell, "cell", -1, "cell index (default first recorded)")
	plotCmd.Flags().StringVar(&plotChannel, "channel", "", "channel to plot (default all)")
	plotCmd.Flags().StringVar(&plotSVG, "svg", "", "also write the first plotted channel to an SVG file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export recorded samples to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [strategy]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	strategiesCmd := &cobra.Command{
		Use:   "strategies",
		Short: "list modulation strategies and their parameters",
		RunE:  listStrategies,
	}

	fieldCmd := &cobra.Command{
		Use:   "field [image]",
		Short: "show the brightness field of an image",
		Args:  cobra.ExactArgs(1),
		RunE:  showField,
	}
	fieldCmd.Flags().IntVar(&gridWidth, "width", config.DefaultGridWidth, "grid width in cells")
	fieldCmd.Flags().StringVar(&sampling, "sampling", "point", "sampling (point, bilinear, catmullrom)")
	fieldCmd.Flags().BoolVar(&colorOut, "color", false, "tint cells by brightness")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, strategiesCmd, fieldCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&images, "image", nil, "image path, one per slot in order")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&gridWidth, "width", config.DefaultGridWidth, "grid width in cells")
	cmd.Flags().IntVar(&slots, "slots", config.DefaultSlots, "number of image slots (1-3)")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for cell phases (0: time based)")
	cmd.Flags().StringVar(&sampling, "sampling", "point", "sampling (point, bilinear, catmullrom)")
	cmd.Flags().StringVar(&axis, "axis", "y", "rotation axis for resonant_harmonic")
	cmd.Flags().Float64Var(&cull, "cull", 0, "hide cells with slot 1 brightness at or above this (0: off)")
	cmd.Flags().Float64Var(&spacing, "spacing", 1, "distance between cells")
	cmd.Flags().Float64Var(&cubeSize, "size", 0, "instance size at scale 1 (0: 1)")
	cmd.Flags().Float64Var(&depth, "depth", 0, "z position of the grid")
	cmd.Flags().StringToStringVar(&paramFlags, "param", nil, "strategy parameter name=value (repeatable)")
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("bad --log-level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// buildConfig layers preset, config file and explicitly set flags, in that
// order; each layer only replaces the keys it sets. A strategy argument
// overrides all of them.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		var p *config.Config
		if len(args) > 0 {
			p = config.GetPreset(args[0], preset)
			if p == nil {
				return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(args[0]))
			}
		} else if p = config.FindPreset(preset); p == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		cfg = p
	}

	if configFile != "" {
		fileCfg, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.GridWidth = gridWidth
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("sampling") {
		cfg.Sampling = sampling
	}
	if flags.Changed("axis") {
		cfg.Axis = axis
	}
	if flags.Changed("cull") {
		cfg.CullThreshold = cull
	}
	if flags.Changed("spacing") {
		cfg.Layout.Spacing = spacing
	}
	if flags.Changed("size") {
		cfg.Layout.Size = cubeSize
	}
	if flags.Changed("depth") {
		cfg.Layout.Depth = depth
	}
	if len(args) > 0 {
		cfg.Strategy = args[0]
	}

	if flags.Changed("slots") {
		cfg.Slots = slots
	} else if s, err := modulation.NewRegistry().Get(cfg.Strategy); err == nil {
		if need := s.RequiredSlots(); need > cfg.Slots || len(images) == need {
			cfg.Slots = need
		}
	}

	for name, raw := range paramFlags {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad --param %s=%s: %w", name, raw, err)
		}
		if cfg.Params == nil {
			cfg.Params = map[string]float64{}
		}
		cfg.Params[name] = v
	}

	if len(images) != cfg.Slots {
		return nil, fmt.Errorf("%s uses %d image slots, got %d --image flags", cfg.Strategy, cfg.Slots, len(images))
	}
	return cfg, nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	var surface binding.Surface = binding.NewMemorySurface()
	var term *viz.TermSurface
	if snapshot != "" {
		term = viz.NewTermSurface(cfg.Layout)
		surface = term
	}

	now := 0.0
	eng, err := engine.New(cfg, surface,
		engine.WithLogger(logger),
		engine.WithClockSource(func() float64 { return now }),
	)
	if err != nil {
		return err
	}
	defer eng.Close()

	for _, f := range loader.LoadAll(cmd.Context(), images) {
		res := <-f
		if res.Err != nil {
			return res.Err
		}
		if err := eng.SubmitImage(res.Slot, res.Image); err != nil {
			return err
		}
	}

	grid := eng.Grid()
	if grid == nil {
		return fmt.Errorf("no grid was built from %v", images)
	}

	record := cells
	if len(record) == 0 {
		c, ok := defaultCell(grid)
		if !ok {
			return fmt.Errorf("every cell of the %dx%d grid is culled (cull threshold %g)", grid.Width, grid.Height, cfg.CullThreshold)
		}
		record = []int{c}
	}
	for _, c := range record {
		if c < 0 || c >= grid.Len() {
			return fmt.Errorf("cell %d out of range [0,%d)", c, grid.Len())
		}
	}
	rec := store.NewRecorder(record...)
	eng.AddObserver(rec)

	fmt.Printf("running %s on a %dx%d grid...\n", eng.Strategy(), grid.Width, grid.Height)
	start := time.Now()

	frameMs := cfg.FrameMs()
	for i := 0; i < frames; i++ {
		eng.Update(now)
		now += frameMs
	}
	elapsed := time.Since(start)

	rows := rec.Rows()
	fmt.Printf("completed %d frames in %v\n", eng.Frames(), elapsed)
	fmt.Printf("visible cells: %d/%d\n\n", grid.Visible(), grid.Len())

	if err := printSummary(rows); err != nil {
		return err
	}

	if term != nil {
		if err := export.WriteFile(snapshot, export.FrameToSVG(term.Frame(), 8)); err != nil {
			return err
		}
		fmt.Printf("\nsnapshot: %s\n", snapshot)
	}

	if !save {
		return nil
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runCfg := eng.Config()
	runID, err := st.Save(store.RunMetadata{
		Strategy:   eng.Strategy(),
		Preset:     preset,
		Seed:       runCfg.Seed,
		GridWidth:  grid.Width,
		GridHeight: grid.Height,
		Slots:      runCfg.Slots,
		Sampling:   runCfg.Sampling,
		FPS:        runCfg.FPS,
		Frames:     eng.Frames(),
		Images:     images,
		Cells:      record,
		Params:     runCfg.Params,
	}, rows)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

// defaultCell picks the centre cell, or the first visible cell when the
// centre is culled.
func defaultCell(g *params.Grid) (int, bool) {
	centre := (g.Height/2)*g.Width + g.Width/2
	if !g.At(centre).Culled {
		return centre, true
	}
	for i := 0; i < g.Len(); i++ {
		if !g.At(i).Culled {
			return i, true
		}
	}
	return 0, false
}

func printSummary(rows []store.Row) error {
	if len(rows) == 0 {
		fmt.Println("no samples recorded: the selected cells are culled")
		return nil
	}
	summary := store.Summarize(rows)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tMEAN\tSTD\tMIN\tMAX")
	for _, ch := range store.Channels {
		s, ok := summary[ch]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", ch, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; only errors go to stderr.
	logLevel = "error"
	logger, err := newLogger()
	if err != nil {
		return err
	}

	surface := viz.NewTermSurface(cfg.Layout)
	eng, err := engine.New(cfg, surface, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eng.Close()

	return viz.Run(viz.NewModel(cmd.Context(), eng, surface, images))
}

func openStore(args []string) (*store.Store, string, error) {
	st := store.New(dataDir)
	if len(args) > 0 {
		return st, args[0], nil
	}
	runID, err := st.Latest()
	if err != nil {
		return nil, "", err
	}
	return st, runID, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTRATEGY\tTIME\tGRID\tFRAMES\tFPS\tCELLS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%v\n",
			run.ID,
			run.Strategy,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.GridWidth,
			run.GridHeight,
			run.Frames,
			run.FPS,
			run.Cells,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openStore(args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadRows(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	cell := plotCell
	if cell < 0 {
		cell = rows[0].Cell
	}
	trace := store.Trace(rows, cell)
	if len(trace) == 0 {
		return fmt.Errorf("cell %d was not recorded (recorded: %v)", cell, meta.Cells)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("strategy: %s\n", meta.Strategy)
	fmt.Printf("cell: %d, samples: %d\n\n", cell, len(trace))

	channels := store.Channels
	if plotChannel != "" {
		channels = []string{plotChannel}
	}

	for i, ch := range channels {
		data, err := store.Series(trace, ch)
		if err != nil {
			return err
		}
		if i == 0 && plotSVG != "" {
			if err := export.WriteFile(plotSVG, export.SeriesToSVG(data, 800, 200, "#00ffff")); err != nil {
				return err
			}
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(ch+" vs frame"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, runID, err := openStore(args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, runID, err := openStore(args)
	if err != nil {
		return err
	}
	rows, err := st.LoadRows(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}

	if outFile != "" {
		return store.ExportCSVFile(outFile, rows)
	}
	return store.ExportCSV(os.Stdout, rows)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, runID, err := openStore(args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadRows(runID)
	if err != nil {
		return err
	}

	if outFile != "" {
		return store.ExportJSONFile(outFile, *meta, rows)
	}
	return store.ExportJSON(os.Stdout, *meta, rows)
}

func listPresets(cmd *cobra.Command, args []string) error {
	strategies := modulation.NewRegistry().List()
	if len(args) > 0 {
		strategies = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tPRESET\tWIDTH\tSLOTS\tSPACING\tSIZE")
	found := false
	for _, s := range strategies {
		for _, name := range config.ListPresets(s) {
			p := config.GetPreset(s, name)
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%g\n", s, name, p.GridWidth, p.Slots, p.Layout.Spacing, p.Layout.Size)
			found = true
		}
	}
	if !found {
		fmt.Printf("no presets for: %v\n", strategies)
		return nil
	}
	return w.Flush()
}

func listStrategies(cmd *cobra.Command, args []string) error {
	reg := modulation.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tSLOTS\tSTATEFUL\tPARAMETERS")
	for _, name := range reg.List() {
		s, err := reg.Get(name)
		if err != nil {
			return err
		}
		params := s.GetParams()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		desc := ""
		for i, k := range keys {
			if i > 0 {
				desc += " "
			}
			desc += fmt.Sprintf("%s=%g", k, params[k])
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%s\n", name, s.RequiredSlots(), s.Stateful(), desc)
	}
	return w.Flush()
}

func showField(cmd *cobra.Command, args []string) error {
	mode, err := brightness.ParseSampling(sampling)
	if err != nil {
		return err
	}
	img, err := loader.LoadFile(args[0])
	if err != nil {
		return err
	}
	field, err := brightness.Sampler{Mode: mode}.Extract(img, gridWidth)
	if err != nil {
		return err
	}

	fmt.Print(viz.FieldPreview(field, colorOut))

	s := field.Stats()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nSIZE\tMEAN\tSTD\tMIN\tMAX")
	fmt.Fprintf(w, "%dx%d\t%.4f\t%.4f\t%.4f\t%.4f\n", field.Width(), field.Height(), s.Mean, s.StdDev, s.Min, s.Max)
	return w.Flush()
}
