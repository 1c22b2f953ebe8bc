package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/kinetic/internal/analysis"
	"github.com/san-kum/kinetic/internal/automation"
	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/export"
	"github.com/san-kum/kinetic/internal/preset"
	"github.com/san-kum/kinetic/internal/scene"
	"github.com/san-kum/kinetic/internal/spring"
	"github.com/san-kum/kinetic/internal/storage"
	"github.com/san-kum/kinetic/internal/tune"
	"github.com/san-kum/kinetic/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	theme      string
	configFile string
	solver     string
	step       time.Duration
	limit      time.Duration
	tolerance  float64
	outFile    string
	force      bool
	watch      bool
	scriptFile string
	cellName   string
	logFile    string
	// tune
	settleTarget time.Duration
	maxOvershoot float64
	tensionMin   float64
	tensionMax   float64
	frictionMin  float64
	frictionMax  float64
	gridPoints   int

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kinetic",
		Short:         "frame-driven animation sequencing lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kinetic", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "play a scene headlessly and save the recording",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	addTableFlags(runCmd)
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&scriptFile, "script", "", "play a scene scripted in yaml instead of a built-in one")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded cells",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a recorded cell",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&cellName, "cell", "", "cell to analyze (default first cell)")
	analyzeCmd.Flags().Float64Var(&tolerance, "tolerance", 0.001, "band around the rest value ignored when counting crossings")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "value against velocity plot of a recorded cell",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&cellName, "cell", "", "cell to plot (default first cell)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output file (default <run_id>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenes and script presets",
		RunE:  listScenes,
	}

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "list built-in config themes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListThemes() {
				fmt.Println(name)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with the theme's values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configInitCmd.Flags().StringVar(&theme, "theme", "default", "theme to write")
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "preview a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addTableFlags(liveCmd)
	liveCmd.Flags().StringVar(&scriptFile, "script", "", "preview a scene scripted in yaml")
	liveCmd.Flags().BoolVar(&watch, "watch", false, "reload the config file when it changes")
	liveCmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file (logs are dropped otherwise)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run every scene concurrently",
		RunE:  benchScenes,
	}
	addTableFlags(benchCmd)
	addRunFlags(benchCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search spring constants for a settle time",
		RunE:  tuneSpring,
	}
	tuneCmd.Flags().DurationVar(&settleTarget, "target", 500*time.Millisecond, "target settle time")
	tuneCmd.Flags().Float64Var(&maxOvershoot, "overshoot", 0.05, "max overshoot as a fraction of travel")
	tuneCmd.Flags().Float64Var(&tolerance, "tolerance", 0.01, "settle band as a fraction of travel")
	tuneCmd.Flags().Float64Var(&tensionMin, "tension-min", 50, "lowest tension")
	tuneCmd.Flags().Float64Var(&tensionMax, "tension-max", 600, "highest tension")
	tuneCmd.Flags().Float64Var(&frictionMin, "friction-min", 5, "lowest friction")
	tuneCmd.Flags().Float64Var(&frictionMax, "friction-max", 50, "highest friction")
	tuneCmd.Flags().IntVar(&gridPoints, "points", 12, "grid points per axis")
	tuneCmd.Flags().StringVar(&solver, "solver", "", "spring solver ("+strings.Join(spring.Kinds(), ", ")+")")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, exportCmd, exportSVGCmd, presetsCmd, themesCmd, configCmd, liveCmd, benchCmd, tuneCmd)

	// ctrl+c cancels long runs through cmd.Context()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "kinetic",
	}), nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// previewOutput is where logs go while the preview owns the terminal: the
// file at path, or nowhere. Stderr would draw over the alt screen.
func previewOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{io.Discard}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&theme, "theme", "default", "config theme ("+strings.Join(config.ListThemes(), ", ")+")")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml, overrides --theme)")
	cmd.Flags().StringVar(&solver, "solver", "", "spring solver ("+strings.Join(spring.Kinds(), ", ")+")")
}

func addRunFlags(cmd *cobra.Command) {
	d := scene.DefaultConfig()
	cmd.Flags().DurationVar(&step, "step", d.Step, "tick step")
	cmd.Flags().DurationVar(&limit, "limit", d.Limit, "engine time limit")
	cmd.Flags().Float64Var(&tolerance, "tolerance", d.Tolerance, "settle band for metrics")
}

// loadTable resolves --config, --theme and --solver into a validated table.
func loadTable() (*config.Table, error) {
	var table *config.Table
	if configFile != "" {
		t, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		table = t
	} else {
		table = config.GetTheme(theme)
		if table == nil {
			return nil, fmt.Errorf("unknown theme: %s (available: %v)", theme, config.ListThemes())
		}
	}
	if solver != "" {
		table.Engine.Solver = solver
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func tableName() string {
	if configFile != "" {
		return configFile
	}
	return theme
}

// registryFor returns the built-in scenes plus the --script scene, and the
// scene to play. A script is played unless a scene is named.
func registryFor(args []string) (*scene.Registry, string, error) {
	reg := scene.NewRegistry()
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	if scriptFile == "" {
		return reg, name, nil
	}

	script, err := automation.LoadScript(scriptFile)
	if err != nil {
		return nil, "", err
	}
	s, err := script.Scene()
	if err != nil {
		return nil, "", fmt.Errorf("invalid script %s: %w", scriptFile, err)
	}
	reg.Register(s.Name, func() *scene.Scene { return s })
	if name == "" {
		name = s.Name
	}
	return reg, name, nil
}

func runConfig() scene.Config {
	return scene.Config{Step: step, Limit: limit, Tolerance: tolerance}
}

func newRunner(table *config.Table) (*scene.Runner, error) {
	lib, err := preset.New(table)
	if err != nil {
		return nil, err
	}
	return scene.NewRunner(lib, table.Anim(), logger), nil
}

func runScene(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}

	reg, name, err := registryFor(args)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("name a scene or pass --script (scenes: %v)", reg.List())
	}
	s, err := reg.Get(name)
	if err != nil {
		return err
	}

	runner, err := newRunner(table)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s...\n", s.Name)
	start := time.Now()

	res, err := runner.Run(cmd.Context(), s, runConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(res, storage.RunInfo{
		Theme:  tableName(),
		Solver: table.Engine.Solver,
		Step:   step,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("engine time: %v\n", res.Duration)
	fmt.Printf("frames: %d\n", len(res.Times))
	fmt.Printf("settled: %v\n", res.Settled)
	fmt.Println("\nmetrics:")
	printMetrics(res.Metrics)

	return nil
}

func printMetrics(m map[string]map[string]float64) {
	cells := make([]string, 0, len(m))
	for cell := range m {
		cells = append(cells, cell)
	}
	sort.Strings(cells)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, cell := range cells {
		names := make([]string, 0, len(m[cell]))
		for name := range m[cell] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s\t%s\t%.4f\n", cell, name, m[cell][name])
		}
	}
	w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tFRAMES\tSETTLED\tTHEME\tSOLVER")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fms\t%d\t%v\t%s\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.DurationMs,
			run.Frames,
			run.Settled,
			run.Theme,
			run.Solver,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	if len(res.Samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(res.Samples))

	for _, cell := range res.Cells {
		graph := asciigraph.Plot(res.Series(cell),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(cell),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

// recordedCell loads a run and picks --cell, defaulting to the first cell.
func recordedCell(runID string) (*storage.RunMetadata, *scene.Result, string, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, "", err
	}
	res, err := st.LoadResult(runID)
	if err != nil {
		return nil, nil, "", err
	}
	if len(res.Cells) == 0 {
		return nil, nil, "", fmt.Errorf("run %s recorded no cells", runID)
	}

	cell := cellName
	if cell == "" {
		cell = res.Cells[0]
	}
	if res.Series(cell) == nil {
		return nil, nil, "", fmt.Errorf("unknown cell: %s (recorded: %v)", cell, res.Cells)
	}
	return meta, res, cell, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, res, cell, err := recordedCell(args[0])
	if err != nil {
		return err
	}

	series := res.Series(cell)
	step := time.Duration(meta.StepMs * float64(time.Millisecond))
	bins, err := analysis.Spectrum(series, step)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s, cell: %s\n\n", meta.Scene, cell)

	plotData := analysis.Powers(bins)
	if len(plotData) > 8 {
		plotData = plotData[:len(plotData)/4]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("amplitude spectrum (%s)", cell)),
	)
	fmt.Println(graph)
	fmt.Println()

	peak := analysis.Dominant(bins)
	fmt.Printf("dominant frequency: %.3f hz (amplitude %.4f)\n", peak.Hz, peak.Power)
	if peak.Hz > 0 {
		fmt.Printf("period: %.0fms\n", 1000/peak.Hz)
	}

	rest := series[len(series)-1]
	fmt.Printf("crossings of %.3f: %d\n", rest, analysis.Crossings(series, rest, tolerance))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, res, cell, err := recordedCell(args[0])
	if err != nil {
		return err
	}

	step := time.Duration(meta.StepMs * float64(time.Millisecond))
	pts := analysis.Portrait(res.Series(cell), step)
	if len(pts) < 2 {
		return fmt.Errorf("no data to plot")
	}

	const w, h = 60, 20
	canvas := viz.NewCanvas(w, h)
	minX, maxX, minY, maxY := analysis.Bounds(pts)
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	toDot := func(p analysis.Point) (int, int) {
		x := int((p.X - minX) / spanX * float64(w*2-1))
		y := int((maxY - p.Y) / spanY * float64(h*4-1))
		return x, y
	}

	px, py := toDot(pts[0])
	for _, p := range pts[1:] {
		x, y := toDot(p)
		canvas.DrawLine(px, py, x, y)
		px, py = x, y
	}

	fmt.Printf("phase portrait: %s (%s)\n", meta.ID, cell)
	fmt.Printf("x: value [%.3f, %.3f]  y: velocity/s [%.3f, %.3f]\n\n", minX, maxX, minY, maxY)
	fmt.Println(canvas.String())
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, res)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	svg := export.Chart(export.ResultSeries(res), 800, 400)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}

	fmt.Printf("wrote %s\n", path)
	return nil
}

func listScenes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tCELLS\tDESCRIPTION")
	for _, s := range scene.NewRegistry().All() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, strings.Join(s.CellNames(), ","), s.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nscript presets: %s\n", strings.Join(automation.Presets(), ", "))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "kinetic.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	table := config.GetTheme(theme)
	if table == nil {
		return fmt.Errorf("unknown theme: %s (available: %v)", theme, config.ListThemes())
	}
	if err := config.Save(path, table); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%s)\n", path, theme)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}

	reg, name, err := registryFor(args)
	if err != nil {
		return err
	}
	if name == "" {
		name = "entrance"
	}

	out, err := previewOutput(logFile)
	if err != nil {
		return err
	}
	defer out.Close()
	logger, err := newLogger(out, logLevel)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(reg, name, table, logger)
	if err != nil {
		return err
	}

	if watch {
		if configFile == "" {
			return fmt.Errorf("--watch needs --config")
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		tables, err := config.Watch(ctx, configFile, logger)
		if err != nil {
			return err
		}
		m = m.WithWatch(tables)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func benchScenes(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}

	runner, err := newRunner(table)
	if err != nil {
		return err
	}

	scenes := scene.NewRegistry().All()
	start := time.Now()
	results, err := runner.RunAll(cmd.Context(), scenes, runConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tENGINE TIME\tFRAMES\tEVENTS\tSETTLED")
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%v\t%d\t%d\t%v\n", res.Scene, res.Duration, len(res.Times), len(res.Events), res.Settled)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d scenes in %v (solver %s)\n", len(results), elapsed, table.Engine.Solver)
	return nil
}

func tuneSpring(cmd *cobra.Command, args []string) error {
	if gridPoints < 2 {
		return fmt.Errorf("points must be at least 2, got %d", gridPoints)
	}

	cfg := config.Default().Anim()
	if solver != "" {
		cfg.Solver = solver
	}

	obj := tune.DefaultObjective()
	obj.Settle = settleTarget
	obj.MaxOvershoot = maxOvershoot
	obj.Tolerance = tolerance

	fmt.Printf("searching %dx%d springs for %v settle, <= %.1f%% overshoot...\n",
		gridPoints, gridPoints, settleTarget, maxOvershoot*100)

	best, err := tune.Springs(cmd.Context(), cfg, obj,
		tune.Linspace(tensionMin, tensionMax, gridPoints),
		tune.Linspace(frictionMin, frictionMax, gridPoints))
	if err != nil {
		return err
	}

	fmt.Printf("tension:   %.2f\n", best.Tension)
	fmt.Printf("friction:  %.2f\n", best.Friction)
	fmt.Printf("settle:    %.0fms\n", best.SettleMs)
	fmt.Printf("overshoot: %.2f%%\n", best.Overshoot*100)
	return nil
}
