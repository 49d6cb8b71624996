package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/gridhero/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds flag values and the logger shared by every command.
type app struct {
	configFile string
	preset     string
	envFile    string
	verbose    bool
	logFile    string
	realtime   bool

	theme        string
	cellSize     float64
	streakLength float64
	speed        float64
	maxDelay     float64
	fps          int
	dpr          float64
	width        float64
	height       float64
	seed         int64
	title        string
	subtitle     string

	log *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "gridhero",
		Short: "animated flowing grid-line hero renderer",
		Long: `gridhero renders a background grid on a vertical gradient with three
streaks sweeping top to bottom.

Run without arguments to start the live terminal view.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(a.envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			return a.initLogger(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
		RunE: a.runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&a.preset, "preset", "", "use preset configuration")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file with GRIDHERO_* variables")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&a.logFile, "log-file", "", "log destination for the live view")
	pf.BoolVar(&a.realtime, "realtime", false, "pace headless frames with a wall-clock ticker")
	pf.StringVar(&a.theme, "theme", "", "color theme")
	pf.Float64Var(&a.cellSize, "cell-size", 0, "grid cell size in logical pixels")
	pf.Float64Var(&a.streakLength, "streak", 0, "streak length in logical pixels")
	pf.Float64Var(&a.speed, "speed", 0, "streak speed in surface heights per second")
	pf.Float64Var(&a.maxDelay, "max-delay", 0, "maximum start delay in milliseconds")
	pf.IntVar(&a.fps, "fps", 0, "frames per second")
	pf.Float64Var(&a.dpr, "dpr", 0, "device pixel ratio")
	pf.Float64Var(&a.width, "width", 0, "surface width in logical pixels")
	pf.Float64Var(&a.height, "height", 0, "surface height in logical pixels")
	pf.Int64Var(&a.seed, "seed", 0, "random seed (0 = time based)")
	pf.StringVar(&a.title, "title", "", "overlay title")
	pf.StringVar(&a.subtitle, "subtitle", "", "overlay subtitle")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate in the terminal",
		RunE:  a.runLive,
	}
	liveCmd.Flags().String("out", ".", "directory for snapshots and recordings")
	rootCmd.Flags().AddFlagSet(liveCmd.Flags())

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [file.png]",
		Short: "render headless and save the last frame as png",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runSnapshot,
	}
	snapshotCmd.Flags().Int("frames", 120, "frames to simulate")

	recordCmd := &cobra.Command{
		Use:   "record [file.gif]",
		Short: "render headless and save an animated gif",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runRecord,
	}
	recordCmd.Flags().Int("frames", 180, "frames to simulate")
	recordCmd.Flags().Int("every", 2, "keep every nth frame")

	svgCmd := &cobra.Command{
		Use:   "svg [file.svg]",
		Short: "render headless and export the last frame as svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runSVG,
	}
	svgCmd.Flags().Int("frames", 120, "frames to simulate")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "simulate frames and plot streak progress",
		RunE:  a.runTrace,
	}
	traceCmd.Flags().Int("frames", 300, "frames to simulate")
	traceCmd.Flags().String("json", "", "write frame records to file (- for stdout)")
	traceCmd.Flags().Int("runs", 1, "simulate this many consecutive seeds and compare them")

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "list color themes",
		RunE:  a.listThemes,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  a.listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [file.yaml]",
		Short: "write the resolved configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.configInit,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(liveCmd, snapshotCmd, recordCmd, svgCmd, traceCmd, themesCmd, presetsCmd, configCmd)
	return rootCmd
}

// initLogger builds the logger. The live view owns the terminal, so it only
// logs when a log file is given.
func (a *app) initLogger(cmd *cobra.Command) error {
	live := cmd.Name() == "live" || !cmd.HasParent()
	if live && a.logFile == "" {
		a.log = zap.NewNop()
		return nil
	}

	cfg := zap.NewProductionConfig()
	if a.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if a.logFile != "" {
		cfg.OutputPaths = []string{a.logFile}
		cfg.ErrorOutputPaths = []string{a.logFile}
	}
	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log
	return nil
}

// sources describes the configuration layers for cmd: preset, config file,
// environment and the flags explicitly set on the command line.
func (a *app) sources(cmd *cobra.Command) config.Sources {
	flags := cmd.Flags()
	return config.Sources{
		Preset: a.preset,
		File:   a.configFile,
		Lookup: os.LookupEnv,
		Overrides: func(cfg *config.Config) {
			if flags.Changed("theme") {
				cfg.Theme = a.theme
			}
			if flags.Changed("cell-size") {
				cfg.CellSize = a.cellSize
			}
			if flags.Changed("streak") {
				cfg.StreakLength = a.streakLength
			}
			if flags.Changed("speed") {
				cfg.Speed = a.speed
			}
			if flags.Changed("max-delay") {
				cfg.MaxDelay = a.maxDelay
			}
			if flags.Changed("fps") {
				cfg.FPS = a.fps
			}
			if flags.Changed("dpr") {
				cfg.DevicePixelRatio = a.dpr
			}
			if flags.Changed("width") {
				cfg.Width = a.width
			}
			if flags.Changed("height") {
				cfg.Height = a.height
			}
			if flags.Changed("seed") {
				cfg.Seed = a.seed
			}
			if flags.Changed("title") {
				cfg.Overlay.Title = a.title
			}
			if flags.Changed("subtitle") {
				cfg.Overlay.Subtitle = a.subtitle
			}
		},
	}
}

// resolveConfig layers preset, config file, environment and flags, each
// overriding the previous.
func (a *app) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	return a.sources(cmd).Resolve()
}

func outputPath(args []string, def string) (string, error) {
	path := def
	if len(args) > 0 {
		path = args[0]
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}
	return path, nil
}
