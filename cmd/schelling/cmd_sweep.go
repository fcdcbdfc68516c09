package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"schelling-ca/internal/config"
	"schelling-ca/internal/logging"
	"schelling-ca/internal/render"
	"schelling-ca/internal/report"
	"schelling-ca/internal/sims/schelling"
	"schelling-ca/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run every combination of thresholds, move strategies and update orders",
		Long: `Run the configured sweep. Without a config file this runs H=4 with both
move strategies (random, horizontal) and both update orders (sequential,
random), three trials each, on a 100×100 board with 10% empty cells.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSweepConfig(cmd)
			if err != nil {
				return err
			}
			return executeSweep(cmd, cfg)
		},
	}
	addSweepFlags(cmd)
	cmd.Flags().IntSlice("h", nil, "happiness thresholds to sweep")
	cmd.Flags().StringSlice("moves", nil, "move strategies: random, horizontal, nearest")
	cmd.Flags().StringSlice("orders", nil, "update orders: sequential, random")
	return cmd
}

func newThresholdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Sweep H from 0 up to --max-h with random moves and random order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSweepConfig(cmd)
			if err != nil {
				return err
			}
			maxH, _ := cmd.Flags().GetInt("max-h")
			if maxH <= 0 || maxH > schelling.MaxThreshold+1 {
				return fmt.Errorf("--max-h must be in [1,%d], got %d", schelling.MaxThreshold+1, maxH)
			}
			cfg.Thresholds = cfg.Thresholds[:0]
			for h := 0; h < maxH; h++ {
				cfg.Thresholds = append(cfg.Thresholds, h)
			}
			cfg.Moves = []string{string(schelling.MoveRandom)}
			cfg.Orders = []string{string(schelling.OrderRandom)}
			if !cmd.Flags().Changed("trials") {
				cfg.Trials = 1
			}
			return executeSweep(cmd, cfg)
		},
	}
	addSweepFlags(cmd)
	cmd.Flags().Int("max-h", schelling.MaxThreshold, "exclusive upper bound of the threshold range")
	return cmd
}

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().Int("size", 0, "grid side length N")
	cmd.Flags().Float64("empty-ratio", 0, "fraction of empty cells")
	cmd.Flags().Int("trials", 0, "runs per configuration")
	cmd.Flags().Int("max-iter", 0, "iteration cap per run")
	cmd.Flags().Int64("seed", 0, "base seed")
	cmd.Flags().Int("workers", 0, "concurrent runs (0 = one per CPU)")
	cmd.Flags().String("out", "", "directory for PNG snapshots")
	cmd.Flags().Int("scale", 0, "pixels per cell in snapshots")
	cmd.Flags().Bool("no-render", false, "skip writing PNG snapshots")
}

// loadSweepConfig resolves defaults, the --config file, the environment and
// finally explicit flags, in that order.
func loadSweepConfig(cmd *cobra.Command) (*config.SweepConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Size, _ = flags.GetInt("size")
	}
	if flags.Changed("empty-ratio") {
		cfg.EmptyRatio, _ = flags.GetFloat64("empty-ratio")
	}
	if flags.Changed("trials") {
		cfg.Trials, _ = flags.GetInt("trials")
	}
	if flags.Changed("max-iter") {
		cfg.MaxIterations, _ = flags.GetInt("max-iter")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("out") {
		cfg.Output.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("scale") {
		cfg.Output.Scale, _ = flags.GetInt("scale")
	}
	if noRender, _ := flags.GetBool("no-render"); noRender {
		cfg.Output.Render = false
	}
	if flags.Lookup("h") != nil && flags.Changed("h") {
		cfg.Thresholds, _ = flags.GetIntSlice("h")
	}
	if flags.Lookup("moves") != nil && flags.Changed("moves") {
		cfg.Moves, _ = flags.GetStringSlice("moves")
	}
	if flags.Lookup("orders") != nil && flags.Changed("orders") {
		cfg.Orders, _ = flags.GetStringSlice("orders")
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func executeSweep(cmd *cobra.Command, cfg *config.SweepConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid sweep: %w", err)
	}
	configs, err := cfg.Configs()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	jsonOut, _ := cmd.Flags().GetBool("json")
	printer := report.NewPrinter(cmd.OutOrStdout(), jsonOut)

	plan := sweep.Plan{
		Configs:  configs,
		Trials:   cfg.Trials,
		Workers:  cfg.Workers,
		BaseSeed: cfg.Seed,
	}
	logger.Info("starting sweep",
		"configs", len(configs),
		"trials", cfg.Trials,
		"size", cfg.Size,
		"empty_ratio", cfg.EmptyRatio,
		"workers", cfg.Workers,
	)

	opts := []sweep.Option{sweep.WithLogger(logger)}
	if logging.ParseLevel(cfg.Logging.Level) <= logging.LevelTrace {
		opts = append(opts, sweep.WithTickTrace())
	}

	start := time.Now()
	results, err := sweep.Run(cmd.Context(), plan, opts...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, res := range results {
		image := ""
		if cfg.Output.Render {
			image, err = writeSnapshot(cfg.Output.Dir, cfg.Output.Scale, cfg.Trials, res, logger)
			if err != nil {
				return err
			}
		}
		if err := printer.Run(res, image); err != nil {
			return err
		}
	}
	return printer.Done(results, elapsed)
}

func writeSnapshot(dir string, scale, trials int, res sweep.Result, logger *slog.Logger) (string, error) {
	cfg := res.Config
	name := render.FileName(cfg.Threshold, string(cfg.Move), string(cfg.Order))
	if trials > 1 {
		name = render.TrialFileName(cfg.Threshold, string(cfg.Move), string(cfg.Order), res.Trial)
	}
	path := filepath.Join(dir, name)

	img, err := render.Snapshot(schelling.Bytes(res.Final), cfg.Size, cfg.Size, render.Options{
		Scale:   scale,
		Palette: schelling.Palette(),
		Legend:  schelling.Legend,
	})
	if err != nil {
		return "", err
	}
	if err := render.WritePNG(path, img); err != nil {
		return "", err
	}
	logger.Debug("snapshot written", "path", path, "run", res.RunID.String())
	return path, nil
}
