// Package config loads sweep settings from YAML files and environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"schelling-ca/internal/sims/schelling"
	"schelling-ca/internal/sweep"
)

// SweepConfig describes a batch of simulations and what to do with them.
type SweepConfig struct {
	// Size is the side length N of every board.
	Size int `json:"size" yaml:"size"`

	// EmptyRatio is the fraction of cells left empty at start.
	EmptyRatio float64 `json:"empty_ratio" yaml:"empty_ratio"`

	// Thresholds lists the happiness thresholds H to sweep.
	Thresholds []int `json:"thresholds" yaml:"thresholds"`

	// Moves lists the move strategies to sweep: "random", "horizontal" or "nearest".
	Moves []string `json:"moves" yaml:"moves"`

	// Orders lists the update orders to sweep: "sequential" or "random".
	Orders []string `json:"orders" yaml:"orders"`

	// Trials is the number of runs per configuration.
	Trials int `json:"trials" yaml:"trials"`

	// MaxIterations caps every run.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// Seed is the base seed from which per-run seeds are derived.
	Seed int64 `json:"seed" yaml:"seed"`

	// Workers bounds concurrent runs. Zero uses one per CPU.
	Workers int `json:"workers" yaml:"workers"`

	// Output controls snapshot images.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// OutputConfig controls where and how final boards are rendered.
type OutputConfig struct {
	// Dir receives one PNG per run.
	Dir string `json:"dir" yaml:"dir"`

	// Render disables image output when false.
	Render bool `json:"render" yaml:"render"`

	// Scale is the pixel size of one cell.
	Scale int `json:"scale" yaml:"scale"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// Default returns the experiment the tool runs without a config file: H=4,
// both move strategies, both update orders, three runs each.
func Default() *SweepConfig {
	base := schelling.DefaultConfig()
	return &SweepConfig{
		Size:          base.Size,
		EmptyRatio:    base.EmptyRatio,
		Thresholds:    []int{base.Threshold},
		Moves:         []string{string(schelling.MoveRandom), string(schelling.MoveHorizontal)},
		Orders:        []string{string(schelling.OrderSequential), string(schelling.OrderRandom)},
		Trials:        3,
		MaxIterations: base.MaxIterations,
		Seed:          base.Seed,
		Output: OutputConfig{
			Dir:    ".",
			Render: true,
			Scale:  4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults overlaid with path (when non-empty) and then
// environment variables.
func Load(path string) (*SweepConfig, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration describes a runnable sweep.
func (c *SweepConfig) Validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if len(c.Thresholds) == 0 || len(c.Moves) == 0 || len(c.Orders) == 0 {
		return fmt.Errorf("thresholds, moves and orders must each list at least one value")
	}
	if c.Output.Render && c.Output.Scale <= 0 {
		return fmt.Errorf("output scale must be positive, got %d", c.Output.Scale)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	configs, err := c.Configs()
	if err != nil {
		return err
	}
	for _, sc := range configs {
		if err := sc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Configs expands the sweep into one simulation config per threshold, move
// and order, threshold-major.
func (c *SweepConfig) Configs() ([]schelling.Config, error) {
	moves := make([]schelling.MoveStrategy, 0, len(c.Moves))
	for _, m := range c.Moves {
		parsed, err := schelling.ParseMoveStrategy(m)
		if err != nil {
			return nil, err
		}
		moves = append(moves, parsed)
	}
	orders := make([]schelling.UpdateOrder, 0, len(c.Orders))
	for _, o := range c.Orders {
		parsed, err := schelling.ParseUpdateOrder(o)
		if err != nil {
			return nil, err
		}
		orders = append(orders, parsed)
	}

	base := schelling.Config{
		Size:          c.Size,
		EmptyRatio:    c.EmptyRatio,
		MaxIterations: c.MaxIterations,
		Seed:          c.Seed,
	}
	return sweep.Matrix(base, c.Thresholds, moves, orders), nil
}

// applyEnvOverrides applies SCHELLING_* environment variables to the config.
func applyEnvOverrides(c *SweepConfig) error {
	if v := os.Getenv("SCHELLING_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SCHELLING_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("SCHELLING_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCHELLING_WORKERS: %w", err)
		}
		c.Workers = workers
	}
	if v := os.Getenv("SCHELLING_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SCHELLING_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	return nil
}
