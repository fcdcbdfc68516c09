package schelling

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidConfig is returned for out-of-range configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownOption is returned for unrecognised move or order names.
	ErrUnknownOption = errors.New("unknown option")
)

// MaxThreshold is the largest meaningful happiness threshold on a Moore
// neighborhood.
const MaxThreshold = 8

// DefaultMaxIterations caps a run that never converges.
const DefaultMaxIterations = 5000

// MoveStrategy selects how an unhappy agent picks its destination.
type MoveStrategy string

const (
	// MoveRandom picks a uniformly random empty cell.
	MoveRandom MoveStrategy = "random"
	// MoveHorizontal orders candidates by column distance before picking
	// uniformly from the ordered list.
	MoveHorizontal MoveStrategy = "horizontal"
	// MoveNearest picks uniformly among the candidates at minimal column
	// distance.
	MoveNearest MoveStrategy = "nearest"
)

// ParseMoveStrategy maps a user supplied name onto a MoveStrategy.
func ParseMoveStrategy(s string) (MoveStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random", "uniform", "uniform-random":
		return MoveRandom, nil
	case "horizontal", "horizontal-biased":
		return MoveHorizontal, nil
	case "nearest":
		return MoveNearest, nil
	default:
		return "", fmt.Errorf("move strategy %q: %w", s, ErrUnknownOption)
	}
}

// UpdateOrder selects the processing order of unhappy agents within a tick.
type UpdateOrder string

const (
	// OrderSequential processes agents in row-major order.
	OrderSequential UpdateOrder = "sequential"
	// OrderRandom shuffles the agents every tick.
	OrderRandom UpdateOrder = "random"
)

// ParseUpdateOrder maps a user supplied name onto an UpdateOrder.
func ParseUpdateOrder(s string) (UpdateOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential", "row-major":
		return OrderSequential, nil
	case "random", "randomized", "shuffled":
		return OrderRandom, nil
	default:
		return "", fmt.Errorf("update order %q: %w", s, ErrUnknownOption)
	}
}

// Config holds the immutable parameters of one simulation run.
type Config struct {
	Size       int
	EmptyRatio float64
	Threshold  int

	Move  MoveStrategy
	Order UpdateOrder

	MaxIterations int
	Seed          int64
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Size:          100,
		EmptyRatio:    0.1,
		Threshold:     4,
		Move:          MoveRandom,
		Order:         OrderSequential,
		MaxIterations: DefaultMaxIterations,
		Seed:          1337,
	}
}

// Cells returns N².
func (c Config) Cells() int { return c.Size * c.Size }

// EmptyCount returns floor(N²·ratio).
func (c Config) EmptyCount() int {
	return int(math.Floor(float64(c.Cells()) * c.EmptyRatio))
}

// Population returns the initial split of cell states. Red gets the floor
// half of the agents and Blue the remainder.
func (c Config) Population() Population {
	empty := c.EmptyCount()
	agents := c.Cells() - empty
	red := agents / 2
	return Population{Red: red, Blue: agents - red, Empty: empty}
}

// Validate reports the first problem with the configuration.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("grid size %d must be positive: %w", c.Size, ErrInvalidConfig)
	}
	if c.Size > math.MaxInt32/c.Size {
		return fmt.Errorf("grid size %d too large: %w", c.Size, ErrInvalidConfig)
	}
	if math.IsNaN(c.EmptyRatio) || c.EmptyRatio < 0 || c.EmptyRatio > 1 {
		return fmt.Errorf("empty ratio %v outside [0,1]: %w", c.EmptyRatio, ErrInvalidConfig)
	}
	if empty := c.EmptyCount(); empty < 0 || empty > c.Cells() {
		return fmt.Errorf("empty count %d outside [0,%d]: %w", empty, c.Cells(), ErrInvalidConfig)
	}
	if c.Threshold < 0 || c.Threshold > MaxThreshold {
		return fmt.Errorf("threshold %d outside [0,%d]: %w", c.Threshold, MaxThreshold, ErrInvalidConfig)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations %d must be positive: %w", c.MaxIterations, ErrInvalidConfig)
	}
	if _, err := ParseMoveStrategy(string(c.Move)); err != nil {
		return err
	}
	if _, err := ParseUpdateOrder(string(c.Order)); err != nil {
		return err
	}
	return nil
}

// String renders the parameters the way run summaries print them.
func (c Config) String() string {
	return fmt.Sprintf("N=%d empty=%.2f H=%d move=%s order=%s", c.Size, c.EmptyRatio, c.Threshold, c.Move, c.Order)
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Values that do not parse or fall out of range keep their defaults.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["n"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 4096 {
			c.Size = parsed
		}
	}
	if v, ok := cfg["empty_ratio"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.EmptyRatio = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= MaxThreshold {
			c.Threshold = parsed
		}
	}
	if v, ok := cfg["move"]; ok {
		if parsed, err := ParseMoveStrategy(v); err == nil {
			c.Move = parsed
		}
	}
	if v, ok := cfg["order"]; ok {
		if parsed, err := ParseUpdateOrder(v); err == nil {
			c.Order = parsed
		}
	}
	if v, ok := cfg["max_iter"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.MaxIterations = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	return c
}
