// Package sweep runs many independent Schelling simulations, one per
// (configuration, trial) pair, over a bounded pool of goroutines.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"schelling-ca/internal/logging"
	"schelling-ca/internal/sims/schelling"
	pcore "schelling-ca/pkg/core"
)

// ErrInvalidPlan is returned when a plan cannot be executed.
var ErrInvalidPlan = errors.New("invalid sweep plan")

// Plan lists the configurations to run and how often.
type Plan struct {
	Configs  []schelling.Config
	Trials   int
	Workers  int
	BaseSeed int64
}

// Result is the outcome of a single run.
type Result struct {
	RunID   uuid.UUID
	Index   int
	Trial   int
	Config  schelling.Config
	Outcome schelling.Outcome
	Final   []schelling.Cell
	Counts  schelling.Population
	Elapsed time.Duration
}

// Seed returns the seed the run used.
func (r Result) Seed() int64 { return r.Config.Seed }

// SeedFor derives the seed of a run from the plan's base seed so results do
// not depend on scheduling.
func SeedFor(base int64, index, trial int) int64 {
	return base + int64(index)*1_000_003 + int64(trial)
}

type runner struct {
	logger   *slog.Logger
	progress func(Result)
	trace    bool
}

// Option customises Run.
type Option func(*runner)

// WithLogger routes run summaries to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) { r.logger = logger }
}

// WithProgress registers fn to receive each result as it completes. Calls are
// serialised.
func WithProgress(fn func(Result)) Option {
	return func(r *runner) { r.progress = fn }
}

// WithTickTrace logs every tick of every run at trace level.
func WithTickTrace() Option {
	return func(r *runner) { r.trace = true }
}

// Validate checks the plan and every configuration in it.
func (p Plan) Validate() error {
	if len(p.Configs) == 0 {
		return fmt.Errorf("no configurations: %w", ErrInvalidPlan)
	}
	if p.Trials <= 0 {
		return fmt.Errorf("trials %d must be positive: %w", p.Trials, ErrInvalidPlan)
	}
	var errs []error
	for i, cfg := range p.Configs {
		if err := cfg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("config %d (%s): %w", i, cfg, err))
		}
	}
	return errors.Join(errs...)
}

// Run executes every (configuration, trial) pair of plan and returns the
// results in plan order: configuration-major, trial-minor. No run starts if
// any configuration is invalid.
func Run(ctx context.Context, plan Plan, opts ...Option) ([]Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	r := &runner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(r)
	}

	workers := plan.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(plan.Configs)*plan.Trials)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, base := range plan.Configs {
		for trial := 1; trial <= plan.Trials; trial++ {
			slot := i*plan.Trials + trial - 1
			cfg := base
			cfg.Seed = SeedFor(plan.BaseSeed, i, trial)
			g.Go(func() error {
				res, err := r.runOne(gctx, i, trial, cfg)
				if err != nil {
					return err
				}
				results[slot] = res
				if r.progress != nil {
					mu.Lock()
					r.progress(res)
					mu.Unlock()
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *runner) runOne(ctx context.Context, index, trial int, cfg schelling.Config) (Result, error) {
	id := uuid.New()
	model, err := schelling.New(cfg, pcore.NewSource(cfg.Seed))
	if err != nil {
		return Result{}, fmt.Errorf("run %s: %w", id, err)
	}
	if r.trace {
		log := r.logger.With("run", id.String())
		model.SetTickHook(func(tick int, stats schelling.StepStats) {
			log.Log(ctx, logging.LevelTrace, "tick", "n", tick, "unhappy", stats.Unhappy, "moved", stats.Moved, "stranded", stats.Stranded)
		})
	}

	start := time.Now()
	out, err := model.Run(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("run %s (%s): %w", id, cfg, err)
	}
	elapsed := time.Since(start)

	grid := model.Grid()
	res := Result{
		RunID:   id,
		Index:   index,
		Trial:   trial,
		Config:  model.Config(),
		Outcome: out,
		Final:   grid.Snapshot(),
		Counts:  grid.Counts(),
		Elapsed: elapsed,
	}
	r.logger.Info("run finished",
		"run", id.String(),
		"trial", trial,
		"h", cfg.Threshold,
		"move", cfg.Move,
		"order", cfg.Order,
		"iterations", out.Iterations,
		"state", out.State.String(),
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return res, nil
}

// Matrix builds the cartesian product of thresholds, moves and orders on top
// of base, threshold-major.
func Matrix(base schelling.Config, thresholds []int, moves []schelling.MoveStrategy, orders []schelling.UpdateOrder) []schelling.Config {
	out := make([]schelling.Config, 0, len(thresholds)*len(moves)*len(orders))
	for _, h := range thresholds {
		for _, m := range moves {
			for _, o := range orders {
				cfg := base
				cfg.Threshold = h
				cfg.Move = m
				cfg.Order = o
				out = append(out, cfg)
			}
		}
	}
	return out
}
