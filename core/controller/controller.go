// Package controller runs the iterated execute/score/replan loop.
package controller

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/modesim/core/logger"
	"github.com/kilianp07/modesim/core/metrics"
	"github.com/kilianp07/modesim/core/population"
	"github.com/kilianp07/modesim/core/replanning"
	"github.com/kilianp07/modesim/core/routing"
	"github.com/kilianp07/modesim/core/scoring"
	"github.com/kilianp07/modesim/internal/eventbus"
)

// Phase marks where in an iteration an event was published.
type Phase string

const (
	PhaseStart Phase = "iteration_start"
	PhaseEnd   Phase = "iteration_end"
)

// IterationEvent is published at the start and the end of every iteration.
// Stats is only set for PhaseEnd.
type IterationEvent struct {
	Phase     Phase
	Iteration int
	Stats     *metrics.IterationStats
}

// Mobsim executes the selected plans of persons.
type Mobsim interface {
	Run(ctx context.Context, persons []*population.Person) error
}

// Config controls the iteration range and parallelism.
type Config struct {
	RunID          string
	FirstIteration int
	LastIteration  int
	// Workers bounds concurrent scoring; zero uses GOMAXPROCS.
	Workers int
}

// Deps are the collaborators of a Controller. Sink, Bus and Logger are optional.
type Deps struct {
	Population *population.Population
	Router     *routing.TripRouter
	Mobsim     Mobsim
	Scoring    scoring.FunctionFactory
	Strategies *replanning.StrategyManager
	Sink       metrics.Sink
	Bus        *eventbus.TypedBus[IterationEvent]
	Logger     logger.Logger
}

// Controller owns one simulation run.
type Controller struct {
	cfg     Config
	deps    Deps
	history []metrics.IterationStats
}

// New validates deps and returns a Controller.
func New(cfg Config, deps Deps) (*Controller, error) {
	switch {
	case deps.Population == nil:
		return nil, errors.New("controller: population is required")
	case deps.Router == nil:
		return nil, errors.New("controller: router is required")
	case deps.Mobsim == nil:
		return nil, errors.New("controller: mobsim is required")
	case deps.Scoring == nil:
		return nil, errors.New("controller: scoring is required")
	case deps.Strategies == nil:
		return nil, errors.New("controller: strategy manager is required")
	}
	if cfg.LastIteration < cfg.FirstIteration {
		return nil, fmt.Errorf("controller: last iteration %d before first %d", cfg.LastIteration, cfg.FirstIteration)
	}
	if deps.Sink == nil {
		deps.Sink = metrics.NopSink{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NopLogger{}
	}
	if cfg.Workers > 0 {
		deps.Strategies.SetWorkers(cfg.Workers)
	}
	return &Controller{cfg: cfg, deps: deps}, nil
}

// History returns the statistics of every completed iteration.
func (c *Controller) History() []metrics.IterationStats {
	return append([]metrics.IterationStats(nil), c.history...)
}

// Run executes all iterations. It stops at the first error or when ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	log := c.deps.Logger
	log.Infow("run started", map[string]any{
		"run_id":  c.cfg.RunID,
		"first":   c.cfg.FirstIteration,
		"last":    c.cfg.LastIteration,
		"persons": c.deps.Population.Len(),
	})
	for it := c.cfg.FirstIteration; it <= c.cfg.LastIteration; it++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats, err := c.iteration(ctx, it)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", it, err)
		}
		c.history = append(c.history, stats)
	}
	log.Infof("run %s finished after %d iterations", c.cfg.RunID, len(c.history))
	return nil
}

func (c *Controller) publish(ev IterationEvent) {
	if c.deps.Bus != nil {
		c.deps.Bus.Publish(ev)
	}
}

func (c *Controller) iteration(ctx context.Context, it int) (metrics.IterationStats, error) {
	start := time.Now()
	persons := c.deps.Population.Persons()
	c.publish(IterationEvent{Phase: PhaseStart, Iteration: it})

	var applied map[string]int
	if it > c.cfg.FirstIteration {
		var err error
		applied, err = c.deps.Strategies.Run(ctx, it, persons)
		if err != nil {
			return metrics.IterationStats{}, fmt.Errorf("replanning: %w", err)
		}
	}
	for _, p := range persons {
		plan := p.SelectedPlan()
		if plan == nil {
			continue
		}
		if err := c.deps.Router.RouteMissing(plan); err != nil {
			return metrics.IterationStats{}, fmt.Errorf("person %s: %w", p.ID, err)
		}
	}
	if err := c.deps.Mobsim.Run(ctx, persons); err != nil {
		return metrics.IterationStats{}, fmt.Errorf("mobsim: %w", err)
	}
	if err := c.score(ctx, persons); err != nil {
		return metrics.IterationStats{}, fmt.Errorf("scoring: %w", err)
	}

	stats := Compute(persons)
	stats.RunID = c.cfg.RunID
	stats.Iteration = it
	stats.StrategyCounts = applied
	stats.Duration = time.Since(start)
	stats.Time = time.Now()
	if err := c.deps.Sink.RecordIteration(stats); err != nil {
		c.deps.Logger.Warnf("iteration %d: record stats: %v", it, err)
	}
	c.deps.Logger.Debugw("iteration done", map[string]any{
		"iteration":    it,
		"mode_shares":  stats.ModeShares,
		"avg_executed": stats.AvgExecuted,
		"plans":        stats.PlanCount,
		"duration":     stats.Duration.String(),
	})
	c.publish(IterationEvent{Phase: PhaseEnd, Iteration: it, Stats: &stats})
	return stats, nil
}

func (c *Controller) score(ctx context.Context, persons []*population.Person) error {
	g, ctx := errgroup.WithContext(ctx)
	workers := c.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for _, p := range persons {
		plan := p.SelectedPlan()
		if plan == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plan.SetScore(scoring.ScorePlan(c.deps.Scoring.New(p), plan))
			return nil
		})
	}
	return g.Wait()
}
