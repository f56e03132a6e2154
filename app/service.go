package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/kilianp07/modesim/app/plugins"
	"github.com/kilianp07/modesim/config"
	"github.com/kilianp07/modesim/core/controller"
	coremetrics "github.com/kilianp07/modesim/core/metrics"
	"github.com/kilianp07/modesim/core/population"
	"github.com/kilianp07/modesim/core/replanning"
	"github.com/kilianp07/modesim/core/routing"
	"github.com/kilianp07/modesim/core/scoring"
	"github.com/kilianp07/modesim/infra/logger"
	"github.com/kilianp07/modesim/infra/metrics"
	_ "github.com/kilianp07/modesim/infra/mqtt"
	"github.com/kilianp07/modesim/infra/output"
	"github.com/kilianp07/modesim/internal/eventbus"
)

// Service wires one experiment run from its configuration.
type Service struct {
	cfg        *config.Config
	runID      string
	pop        *population.Population
	controller *controller.Controller
	sink       coremetrics.Sink
	bus        *eventbus.TypedBus[controller.IterationEvent]
	log        logger.Logger

	progress  sync.WaitGroup
	closeOnce sync.Once
}

// New prepares the output directory and builds every component of the run.
// Misconfigured strategies, epsilon providers and sinks are reported here,
// before any iteration runs.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	runID := cfg.Controller.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	net, err := BuildNetwork(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}
	pop, err := BuildPopulation(net, cfg.Population.Size, cfg.Global.RandomSeed)
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	router := BuildRouter(cfg.Routing, net)

	fn, err := scoringFactory(cfg)
	if err != nil {
		return nil, err
	}
	mgr, err := strategyManager(cfg, router)
	if err != nil {
		return nil, err
	}

	dir := cfg.Controller.OutputDirectory
	if err := output.PrepareDir(dir, cfg.Controller.OverwriteMode); err != nil {
		return nil, err
	}
	sink, err := buildSink(cfg, dir)
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewTyped[controller.IterationEvent]()
	ctrl, err := controller.New(controller.Config{
		RunID:          runID,
		FirstIteration: cfg.Controller.FirstIteration,
		LastIteration:  cfg.Controller.LastIteration,
		Workers:        cfg.Controller.Workers,
	}, controller.Deps{
		Population: pop,
		Router:     router,
		Mobsim:     BuildMobsim(cfg.QSim, net),
		Scoring:    fn,
		Strategies: mgr,
		Sink:       sink,
		Bus:        bus,
		Logger:     logger.New("controller"),
	})
	if err != nil {
		_ = coremetrics.Close(sink)
		bus.Close()
		return nil, err
	}

	s := &Service{
		cfg:        cfg,
		runID:      runID,
		pop:        pop,
		controller: ctrl,
		sink:       sink,
		bus:        bus,
		log:        log,
	}
	s.watchProgress()
	return s, nil
}

func scoringFactory(cfg *config.Config) (scoring.FunctionFactory, error) {
	var fn scoring.FunctionFactory = scoring.CharyparNagelFactory{Params: cfg.Scoring.Parameters()}
	if !cfg.Epsilon.Enabled {
		return fn, nil
	}
	p, err := plugins.NewEpsilonProvider(cfg.Epsilon.Provider, cfg.Global.RandomSeed, cfg.Epsilon.Scale)
	if err != nil {
		return nil, fmt.Errorf("epsilon: %w", err)
	}
	return scoring.EpsilonFactory{Delegate: fn, Provider: p}, nil
}

func strategyManager(cfg *config.Config, router *routing.TripRouter) (*replanning.StrategyManager, error) {
	reg := replanning.NewRegistry(replanning.Deps{
		Modes:  cfg.ChangeMode.Modes,
		Router: router,
		Beta:   cfg.Scoring.BrainExpBeta,
	})
	mgr := replanning.NewStrategyManager(cfg.Global.RandomSeed, cfg.Strategy.MaxPlanMemory)
	settings := append([]config.StrategySetting{
		{Name: cfg.Strategy.Selection, Weight: 1 - cfg.Strategy.InnovationRate},
		{Name: cfg.Strategy.Innovation, Weight: cfg.Strategy.InnovationRate},
	}, cfg.Strategy.Settings...)
	for _, st := range settings {
		s, err := replanning.Build(reg, st.Name, st.Conf)
		if err != nil {
			return nil, fmt.Errorf("strategy: %w", err)
		}
		if err := mgr.AddStrategy(s, st.Weight); err != nil {
			return nil, fmt.Errorf("strategy: %w", err)
		}
	}
	return mgr, nil
}

func buildSink(cfg *config.Config, dir string) (coremetrics.Sink, error) {
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	store, err := output.OpenStore(cfg.Output, dir)
	if err != nil {
		_ = coremetrics.Close(sink)
		return nil, err
	}
	return coremetrics.NewMultiSink(sink, output.StoreSink{Store: store}), nil
}

func (s *Service) watchProgress() {
	sub := s.bus.Subscribe()
	s.progress.Add(1)
	go func() {
		defer s.progress.Done()
		for ev := range sub {
			if ev.Phase != controller.PhaseEnd || ev.Stats == nil {
				continue
			}
			fields := map[string]any{
				"iteration":    ev.Iteration,
				"avg_executed": ev.Stats.AvgExecuted,
				"plans":        ev.Stats.PlanCount,
			}
			for mode, share := range ev.Stats.ModeShares {
				fields["share_"+mode] = share
			}
			s.log.Infow("iteration finished", fields)
		}
	}()
}

// RunID identifies the run in stored statistics.
func (s *Service) RunID() string { return s.runID }

// Population returns the simulated travelers.
func (s *Service) Population() *population.Population { return s.pop }

// History returns the statistics of the completed iterations.
func (s *Service) History() []coremetrics.IterationStats { return s.controller.History() }

// Run executes the iterations and writes the final plans and the effective
// configuration into the output directory.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prometheus server: %v", err)
			}
		}()
	}

	s.log.Infof("run %s: %d persons, iterations %d..%d", s.runID, s.pop.Len(),
		s.cfg.Controller.FirstIteration, s.cfg.Controller.LastIteration)
	if err := s.controller.Run(ctx); err != nil {
		return err
	}

	dir := s.cfg.Controller.OutputDirectory
	if err := output.WritePlans(filepath.Join(dir, output.PlansFile), s.pop.Persons()); err != nil {
		return fmt.Errorf("write plans: %w", err)
	}
	if err := output.WriteConfig(filepath.Join(dir, output.ConfigFile), s.cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Close stops the progress logger and closes the sinks.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.bus.Close()
		s.progress.Wait()
		err = coremetrics.Close(s.sink)
	})
	return err
}
