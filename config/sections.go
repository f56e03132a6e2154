package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kilianp07/modesim/core/scoring"
	"github.com/kilianp07/modesim/infra/output"
)

type ControllerConfig struct {
	FirstIteration  int                  `json:"first_iteration" yaml:"first_iteration"`
	LastIteration   int                  `json:"last_iteration" yaml:"last_iteration"`
	OutputDirectory string               `json:"output_directory" yaml:"output_directory"`
	OverwriteMode   output.OverwriteMode `json:"overwrite_mode" yaml:"overwrite_mode"`
	// Workers bounds parallel replanning and scoring; 0 uses all CPUs.
	Workers int `json:"workers" yaml:"workers"`
	// RunID tags stored statistics; a random id is generated when empty.
	RunID string `json:"run_id" yaml:"run_id"`
}

func (c *ControllerConfig) SetDefaults() {
	if c.OutputDirectory == "" {
		c.OutputDirectory = "simulation_output"
	}
	if c.OverwriteMode == "" {
		c.OverwriteMode = output.DeleteDirectoryIfExists
	}
}

func (c ControllerConfig) Validate() error {
	if c.FirstIteration < 0 {
		return fmt.Errorf("first_iteration %d is negative", c.FirstIteration)
	}
	if c.LastIteration < c.FirstIteration {
		return fmt.Errorf("last_iteration %d before first_iteration %d", c.LastIteration, c.FirstIteration)
	}
	if !c.OverwriteMode.Valid() {
		return fmt.Errorf("unknown overwrite_mode %q", c.OverwriteMode)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d is negative", c.Workers)
	}
	return nil
}

type GlobalConfig struct {
	RandomSeed int64 `json:"random_seed" yaml:"random_seed"`
}

type ScoringConfig struct {
	Modes                  map[string]scoring.ModeParams     `json:"modes" yaml:"modes"`
	Activities             map[string]scoring.ActivityParams `json:"activities" yaml:"activities"`
	MarginalUtilityOfMoney float64                           `json:"marginal_utility_of_money" yaml:"marginal_utility_of_money"`
	Performing             float64                           `json:"performing" yaml:"performing"`
	// BrainExpBeta is the logit scale of the ExpBeta plan selectors.
	BrainExpBeta float64 `json:"brain_exp_beta" yaml:"brain_exp_beta"`
}

// Parameters returns the scoring parameters.
func (c ScoringConfig) Parameters() *scoring.Parameters {
	return &scoring.Parameters{
		Modes:                  c.Modes,
		Activities:             c.Activities,
		MarginalUtilityOfMoney: c.MarginalUtilityOfMoney,
		Performing:             c.Performing,
	}
}

func (c ScoringConfig) Validate() error {
	if len(c.Modes) == 0 {
		return errors.New("no mode parameters")
	}
	for name, a := range c.Activities {
		if a.ScoringThisActivityAtAll && a.TypicalDuration <= 0 {
			return fmt.Errorf("activity %q: typical_duration must be positive", name)
		}
	}
	return nil
}

// StrategySetting is an additional weighted strategy.
type StrategySetting struct {
	Name   string         `json:"name" yaml:"name"`
	Weight float64        `json:"weight" yaml:"weight"`
	Conf   map[string]any `json:"conf" yaml:"conf,omitempty"`
}

type StrategyConfig struct {
	MaxPlanMemory int `json:"max_plan_memory" yaml:"max_plan_memory"`
	// Selection runs with weight 1 - InnovationRate.
	Selection string `json:"selection" yaml:"selection"`
	// Innovation runs with weight InnovationRate.
	Innovation     string            `json:"innovation" yaml:"innovation"`
	InnovationRate float64           `json:"innovation_rate" yaml:"innovation_rate"`
	Settings       []StrategySetting `json:"settings" yaml:"settings,omitempty"`
}

func (c *StrategyConfig) SetDefaults() {
	if c.Selection == "" {
		c.Selection = "ChangeExpBeta"
	}
	if c.Innovation == "" {
		c.Innovation = "RandomMode"
	}
}

func (c StrategyConfig) Validate() error {
	if c.MaxPlanMemory < 1 {
		return fmt.Errorf("max_plan_memory %d must be at least 1", c.MaxPlanMemory)
	}
	if c.InnovationRate < 0 || c.InnovationRate > 1 {
		return fmt.Errorf("innovation_rate %v outside [0,1]", c.InnovationRate)
	}
	for _, s := range c.Settings {
		if s.Name == "" {
			return errors.New("strategy setting without name")
		}
		if s.Weight < 0 {
			return fmt.Errorf("strategy %s: negative weight", s.Name)
		}
	}
	return nil
}

type ChangeModeConfig struct {
	Modes []string `json:"modes" yaml:"modes"`
}

func (c ChangeModeConfig) Validate() error {
	for _, m := range c.Modes {
		if m == "" {
			return errors.New("empty mode name")
		}
	}
	return nil
}

// TeleportedModeParams configures beeline routing of a mode.
type TeleportedModeParams struct {
	// Speed in m/s.
	Speed                 float64 `json:"speed" yaml:"speed"`
	BeelineDistanceFactor float64 `json:"beeline_distance_factor" yaml:"beeline_distance_factor"`
}

type RoutingConfig struct {
	NetworkModes []string                        `json:"network_modes" yaml:"network_modes"`
	Teleported   map[string]TeleportedModeParams `json:"teleported" yaml:"teleported"`
	// RoutingRandomness is accepted for compatibility; routing is deterministic.
	RoutingRandomness float64 `json:"routing_randomness" yaml:"routing_randomness"`
}

func (c *RoutingConfig) SetDefaults() {
	for m, p := range c.Teleported {
		if p.BeelineDistanceFactor == 0 {
			p.BeelineDistanceFactor = 1
			c.Teleported[m] = p
		}
	}
}

func (c RoutingConfig) Validate() error {
	for m, p := range c.Teleported {
		if p.Speed <= 0 {
			return fmt.Errorf("teleported mode %q: speed must be positive", m)
		}
		if slices.Contains(c.NetworkModes, m) {
			return fmt.Errorf("mode %q is both network and teleported", m)
		}
	}
	return nil
}

// Routable reports whether mode has a routing module.
func (c RoutingConfig) Routable(mode string) bool {
	if slices.Contains(c.NetworkModes, mode) {
		return true
	}
	_, ok := c.Teleported[mode]
	return ok
}

type QSimConfig struct {
	MainModes          []string `json:"main_modes" yaml:"main_modes"`
	FlowCapacityFactor float64  `json:"flow_capacity_factor" yaml:"flow_capacity_factor"`
	// The following are stored for output_config.yaml only.
	StorageCapacityFactor float64 `json:"storage_capacity_factor" yaml:"storage_capacity_factor"`
	TravelTimeBinSize     int     `json:"travel_time_bin_size" yaml:"travel_time_bin_size"`
	LinkStatsInterval     int     `json:"link_stats_interval" yaml:"link_stats_interval"`
}

func (c *QSimConfig) SetDefaults() {
	if c.FlowCapacityFactor == 0 {
		c.FlowCapacityFactor = 1
	}
}

func (c QSimConfig) Validate() error {
	if c.FlowCapacityFactor < 0 {
		return fmt.Errorf("flow_capacity_factor %v is negative", c.FlowCapacityFactor)
	}
	return nil
}

type NetworkConfig struct {
	// Capacity in vehicles per hour, applied to every link.
	Capacity float64 `json:"capacity" yaml:"capacity"`
	// Freespeed in m/s, applied to every link.
	Freespeed float64 `json:"freespeed" yaml:"freespeed"`
}

func (c NetworkConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity %v must be positive", c.Capacity)
	}
	if c.Freespeed <= 0 {
		return fmt.Errorf("freespeed %v must be positive", c.Freespeed)
	}
	return nil
}

type PopulationConfig struct {
	Size int `json:"size" yaml:"size"`
}

func (c PopulationConfig) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("size %d is negative", c.Size)
	}
	return nil
}

type EpsilonConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Provider names a registered epsilon provider.
	Provider string `json:"provider" yaml:"provider"`
	// Scale of the Gumbel distribution.
	Scale float64 `json:"scale" yaml:"scale"`
}

func (c *EpsilonConfig) SetDefaults() {
	if c.Scale == 0 {
		c.Scale = 1
	}
	if c.Provider == "" {
		c.Provider = "gumbel"
	}
}

func (c EpsilonConfig) Validate() error {
	if c.Scale < 0 {
		return fmt.Errorf("scale %v is negative", c.Scale)
	}
	return nil
}
