package config

import (
	"github.com/kilianp07/modesim/core/scoring"
	"github.com/kilianp07/modesim/infra/output"
)

// DefaultSeed is the global random seed used when none is configured.
const DefaultSeed = 4711

// Default returns the configuration of the reference experiment.
func Default() Config {
	return Config{
		Controller: ControllerConfig{
			LastIteration:   300,
			OutputDirectory: "simulation_output",
			OverwriteMode:   output.DeleteDirectoryIfExists,
		},
		Global: GlobalConfig{RandomSeed: DefaultSeed},
		Scoring: ScoringConfig{
			Modes: map[string]scoring.ModeParams{
				"car": {MarginalUtilityOfTraveling: -0.1},
				"pt":  {MarginalUtilityOfTraveling: -0.2},
			},
			Activities: map[string]scoring.ActivityParams{
				"generic": {TypicalDuration: 1, ScoringThisActivityAtAll: false},
			},
			MarginalUtilityOfMoney: 1,
			Performing:             6,
			BrainExpBeta:           1,
		},
		Strategy: StrategyConfig{
			MaxPlanMemory:  3,
			Selection:      "ChangeExpBeta",
			Innovation:     "RandomMode",
			InnovationRate: 0.1,
		},
		ChangeMode: ChangeModeConfig{Modes: []string{"car", "pt"}},
		Routing: RoutingConfig{
			NetworkModes: []string{"car"},
			Teleported: map[string]TeleportedModeParams{
				"pt": {Speed: 2000.0 / 103.00001, BeelineDistanceFactor: 1},
			},
		},
		QSim: QSimConfig{
			MainModes:             []string{"car"},
			FlowCapacityFactor:    1,
			StorageCapacityFactor: 1e6,
			TravelTimeBinSize:     10 * 3600,
		},
		Network:    NetworkConfig{Capacity: 700000, Freespeed: 10},
		Population: PopulationConfig{Size: 10000},
		Epsilon:    EpsilonConfig{Provider: "gumbel", Scale: 1},
		Output:     output.StoreConfig{Backend: "jsonl"},
		Logging:    LoggingConfig{Level: "info"},
	}
}
