package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	set        []string
}

// flagKeys maps experiment flags to configuration keys.
var flagKeys = []struct {
	flag, key string
}{
	{"selection-strategy", "strategy.selection"},
	{"innovation-strategy", "strategy.innovation"},
	{"innovation-rate", "strategy.innovation_rate"},
	{"car-score", "scoring.modes.car.marginal_utility_of_traveling"},
	{"pt-score", "scoring.modes.pt.marginal_utility_of_traveling"},
	{"use-epsilons", "epsilon.enabled"},
	{"population-size", "population.size"},
	{"capacity", "network.capacity"},
	{"iterations", "controller.last_iteration"},
	{"seed", "global.random_seed"},
	{"output", "controller.output_directory"},
	{"workers", "controller.workers"},
	{"log-level", "logging.level"},
}

func (o *options) bind(root *cobra.Command) {
	f := root.PersistentFlags()
	f.StringVarP(&o.configPath, "config", "c", "", "configuration file (yaml or json)")
	f.StringArrayVar(&o.set, "set", nil, "override a configuration key, e.g. --set strategy.max_plan_memory=5")

	f.String("selection-strategy", "ChangeExpBeta", "plan selection strategy")
	f.String("innovation-strategy", "RandomMode", "innovation strategy")
	f.Float64("innovation-rate", 0.1, "weight of the innovation strategy")
	f.Float64("car-score", -0.1, "marginal utility of traveling by car (utils/h)")
	f.Float64("pt-score", -0.2, "marginal utility of traveling by pt (utils/h)")
	f.Bool("use-epsilons", false, "add a Gumbel error term to every trip score")
	f.Int("population-size", 10000, "number of travelers")
	f.Float64("capacity", 700000, "link capacity (veh/h)")
	f.Int("iterations", 300, "last iteration")
	f.Int64("seed", 4711, "global random seed")
	f.String("output", "simulation_output", "output directory")
	f.Int("workers", 0, "parallel workers, 0 uses all CPUs")
	f.String("log-level", "info", "log level")
}

// overrides returns the keys of explicitly set flags followed by the --set
// pairs. Unset flags leave lower layers untouched.
func (o *options) overrides(cmd *cobra.Command) (map[string]any, error) {
	flags := cmd.Flags()
	out := map[string]any{}
	for _, fk := range flagKeys {
		fl := flags.Lookup(fk.flag)
		if fl == nil || !fl.Changed {
			continue
		}
		out[fk.key] = fl.Value.String()
	}
	for _, kv := range o.set {
		key, val, err := parseSet(kv)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func parseSet(kv string) (string, string, error) {
	key, val, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid --set %q, want key=value", kv)
	}
	return key, val, nil
}
