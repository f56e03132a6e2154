// Package config loads the run configuration from defaults, an optional
// YAML or JSON file, MODESIM_ environment variables and explicit overrides,
// in that order.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/modesim/core/metrics"
	"github.com/kilianp07/modesim/infra/output"
)

// EnvPrefix prefixes environment overrides; "__" separates levels, e.g.
// MODESIM_CONTROLLER__LAST_ITERATION=10.
const EnvPrefix = "MODESIM_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Controller ControllerConfig   `json:"controller" yaml:"controller"`
	Global     GlobalConfig       `json:"global" yaml:"global"`
	Scoring    ScoringConfig      `json:"scoring" yaml:"scoring"`
	Strategy   StrategyConfig     `json:"strategy" yaml:"strategy"`
	ChangeMode ChangeModeConfig   `json:"change_mode" yaml:"change_mode"`
	Routing    RoutingConfig      `json:"routing" yaml:"routing"`
	QSim       QSimConfig         `json:"qsim" yaml:"qsim"`
	Network    NetworkConfig      `json:"network" yaml:"network"`
	Population PopulationConfig   `json:"population" yaml:"population"`
	Epsilon    EpsilonConfig      `json:"epsilon" yaml:"epsilon"`
	Metrics    metrics.Config     `json:"metrics" yaml:"metrics"`
	Output     output.StoreConfig `json:"output" yaml:"output"`
	Logging    LoggingConfig      `json:"logging" yaml:"logging"`
}

// Load builds the configuration. path may be empty. overrides are dotted
// keys such as "strategy.innovation_rate"; string values are converted to
// the field type.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("override %s: %w", key, err)
		}
	}

	cfg := Default()
	dc := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json", DecoderConfig: dc}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults fills fields that must not stay zero.
func (c *Config) SetDefaults() {
	c.Controller.SetDefaults()
	c.Strategy.SetDefaults()
	c.Routing.SetDefaults()
	c.QSim.SetDefaults()
	c.Epsilon.SetDefaults()
	c.Logging.SetDefaults()
	if c.Output.Backend == "" {
		c.Output.Backend = "jsonl"
	}
}

// Validate checks every section and the references between them.
func (c Config) Validate() error {
	validators := []struct {
		section string
		fn      func() error
	}{
		{"controller", c.Controller.Validate},
		{"scoring", c.Scoring.Validate},
		{"strategy", c.Strategy.Validate},
		{"change_mode", c.ChangeMode.Validate},
		{"routing", c.Routing.Validate},
		{"qsim", c.QSim.Validate},
		{"network", c.Network.Validate},
		{"population", c.Population.Validate},
		{"epsilon", c.Epsilon.Validate},
		{"logging", c.Logging.Validate},
		{"output", c.validateOutput},
		{"change_mode", c.validateModes},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, v.section, err)
		}
	}
	return nil
}

func (c Config) validateOutput() error {
	for _, b := range output.Backends() {
		if b == c.Output.Backend {
			return nil
		}
	}
	return fmt.Errorf("unknown backend %q", c.Output.Backend)
}

// validateModes requires every switchable mode to be routable and scored.
func (c Config) validateModes() error {
	for _, m := range c.ChangeMode.Modes {
		if !c.Routing.Routable(m) {
			return fmt.Errorf("mode %q has no routing", m)
		}
		if _, ok := c.Scoring.Modes[m]; !ok {
			return fmt.Errorf("mode %q has no scoring parameters", m)
		}
	}
	return nil
}
