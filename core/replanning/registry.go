package replanning

import (
	"errors"
	"fmt"

	"github.com/kilianp07/modesim/core/factory"
	"github.com/kilianp07/modesim/core/routing"
)

// ErrUnknownStrategy is returned for strategy names nobody registered.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Deps are the collaborators strategies may need.
type Deps struct {
	Modes  []string
	Router *routing.TripRouter
	// Beta is the default logit scale of the ExpBeta selectors.
	Beta float64
}

type betaConf struct {
	Beta *float64 `json:"beta"`
}

func (d Deps) beta(conf map[string]any) (float64, error) {
	var c betaConf
	if err := factory.Decode(conf, &c); err != nil {
		return 0, err
	}
	if c.Beta != nil {
		return *c.Beta, nil
	}
	return d.Beta, nil
}

// NewRegistry returns the built-in strategies bound to deps.
func NewRegistry(deps Deps) *factory.Registry[*PlanStrategy] {
	reg := factory.NewRegistry[*PlanStrategy]()
	selection := func(name string, sel func(map[string]any) (PlanSelector, error)) {
		_ = reg.Register(name, func(conf map[string]any) (*PlanStrategy, error) {
			s, err := sel(conf)
			if err != nil {
				return nil, err
			}
			return NewPlanStrategy(name, s), nil
		})
	}
	selection("ChangeExpBeta", func(conf map[string]any) (PlanSelector, error) {
		b, err := deps.beta(conf)
		return ChangeExpBeta{Beta: b}, err
	})
	selection("SelectExpBeta", func(conf map[string]any) (PlanSelector, error) {
		b, err := deps.beta(conf)
		return ExpBetaPlanSelector{Beta: b}, err
	})
	selection("BestScore", func(map[string]any) (PlanSelector, error) { return BestPlanSelector{}, nil })
	selection("SelectRandom", func(map[string]any) (PlanSelector, error) { return RandomPlanSelector{}, nil })
	selection("KeepLastSelected", func(map[string]any) (PlanSelector, error) { return KeepSelected{}, nil })

	_ = reg.Register("RandomMode", func(map[string]any) (*PlanStrategy, error) {
		return RandomModeProvider{Modes: deps.Modes, Router: deps.Router}.Get()
	})
	_ = reg.Register("ReRoute", func(map[string]any) (*PlanStrategy, error) {
		if deps.Router == nil {
			return nil, errors.New("reroute: router is required")
		}
		return NewPlanStrategy("ReRoute", RandomPlanSelector{}, ReRoute{Router: deps.Router}), nil
	})
	return reg
}

// Build creates the named strategy from reg.
func Build(reg *factory.Registry[*PlanStrategy], name string, conf map[string]any) (*PlanStrategy, error) {
	if !reg.Has(name) {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownStrategy, name, reg.Names())
	}
	return reg.Create(factory.ModuleConfig{Type: name, Conf: conf})
}
