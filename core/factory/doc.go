// Package factory provides the generic registry used to instantiate pluggable
// modules (plan strategies, metrics sinks) by name. Modules are described by a
// type string and a map of raw settings; factories decode the settings into
// typed structs and return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[*replanning.PlanStrategy]()
//	reg.Register("KeepLastSelected", func(map[string]any) (*replanning.PlanStrategy, error) {
//	    return replanning.NewPlanStrategy("KeepLastSelected", replanning.KeepSelected{}), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "KeepLastSelected"})
package factory
