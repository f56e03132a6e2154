package output

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/modesim/core/population"
)

const (
	PlansFile  = "output_plans.json"
	ConfigFile = "output_config.yaml"
)

type elementDoc struct {
	Activity *population.Activity `json:"activity,omitempty"`
	Leg      *population.Leg      `json:"leg,omitempty"`
}

type planDoc struct {
	Score    *float64     `json:"score"`
	Type     string       `json:"type,omitempty"`
	Selected bool         `json:"selected"`
	Elements []elementDoc `json:"elements"`
}

type personDoc struct {
	ID    string    `json:"id"`
	Plans []planDoc `json:"plans"`
}

// WritePlans writes every person with its plan memory as indented JSON.
func WritePlans(path string, persons []*population.Person) error {
	docs := make([]personDoc, 0, len(persons))
	for _, p := range persons {
		doc := personDoc{ID: p.ID, Plans: make([]planDoc, 0, len(p.Plans))}
		for _, plan := range p.Plans {
			pd := planDoc{Score: plan.Score, Type: plan.Type, Selected: plan == p.SelectedPlan()}
			for _, e := range plan.Elements {
				switch v := e.(type) {
				case *population.Activity:
					pd.Elements = append(pd.Elements, elementDoc{Activity: v})
				case *population.Leg:
					pd.Elements = append(pd.Elements, elementDoc{Leg: v})
				}
			}
			doc.Plans = append(doc.Plans, pd)
		}
		docs = append(docs, doc)
	}
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write plans: %w", err)
	}
	return nil
}

// WriteConfig writes v as YAML.
func WriteConfig(path string, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
