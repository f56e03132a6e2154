package population

import "fmt"

// Person is a traveler with a memory of plans, one of which is selected.
type Person struct {
	ID       string
	Plans    []*Plan
	selected *Plan
}

// NewPerson returns a person without plans.
func NewPerson(id string) *Person { return &Person{ID: id} }

// AddPlan appends plan. The first plan added becomes the selected one.
func (p *Person) AddPlan(plan *Plan) {
	p.Plans = append(p.Plans, plan)
	if p.selected == nil {
		p.selected = plan
	}
}

// SelectedPlan returns the plan executed in the next iteration.
func (p *Person) SelectedPlan() *Plan { return p.selected }

// SetSelectedPlan marks plan as selected. The plan must belong to the person.
func (p *Person) SetSelectedPlan(plan *Plan) error {
	for _, candidate := range p.Plans {
		if candidate == plan {
			p.selected = plan
			return nil
		}
	}
	return fmt.Errorf("person %s: plan not in memory", p.ID)
}

// RemovePlan drops plan from memory. Removing the selected plan selects the
// first remaining plan.
func (p *Person) RemovePlan(plan *Plan) bool {
	for i, candidate := range p.Plans {
		if candidate != plan {
			continue
		}
		p.Plans = append(p.Plans[:i], p.Plans[i+1:]...)
		if p.selected == plan {
			p.selected = nil
			if len(p.Plans) > 0 {
				p.selected = p.Plans[0]
			}
		}
		return true
	}
	return false
}
