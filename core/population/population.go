package population

import (
	"errors"
	"fmt"
)

// ErrDuplicatePerson is returned when a person id is added twice.
var ErrDuplicatePerson = errors.New("duplicate person id")

// Population holds persons in insertion order.
type Population struct {
	byID  map[string]*Person
	order []*Person
}

// New returns an empty population.
func New() *Population {
	return &Population{byID: map[string]*Person{}}
}

// Add registers a person.
func (p *Population) Add(person *Person) error {
	if _, ok := p.byID[person.ID]; ok {
		return fmt.Errorf("person %s: %w", person.ID, ErrDuplicatePerson)
	}
	p.byID[person.ID] = person
	p.order = append(p.order, person)
	return nil
}

// Person returns the person with id, or nil.
func (p *Population) Person(id string) *Person { return p.byID[id] }

// Persons returns all persons in insertion order. The slice must not be modified.
func (p *Population) Persons() []*Person { return p.order }

// Len returns the number of persons.
func (p *Population) Len() int { return len(p.order) }
