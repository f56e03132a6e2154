package routing

import (
	"fmt"

	"github.com/kilianp07/modesim/core/population"
)

// TeleportationRoutingModule moves travelers along the beeline at a fixed speed.
type TeleportationRoutingModule struct {
	// Speed in meters per second.
	Speed float64
	// BeelineDistanceFactor scales the euclidean distance.
	BeelineDistanceFactor float64
}

// CalcRoute implements RoutingModule.
func (m TeleportationRoutingModule) CalcRoute(from, to *population.Activity, _ float64) (*population.Route, error) {
	if m.Speed <= 0 {
		return nil, fmt.Errorf("teleported speed must be positive, got %v", m.Speed)
	}
	factor := m.BeelineDistanceFactor
	if factor == 0 {
		factor = 1
	}
	dist := from.Coord.Distance(to.Coord) * factor
	return &population.Route{Distance: dist, TravelTime: dist / m.Speed}, nil
}
