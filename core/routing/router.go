package routing

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/modesim/core/population"
)

var (
	// ErrUnknownMode is returned when no routing module handles a leg mode.
	ErrUnknownMode = errors.New("no routing module for mode")
	// ErrUnknownLink is returned when an activity references a missing link.
	ErrUnknownLink = errors.New("unknown link")
	// ErrNoRoute is returned when the destination is unreachable.
	ErrNoRoute = errors.New("no route")
)

// RoutingModule computes the route of a single trip.
type RoutingModule interface {
	CalcRoute(from, to *population.Activity, departure float64) (*population.Route, error)
}

// TripRouter routes legs using the module registered for their mode.
// It is safe for concurrent use once all modules are registered.
type TripRouter struct {
	mu      sync.RWMutex
	modules map[string]RoutingModule
}

// NewTripRouter returns a router without modules.
func NewTripRouter() *TripRouter {
	return &TripRouter{modules: map[string]RoutingModule{}}
}

// Register binds a routing module to mode.
func (r *TripRouter) Register(mode string, m RoutingModule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[mode] = m
}

// Modes lists the routable modes.
func (r *TripRouter) Modes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	modes := make([]string, 0, len(r.modules))
	for m := range r.modules {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// Handles reports whether mode can be routed.
func (r *TripRouter) Handles(mode string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[mode]
	return ok
}

// RouteTrip computes and stores the route of one trip.
func (r *TripRouter) RouteTrip(trip population.Trip) error {
	r.mu.RLock()
	m, ok := r.modules[trip.Leg.Mode]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownMode, trip.Leg.Mode)
	}
	departure := trip.Origin.EndTime
	route, err := m.CalcRoute(trip.Origin, trip.Dest, departure)
	if err != nil {
		return fmt.Errorf("route %s leg %d: %w", trip.Leg.Mode, trip.Index, err)
	}
	trip.Leg.Route = route
	trip.Leg.DepartureTime = departure
	trip.Leg.TravelTime = route.TravelTime
	return nil
}

// RoutePlan routes every trip of plan.
func (r *TripRouter) RoutePlan(plan *population.Plan) error {
	for _, trip := range plan.Trips() {
		if err := r.RouteTrip(trip); err != nil {
			return err
		}
	}
	return nil
}

// RouteMissing routes only trips whose leg has no route yet.
func (r *TripRouter) RouteMissing(plan *population.Plan) error {
	for _, trip := range plan.Trips() {
		if trip.Leg.Route != nil {
			continue
		}
		if err := r.RouteTrip(trip); err != nil {
			return err
		}
	}
	return nil
}
