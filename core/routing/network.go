package routing

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kilianp07/modesim/core/network"
	"github.com/kilianp07/modesim/core/population"
)

// NetworkRoutingModule routes on the road network by freespeed travel time.
// The route starts on the origin activity's link and ends on the destination
// activity's link; the start link is not counted in distance or travel time.
type NetworkRoutingModule struct {
	net   *network.Network
	graph *network.Graph
	trees sync.Map // int64 -> path.Shortest
}

// NewNetworkRoutingModule prepares a router for net.
func NewNetworkRoutingModule(net *network.Network) *NetworkRoutingModule {
	return &NetworkRoutingModule{net: net, graph: net.Graph()}
}

// CalcRoute implements RoutingModule.
func (m *NetworkRoutingModule) CalcRoute(from, to *population.Activity, _ float64) (*population.Route, error) {
	start := m.net.Link(from.LinkID)
	if start == nil {
		return nil, fmt.Errorf("%w %s", ErrUnknownLink, from.LinkID)
	}
	end := m.net.Link(to.LinkID)
	if end == nil {
		return nil, fmt.Errorf("%w %s", ErrUnknownLink, to.LinkID)
	}
	route := &population.Route{LinkIDs: []string{start.ID}}
	if start == end {
		return route, nil
	}
	src, _ := m.graph.NodeID(start.To.ID)
	dst, _ := m.graph.NodeID(end.From.ID)
	if src != dst {
		nodes, _ := m.tree(src).To(dst)
		if len(nodes) == 0 {
			return nil, fmt.Errorf("%w from %s to %s", ErrNoRoute, start.ID, end.ID)
		}
		for i := 1; i < len(nodes); i++ {
			l := m.graph.LinkBetween(nodes[i-1].ID(), nodes[i].ID())
			route.LinkIDs = append(route.LinkIDs, l.ID)
			route.Distance += l.Length
			route.TravelTime += l.FreespeedTravelTime()
		}
	}
	route.LinkIDs = append(route.LinkIDs, end.ID)
	route.Distance += end.Length
	route.TravelTime += end.FreespeedTravelTime()
	return route, nil
}

func (m *NetworkRoutingModule) tree(src int64) path.Shortest {
	if t, ok := m.trees.Load(src); ok {
		return t.(path.Shortest)
	}
	t := path.DijkstraFrom(simple.Node(src), m.graph)
	actual, _ := m.trees.LoadOrStore(src, t)
	return actual.(path.Shortest)
}
