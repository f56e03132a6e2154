package network

import (
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is the weighted routing view of a Network. Edge weights are
// freespeed travel times in seconds.
type Graph struct {
	*simple.WeightedDirectedGraph
	nodeIDs map[string]int64
	nodes   []*Node
	// links indexed by (from, to) graph node ids; the cheapest link wins
	// when several links connect the same pair.
	links map[[2]int64]*Link
}

// Graph builds the weighted routing graph of n.
func (n *Network) Graph() *Graph {
	g := &Graph{
		WeightedDirectedGraph: simple.NewWeightedDirectedGraph(0, 0),
		nodeIDs:               make(map[string]int64, len(n.nodeOrder)),
		links:                 make(map[[2]int64]*Link, len(n.linkOrder)),
	}
	for i, node := range n.Nodes() {
		id := int64(i)
		g.nodeIDs[node.ID] = id
		g.nodes = append(g.nodes, node)
		g.AddNode(simple.Node(id))
	}
	for _, l := range n.Links() {
		from, to := g.nodeIDs[l.From.ID], g.nodeIDs[l.To.ID]
		if from == to {
			continue
		}
		key := [2]int64{from, to}
		if prev, ok := g.links[key]; ok && prev.FreespeedTravelTime() <= l.FreespeedTravelTime() {
			continue
		}
		g.links[key] = l
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(from), simple.Node(to), l.FreespeedTravelTime()))
	}
	return g
}

// NodeID returns the graph id of a network node.
func (g *Graph) NodeID(nodeID string) (int64, bool) {
	id, ok := g.nodeIDs[nodeID]
	return id, ok
}

// LinkBetween returns the link represented by the edge from -> to.
func (g *Graph) LinkBetween(from, to int64) *Link {
	return g.links[[2]int64{from, to}]
}
