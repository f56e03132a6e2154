package network

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDuplicate is returned when a node or link id is added twice.
	ErrDuplicate = errors.New("duplicate id")
	// ErrUnknownNode is returned when a link references a node that is not part of the network.
	ErrUnknownNode = errors.New("unknown node")
)

// Coord is a planar coordinate in meters.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance between c and o.
func (c Coord) Distance(o Coord) float64 {
	return math.Hypot(c.X-o.X, c.Y-o.Y)
}

// Node is a network vertex.
type Node struct {
	ID    string `json:"id"`
	Coord Coord  `json:"coord"`
}

// Link is a directed road segment between two nodes.
type Link struct {
	ID   string `json:"id"`
	From *Node  `json:"-"`
	To   *Node  `json:"-"`
	// Length in meters.
	Length float64 `json:"length"`
	// Freespeed in meters per second.
	Freespeed float64 `json:"freespeed"`
	// Capacity in vehicles per hour.
	Capacity float64 `json:"capacity"`
}

// FreespeedTravelTime returns the uncongested traversal time in seconds.
func (l *Link) FreespeedTravelTime() float64 {
	if l.Freespeed <= 0 {
		return math.Inf(1)
	}
	return l.Length / l.Freespeed
}

// Network holds nodes and links in insertion order.
type Network struct {
	nodes     map[string]*Node
	links     map[string]*Link
	nodeOrder []string
	linkOrder []string
}

// New returns an empty network.
func New() *Network {
	return &Network{nodes: map[string]*Node{}, links: map[string]*Link{}}
}

// AddNode registers a node.
func (n *Network) AddNode(node *Node) error {
	if _, ok := n.nodes[node.ID]; ok {
		return fmt.Errorf("node %s: %w", node.ID, ErrDuplicate)
	}
	n.nodes[node.ID] = node
	n.nodeOrder = append(n.nodeOrder, node.ID)
	return nil
}

// AddLink registers a link. Both end nodes must already be in the network.
// A zero length is replaced by the euclidean distance between the end nodes.
func (n *Network) AddLink(link *Link) error {
	if _, ok := n.links[link.ID]; ok {
		return fmt.Errorf("link %s: %w", link.ID, ErrDuplicate)
	}
	if link.From == nil || n.nodes[link.From.ID] != link.From {
		return fmt.Errorf("link %s from-node: %w", link.ID, ErrUnknownNode)
	}
	if link.To == nil || n.nodes[link.To.ID] != link.To {
		return fmt.Errorf("link %s to-node: %w", link.ID, ErrUnknownNode)
	}
	if link.Length == 0 {
		link.Length = link.From.Coord.Distance(link.To.Coord)
	}
	n.links[link.ID] = link
	n.linkOrder = append(n.linkOrder, link.ID)
	return nil
}

// Node returns the node with id, or nil.
func (n *Network) Node(id string) *Node { return n.nodes[id] }

// Link returns the link with id, or nil.
func (n *Network) Link(id string) *Link { return n.links[id] }

// Nodes returns all nodes in insertion order.
func (n *Network) Nodes() []*Node {
	out := make([]*Node, 0, len(n.nodeOrder))
	for _, id := range n.nodeOrder {
		out = append(out, n.nodes[id])
	}
	return out
}

// Links returns all links in insertion order.
func (n *Network) Links() []*Link {
	out := make([]*Link, 0, len(n.linkOrder))
	for _, id := range n.linkOrder {
		out = append(out, n.links[id])
	}
	return out
}
