package dag

import (
	"fmt"
	"slices"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
// Adding an existing edge again is a no-op.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[fromID]; !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if !slices.Contains(toNode.deps, fromID) {
		toNode.deps = append(toNode.deps, fromID)
	}
	return nil
}

// Dependencies returns the IDs that the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(n.deps), nil
}

// DetectCycles checks the graph for cycles. The returned error names the
// nodes of the first cycle found, in edge order.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.findCycle()
}

// findCycle is a depth-first search with three node states:
// permanent: fully visited and not part of a cycle.
// temporary: on the current recursion path.
// unvisited: all other nodes.
func (g *Graph) findCycle() error {
	permanent := make(map[string]bool, len(g.nodes))
	temporary := make(map[string]bool)
	var path []string

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			start := slices.Index(path, n.id)
			cycle := append(slices.Clone(path[start:]), n.id)
			return fmt.Errorf("cycle detected involving node '%s': %s", n.id, strings.Join(cycle, " -> "))
		}

		temporary[n.id] = true
		path = append(path, n.id)
		for _, dep := range n.deps {
			if err := visit(g.nodes[dep]); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}
