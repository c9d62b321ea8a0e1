package dag

import "sync"

// Graph is a directed graph of named nodes. Edges point from a node to the
// nodes that depend on it. All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map and the insertion order.
	mutex sync.RWMutex
	nodes map[string]*node
	// order keeps node ids in insertion order so traversals and error
	// messages are deterministic.
	order []string
}

// node is un-exported to keep callers on the string-id API.
type node struct {
	id string
	// deps holds the ids this node depends on, in edge insertion order.
	deps []string
}
