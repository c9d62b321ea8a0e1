// Package dag holds the page precedent graph. The engine adds one node per
// page and one edge per declared precedent, then asks the graph for cycles
// before any session is created.
package dag
