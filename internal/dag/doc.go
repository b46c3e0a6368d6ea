// Package dag provides a small, string-keyed directed graph used to validate
// the prerequisite edges between targets and to look them up while emitting
// targets concurrently.
//
// Edges point from a prerequisite to the node that needs it. Node and edge
// order follow insertion, so cycle reports are stable across runs.
package dag
