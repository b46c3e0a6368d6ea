package dag

import (
	"slices"
	"strings"
	"sync"
)

// Graph holds targets and the prerequisite edges between them. It is safe
// for concurrent use. Insertion order is kept so traversals are
// deterministic.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*node
	order []string
}

type node struct {
	prereqs []string
}

func (n *node) needs(name string) bool {
	return slices.Contains(n.prereqs, name)
}

// CycleError reports a prerequisite cycle. Path starts and ends with the
// same target and each element needs the one after it.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "circular dependency: " + strings.Join(e.Path, " -> ")
}
