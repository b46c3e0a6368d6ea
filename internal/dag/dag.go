package dag

import (
	"fmt"
)

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode registers a target. Registering a name twice keeps the first
// position.
func (g *Graph) AddNode(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[name]; ok {
		return
	}
	g.nodes[name] = &node{}
	g.order = append(g.order, name)
}

// Has reports whether name was registered.
func (g *Graph) Has(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[name]
	return ok
}

// Len returns the number of registered targets.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// AddEdge records that target needs prereq. Both must be registered. A
// target naming itself is reported as a one-element cycle; a repeated edge is
// ignored.
func (g *Graph) AddEdge(prereq, target string) error {
	if prereq == target {
		return &CycleError{Path: []string{target, target}}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[prereq]; !ok {
		return fmt.Errorf("prerequisite %q is not in the graph", prereq)
	}
	n, ok := g.nodes[target]
	if !ok {
		return fmt.Errorf("target %q is not in the graph", target)
	}
	if n.needs(prereq) {
		return nil
	}
	n.prereqs = append(n.prereqs, prereq)
	return nil
}

// Prerequisites returns what name needs, in edge insertion order.
func (g *Graph) Prerequisites(name string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("target %q is not in the graph", name)
	}
	return append([]string(nil), n.prereqs...), nil
}

// DetectCycles walks the graph depth first from every target in insertion
// order and returns a *CycleError for the first cycle it meets.
func (g *Graph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	done := make(map[string]bool, len(g.order))
	onStack := make(map[string]int)
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		if done[name] {
			return nil
		}
		if pos, ok := onStack[name]; ok {
			path := append([]string{}, stack[pos:]...)
			return &CycleError{Path: append(path, name)}
		}

		onStack[name] = len(stack)
		stack = append(stack, name)
		for _, p := range g.nodes[name].prereqs {
			if err := visit(p); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, name)
		done[name] = true
		return nil
	}

	for _, name := range g.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
