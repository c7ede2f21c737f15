package scheduler

import (
	"fmt"

	"github.com/specialistvlad/provisiongrid/internal/dag"
)

// Scheduler tracks unmet dependencies for every node of a graph.
type Scheduler struct {
	graph   *dag.Graph
	unmet   map[string]int
	order   map[string]int
	done    map[string]bool
	emitted map[string]bool
}

// New creates a scheduler for the given graph.
func New(g *dag.Graph) (*Scheduler, error) {
	s := &Scheduler{
		graph:   g,
		unmet:   make(map[string]int, g.Len()),
		order:   make(map[string]int, g.Len()),
		done:    make(map[string]bool, g.Len()),
		emitted: make(map[string]bool, g.Len()),
	}
	for i, id := range g.Nodes() {
		deps, err := g.Dependencies(id)
		if err != nil {
			return nil, err
		}
		s.unmet[id] = len(deps)
		s.order[id] = i
	}
	return s, nil
}

// Roots returns, in plan order, every node with no dependencies. Each node is
// handed out at most once across Roots and Complete.
func (s *Scheduler) Roots() []string {
	var ready []string
	for _, id := range s.graph.Nodes() {
		if s.unmet[id] == 0 && !s.emitted[id] {
			s.emitted[id] = true
			ready = append(ready, id)
		}
	}
	return ready
}

// Complete records that id committed successfully and returns, in plan
// order, the dependents that became ready as a result.
func (s *Scheduler) Complete(id string) ([]string, error) {
	if _, ok := s.unmet[id]; !ok {
		return nil, fmt.Errorf("scheduler: unknown node %q", id)
	}
	if s.done[id] {
		return nil, fmt.Errorf("scheduler: node %q completed twice", id)
	}
	s.done[id] = true

	dependents, err := s.graph.Dependents(id)
	if err != nil {
		return nil, err
	}
	var ready []string
	for _, dep := range dependents {
		s.unmet[dep]--
		if s.unmet[dep] == 0 && !s.emitted[dep] {
			s.emitted[dep] = true
			ready = append(ready, dep)
		}
	}
	return ready, nil
}

// Remaining returns, in plan order, the nodes that were never handed out.
func (s *Scheduler) Remaining() []string {
	var out []string
	for _, id := range s.graph.Nodes() {
		if !s.emitted[id] {
			out = append(out, id)
		}
	}
	return out
}

// Less orders two node IDs by plan position.
func (s *Scheduler) Less(a, b string) bool {
	return s.order[a] < s.order[b]
}
