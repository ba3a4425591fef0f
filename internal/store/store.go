// Package store is the in-memory graph.Store behind the lineage graph. On top
// of the graph.Store contract it lets callers update the attributes of a vertex
// in place and list the vertices without parents.
package store

import (
	"sync"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// CustomStore is a graph.Store whose vertex properties can be updated.
type CustomStore[K comparable, T any] interface {
	graph.Store[K, T]
	UpdateVertex(k K, options ...func(*graph.VertexProperties)) error
	Sources() ([]K, error)
}

type entry[T any] struct {
	value T
	props *graph.VertexProperties
}

// MemoryStore keeps the vertices in insertion order. Listing vertices or
// edges always returns them in that order, so a graph rendered from the
// store is stable from one run to the next.
type MemoryStore[K comparable, T any] struct {
	mu      sync.RWMutex
	order   []K
	entries map[K]entry[T]
	// children[source][target] and parents[target][source] hold the same edge.
	children map[K]map[K]graph.Edge[K]
	parents  map[K]map[K]graph.Edge[K]
}

func NewMemoryStore[K comparable, T any]() *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		entries:  make(map[K]entry[T]),
		children: make(map[K]map[K]graph.Edge[K]),
		parents:  make(map[K]map[K]graph.Edge[K]),
	}
}

func (s *MemoryStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[k]; exists {
		return graph.ErrVertexAlreadyExists
	}
	if p.Attributes == nil {
		p.Attributes = make(map[string]string)
	}
	s.entries[k] = entry[T]{value: t, props: &p}
	s.order = append(s.order, k)

	return nil
}

// ListVertices returns the vertices in insertion order.
func (s *MemoryStore[K, T]) ListVertices() ([]K, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]K(nil), s.order...), nil
}

func (s *MemoryStore[K, T]) VertexCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order), nil
}

func (s *MemoryStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[k]
	if !exists {
		var zero T
		return zero, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return e.value, *e.props, nil
}

func (s *MemoryStore[K, T]) RemoveVertex(k K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[k]; !exists {
		return graph.ErrVertexNotFound
	}
	if len(s.parents[k]) > 0 || len(s.children[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.entries, k)
	delete(s.parents, k)
	delete(s.children, k)
	kept := s.order[:0]
	for _, other := range s.order {
		if other != k {
			kept = append(kept, other)
		}
	}
	s.order = kept

	return nil
}

// UpdateVertex applies options to the properties of the vertex k.
func (s *MemoryStore[K, T]) UpdateVertex(k K, options ...func(*graph.VertexProperties)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[k]
	if !exists {
		return graph.ErrVertexNotFound
	}
	for _, option := range options {
		option(e.props)
	}

	return nil
}

// Sources returns the vertices without parents, in insertion order.
func (s *MemoryStore[K, T]) Sources() ([]K, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sources []K
	for _, k := range s.order {
		if len(s.parents[k]) == 0 {
			sources = append(sources, k)
		}
	}

	return sources, nil
}

func (s *MemoryStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.link(sourceHash, targetHash, edge)

	return nil
}

func (s *MemoryStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.children[sourceHash][targetHash]; !exists {
		return graph.ErrEdgeNotFound
	}
	s.link(sourceHash, targetHash, edge)

	return nil
}

// link must be called with the write lock held.
func (s *MemoryStore[K, T]) link(sourceHash, targetHash K, edge graph.Edge[K]) {
	if s.children[sourceHash] == nil {
		s.children[sourceHash] = make(map[K]graph.Edge[K])
	}
	if s.parents[targetHash] == nil {
		s.parents[targetHash] = make(map[K]graph.Edge[K])
	}
	s.children[sourceHash][targetHash] = edge
	s.parents[targetHash][sourceHash] = edge
}

func (s *MemoryStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.children[sourceHash], targetHash)
	delete(s.parents[targetHash], sourceHash)

	return nil
}

func (s *MemoryStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edge, exists := s.children[sourceHash][targetHash]
	if !exists {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

// ListEdges returns the edges sorted by source then target insertion order.
func (s *MemoryStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]graph.Edge[K], 0)
	for _, source := range s.order {
		targets := s.children[source]
		if len(targets) == 0 {
			continue
		}
		for _, target := range s.order {
			if edge, exists := targets[target]; exists {
				edges = append(edges, edge)
			}
		}
	}

	return edges, nil
}

// CreatesCycle reports whether an edge from source to target would close a
// cycle, that is whether target is source or one of its ancestors.
func (s *MemoryStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, k := range []K{source, target} {
		if _, exists := s.entries[k]; !exists {
			return false, errors.Wrapf(graph.ErrVertexNotFound, "vertex %v", k)
		}
	}

	seen := make(map[K]bool)
	pending := []K{source}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if current == target {
			return true, nil
		}
		if seen[current] {
			continue
		}
		seen[current] = true
		for parent := range s.parents[current] {
			pending = append(pending, parent)
		}
	}

	return false, nil
}

var _ CustomStore[string, string] = (*MemoryStore[string, string])(nil)
