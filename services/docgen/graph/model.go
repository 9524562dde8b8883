// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"log/slog"
	"sort"
	"time"
)

// ModelState represents the lifecycle state of the model.
type ModelState int

const (
	// ModelStateBuilding indicates the model is accepting AddNode/AddEdge calls.
	ModelStateBuilding ModelState = iota

	// ModelStateReadOnly indicates the model is frozen and read-only.
	ModelStateReadOnly
)

// String returns the string representation of the ModelState.
func (s ModelState) String() string {
	switch s {
	case ModelStateBuilding:
		return "building"
	case ModelStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// Model is the in-memory code-entity graph for one documentation run.
//
// Description:
//
//	Model is a directed multigraph over code entities. It is owned by the
//	documentation orchestrator and read-only to every other component for
//	the lifetime of one run; no component mutates shared graph state
//	concurrently.
//
// Thread Safety:
//
//	Model is NOT safe for concurrent use during building. It is designed
//	for single-writer access during build, then read-only after Freeze().
type Model struct {
	// nodes maps node ID to Node. Unexported to prevent direct access.
	nodes map[string]*Node

	// edges contains all edges in the model.
	edges []*Edge

	// droppedEdges counts edges skipped at construction because an
	// endpoint was absent. Diagnostic only, never fatal.
	droppedEdges int

	// state is the current lifecycle state.
	state ModelState

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze() was
	// called. Zero if the model has not been frozen.
	BuiltAtMilli int64
}

// NewModel creates a new empty model in the Building state.
func NewModel() *Model {
	return &Model{
		nodes: make(map[string]*Node),
		edges: make([]*Edge, 0),
		state: ModelStateBuilding,
	}
}

// Build constructs a frozen model from an input payload.
//
// Description:
//
//	Convenience constructor for the external-collaborator contract: takes
//	the ordered node and edge record lists, enforces node-ID uniqueness
//	(first occurrence wins), drops edges whose endpoints are absent, and
//	returns the model already frozen.
//
// Inputs:
//
//	nodes - Node records from the static-analysis payload.
//	edges - Edge records from the static-analysis payload.
//
// Outputs:
//
//	*Model - The frozen model. Never nil.
func Build(nodes []NodeRecord, edges []EdgeRecord) *Model {
	m := NewModel()

	for _, rec := range nodes {
		if rec.ID == "" {
			continue
		}
		_, _ = m.AddNode(&Node{
			ID:        rec.ID,
			Name:      rec.Name,
			Category:  ParseCategory(rec.Category),
			File:      rec.File,
			StartLine: rec.StartLine,
			EndLine:   rec.EndLine,
			Code:      rec.Code,
		})
	}

	for _, rec := range edges {
		_ = m.AddEdge(rec.Source, rec.Target, ParseRelationship(rec.Relationship), rec.File, rec.Line)
	}

	m.Freeze()

	slog.Debug("graph model built",
		slog.Int("nodes", m.NodeCount()),
		slog.Int("edges", m.EdgeCount()),
		slog.Int("dropped_edges", m.DroppedEdges()),
	)

	return m
}

// State returns the current lifecycle state of the model.
func (m *Model) State() ModelState {
	return m.state
}

// IsFrozen returns true if the model is in read-only mode.
func (m *Model) IsFrozen() bool {
	return m.state == ModelStateReadOnly
}

// Freeze transitions the model to read-only mode.
//
// Description:
//
//	After calling Freeze(), AddNode and AddEdge will return ErrModelFrozen.
//	This operation is irreversible. The BuiltAtMilli timestamp is set to
//	the current time.
//
// Thread Safety:
//
//	After Freeze() returns, the model can be safely read from multiple
//	goroutines concurrently.
func (m *Model) Freeze() {
	m.state = ModelStateReadOnly
	m.BuiltAtMilli = time.Now().UnixMilli()
}

// NodeCount returns the number of nodes in the model.
func (m *Model) NodeCount() int {
	return len(m.nodes)
}

// EdgeCount returns the number of edges in the model.
func (m *Model) EdgeCount() int {
	return len(m.edges)
}

// DroppedEdges returns the number of edges skipped at construction time
// because an endpoint was absent.
func (m *Model) DroppedEdges() int {
	return m.droppedEdges
}

// AddNode adds a node to the model.
//
// Description:
//
//	Node insertion is idempotent by ID: if a node with the same ID already
//	exists, the existing node is returned unchanged and the new one is
//	discarded (first occurrence wins).
//
// Inputs:
//
//	node - The node to add. Must not be nil and must carry a non-empty ID.
//
// Outputs:
//
//	*Node - The node stored in the model (new or pre-existing).
//	error - ErrModelFrozen if the model is frozen, ErrInvalidNode if the
//	        node is nil or has an empty ID.
func (m *Model) AddNode(node *Node) (*Node, error) {
	if m.state == ModelStateReadOnly {
		return nil, ErrModelFrozen
	}
	if node == nil || node.ID == "" {
		return nil, ErrInvalidNode
	}

	if existing, ok := m.nodes[node.ID]; ok {
		return existing, nil
	}

	if node.Outgoing == nil {
		node.Outgoing = make([]*Edge, 0)
	}
	if node.Incoming == nil {
		node.Incoming = make([]*Edge, 0)
	}

	m.nodes[node.ID] = node
	return node, nil
}

// AddEdge creates a directed edge between two nodes.
//
// Description:
//
//	Both endpoints must already exist in the model. An edge with an absent
//	endpoint is not an error: it is counted, logged at warn level, and
//	skipped per the construction contract. Multiple edges of the same
//	relationship between the same pair of nodes are allowed.
//
// Outputs:
//
//	error - ErrModelFrozen if the model is frozen. Absent endpoints never
//	        produce an error.
func (m *Model) AddEdge(fromID, toID string, rel Relationship, file string, line int) error {
	if m.state == ModelStateReadOnly {
		return ErrModelFrozen
	}

	fromNode, fromOK := m.nodes[fromID]
	toNode, toOK := m.nodes[toID]
	if !fromOK || !toOK {
		m.droppedEdges++
		slog.Warn("edge dropped: endpoint absent",
			slog.String("source", fromID),
			slog.String("target", toID),
			slog.String("relationship", rel.String()),
		)
		return nil
	}

	edge := &Edge{
		FromID:       fromID,
		ToID:         toID,
		Relationship: rel,
		File:         file,
		Line:         line,
	}

	m.edges = append(m.edges, edge)
	fromNode.Outgoing = append(fromNode.Outgoing, edge)
	toNode.Incoming = append(toNode.Incoming, edge)
	return nil
}

// GetNode retrieves a node by its ID.
func (m *Model) GetNode(id string) (*Node, bool) {
	node, exists := m.nodes[id]
	return node, exists
}

// HasNode reports whether a node with the given ID exists.
func (m *Model) HasNode(id string) bool {
	_, exists := m.nodes[id]
	return exists
}

// Nodes returns an iterator function over all nodes in the model.
//
// Iteration order is undefined; use NodeIDs() when determinism matters.
func (m *Model) Nodes() func(yield func(string, *Node) bool) {
	return func(yield func(string, *Node) bool) {
		for id, node := range m.nodes {
			if !yield(id, node) {
				return
			}
		}
	}
}

// NodeIDs returns all node IDs in sorted order.
//
// Sorted iteration is the backbone of the determinism guarantee: every
// algorithm that walks the whole model walks it through this method.
func (m *Model) NodeIDs() []string {
	ids := make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edges returns a slice of all edges in the model.
//
// Callers must NOT modify the returned slice.
func (m *Model) Edges() []*Edge {
	return m.edges
}

// Successors returns the target nodes of the node's outgoing edges,
// deduplicated, in sorted ID order.
func (m *Model) Successors(id string) []*Node {
	node, ok := m.nodes[id]
	if !ok {
		return nil
	}
	return m.endpoints(node.Outgoing, func(e *Edge) string { return e.ToID })
}

// Predecessors returns the source nodes of the node's incoming edges,
// deduplicated, in sorted ID order.
func (m *Model) Predecessors(id string) []*Node {
	node, ok := m.nodes[id]
	if !ok {
		return nil
	}
	return m.endpoints(node.Incoming, func(e *Edge) string { return e.FromID })
}

// endpoints resolves one side of an edge list into unique, sorted nodes.
func (m *Model) endpoints(edges []*Edge, pick func(*Edge) string) []*Node {
	seen := make(map[string]bool, len(edges))
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		id := pick(e)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	result := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.nodes[id]; ok {
			result = append(result, n)
		}
	}
	return result
}

// Subgraph returns all nodes satisfying the predicate, in sorted ID order.
func (m *Model) Subgraph(pred func(*Node) bool) []*Node {
	ids := m.NodeIDs()
	result := make([]*Node, 0)
	for _, id := range ids {
		node := m.nodes[id]
		if pred(node) {
			result = append(result, node)
		}
	}
	return result
}

// UndirectedProjection builds undirected adjacency lists restricted to
// nodes satisfying the predicate.
//
// Description:
//
//	Used only by community detection. An undirected neighbor relation
//	exists between two nodes when any directed edge connects them and both
//	satisfy the predicate. Neighbor lists are deduplicated and sorted for
//	deterministic iteration.
//
// Outputs:
//
//	map[string][]string - Node ID to sorted neighbor IDs. Every node that
//	satisfies the predicate has an entry, possibly empty.
func (m *Model) UndirectedProjection(pred func(*Node) bool) map[string][]string {
	include := make(map[string]bool)
	for id, node := range m.nodes {
		if pred(node) {
			include[id] = true
		}
	}

	neighborSets := make(map[string]map[string]bool, len(include))
	for id := range include {
		neighborSets[id] = make(map[string]bool)
	}

	for _, e := range m.edges {
		if e.FromID == e.ToID {
			continue
		}
		if include[e.FromID] && include[e.ToID] {
			neighborSets[e.FromID][e.ToID] = true
			neighborSets[e.ToID][e.FromID] = true
		}
	}

	adjacency := make(map[string][]string, len(include))
	for id, set := range neighborSets {
		neighbors := make([]string, 0, len(set))
		for n := range set {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)
		adjacency[id] = neighbors
	}
	return adjacency
}

// Descendants returns all nodes reachable from start via outgoing edges,
// excluding start itself, in BFS order with sorted expansion, capped at
// limit (no cap when limit <= 0).
func (m *Model) Descendants(start string, limit int) []string {
	if _, ok := m.nodes[start]; !ok {
		return nil
	}

	visited := map[string]bool{start: true}
	queue := []string{start}
	result := make([]string, 0)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, succ := range m.Successors(current) {
			if visited[succ.ID] {
				continue
			}
			visited[succ.ID] = true
			result = append(result, succ.ID)
			if limit > 0 && len(result) >= limit {
				return result
			}
			queue = append(queue, succ.ID)
		}
	}
	return result
}
