// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package topics

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var communityTracer = otel.Tracer("docgen.topics.community")

// Clustering configuration constants.
const (
	// DefaultMaxClusterIterations is the maximum outer loop iterations.
	DefaultMaxClusterIterations = 100

	// DefaultConvergenceThreshold stops early if modularity gain < this.
	DefaultConvergenceThreshold = 1e-6

	// DefaultResolution affects community granularity.
	// Higher values produce smaller, more granular communities.
	DefaultResolution = 1.0

	// minClusterInputNodes is the minimum eligible node count for
	// clustering; smaller inputs are degenerate.
	minClusterInputNodes = 5

	// minCommunitySize filters out communities too small to document.
	minCommunitySize = 2
)

// ClusterOptions configures modularity clustering.
type ClusterOptions struct {
	// MaxIterations limits total outer loop passes. Default: 100
	MaxIterations int `yaml:"max_iterations"`

	// ConvergenceThreshold stops early if modularity gain < this.
	// Default: 1e-6
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`

	// Resolution affects community granularity. Default: 1.0
	Resolution float64 `yaml:"resolution"`
}

// Validate checks options and applies defaults for invalid values.
func (o *ClusterOptions) Validate() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxClusterIterations
	}
	if o.ConvergenceThreshold <= 0 {
		o.ConvergenceThreshold = DefaultConvergenceThreshold
	}
	if o.Resolution <= 0 {
		o.Resolution = DefaultResolution
	}
}

// DefaultClusterOptions returns sensible defaults.
func DefaultClusterOptions() *ClusterOptions {
	return &ClusterOptions{
		MaxIterations:        DefaultMaxClusterIterations,
		ConvergenceThreshold: DefaultConvergenceThreshold,
		Resolution:           DefaultResolution,
	}
}

// Community is one detected group of related nodes.
type Community struct {
	// ID is the community's position in the result, starting at 0.
	ID int

	// Nodes contains the member node IDs, sorted.
	Nodes []string
}

// DetectCommunities finds natural code communities in an undirected
// adjacency structure by modularity maximization.
//
// Description:
//
//	Runs local-move modularity optimization followed by a refinement
//	phase that splits disconnected communities into their connected
//	components, so every returned community is well-connected. The
//	adjacency input is the undirected projection of the code graph
//	restricted to clusterable nodes.
//
// Inputs:
//
//   - ctx: Context for cancellation between iterations. Must not be nil.
//   - adjacency: Node ID to sorted neighbor IDs. Symmetric.
//   - opts: Configuration options. If nil, defaults are used.
//
// Outputs:
//
//   - []Community: Communities of size >= 2, in deterministic order.
//   - error: ErrDegenerateInput when the input is too small or has no
//     edges; ctx.Err() when cancelled.
//
// Thread Safety: Safe for concurrent use (read-only on adjacency).
//
// Complexity: O(V + E) per iteration, typically few iterations.
func DetectCommunities(ctx context.Context, adjacency map[string][]string, opts *ClusterOptions) ([]Community, error) {
	ctx, span := communityTracer.Start(ctx, "topics.DetectCommunities",
		trace.WithAttributes(attribute.Int("node_count", len(adjacency))),
	)
	defer span.End()

	if opts == nil {
		opts = DefaultClusterOptions()
	} else {
		opts.Validate()
	}

	if len(adjacency) < minClusterInputNodes {
		span.AddEvent("degenerate_input_too_small")
		return nil, ErrDegenerateInput
	}

	// Sorted node list for deterministic iteration order.
	nodeIDs := make([]string, 0, len(adjacency))
	for id := range adjacency {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	// Each undirected edge appears in two neighbor lists.
	degrees := make(map[string]float64, len(nodeIDs))
	totalDegree := 0.0
	for _, id := range nodeIDs {
		d := float64(len(adjacency[id]))
		degrees[id] = d
		totalDegree += d
	}
	m := totalDegree / 2

	if m == 0 {
		span.AddEvent("degenerate_input_no_edges")
		return nil, ErrDegenerateInput
	}

	// Initialize: each node in its own community.
	nodeToComm := make(map[string]int, len(nodeIDs))
	commDegreeSum := make(map[int]float64, len(nodeIDs))
	for i, id := range nodeIDs {
		nodeToComm[id] = i
		commDegreeSum[i] = degrees[id]
	}

	previousQ := -1.0
	iterations := 0
	converged := false

	for iterations < opts.MaxIterations {
		// Check cancellation at iteration boundary.
		if ctx.Err() != nil {
			span.AddEvent("cancelled", trace.WithAttributes(
				attribute.Int("iterations_completed", iterations),
			))
			return nil, ctx.Err()
		}

		iterations++
		improved := false

		// Phase 1: Local moves. Try moving each node to a neighbor's
		// community if it improves modularity.
		for _, id := range nodeIDs {
			currentComm := nodeToComm[id]
			bestComm := currentComm
			bestDeltaQ := 0.0
			ki := degrees[id]

			for _, comm := range neighborCommunities(adjacency[id], nodeToComm) {
				if comm == currentComm {
					continue
				}
				deltaQ := deltaModularity(id, currentComm, comm, adjacency, nodeToComm, commDegreeSum, ki, m, opts.Resolution)
				if deltaQ > bestDeltaQ {
					bestDeltaQ = deltaQ
					bestComm = comm
				}
			}

			if bestComm != currentComm && bestDeltaQ > 0 {
				commDegreeSum[currentComm] -= ki
				commDegreeSum[bestComm] += ki
				nodeToComm[id] = bestComm
				improved = true
			}
		}

		// Phase 2: Refinement. Split communities that are internally
		// disconnected.
		if improved {
			nodeToComm = refineCommunities(nodeToComm, nodeIDs, adjacency)
			commDegreeSum = make(map[int]float64)
			for _, id := range nodeIDs {
				commDegreeSum[nodeToComm[id]] += degrees[id]
			}
		}

		currentQ := modularity(adjacency, nodeToComm, commDegreeSum, m, opts.Resolution)
		if !improved || (currentQ-previousQ < opts.ConvergenceThreshold && previousQ >= 0) {
			converged = true
			break
		}
		previousQ = currentQ
	}

	communities := buildCommunities(nodeToComm, nodeIDs)
	if len(communities) == 0 {
		span.AddEvent("degenerate_result_no_communities")
		return nil, ErrDegenerateInput
	}

	slog.Debug("community detection completed",
		slog.Int("iterations", iterations),
		slog.Int("communities", len(communities)),
		slog.Bool("converged", converged),
		slog.Int("node_count", len(nodeIDs)),
	)
	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Int("communities_found", len(communities)),
		attribute.Bool("converged", converged),
	)

	return communities, nil
}

// neighborCommunities returns the distinct communities among a node's
// neighbors, in ascending order for deterministic tie-breaking.
func neighborCommunities(neighbors []string, nodeToComm map[string]int) []int {
	seen := make(map[int]bool, len(neighbors))
	comms := make([]int, 0, len(neighbors))
	for _, n := range neighbors {
		c := nodeToComm[n]
		if !seen[c] {
			seen[c] = true
			comms = append(comms, c)
		}
	}
	sort.Ints(comms)
	return comms
}

// deltaModularity computes the modularity change for moving a node from
// currentComm to targetComm, using cached community degree sums for an
// O(degree) evaluation.
func deltaModularity(
	id string,
	currentComm, targetComm int,
	adjacency map[string][]string,
	nodeToComm map[string]int,
	commDegreeSum map[int]float64,
	ki, m, resolution float64,
) float64 {
	if m == 0 {
		return 0
	}

	edgesToCurrent := 0.0
	edgesToTarget := 0.0
	for _, neighbor := range adjacency[id] {
		switch nodeToComm[neighbor] {
		case currentComm:
			edgesToCurrent++
		case targetComm:
			edgesToTarget++
		}
	}

	sumDegreeCurrent := commDegreeSum[currentComm] - ki // exclude the moving node
	sumDegreeTarget := commDegreeSum[targetComm]

	deltaQ := (edgesToTarget - edgesToCurrent) / m
	deltaQ -= resolution * ki * (sumDegreeTarget - sumDegreeCurrent) / (2 * m * m)
	return deltaQ
}

// modularity computes the partition quality Q.
//
// Q = sum over communities of [internal_edges/m - resolution * (sum_degree/2m)^2]
func modularity(
	adjacency map[string][]string,
	nodeToComm map[string]int,
	commDegreeSum map[int]float64,
	m, resolution float64,
) float64 {
	if m == 0 {
		return 0
	}

	commToNodes := make(map[int][]string)
	for id, comm := range nodeToComm {
		commToNodes[comm] = append(commToNodes[comm], id)
	}

	Q := 0.0
	for comm, nodes := range commToNodes {
		nodeSet := make(map[string]bool, len(nodes))
		for _, id := range nodes {
			nodeSet[id] = true
		}

		// Each internal undirected edge is seen from both endpoints.
		internal := 0.0
		for _, id := range nodes {
			for _, neighbor := range adjacency[id] {
				if nodeSet[neighbor] {
					internal++
				}
			}
		}
		internal /= 2

		sumDegree := commDegreeSum[comm]
		Q += internal/m - resolution*(sumDegree/(2*m))*(sumDegree/(2*m))
	}
	return Q
}

// refineCommunities splits internally disconnected communities into their
// connected components, guaranteeing every community is well-connected.
func refineCommunities(
	nodeToComm map[string]int,
	nodeIDs []string,
	adjacency map[string][]string,
) map[string]int {
	commToNodes := make(map[int][]string)
	for _, id := range nodeIDs {
		comm := nodeToComm[id]
		commToNodes[comm] = append(commToNodes[comm], id)
	}

	// Process communities in deterministic order.
	commIDs := make([]int, 0, len(commToNodes))
	for comm := range commToNodes {
		commIDs = append(commIDs, comm)
	}
	sort.Ints(commIDs)

	refined := make(map[string]int, len(nodeIDs))
	nextCommID := 0

	for _, comm := range commIDs {
		nodes := commToNodes[comm]
		if len(nodes) <= 1 {
			for _, id := range nodes {
				refined[id] = nextCommID
			}
			nextCommID++
			continue
		}

		for _, component := range connectedComponents(nodes, adjacency) {
			for _, id := range component {
				refined[id] = nextCommID
			}
			nextCommID++
		}
	}
	return refined
}

// connectedComponents finds connected components within a node set,
// considering only edges internal to the set. Components are returned in
// the order of their lowest member ID.
func connectedComponents(nodes []string, adjacency map[string][]string) [][]string {
	nodeSet := make(map[string]bool, len(nodes))
	for _, id := range nodes {
		nodeSet[id] = true
	}

	ordered := make([]string, len(nodes))
	copy(ordered, nodes)
	sort.Strings(ordered)

	visited := make(map[string]bool, len(nodes))
	var components [][]string

	for _, startID := range ordered {
		if visited[startID] {
			continue
		}

		component := []string{}
		queue := []string{startID}
		visited[startID] = true

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component = append(component, current)

			for _, neighbor := range adjacency[current] {
				if visited[neighbor] || !nodeSet[neighbor] {
					continue
				}
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}

		components = append(components, component)
	}
	return components
}

// buildCommunities converts a node-to-community assignment into the final
// community list, filtering out singletons and renumbering sequentially.
func buildCommunities(nodeToComm map[string]int, nodeIDs []string) []Community {
	commToNodes := make(map[int][]string)
	for _, id := range nodeIDs {
		comm := nodeToComm[id]
		commToNodes[comm] = append(commToNodes[comm], id)
	}

	commIDs := make([]int, 0, len(commToNodes))
	for comm := range commToNodes {
		commIDs = append(commIDs, comm)
	}
	sort.Ints(commIDs)

	communities := make([]Community, 0, len(commIDs))
	for _, comm := range commIDs {
		nodes := commToNodes[comm]
		if len(nodes) < minCommunitySize {
			continue
		}
		sort.Strings(nodes)
		communities = append(communities, Community{
			ID:    len(communities),
			Nodes: nodes,
		})
	}
	return communities
}
