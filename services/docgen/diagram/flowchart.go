// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diagram

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
)

// maxFlowchartNodes bounds a flowchart for readability.
const maxFlowchartNodes = 25

// FlowchartOptions configures flowchart rendering.
type FlowchartOptions struct {
	// Direction is the Mermaid flow direction (TD, LR, BT, RL).
	// Empty means TD.
	Direction string

	// IncludeImports draws import edges, which are skipped by default
	// because they dominate most graphs without adding call-flow
	// information.
	IncludeImports bool
}

// Flowchart renders the relationships among the given nodes.
//
// Description:
//
//	Each node gets a category-specific shape and a positional safe ID
//	(N0, N1, ...) scoped to this render. Edges are drawn only between
//	nodes that are both in the diagram, one line per ordered node
//	pair. Unknown IDs are skipped silently. An empty selection renders
//	as "".
func (s *Synthesizer) Flowchart(nodeIDs []string, opts FlowchartOptions) string {
	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}

	if len(nodeIDs) > maxFlowchartNodes {
		nodeIDs = nodeIDs[:maxFlowchartNodes]
	}

	idMap := make(map[string]string, len(nodeIDs))
	for i, id := range nodeIDs {
		idMap[id] = fmt.Sprintf("N%d", i)
	}

	lines := []string{"flowchart " + direction}
	addedNodes := make(map[string]bool, len(nodeIDs))
	addedEdges := make(map[[2]string]bool)

	for _, nodeID := range nodeIDs {
		n, ok := s.model.GetNode(nodeID)
		if !ok {
			continue
		}
		safeID := idMap[nodeID]

		if !addedNodes[safeID] {
			lines = append(lines, "    "+nodeShape(safeID, n))
			addedNodes[safeID] = true
		}

		for _, edge := range n.Outgoing {
			targetID, ok := idMap[edge.ToID]
			if !ok {
				continue
			}
			if !opts.IncludeImports && edge.Relationship.IsImport() {
				continue
			}

			key := [2]string{safeID, targetID}
			if addedEdges[key] {
				continue
			}
			addedEdges[key] = true
			lines = append(lines, "    "+edgeArrow(safeID, targetID, edge.Relationship))
		}
	}

	if len(addedNodes) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// nodeShape renders a node declaration with its category shape: boxes
// for classes, rounded for functions, circles for methods, subroutine
// boxes for modules.
func nodeShape(safeID string, n *graph.Node) string {
	name := escapeLabel(displayName(n))
	switch n.Category {
	case graph.CategoryClass:
		return fmt.Sprintf(`%s["%s"]`, safeID, name)
	case graph.CategoryFunction:
		return fmt.Sprintf(`%s("%s")`, safeID, name)
	case graph.CategoryMethod:
		return fmt.Sprintf(`%s(("%s"))`, safeID, name)
	case graph.CategoryModule:
		return fmt.Sprintf(`%s[["%s"]]`, safeID, name)
	default:
		return fmt.Sprintf(`%s["%s"]`, safeID, name)
	}
}

// edgeArrow renders an edge with its relationship style.
func edgeArrow(from, to string, rel graph.Relationship) string {
	switch rel {
	case graph.RelCalls:
		return fmt.Sprintf("%s --> %s", from, to)
	case graph.RelInherits:
		return fmt.Sprintf("%s -.->|extends| %s", from, to)
	case graph.RelDefinesClass, graph.RelDefinesMethod:
		return fmt.Sprintf("%s -->|defines| %s", from, to)
	case graph.RelImportsModule, graph.RelImportsSymbol:
		return fmt.Sprintf("%s -.->|imports| %s", from, to)
	default:
		return fmt.Sprintf("%s --> %s", from, to)
	}
}
