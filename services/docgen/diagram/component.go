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
	"path"
	"strings"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
)

const (
	// maxComponentGroups bounds the subgraph count.
	maxComponentGroups = 10

	// maxNodesPerGroup bounds the members shown inside each subgraph.
	maxNodesPerGroup = 5
)

// Component renders a high-level view: one subgraph per file, with
// cross-file call edges between the groups.
//
// Description:
//
//	Nodes are grouped by file stem in order of first appearance, so a
//	selection ordered by importance yields groups ordered the same
//	way. Group-to-group edges are drawn once per ordered pair when any
//	member of one group calls a member of the other. Unknown IDs are
//	skipped; an empty selection renders as "".
func (s *Synthesizer) Component(nodeIDs []string) string {
	type group struct {
		stem  string
		nodes []string
	}

	groupIndex := make(map[string]int)
	var groups []group
	nodeGroup := make(map[string]string, len(nodeIDs))

	for _, nodeID := range nodeIDs {
		n, ok := s.model.GetNode(nodeID)
		if !ok {
			continue
		}
		stem := "other"
		if n.File != "" {
			base := path.Base(n.File)
			stem = strings.TrimSuffix(base, path.Ext(base))
		}
		idx, ok := groupIndex[stem]
		if !ok {
			idx = len(groups)
			groupIndex[stem] = idx
			groups = append(groups, group{stem: stem})
		}
		groups[idx].nodes = append(groups[idx].nodes, nodeID)
		nodeGroup[nodeID] = stem
	}

	if len(groups) == 0 {
		return ""
	}
	if len(groups) > maxComponentGroups {
		groups = groups[:maxComponentGroups]
	}

	lines := []string{"flowchart LR"}
	shown := make(map[string]bool, len(groups))

	for _, g := range groups {
		safeName := sanitizeID(g.stem)
		display := formatStemTitle(g.stem)
		shown[g.stem] = true

		lines = append(lines, fmt.Sprintf(`    subgraph %s["%s"]`, safeName, display))
		members := g.nodes
		if len(members) > maxNodesPerGroup {
			members = members[:maxNodesPerGroup]
		}
		for j, nodeID := range members {
			n, _ := s.model.GetNode(nodeID)
			lines = append(lines, fmt.Sprintf(`        %s_%d["%s"]`, safeName, j, escapeLabel(displayName(n))))
		}
		lines = append(lines, "    end")
	}

	// Cross-group call edges, one per ordered group pair.
	addedEdges := make(map[[2]string]bool)
	for _, g := range groups {
		for _, nodeID := range g.nodes {
			n, _ := s.model.GetNode(nodeID)
			for _, edge := range n.Outgoing {
				if edge.Relationship != graph.RelCalls {
					continue
				}
				targetStem, ok := nodeGroup[edge.ToID]
				if !ok || targetStem == g.stem || !shown[targetStem] {
					continue
				}
				key := [2]string{g.stem, targetStem}
				if addedEdges[key] {
					continue
				}
				addedEdges[key] = true
				lines = append(lines, fmt.Sprintf("    %s --> %s", sanitizeID(g.stem), sanitizeID(targetStem)))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// formatStemTitle turns a file stem into a readable group label.
func formatStemTitle(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	if len(words) == 0 {
		return stem
	}
	return strings.Join(words, " ")
}
