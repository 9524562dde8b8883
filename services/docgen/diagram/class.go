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

// maxClassMethods bounds the methods listed per class.
const maxClassMethods = 10

// Class renders a classDiagram for the class nodes in the selection.
//
// Description:
//
//	Non-class nodes are ignored. Each class lists up to ten methods
//	reached via defines_method edges. Inheritance renders as
//	"Parent <|-- Child", declaring the parent class if the selection
//	did not include it. Returns "" when the selection holds no class
//	nodes.
func (s *Synthesizer) Class(nodeIDs []string) string {
	lines := []string{"classDiagram"}
	addedClasses := make(map[string]bool)
	addedRelationships := make(map[[2]string]bool)

	for _, nodeID := range nodeIDs {
		n, ok := s.model.GetNode(nodeID)
		if !ok || n.Category != graph.CategoryClass {
			continue
		}

		className := sanitizeID(displayName(n))
		if !addedClasses[className] {
			addedClasses[className] = true
			lines = append(lines, "    class "+className)

			methods := 0
			for _, edge := range n.Outgoing {
				if edge.Relationship != graph.RelDefinesMethod {
					continue
				}
				method, ok := s.model.GetNode(edge.ToID)
				if !ok || method.Name == "" {
					continue
				}
				lines = append(lines, fmt.Sprintf("    %s : +%s()", className, sanitizeID(method.Name)))
				methods++
				if methods == maxClassMethods {
					break
				}
			}
		}

		for _, edge := range n.Outgoing {
			if edge.Relationship != graph.RelInherits {
				continue
			}
			parent, ok := s.model.GetNode(edge.ToID)
			if !ok {
				continue
			}
			parentName := sanitizeID(displayName(parent))

			key := [2]string{className, parentName}
			if addedRelationships[key] {
				continue
			}
			addedRelationships[key] = true
			lines = append(lines, fmt.Sprintf("    %s <|-- %s", parentName, className))

			if !addedClasses[parentName] {
				addedClasses[parentName] = true
				lines = append(lines, "    class "+parentName)
			}
		}
	}

	if len(addedClasses) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}
