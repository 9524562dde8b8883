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

const (
	// maxEntityAttributes bounds the attributes listed per entity.
	maxEntityAttributes = 10

	// maxAttributeTypeLen truncates unwieldy type annotations.
	maxAttributeTypeLen = 20
)

// ER renders an erDiagram treating the selected class nodes as data
// entities.
//
// Description:
//
//	Attributes are recovered heuristically from each node's source
//	snippet: annotated fields ("name: Type") and constructor
//	assignments ("self.name = ..."). Inheritance renders as
//	"Parent ||--o{ Child : extends". Returns "" when the selection
//	holds no class nodes.
func (s *Synthesizer) ER(nodeIDs []string) string {
	lines := []string{"erDiagram"}
	addedEntities := make(map[string]bool)

	for _, nodeID := range nodeIDs {
		n, ok := s.model.GetNode(nodeID)
		if !ok || n.Category != graph.CategoryClass {
			continue
		}

		entityName := sanitizeID(displayName(n))
		if addedEntities[entityName] {
			continue
		}
		addedEntities[entityName] = true

		lines = append(lines, fmt.Sprintf("    %s {", entityName))
		for _, attr := range extractAttributes(n.Code) {
			lines = append(lines, fmt.Sprintf("        %s %s", attr.typ, attr.name))
		}
		lines = append(lines, "    }")

		for _, edge := range n.Outgoing {
			if edge.Relationship != graph.RelInherits {
				continue
			}
			parent, ok := s.model.GetNode(edge.ToID)
			if !ok {
				continue
			}
			parentName := sanitizeID(displayName(parent))
			lines = append(lines, fmt.Sprintf("    %s ||--o{ %s : extends", parentName, entityName))
		}
	}

	if len(addedEntities) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

type entityAttribute struct {
	typ  string
	name string
}

// extractAttributes recovers entity attributes from a source snippet.
// Supports annotated fields and constructor self-assignments; private
// assignments (leading underscore) are skipped.
func extractAttributes(code string) []entityAttribute {
	if code == "" {
		return nil
	}

	var attrs []entityAttribute
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)

		if before, after, found := strings.Cut(line, ":"); found && !strings.Contains(before, "=") {
			name := strings.TrimSpace(before)
			typ, _, _ := strings.Cut(after, "=")
			typ = strings.TrimSpace(typ)
			if name == "" || typ == "" ||
				strings.HasPrefix(name, "def ") || strings.HasPrefix(name, "class ") || strings.HasPrefix(name, "#") {
				continue
			}
			if len(typ) > maxAttributeTypeLen {
				typ = typ[:maxAttributeTypeLen]
			}
			attrs = append(attrs, entityAttribute{typ: typ, name: sanitizeID(name)})
		} else if strings.Contains(line, "self.") && strings.Contains(line, "=") {
			lhs, _, _ := strings.Cut(line, "=")
			_, field, found := strings.Cut(lhs, "self.")
			if !found {
				continue
			}
			name := strings.TrimSpace(field)
			if name == "" || strings.HasPrefix(name, "_") {
				continue
			}
			attrs = append(attrs, entityAttribute{typ: "any", name: sanitizeID(name)})
		}

		if len(attrs) == maxEntityAttributes {
			break
		}
	}
	return attrs
}
