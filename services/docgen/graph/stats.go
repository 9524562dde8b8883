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
	"path/filepath"
	"sort"
)

// Stats contains statistics about the model.
//
// Thread Safety: Stats is a value type with no internal state. Safe for
// concurrent use as long as the source Model is frozen.
type Stats struct {
	// TotalNodes is the total number of nodes.
	TotalNodes int `json:"total_nodes"`

	// TotalEdges is the total number of edges.
	TotalEdges int `json:"total_edges"`

	// DroppedEdges is the number of payload edges skipped at construction.
	DroppedEdges int `json:"dropped_edges"`

	// CategoryCounts maps each category name to the count of nodes of
	// that category.
	CategoryCounts map[string]int `json:"category_counts"`

	// DetectedLanguages lists languages inferred solely from file
	// extensions present among nodes, sorted.
	DetectedLanguages []string `json:"detected_languages"`
}

// extensionLanguages maps file extensions to language names.
var extensionLanguages = map[string]string{
	".py":   "Python",
	".js":   "JavaScript",
	".ts":   "TypeScript",
	".jsx":  "React JSX",
	".tsx":  "React TSX",
	".java": "Java",
	".go":   "Go",
	".rs":   "Rust",
	".rb":   "Ruby",
}

// Stats returns statistics about the model.
//
// Description:
//
//	Counts nodes per category and infers languages from the file
//	extensions present among nodes. Output ordering is deterministic.
//
// Complexity: O(V).
func (m *Model) Stats() Stats {
	categories := make(map[string]int)
	extensions := make(map[string]bool)

	for _, id := range m.NodeIDs() {
		node := m.nodes[id]
		categories[node.Category.String()]++
		if node.File != "" {
			if ext := filepath.Ext(node.File); ext != "" {
				extensions[ext] = true
			}
		}
	}

	languages := make([]string, 0, len(extensions))
	for ext := range extensions {
		if lang, ok := extensionLanguages[ext]; ok {
			languages = append(languages, lang)
		}
	}
	sort.Strings(languages)

	return Stats{
		TotalNodes:        len(m.nodes),
		TotalEdges:        len(m.edges),
		DroppedEdges:      m.droppedEdges,
		CategoryCounts:    categories,
		DetectedLanguages: languages,
	}
}
