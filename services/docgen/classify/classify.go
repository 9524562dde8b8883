// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package classify derives a file's role and relational context from
// the code graph. The classification is heuristic but grounded: every
// caller, callee, and import it reports is an actual graph edge.
package classify

import (
	"path"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
)

const (
	// maxNeighborsPerNode bounds the predecessors and successors
	// examined per node.
	maxNeighborsPerNode = 5

	// maxCallers and maxCallees bound the reported reference lists.
	maxCallers = 10
	maxCallees = 10

	// maxImports bounds the reported import list.
	maxImports = 10

	// maxExported bounds the reported exported symbols.
	maxExported = 15

	// maxSiblings bounds the reported cluster siblings.
	maxSiblings = 5

	// maxSiblingCandidates bounds the files scanned for siblings.
	maxSiblingCandidates = 30

	// siblingOverlap is the shared-callee count that makes two files
	// cluster siblings.
	siblingOverlap = 2

	// entryOutDegree is the minimum fan-out for the entry-point role
	// when a file has no callers at all.
	entryOutDegree = 3
)

// Role categorizes a file by its position in the call graph.
type Role int

const (
	RoleUnknown Role = iota
	RoleEntryPoint
	RoleUtility
	RoleDataModel
	RoleCoreLogic
)

var roleNames = map[Role]string{
	RoleUnknown:    "unknown",
	RoleEntryPoint: "entry_point",
	RoleUtility:    "utility",
	RoleDataModel:  "data_model",
	RoleCoreLogic:  "core_logic",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// SymbolRef points at a named symbol and the file it lives in.
type SymbolRef struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// FileContext is the classification result for one file.
type FileContext struct {
	Role              Role        `json:"role"`
	ImportanceScore   float64     `json:"importance_score"`
	Callers           []SymbolRef `json:"callers"`
	Callees           []SymbolRef `json:"callees"`
	Imports           []string    `json:"imports"`
	ExportedFunctions []string    `json:"exported_functions"`
	ClusterSiblings   []string    `json:"cluster_siblings"`
}

// FileEntry names a file and the graph nodes defined in it. Used as
// the sibling-candidate input to ClassifyFile.
type FileEntry struct {
	Path    string   `json:"path"`
	NodeIDs []string `json:"node_ids"`
}

// Classifier derives file context from a frozen code graph.
//
// Thread Safety: Safe for concurrent use; classification only reads
// the model.
type Classifier struct {
	model *graph.Model
}

// NewClassifier creates a classifier over a frozen model.
func NewClassifier(model *graph.Model) *Classifier {
	return &Classifier{model: model}
}

// ClassifyFile builds the relational context for one file.
//
// Description:
//
//	Aggregates degree totals over the file's nodes, collects callers
//	and callees (function, class, and method neighbors only), imports
//	and exported symbols, then assigns a role: entry_point for files
//	nobody calls that fan out, utility for files called far more than
//	they call, data_model by file-name hint, core_logic for anything
//	else that defines nodes. Cluster siblings are other files sharing
//	at least two callees.
//
// Inputs:
//
//   - filePath: The file under classification.
//   - nodeIDs: Graph nodes defined in the file. Unknown IDs are
//     skipped.
//   - allFiles: Sibling candidates; nil disables sibling detection.
//
// Outputs:
//
//   - FileContext: Never nil slices beyond empty; all facts edge-backed.
func (c *Classifier) ClassifyFile(filePath string, nodeIDs []string, allFiles []FileEntry) FileContext {
	var (
		callers, callees []SymbolRef
		imports          = make(map[string]bool)
		exported         []string
		inTotal, outTotal int
		resolved          int
	)

	for _, id := range nodeIDs {
		n, ok := c.model.GetNode(id)
		if !ok {
			continue
		}
		resolved++
		inTotal += n.InDegree()
		outTotal += n.OutDegree()

		if n.Category == graph.CategoryFunction || n.Category == graph.CategoryClass {
			exported = append(exported, n.Name)
		}

		for i, pred := range c.model.Predecessors(id) {
			if i == maxNeighborsPerNode {
				break
			}
			if isCallable(pred.Category) {
				callers = append(callers, SymbolRef{Name: pred.Name, File: path.Base(pred.File)})
			}
		}
		for i, succ := range c.model.Successors(id) {
			if i == maxNeighborsPerNode {
				break
			}
			if isCallable(succ.Category) {
				callees = append(callees, SymbolRef{Name: succ.Name, File: path.Base(succ.File)})
			}
		}

		for _, edge := range n.Outgoing {
			if !edge.Relationship.IsImport() {
				continue
			}
			if target, ok := c.model.GetNode(edge.ToID); ok && target.Name != "" {
				imports[target.Name] = true
			}
		}
	}

	importance := float64(inTotal*2 + outTotal + resolved)

	importList := make([]string, 0, len(imports))
	for name := range imports {
		importList = append(importList, name)
	}
	sort.Strings(importList)

	return FileContext{
		Role:              c.assignRole(filePath, inTotal, outTotal, resolved),
		ImportanceScore:   importance,
		Callers:           capRefs(callers, maxCallers),
		Callees:           capRefs(callees, maxCallees),
		Imports:           capList(importList, maxImports),
		ExportedFunctions: capList(exported, maxExported),
		ClusterSiblings:   c.findSiblings(filePath, callees, allFiles),
	}
}

// assignRole applies the role heuristics in priority order.
func (c *Classifier) assignRole(filePath string, inTotal, outTotal, resolved int) Role {
	stem := strings.ToLower(fileStem(filePath))
	switch {
	case inTotal == 0 && outTotal > entryOutDegree:
		return RoleEntryPoint
	case inTotal > outTotal*2:
		return RoleUtility
	case strings.Contains(stem, "model") || strings.Contains(stem, "schema"):
		return RoleDataModel
	case resolved > 0:
		return RoleCoreLogic
	default:
		return RoleUnknown
	}
}

// findSiblings returns files whose callee sets overlap this file's by
// at least siblingOverlap symbols.
func (c *Classifier) findSiblings(filePath string, callees []SymbolRef, allFiles []FileEntry) []string {
	if len(allFiles) == 0 || len(callees) == 0 {
		return nil
	}

	myCallees := make(map[string]bool, len(callees))
	for _, ref := range callees {
		myCallees[ref.Name] = true
	}

	candidates := allFiles
	if len(candidates) > maxSiblingCandidates {
		candidates = candidates[:maxSiblingCandidates]
	}

	var siblings []string
	for _, other := range candidates {
		if other.Path == filePath {
			continue
		}

		overlap := 0
		counted := make(map[string]bool)
		for _, id := range other.NodeIDs {
			for _, succ := range c.model.Successors(id) {
				if !isCallable(succ.Category) || counted[succ.Name] {
					continue
				}
				counted[succ.Name] = true
				if myCallees[succ.Name] {
					overlap++
				}
			}
		}

		if overlap >= siblingOverlap {
			siblings = append(siblings, path.Base(other.Path))
			if len(siblings) == maxSiblings {
				break
			}
		}
	}
	return siblings
}

// isCallable reports whether a category participates in caller/callee
// listings.
func isCallable(c graph.Category) bool {
	return c == graph.CategoryFunction || c == graph.CategoryClass || c == graph.CategoryMethod
}

func fileStem(filePath string) string {
	base := path.Base(filePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

func capRefs(refs []SymbolRef, limit int) []SymbolRef {
	if len(refs) > limit {
		return refs[:limit]
	}
	return refs
}

func capList(s []string, limit int) []string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
