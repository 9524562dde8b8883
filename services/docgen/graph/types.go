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

// Category classifies a node by the kind of code entity it represents.
type Category int

const (
	// CategoryUnknown indicates an unrecognized entity kind.
	CategoryUnknown Category = iota

	// CategoryModule is a source module (a file-level grouping entity).
	CategoryModule

	// CategoryClass is a class or type definition.
	CategoryClass

	// CategoryFunction is a free function.
	CategoryFunction

	// CategoryMethod is a method bound to a class.
	CategoryMethod

	// CategoryDirectory is a directory entity. Excluded from topic and
	// diagram computation but retained in the model for completeness.
	CategoryDirectory

	// CategoryExternalSymbol is a symbol defined outside the analyzed
	// codebase. Excluded like CategoryDirectory.
	CategoryExternalSymbol

	// NumCategories is the total number of categories (for array sizing).
	NumCategories
)

// categoryNames maps Category values to their wire representations.
var categoryNames = map[Category]string{
	CategoryUnknown:        "unknown",
	CategoryModule:         "module",
	CategoryClass:          "class",
	CategoryFunction:       "function",
	CategoryMethod:         "method",
	CategoryDirectory:      "directory",
	CategoryExternalSymbol: "external_symbol",
}

// String returns the wire representation of the Category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCategory converts a wire string into a Category.
// Unrecognized strings map to CategoryUnknown.
func ParseCategory(s string) Category {
	for c, name := range categoryNames {
		if name == s {
			return c
		}
	}
	return CategoryUnknown
}

// IsCode reports whether the category participates in topic and diagram
// computation. Directory and external-symbol nodes do not.
func (c Category) IsCode() bool {
	return c != CategoryDirectory && c != CategoryExternalSymbol
}

// Relationship defines the type of a directed edge between two nodes.
type Relationship int

const (
	// RelUnknown indicates an unrecognized relationship type.
	RelUnknown Relationship = iota

	// RelCalls indicates a function/method calls another function/method.
	RelCalls

	// RelInherits indicates a class inherits from another class.
	RelInherits

	// RelImportsModule indicates a module-level import.
	RelImportsModule

	// RelImportsSymbol indicates a symbol-level import.
	RelImportsSymbol

	// RelDefinesClass indicates a module defines a class.
	RelDefinesClass

	// RelDefinesMethod indicates a class defines a method.
	RelDefinesMethod

	// RelReferences indicates a general symbol reference.
	RelReferences

	// NumRelationships is the total number of relationship types.
	NumRelationships
)

// relationshipNames maps Relationship values to their wire representations.
var relationshipNames = map[Relationship]string{
	RelUnknown:       "unknown",
	RelCalls:         "calls",
	RelInherits:      "inherits",
	RelImportsModule: "imports_module",
	RelImportsSymbol: "imports_symbol",
	RelDefinesClass:  "defines_class",
	RelDefinesMethod: "defines_method",
	RelReferences:    "references",
}

// String returns the wire representation of the Relationship.
func (r Relationship) String() string {
	if name, ok := relationshipNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRelationship converts a wire string into a Relationship.
// Unrecognized strings map to RelUnknown.
func ParseRelationship(s string) Relationship {
	for r, name := range relationshipNames {
		if name == s {
			return r
		}
	}
	return RelUnknown
}

// IsImport reports whether the relationship is an import of either flavor.
func (r Relationship) IsImport() bool {
	return r == RelImportsModule || r == RelImportsSymbol
}

// NodeRecord is one node of the input payload produced by the external
// static-analysis component. The payload carries no de-duplication
// guarantee; the model constructor enforces ID uniqueness.
type NodeRecord struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Category  string `json:"category" yaml:"category"`
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	StartLine int    `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	Code      string `json:"code,omitempty" yaml:"code,omitempty"`
}

// EdgeRecord is one edge of the input payload. An edge is valid only if
// both endpoints exist in the model; invalid edges are dropped at
// construction time.
type EdgeRecord struct {
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	Relationship string `json:"relationship" yaml:"relationship"`
	File         string `json:"file,omitempty" yaml:"file,omitempty"`
	Line         int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Edge represents a directed relationship between two nodes.
//
// Multiple edges of the same relationship between the same nodes are
// allowed, representing different call sites or references in the code.
type Edge struct {
	// FromID is the ID of the source node.
	FromID string

	// ToID is the ID of the target node.
	ToID string

	// Relationship is the edge type (calls, inherits, etc.).
	Relationship Relationship

	// File is where the relationship is expressed in code.
	File string

	// Line is the line number where the relationship is expressed.
	Line int
}

// Node represents a code entity in the graph with its relationships.
type Node struct {
	// ID is the unique node identifier.
	ID string

	// Name is the entity's display name.
	Name string

	// Category is the entity kind.
	Category Category

	// File is the source file path. Empty for synthetic entities.
	File string

	// StartLine and EndLine bound the entity's definition in File.
	StartLine int
	EndLine   int

	// Code is the entity's source text. May be empty.
	Code string

	// Outgoing contains edges where this node is the source.
	Outgoing []*Edge

	// Incoming contains edges where this node is the target.
	Incoming []*Edge
}

// InDegree returns the number of incoming edges.
func (n *Node) InDegree() int { return len(n.Incoming) }

// OutDegree returns the number of outgoing edges.
func (n *Node) OutDegree() int { return len(n.Outgoing) }

// Degree returns the total number of incident edges.
func (n *Node) Degree() int { return len(n.Incoming) + len(n.Outgoing) }
