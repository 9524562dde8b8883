// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the in-memory code-entity graph used for
// documentation topic discovery.
//
// Nodes are code entities (modules, classes, functions, methods) as produced
// by an external static-analysis component; edges are their relationships
// (calls, inherits, imports, defines). The graph is a directed multigraph:
// multiple edges of the same relationship between the same pair of nodes are
// allowed, representing different call sites.
//
// # Lifecycle
//
// A typical model lifecycle:
//  1. Create with NewModel()
//  2. Build with AddNode() and AddEdge() calls, or use Build() for payloads
//  3. Call Freeze() to finalize
//  4. Query with GetNode(), Successors(), degree methods, etc.
//
// # Construction contract
//
// Node insertion is idempotent by ID: adding a node whose ID already exists
// returns the existing node unchanged. Edge insertion silently skips edges
// whose endpoints are absent from the model; skipped edges are counted and
// logged, never raised.
//
// # Thread Safety
//
// Model is NOT safe for concurrent use during building. After Freeze() the
// model is read-only and can be shared across goroutines freely.
package graph

import "errors"

// Sentinel errors for model operations.
var (
	// ErrModelFrozen is returned when attempting to modify a frozen model.
	// Once Freeze() is called, the model becomes read-only.
	ErrModelFrozen = errors.New("graph model is frozen and cannot be modified")

	// ErrInvalidNode is returned when attempting to add a node with an
	// empty ID.
	ErrInvalidNode = errors.New("invalid node")
)
