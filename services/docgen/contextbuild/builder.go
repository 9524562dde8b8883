// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package contextbuild assembles structured text context for a topic
// from the code graph. The output is fed to a downstream language
// model, so every statement in it is derived from actual graph data:
// the builder never invents files, relationships, or code.
package contextbuild

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
	"github.com/AleutianAI/AleutianDocs/services/docgen/topics"
)

const (
	// maxContextFiles caps the files section.
	maxContextFiles = 10

	// maxContextNodes caps the code structure section.
	maxContextNodes = 20

	// maxRelationLines caps outgoing and incoming relation lines per
	// node, each direction separately.
	maxRelationLines = 5

	// maxSnippetLines truncates long code snippets.
	maxSnippetLines = 15
)

// Builder assembles topic context from a frozen code graph.
//
// Thread Safety: Safe for concurrent use; builds only read the model.
type Builder struct {
	model *graph.Model
}

// NewBuilder creates a context builder over a frozen model.
func NewBuilder(model *graph.Model) *Builder {
	return &Builder{model: model}
}

// BuildTopicContext renders a topic as structured text.
//
// Description:
//
//	Emits a header (title, type, description), a files list, and a
//	code-structure section with one block per resolvable node:
//	location, up to five outgoing and five incoming relationship
//	lines, and a code snippet truncated to fifteen lines. Each node
//	is rendered at most once even when the topic lists it more than
//	once. Node IDs that do not resolve in the model are skipped
//	without a trace; no content is fabricated for them.
func (b *Builder) BuildTopicContext(topic topics.DocTopic) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n", topic.Title)
	fmt.Fprintf(&sb, "Type: %s\n", topic.Type)
	fmt.Fprintf(&sb, "Description: %s\n", topic.Description)
	sb.WriteString("\n")

	if len(topic.PrimaryFiles) > 0 {
		sb.WriteString("## Files\n")
		files := topic.PrimaryFiles
		if len(files) > maxContextFiles {
			files = files[:maxContextFiles]
		}
		for _, f := range files {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Code Structure")

	rendered := make(map[string]bool, len(topic.NodeIDs))
	blocks := 0
	for _, nodeID := range topic.NodeIDs {
		if blocks == maxContextNodes {
			break
		}
		if rendered[nodeID] {
			continue
		}
		rendered[nodeID] = true
		n, ok := b.model.GetNode(nodeID)
		if !ok {
			continue
		}
		b.writeNodeBlock(&sb, n)
		blocks++
	}

	return sb.String()
}

// writeNodeBlock emits one node's header, relationships, and snippet.
func (b *Builder) writeNodeBlock(sb *strings.Builder, n *graph.Node) {
	fmt.Fprintf(sb, "\n\n### %s (%s)\n", displayName(n), n.Category)
	fmt.Fprintf(sb, "File: %s (lines %d-%d)", n.File, n.StartLine, n.EndLine)

	for i, edge := range n.Outgoing {
		if i == maxRelationLines {
			break
		}
		fmt.Fprintf(sb, "\n  → %s: %s", edge.Relationship, b.endpointName(edge.ToID))
	}
	for i, edge := range n.Incoming {
		if i == maxRelationLines {
			break
		}
		fmt.Fprintf(sb, "\n  ← %s by: %s", edge.Relationship, b.endpointName(edge.FromID))
	}

	if n.Code == "" {
		return
	}
	lines := strings.Split(n.Code, "\n")
	truncated := len(lines) > maxSnippetLines
	if truncated {
		lines = lines[:maxSnippetLines]
	}
	sb.WriteString("\n```\n")
	sb.WriteString(strings.Join(lines, "\n"))
	if truncated {
		sb.WriteString("\n... (truncated)")
	}
	sb.WriteString("\n```")
}

// endpointName resolves an edge endpoint to its display name, falling
// back to the raw ID for endpoints the model cannot resolve.
func (b *Builder) endpointName(id string) string {
	if n, ok := b.model.GetNode(id); ok {
		return displayName(n)
	}
	return id
}

// displayName returns the node name or the raw ID for unnamed nodes.
func displayName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}
