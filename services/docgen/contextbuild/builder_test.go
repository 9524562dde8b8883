// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package contextbuild

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
	"github.com/AleutianAI/AleutianDocs/services/docgen/topics"
)

func fixtureModel() *graph.Model {
	nodes := []graph.NodeRecord{
		{ID: "api/server.py:start", Name: "start", Category: "function",
			File: "api/server.py", StartLine: 10, EndLine: 42,
			Code: "def start():\n    listen()\n"},
		{ID: "api/server.py:listen", Name: "listen", Category: "function",
			File: "api/server.py", StartLine: 44, EndLine: 60},
	}
	edges := []graph.EdgeRecord{
		{Source: "api/server.py:start", Target: "api/server.py:listen", Relationship: "calls"},
	}
	return graph.Build(nodes, edges)
}

func TestBuildTopicContext_Layout(t *testing.T) {
	b := NewBuilder(fixtureModel())

	out := b.BuildTopicContext(topics.DocTopic{
		ID:           "entry-start",
		Title:        "start Entry Point",
		Description:  "Application entry point: start",
		Type:         topics.TypeEntryPoint,
		NodeIDs:      []string{"api/server.py:start", "api/server.py:listen"},
		PrimaryFiles: []string{"api/server.py"},
	})

	assert.True(t, strings.HasPrefix(out, "# start Entry Point\n"))
	assert.Contains(t, out, "Type: entry_point\n")
	assert.Contains(t, out, "Description: Application entry point: start\n")
	assert.Contains(t, out, "## Files\n- api/server.py\n")
	assert.Contains(t, out, "## Code Structure")
	assert.Contains(t, out, "### start (function)\nFile: api/server.py (lines 10-42)")
	assert.Contains(t, out, "→ calls: listen")
	assert.Contains(t, out, "← calls by: start")
	assert.Contains(t, out, "```\ndef start():\n    listen()\n")
}

func TestBuildTopicContext_SkipsUnknownNodes(t *testing.T) {
	b := NewBuilder(fixtureModel())

	out := b.BuildTopicContext(topics.DocTopic{
		Title:   "Ghost Topic",
		Type:    topics.TypeComponent,
		NodeIDs: []string{"does-not-exist", "api/server.py:listen"},
	})

	// Nothing is fabricated for the unresolvable ID.
	assert.NotContains(t, out, "does-not-exist")
	assert.Contains(t, out, "### listen (function)")
}

func TestBuildTopicContext_TruncatesLongCode(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = fmt.Sprintf("    step_%02d()", i)
	}
	nodes := []graph.NodeRecord{
		{ID: "big", Name: "big", Category: "function", File: "big.py",
			Code: strings.Join(lines, "\n")},
	}
	b := NewBuilder(graph.Build(nodes, nil))

	out := b.BuildTopicContext(topics.DocTopic{
		Title:   "Big",
		Type:    topics.TypeComponent,
		NodeIDs: []string{"big"},
	})

	assert.Contains(t, out, "step_14()")
	assert.NotContains(t, out, "step_15()")
	assert.Contains(t, out, "... (truncated)")
}

func TestBuildTopicContext_RelationAndNodeCaps(t *testing.T) {
	var nodes []graph.NodeRecord
	var edges []graph.EdgeRecord

	nodes = append(nodes, graph.NodeRecord{ID: "hub", Name: "hub", Category: "function", File: "hub.py"})
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("callee_%d", i)
		nodes = append(nodes, graph.NodeRecord{ID: id, Name: id, Category: "function", File: "hub.py"})
		edges = append(edges, graph.EdgeRecord{Source: "hub", Target: id, Relationship: "calls"})
	}
	b := NewBuilder(graph.Build(nodes, edges))

	ids := []string{"hub"}
	for i := 0; i < 30; i++ {
		ids = append(ids, fmt.Sprintf("callee_%d", i%8))
	}

	out := b.BuildTopicContext(topics.DocTopic{
		Title:   "Hub",
		Type:    topics.TypeAPI,
		NodeIDs: ids,
	})

	// Five outgoing relation lines at most.
	hubBlock := out[strings.Index(out, "### hub"):]
	hubBlock = hubBlock[:strings.Index(hubBlock, "### callee")]
	assert.Equal(t, 5, strings.Count(hubBlock, "→ calls:"))

	// First 20 node IDs only.
	require.LessOrEqual(t, strings.Count(out, "### "), 20)
}

func TestBuildTopicContext_DuplicateNodeIDsRenderOnce(t *testing.T) {
	nodes := []graph.NodeRecord{
		{ID: "svc.py:retry", Name: "retry", Category: "function", File: "svc.py"},
	}
	// retry calls itself, so it shows up in both relation directions.
	edges := []graph.EdgeRecord{
		{Source: "svc.py:retry", Target: "svc.py:retry", Relationship: "calls"},
	}
	b := NewBuilder(graph.Build(nodes, edges))

	out := b.BuildTopicContext(topics.DocTopic{
		Title:   "Retry Loop",
		Type:    topics.TypeAPI,
		NodeIDs: []string{"svc.py:retry", "svc.py:retry", "svc.py:retry"},
	})

	assert.Equal(t, 1, strings.Count(out, "### retry (function)"))
}

func TestBuildTopicContext_NoFilesSection(t *testing.T) {
	b := NewBuilder(fixtureModel())

	out := b.BuildTopicContext(topics.DocTopic{
		Title:   "Bare",
		Type:    topics.TypeComponent,
		NodeIDs: []string{"api/server.py:listen"},
	})

	assert.NotContains(t, out, "## Files")
}
