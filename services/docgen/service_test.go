// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package docgen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AleutianAI/AleutianDocs/services/docgen/diagram"
	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
	"github.com/AleutianAI/AleutianDocs/services/docgen/telemetry"
	"github.com/AleutianAI/AleutianDocs/services/docgen/topics"
)

// threeNodeModel: gamma starts the flow, alpha does the work, beta is a
// leaf. gamma has no callers, which makes it the entry point.
func threeNodeModel() *graph.Model {
	nodes := []graph.NodeRecord{
		{ID: "core.py:alpha", Name: "alpha", Category: "function", File: "core.py"},
		{ID: "core.py:beta", Name: "beta", Category: "function", File: "core.py"},
		{ID: "core.py:gamma", Name: "gamma", Category: "function", File: "core.py"},
	}
	edges := []graph.EdgeRecord{
		{Source: "core.py:alpha", Target: "core.py:beta", Relationship: "calls"},
		{Source: "core.py:gamma", Target: "core.py:alpha", Relationship: "references"},
	}
	return graph.Build(nodes, edges)
}

func TestService_EndToEnd(t *testing.T) {
	svc := NewService(threeNodeModel())

	result, err := svc.DiscoverTopics(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, result, 2)

	overview := result[0]
	assert.Equal(t, "overview", overview.ID)
	assert.Equal(t, topics.TypeOverview, overview.Type)
	// The overview renders as a component diagram.
	assert.True(t, strings.HasPrefix(overview.MermaidDiagram, "flowchart LR"))
	assert.NotEmpty(t, overview.LLMContext)

	entry := result[1]
	assert.Equal(t, "entry-gamma", entry.ID)
	assert.Equal(t, topics.TypeEntryPoint, entry.Type)
	assert.Contains(t, entry.NodeIDs, "core.py:gamma")
	assert.Contains(t, entry.NodeIDs, "core.py:alpha")

	// Flowchart over gamma + downstream: gamma->alpha exactly once,
	// alpha->beta exactly once, nothing fabricated.
	d := entry.MermaidDiagram
	require.True(t, strings.HasPrefix(d, "flowchart TD"))
	assert.Equal(t, 2, strings.Count(d, "-->"))
	assert.Equal(t, 1, strings.Count(d, "N0 --> N1"))

	// Context mentions the real relationship, no invented ones.
	assert.Contains(t, entry.LLMContext, "references: alpha")
	assert.Contains(t, entry.LLMContext, "calls: beta")
}

func TestService_Deterministic(t *testing.T) {
	svc := NewService(threeNodeModel())

	first, err := svc.DiscoverTopics(context.Background(), 5)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := svc.DiscoverTopics(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestService_RenderDiagramKinds(t *testing.T) {
	svc := NewService(threeNodeModel())
	ids := []string{"core.py:gamma", "core.py:alpha", "core.py:beta"}
	ctx := context.Background()

	assert.True(t, strings.HasPrefix(svc.RenderDiagram(ctx, ids, diagram.KindFlowchart), "flowchart TD"))
	assert.True(t, strings.HasPrefix(svc.RenderDiagram(ctx, ids, diagram.KindComponent), "flowchart LR"))
	// No class nodes: class and er diagrams are empty, not headers.
	assert.Empty(t, svc.RenderDiagram(ctx, ids, diagram.KindClass))
	assert.Empty(t, svc.RenderDiagram(ctx, ids, diagram.KindER))
	// gamma's reference edge is not a call, so no sequence either.
	assert.Empty(t, svc.RenderDiagram(ctx, ids, diagram.KindSequence))
	// alpha does make a call.
	assert.True(t, strings.HasPrefix(svc.RenderDiagram(ctx, []string{"core.py:alpha"}, diagram.KindSequence), "sequenceDiagram"))

	assert.Empty(t, svc.RenderDiagram(ctx, nil, diagram.KindFlowchart))
}

func TestService_BuildContextAndClassify(t *testing.T) {
	svc := NewService(threeNodeModel())

	out := svc.BuildContext(context.Background(), topics.DocTopic{
		Title:   "Core",
		Type:    topics.TypeComponent,
		NodeIDs: []string{"core.py:alpha"},
	})
	assert.Contains(t, out, "### alpha (function)")

	fc := svc.ClassifyFile("core.py", []string{"core.py:alpha", "core.py:beta", "core.py:gamma"}, nil)
	assert.Contains(t, []string{"core_logic", "utility"}, fc.Role.String())
	assert.Len(t, fc.ExportedFunctions, 3)
}

func TestService_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := telemetry.NewMetrics(provider.Meter("docgen-test"))
	require.NoError(t, err)

	svc := NewService(threeNodeModel(), WithMetrics(m))
	ctx := context.Background()

	result, err := svc.DiscoverTopics(ctx, 5)
	require.NoError(t, err)
	svc.RenderDiagram(ctx, []string{"core.py:alpha", "core.py:beta"}, diagram.KindFlowchart)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	sums := make(map[string]int64)
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := metric.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				sums[metric.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(len(result)), sums["docgen_topics_discovered_total"])
	assert.Equal(t, int64(1), sums["docgen_diagrams_rendered_total"])
}

func TestService_Statistics(t *testing.T) {
	stats := NewService(threeNodeModel()).Statistics()

	assert.Equal(t, 3, stats.TotalNodes)
	assert.Equal(t, 2, stats.TotalEdges)
	assert.Equal(t, 0, stats.DroppedEdges)
	assert.Equal(t, 3, stats.CategoryCounts["function"])
	assert.Equal(t, []string{"Python"}, stats.DetectedLanguages)
}
