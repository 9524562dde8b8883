// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInit_NilContext(t *testing.T) {
	//nolint:staticcheck // deliberately passing nil to exercise the guard
	_, err := Init(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_DisabledExporters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "none"

	shutdown, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "carrier-pigeon"
	cfg.MetricExporter = "none"
	_, err := Init(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrUnknownExporter)

	cfg.TraceExporter = "none"
	cfg.MetricExporter = "carrier-pigeon"
	_, err = Init(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics(otel.Meter("docgen-test"))
	require.NoError(t, err)

	assert.NotNil(t, m.GraphBuildsTotal)
	assert.NotNil(t, m.EdgesDroppedTotal)
	assert.NotNil(t, m.TopicsDiscoveredTotal)
	assert.NotNil(t, m.DiscoveryDuration)
	assert.NotNil(t, m.DiagramsRenderedTotal)
	assert.NotNil(t, m.ContextBuildsTotal)
}

func TestNewMetrics_InstrumentsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewMetrics(provider.Meter("docgen-test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.GraphBuildsTotal.Add(ctx, 1)
	m.EdgesDroppedTotal.Add(ctx, 3)
	m.TopicsDiscoveredTotal.Add(ctx, 5)

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
	assert.Equal(t, int64(1), sums["docgen_graph_builds_total"])
	assert.Equal(t, int64(3), sums["docgen_edges_dropped_total"])
	assert.Equal(t, int64(5), sums["docgen_topics_discovered_total"])
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "aleutian-docs", cfg.ServiceName)
	assert.NotEmpty(t, cfg.Environment)
}
