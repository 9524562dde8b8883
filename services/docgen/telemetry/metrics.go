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
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains pre-defined metrics for the documentation engine.
//
// All metrics use the "docgen_" prefix for consistent naming.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// GraphBuildsTotal counts graph model constructions.
	GraphBuildsTotal metric.Int64Counter

	// EdgesDroppedTotal counts edges dropped at model construction for
	// missing endpoints.
	EdgesDroppedTotal metric.Int64Counter

	// TopicsDiscoveredTotal counts topics produced, by strategy.
	TopicsDiscoveredTotal metric.Int64Counter

	// DiscoveryDuration records topic discovery duration in seconds.
	DiscoveryDuration metric.Float64Histogram

	// DiagramsRenderedTotal counts rendered diagrams, by kind.
	DiagramsRenderedTotal metric.Int64Counter

	// ContextBuildsTotal counts topic context builds.
	ContextBuildsTotal metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments registered
// on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.GraphBuildsTotal, err = meter.Int64Counter(
		"docgen_graph_builds_total",
		metric.WithDescription("Total graph model constructions"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create graph_builds_total: %w", err)
	}

	m.EdgesDroppedTotal, err = meter.Int64Counter(
		"docgen_edges_dropped_total",
		metric.WithDescription("Edges dropped for missing endpoints"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create edges_dropped_total: %w", err)
	}

	m.TopicsDiscoveredTotal, err = meter.Int64Counter(
		"docgen_topics_discovered_total",
		metric.WithDescription("Total documentation topics discovered"),
		metric.WithUnit("{topic}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create topics_discovered_total: %w", err)
	}

	m.DiscoveryDuration, err = meter.Float64Histogram(
		"docgen_discovery_duration_seconds",
		metric.WithDescription("Topic discovery duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("create discovery_duration: %w", err)
	}

	m.DiagramsRenderedTotal, err = meter.Int64Counter(
		"docgen_diagrams_rendered_total",
		metric.WithDescription("Total Mermaid diagrams rendered"),
		metric.WithUnit("{diagram}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create diagrams_rendered_total: %w", err)
	}

	m.ContextBuildsTotal, err = meter.Int64Counter(
		"docgen_context_builds_total",
		metric.WithDescription("Total topic context builds"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create context_builds_total: %w", err)
	}

	return m, nil
}
