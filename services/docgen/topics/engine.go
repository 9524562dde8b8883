// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package topics

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
)

var engineTracer = otel.Tracer("docgen.topics")

// Strategy selection thresholds, by count of code-category nodes.
const (
	// largeRepoThreshold selects the clustering strategy.
	largeRepoThreshold = 30

	// mediumRepoThreshold selects the directory + hub strategy; below
	// it the entry-point + module strategy applies.
	mediumRepoThreshold = 10

	// DefaultMaxTopics is used when callers pass maxTopics <= 0.
	DefaultMaxTopics = 10

	// maxHubTopics caps hub topics mixed into a medium-repo result.
	maxHubTopics = 2
)

// Engine discovers documentation topics from a frozen code graph.
//
// Description:
//
//	Selects a discovery strategy by repository size and combines its
//	results with an always-present overview topic. The same model and
//	options always produce the same topic list.
//
// Thread Safety: Safe for concurrent use; the engine only reads the
// frozen model.
type Engine struct {
	model       *graph.Model
	clusterOpts *ClusterOptions
}

// NewEngine creates a topic discovery engine over a frozen model.
// A nil opts uses defaults.
func NewEngine(model *graph.Model, opts *ClusterOptions) *Engine {
	if opts == nil {
		opts = DefaultClusterOptions()
	} else {
		opts.Validate()
	}
	return &Engine{model: model, clusterOpts: opts}
}

// DiscoverTopics finds documentation-worthy topics in the code graph.
//
// Description:
//
//	Counts code-category nodes, picks a strategy by size (clustering
//	for large graphs with a directory fallback on degenerate input,
//	directory + hubs for medium, entry points + modules for small),
//	prepends the overview topic, deduplicates by ID keeping the first
//	occurrence, and truncates to maxTopics.
//
// Inputs:
//
//   - ctx: Context for cancellation of the clustering phase.
//   - maxTopics: Result cap. Values <= 0 use DefaultMaxTopics.
//
// Outputs:
//
//   - []DocTopic: At least the overview topic; never empty.
//   - error: Only ctx.Err() from a cancelled clustering run.
func (e *Engine) DiscoverTopics(ctx context.Context, maxTopics int) ([]DocTopic, error) {
	ctx, span := engineTracer.Start(ctx, "topics.DiscoverTopics")
	defer span.End()

	if maxTopics <= 0 {
		maxTopics = DefaultMaxTopics
	}

	codeNodes := 0
	for _, id := range e.model.NodeIDs() {
		if n, ok := e.model.GetNode(id); ok && n.Category.IsCode() {
			codeNodes++
		}
	}
	span.SetAttributes(attribute.Int("code_nodes", codeNodes))

	var topics []DocTopic
	var strategy string

	switch {
	case codeNodes >= largeRepoThreshold:
		strategy = "clustering"
		clusterTopics, err := e.discoverByClustering(ctx)
		if err != nil {
			if !errors.Is(err, ErrDegenerateInput) {
				return nil, err
			}
			// Sparse or disconnected graph: cluster quality would be
			// poor, so fall back to directory grouping.
			strategy = "directory_fallback"
			span.AddEvent("clustering_degenerate_fallback")
			clusterTopics = e.discoverByDirectory()
		}
		topics = capTopics(clusterTopics, maxTopics-2)

	case codeNodes >= mediumRepoThreshold:
		strategy = "directory_hubs"
		topics = capTopics(e.discoverByDirectory(), maxTopics-3)
		topics = append(topics, capTopics(e.discoverHubNodes(), maxHubTopics)...)

	default:
		strategy = "entry_modules"
		entries := e.discoverEntryPoints()
		topics = append(topics, entries...)
		topics = append(topics, capTopics(e.discoverAllModules(), maxTopics-len(entries)-1)...)
	}

	topics = append([]DocTopic{e.overviewTopic()}, topics...)
	topics = dedupTopics(topics)
	topics = capTopics(topics, maxTopics)

	slog.Debug("topic discovery completed",
		slog.String("strategy", strategy),
		slog.Int("code_nodes", codeNodes),
		slog.Int("topics", len(topics)),
	)
	span.SetAttributes(
		attribute.String("strategy", strategy),
		attribute.Int("topics_found", len(topics)),
	)

	return topics, nil
}

// capTopics returns at most limit topics; a negative limit means zero.
func capTopics(topics []DocTopic, limit int) []DocTopic {
	if limit < 0 {
		limit = 0
	}
	if len(topics) > limit {
		return topics[:limit]
	}
	return topics
}

// dedupTopics removes duplicate IDs keeping the first occurrence, so
// the overview topic always wins a collision.
func dedupTopics(topics []DocTopic) []DocTopic {
	seen := make(map[string]bool, len(topics))
	out := make([]DocTopic, 0, len(topics))
	for _, t := range topics {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}
