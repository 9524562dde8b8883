// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package docgen turns a code graph into documentation-ready topics,
// structured context, and Mermaid diagrams. The Service facade wires
// the graph model, topic discovery, context building, diagram
// synthesis, and file classification behind one surface, so a caller
// gets fully enriched topics from a single call.
package docgen

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/AleutianDocs/services/docgen/classify"
	"github.com/AleutianAI/AleutianDocs/services/docgen/contextbuild"
	"github.com/AleutianAI/AleutianDocs/services/docgen/diagram"
	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
	"github.com/AleutianAI/AleutianDocs/services/docgen/telemetry"
	"github.com/AleutianAI/AleutianDocs/services/docgen/topics"
)

var serviceTracer = otel.Tracer("docgen.service")

// Service is the documentation engine facade over one frozen graph.
//
// Thread Safety: Safe for concurrent use; all components only read the
// frozen model.
type Service struct {
	model      *graph.Model
	engine     *topics.Engine
	synth      *diagram.Synthesizer
	builder    *contextbuild.Builder
	classifier *classify.Classifier
	metrics    *telemetry.Metrics
}

// Option configures a Service.
type Option func(*options)

type options struct {
	clusterOpts *topics.ClusterOptions
	metrics     *telemetry.Metrics
}

// WithClusterOptions overrides the community-detection parameters.
func WithClusterOptions(opts *topics.ClusterOptions) Option {
	return func(o *options) { o.clusterOpts = opts }
}

// WithMetrics attaches metric instruments to the service.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// NewService creates a documentation service over a frozen model.
func NewService(model *graph.Model, opts ...Option) *Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		model:      model,
		engine:     topics.NewEngine(model, o.clusterOpts),
		synth:      diagram.NewSynthesizer(model),
		builder:    contextbuild.NewBuilder(model),
		classifier: classify.NewClassifier(model),
		metrics:    o.metrics,
	}
}

// DiscoverTopics discovers topics and enriches each with its text
// context and Mermaid diagram.
//
// Description:
//
//	Runs strategy-based discovery, then fills LLMContext and
//	MermaidDiagram on every topic before handing them back. The result
//	is deterministic for a given model and maxTopics.
//
// Outputs:
//
//   - []*topics.DocTopic: At least the overview topic.
//   - error: Only a cancelled context.
func (s *Service) DiscoverTopics(ctx context.Context, maxTopics int) ([]*topics.DocTopic, error) {
	ctx, span := serviceTracer.Start(ctx, "docgen.DiscoverTopics")
	defer span.End()
	started := time.Now()

	discovered, err := s.engine.DiscoverTopics(ctx, maxTopics)
	if err != nil {
		return nil, err
	}

	result := make([]*topics.DocTopic, len(discovered))
	for i := range discovered {
		topic := discovered[i]
		topic.LLMContext = s.builder.BuildTopicContext(topic)
		topic.MermaidDiagram = s.synth.RenderForTopic(topic.Type, topic.NodeIDs)
		result[i] = &topic
	}

	span.SetAttributes(attribute.Int("topics", len(result)))
	if s.metrics != nil {
		s.metrics.TopicsDiscoveredTotal.Add(ctx, int64(len(result)))
		s.metrics.DiscoveryDuration.Record(ctx, time.Since(started).Seconds())
	}
	return result, nil
}

// BuildContext renders one topic as structured text.
func (s *Service) BuildContext(ctx context.Context, topic topics.DocTopic) string {
	out := s.builder.BuildTopicContext(topic)
	if s.metrics != nil {
		s.metrics.ContextBuildsTotal.Add(ctx, 1)
	}
	return out
}

// RenderDiagram renders the requested diagram kind over a node
// selection. Sequence diagrams trace from the first node in the
// selection. Returns "" when there is nothing renderable.
func (s *Service) RenderDiagram(ctx context.Context, nodeIDs []string, kind diagram.Kind) string {
	if len(nodeIDs) == 0 {
		return ""
	}

	var out string
	switch kind {
	case diagram.KindComponent:
		out = s.synth.Component(nodeIDs)
	case diagram.KindClass:
		out = s.synth.Class(nodeIDs)
	case diagram.KindSequence:
		out = s.synth.Sequence(nodeIDs[0], "")
	case diagram.KindER:
		out = s.synth.ER(nodeIDs)
	default:
		out = s.synth.Flowchart(nodeIDs, diagram.FlowchartOptions{})
	}

	if out != "" && s.metrics != nil {
		s.metrics.DiagramsRenderedTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("kind", kind.String())))
	}
	return out
}

// ClassifyFile derives the role and relational context of one file.
func (s *Service) ClassifyFile(filePath string, nodeIDs []string, allFiles []classify.FileEntry) classify.FileContext {
	return s.classifier.ClassifyFile(filePath, nodeIDs, allFiles)
}

// Statistics returns summary statistics of the underlying graph.
func (s *Service) Statistics() graph.Stats {
	return s.model.Stats()
}
