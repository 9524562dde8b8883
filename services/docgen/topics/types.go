// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package topics discovers documentation topics from a code graph.
//
// A topic is a named, bounded subset of graph nodes worth documenting as one
// page or section. Discovery selects a strategy by graph size: large graphs
// are clustered with modularity-maximizing community detection, medium
// graphs are grouped by directory plus high-connectivity hub nodes, and
// small graphs are covered by entry-point traces plus per-module topics.
// An overview topic covering the whole codebase is always prepended.
//
// Topics are created once by the Engine, enriched in place by the context
// builder and diagram synthesizer, and never mutated afterward.
package topics

import (
	"encoding/json"
	"errors"
)

// ErrDegenerateInput is returned by the community strategy when the graph
// is too small or too disconnected for modularity clustering to produce
// meaningful components. Callers fall back to the directory strategy on
// this specific error; it never propagates out of topic discovery.
var ErrDegenerateInput = errors.New("input too degenerate for community detection")

// Importance bounds for topics, on a 1-5 scale.
const (
	// MinImportance is the lowest allowed topic importance.
	MinImportance = 1

	// MaxImportance is the highest allowed topic importance.
	MaxImportance = 5
)

// TopicType classifies a documentation topic by how it was discovered.
type TopicType int

const (
	// TypeComponent is a cluster of related code elements, discovered by
	// community detection, directory grouping, or per-module grouping.
	TypeComponent TopicType = iota

	// TypeAPI is a hub node with unusually high connectivity, treated as
	// an important API surface together with its immediate neighbors.
	TypeAPI

	// TypeEntryPoint is an application entry point and its call graph.
	TypeEntryPoint

	// TypeOverview is the whole-codebase overview topic.
	TypeOverview
)

// String returns the wire representation of the TopicType.
func (t TopicType) String() string {
	switch t {
	case TypeComponent:
		return "component"
	case TypeAPI:
		return "api"
	case TypeEntryPoint:
		return "entry_point"
	case TypeOverview:
		return "overview"
	default:
		return "component"
	}
}

// ParseTopicType maps a wire name to its TopicType, defaulting to
// TypeComponent for unrecognized names.
func ParseTopicType(s string) TopicType {
	switch s {
	case "api":
		return TypeAPI
	case "entry_point":
		return TypeEntryPoint
	case "overview":
		return TypeOverview
	default:
		return TypeComponent
	}
}

// MarshalJSON emits the wire name, so payloads read "overview" rather
// than a bare integer.
func (t TopicType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the wire name.
func (t *TopicType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTopicType(s)
	return nil
}

// DocTopic represents a documentation topic/page derived from code analysis.
//
// Lifecycle: created by the Engine, enriched in place with LLMContext and
// MermaidDiagram, then handed off read-only to the documentation
// orchestrator.
//
// NodeIDs may reference nodes absent from the current graph model (stale
// references); consumers must skip, never error, on lookup miss.
type DocTopic struct {
	// ID is unique within one discovery result.
	ID string `json:"id"`

	// Title is the human-readable topic title.
	Title string `json:"title"`

	// Description is a short machine-generated summary.
	Description string `json:"description"`

	// NodeIDs lists the graph nodes covered by this topic, in discovery
	// order.
	NodeIDs []string `json:"node_ids"`

	// PrimaryFiles lists up to 10 source files central to the topic.
	PrimaryFiles []string `json:"primary_files"`

	// Importance is the topic's rank on a 1-5 scale.
	Importance int `json:"importance"`

	// Type classifies the topic by discovery strategy.
	Type TopicType `json:"topic_type"`

	// RelatedTopics lists IDs of related topics.
	RelatedTopics []string `json:"related_topics"`

	// MermaidDiagram is the rendered diagram source. Empty when nothing
	// was renderable.
	MermaidDiagram string `json:"mermaid_diagram"`

	// LLMContext is the structured textual context block for downstream
	// prose generation.
	LLMContext string `json:"llm_context"`
}

// clampImportance bounds a computed importance score to [1, 5].
func clampImportance(v int) int {
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}
