// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diagram renders Mermaid diagrams directly from the code
// graph. Every node and edge in the output corresponds to a real graph
// element, so the diagrams are structurally accurate by construction
// rather than generated prose that merely resembles the code.
//
// All renderers share two contracts: an edge is drawn only when both
// endpoints are drawn, and a diagram with nothing to show is the empty
// string, never a bare header.
package diagram

import (
	"strings"
	"unicode"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
	"github.com/AleutianAI/AleutianDocs/services/docgen/topics"
)

// Kind identifies a diagram type.
type Kind int

const (
	KindUnknown Kind = iota
	KindFlowchart
	KindComponent
	KindClass
	KindSequence
	KindER
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindFlowchart: "flowchart",
	KindComponent: "component",
	KindClass:     "class",
	KindSequence:  "sequence",
	KindER:        "er",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a diagram kind name to its Kind, or KindUnknown.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindUnknown
}

// Synthesizer renders Mermaid diagrams from a frozen code graph.
//
// Thread Safety: Safe for concurrent use; renders only read the model.
type Synthesizer struct {
	model *graph.Model
}

// NewSynthesizer creates a diagram synthesizer over a frozen model.
func NewSynthesizer(model *graph.Model) *Synthesizer {
	return &Synthesizer{model: model}
}

// RenderForTopic picks the diagram kind for a topic: component layout
// for the whole-project overview, flowchart for everything else.
func (s *Synthesizer) RenderForTopic(topicType topics.TopicType, nodeIDs []string) string {
	if len(nodeIDs) == 0 {
		return ""
	}
	if topicType == topics.TypeOverview {
		return s.Component(nodeIDs)
	}
	return s.Flowchart(nodeIDs, FlowchartOptions{})
}

// idReplacer strips the characters Mermaid rejects in identifiers.
var idReplacer = strings.NewReplacer(
	" ", "_",
	"-", "_",
	".", "_",
	":", "_",
	"/", "_",
	"\\", "_",
	"(", "",
	")", "",
	"[", "",
	"]", "",
	"<", "",
	">", "",
)

// sanitizeID makes a name safe for use as a Mermaid identifier.
func sanitizeID(name string) string {
	safe := idReplacer.Replace(name)
	if safe == "" {
		return "Unknown"
	}
	if !unicode.IsLetter(rune(safe[0])) {
		safe = "N" + safe
	}
	return safe
}

// escapeLabel makes text safe inside a quoted Mermaid label.
func escapeLabel(text string) string {
	return strings.NewReplacer(`"`, "'", "[", "(", "]", ")").Replace(text)
}

// displayName returns a node's name, falling back to the last ID
// segment for unnamed nodes.
func displayName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	parts := strings.Split(n.ID, ".")
	return parts[len(parts)-1]
}
