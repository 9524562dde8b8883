// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diagram

import (
	"strings"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
)

const (
	// maxSequenceDepth bounds the traced call depth.
	maxSequenceDepth = 5

	// maxSequenceParticipants bounds the participant declarations.
	maxSequenceParticipants = 15

	// maxSequenceCalls bounds the rendered call arrows.
	maxSequenceCalls = 20
)

// Sequence renders a sequenceDiagram tracing call flow from a start
// node.
//
// Description:
//
//	Depth-first traversal over calls edges only, bounded by depth and
//	by a visited-edge set so cyclic call graphs terminate instead of
//	re-walking the same calls. Participants appear in first-encounter
//	order. When stopAt is non-empty the trace does not expand past
//	that node. Returns "" for an unknown start or a start with no
//	outgoing calls.
func (s *Synthesizer) Sequence(startID, stopAt string) string {
	start, ok := s.model.GetNode(startID)
	if !ok {
		return ""
	}

	var participants []string
	participantSet := make(map[string]bool)
	type callPair struct{ caller, callee string }
	var calls []callPair
	visitedEdges := make(map[*graph.Edge]bool)

	addParticipant := func(name string) {
		if !participantSet[name] {
			participantSet[name] = true
			participants = append(participants, name)
		}
	}

	var trace func(n *graph.Node, depth int)
	trace = func(n *graph.Node, depth int) {
		if depth >= maxSequenceDepth {
			return
		}
		callerName := sanitizeID(displayName(n))
		addParticipant(callerName)

		for _, edge := range n.Outgoing {
			if edge.Relationship != graph.RelCalls || visitedEdges[edge] {
				continue
			}
			visitedEdges[edge] = true

			callee, ok := s.model.GetNode(edge.ToID)
			if !ok {
				continue
			}
			calleeName := sanitizeID(displayName(callee))
			addParticipant(calleeName)
			calls = append(calls, callPair{caller: callerName, callee: calleeName})

			if stopAt != "" && edge.ToID == stopAt {
				return
			}
			trace(callee, depth+1)
		}
	}
	trace(start, 0)

	if len(calls) == 0 {
		return ""
	}

	lines := []string{"sequenceDiagram"}
	if len(participants) > maxSequenceParticipants {
		participants = participants[:maxSequenceParticipants]
	}
	for _, p := range participants {
		lines = append(lines, "    participant "+p)
	}

	if len(calls) > maxSequenceCalls {
		calls = calls[:maxSequenceCalls]
	}
	for _, c := range calls {
		lines = append(lines, "    "+c.caller+"->>+"+c.callee+": calls")
	}

	return strings.Join(lines, "\n")
}
