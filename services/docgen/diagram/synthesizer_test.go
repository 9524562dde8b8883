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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
	"github.com/AleutianAI/AleutianDocs/services/docgen/topics"
)

// menagerieModel is a small, mixed-category fixture: a class hierarchy
// with a method, a calling function, and a module import.
func menagerieModel() *graph.Model {
	nodes := []graph.NodeRecord{
		{ID: "zoo/animals.py:Animal", Name: "Animal", Category: "class", File: "zoo/animals.py",
			Code: "class Animal:\n    name: str\n    age: int = 0\n    def __init__(self):\n        self.sound = 'generic'\n        self._secret = 1\n"},
		{ID: "zoo/animals.py:Dog", Name: "Dog", Category: "class", File: "zoo/animals.py"},
		{ID: "zoo/animals.py:Dog.bark", Name: "bark", Category: "method", File: "zoo/animals.py"},
		{ID: "zoo/feeding.py:feed", Name: "feed", Category: "function", File: "zoo/feeding.py"},
		{ID: "zoo/feeding.py", Name: "feeding", Category: "module", File: "zoo/feeding.py"},
	}
	edges := []graph.EdgeRecord{
		{Source: "zoo/animals.py:Dog", Target: "zoo/animals.py:Animal", Relationship: "inherits"},
		{Source: "zoo/animals.py:Dog", Target: "zoo/animals.py:Dog.bark", Relationship: "defines_method"},
		{Source: "zoo/feeding.py:feed", Target: "zoo/animals.py:Dog.bark", Relationship: "calls"},
		{Source: "zoo/feeding.py", Target: "zoo/animals.py:Dog", Relationship: "imports_symbol"},
	}
	return graph.Build(nodes, edges)
}

func TestFlowchart_ShapesAndArrows(t *testing.T) {
	s := NewSynthesizer(menagerieModel())

	out := s.Flowchart([]string{
		"zoo/animals.py:Animal",
		"zoo/animals.py:Dog",
		"zoo/animals.py:Dog.bark",
		"zoo/feeding.py:feed",
		"zoo/feeding.py",
	}, FlowchartOptions{})

	require.NotEmpty(t, out)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "flowchart TD", lines[0])

	assert.Contains(t, out, `N0["Animal"]`)
	assert.Contains(t, out, `N1["Dog"]`)
	assert.Contains(t, out, `N2(("bark"))`)
	assert.Contains(t, out, `N3("feed")`)
	assert.Contains(t, out, `N4[["feeding"]]`)

	assert.Contains(t, out, "N1 -.->|extends| N0")
	assert.Contains(t, out, "N1 -->|defines| N2")
	assert.Contains(t, out, "N3 --> N2")

	// Imports are skipped by default.
	assert.NotContains(t, out, "imports")
}

func TestFlowchart_IncludeImports(t *testing.T) {
	s := NewSynthesizer(menagerieModel())

	out := s.Flowchart([]string{"zoo/feeding.py", "zoo/animals.py:Dog"},
		FlowchartOptions{IncludeImports: true})

	assert.Contains(t, out, "N0 -.->|imports| N1")
}

func TestFlowchart_EdgesRequireBothEndpoints(t *testing.T) {
	s := NewSynthesizer(menagerieModel())

	// feed's callee bark is not in the selection: no edge may appear.
	out := s.Flowchart([]string{"zoo/feeding.py:feed"}, FlowchartOptions{})

	require.NotEmpty(t, out)
	assert.NotContains(t, out, "-->")
}

func TestFlowchart_UnknownAndEmpty(t *testing.T) {
	s := NewSynthesizer(menagerieModel())

	assert.Empty(t, s.Flowchart(nil, FlowchartOptions{}))
	assert.Empty(t, s.Flowchart([]string{"no-such-node"}, FlowchartOptions{}))

	// Unknown IDs are skipped, known ones still render.
	out := s.Flowchart([]string{"no-such-node", "zoo/animals.py:Dog"}, FlowchartOptions{})
	assert.Contains(t, out, `N1["Dog"]`)
}

func TestFlowchart_NodeCap(t *testing.T) {
	var nodes []graph.NodeRecord
	ids := make([]string, 40)
	for i := range ids {
		ids[i] = fmt.Sprintf("pkg/mod.py:fn_%02d", i)
		nodes = append(nodes, graph.NodeRecord{
			ID: ids[i], Name: fmt.Sprintf("fn_%02d", i), Category: "function", File: "pkg/mod.py",
		})
	}
	s := NewSynthesizer(graph.Build(nodes, nil))

	out := s.Flowchart(ids, FlowchartOptions{})
	assert.Equal(t, maxFlowchartNodes, strings.Count(out, "\n"))
}

func TestFlowchart_LabelEscaping(t *testing.T) {
	nodes := []graph.NodeRecord{
		{ID: "a", Name: `get["x"]`, Category: "class", File: "a.py"},
	}
	s := NewSynthesizer(graph.Build(nodes, nil))

	out := s.Flowchart([]string{"a"}, FlowchartOptions{})
	assert.Contains(t, out, `N0["get('x')"]`)
}

func TestComponent_GroupsAndCrossEdges(t *testing.T) {
	s := NewSynthesizer(menagerieModel())

	out := s.Component([]string{
		"zoo/feeding.py:feed",
		"zoo/animals.py:Animal",
		"zoo/animals.py:Dog",
		"zoo/animals.py:Dog.bark",
	})

	require.NotEmpty(t, out)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "flowchart LR", lines[0])

	assert.Contains(t, out, `subgraph feeding["Feeding"]`)
	assert.Contains(t, out, `subgraph animals["Animals"]`)
	assert.Contains(t, out, `feeding_0["feed"]`)
	assert.Contains(t, out, `animals_0["Animal"]`)

	// feed calls bark across the file boundary.
	assert.Contains(t, out, "feeding --> animals")
	assert.NotContains(t, out, "animals --> feeding")
}

func TestComponent_Empty(t *testing.T) {
	s := NewSynthesizer(menagerieModel())
	assert.Empty(t, s.Component(nil))
	assert.Empty(t, s.Component([]string{"no-such-node"}))
}

func TestClass_MethodsAndInheritance(t *testing.T) {
	s := NewSynthesizer(menagerieModel())

	// Parent Animal is outside the selection but must be declared for
	// the inheritance line to be valid.
	out := s.Class([]string{"zoo/animals.py:Dog", "zoo/feeding.py:feed"})

	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(out, "classDiagram"))
	assert.Contains(t, out, "class Dog")
	assert.Contains(t, out, "Dog : +bark()")
	assert.Contains(t, out, "Animal <|-- Dog")
	assert.Contains(t, out, "class Animal")
	// feed is a function, not a class.
	assert.NotContains(t, out, "feed")
}

func TestClass_NoClassNodes(t *testing.T) {
	s := NewSynthesizer(menagerieModel())
	assert.Empty(t, s.Class([]string{"zoo/feeding.py:feed", "zoo/animals.py:Dog.bark"}))
}

func TestSequence_TracesCalls(t *testing.T) {
	nodes := []graph.NodeRecord{
		{ID: "a", Name: "handle_request", Category: "function", File: "a.py"},
		{ID: "b", Name: "validate", Category: "function", File: "a.py"},
		{ID: "c", Name: "persist", Category: "function", File: "b.py"},
	}
	edges := []graph.EdgeRecord{
		{Source: "a", Target: "b", Relationship: "calls"},
		{Source: "b", Target: "c", Relationship: "calls"},
		// Cycle back to the start.
		{Source: "c", Target: "a", Relationship: "calls"},
	}
	s := NewSynthesizer(graph.Build(nodes, edges))

	out := s.Sequence("a", "")
	require.NotEmpty(t, out)

	assert.Contains(t, out, "participant handle_request")
	assert.Contains(t, out, "participant validate")
	assert.Contains(t, out, "participant persist")
	assert.Contains(t, out, "handle_request->>+validate: calls")
	assert.Contains(t, out, "validate->>+persist: calls")
	// The cycle edge renders once; the traversal terminates.
	assert.Equal(t, 1, strings.Count(out, "persist->>+handle_request: calls"))
}

func TestSequence_EmptyCases(t *testing.T) {
	s := NewSynthesizer(menagerieModel())

	assert.Empty(t, s.Sequence("no-such-node", ""))
	// bark makes no calls.
	assert.Empty(t, s.Sequence("zoo/animals.py:Dog.bark", ""))
}

func TestER_AttributesAndExtends(t *testing.T) {
	s := NewSynthesizer(menagerieModel())

	out := s.ER([]string{"zoo/animals.py:Animal", "zoo/animals.py:Dog"})
	require.NotEmpty(t, out)

	assert.True(t, strings.HasPrefix(out, "erDiagram"))
	assert.Contains(t, out, "Animal {")
	assert.Contains(t, out, "str name")
	assert.Contains(t, out, "int age")
	assert.Contains(t, out, "any sound")
	// Private constructor fields stay out.
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "Animal ||--o{ Dog : extends")
}

func TestER_NoEntities(t *testing.T) {
	s := NewSynthesizer(menagerieModel())
	assert.Empty(t, s.ER([]string{"zoo/feeding.py:feed"}))
}

func TestRenderForTopic_KindSelection(t *testing.T) {
	s := NewSynthesizer(menagerieModel())
	ids := []string{"zoo/animals.py:Dog", "zoo/feeding.py:feed"}

	assert.True(t, strings.HasPrefix(s.RenderForTopic(topics.TypeOverview, ids), "flowchart LR"))
	assert.True(t, strings.HasPrefix(s.RenderForTopic(topics.TypeComponent, ids), "flowchart TD"))
	assert.Empty(t, s.RenderForTopic(topics.TypeOverview, nil))
}

func TestParseKind_RoundTrip(t *testing.T) {
	for _, k := range []Kind{KindFlowchart, KindComponent, KindClass, KindSequence, KindER} {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, KindUnknown, ParseKind("donut"))
}
