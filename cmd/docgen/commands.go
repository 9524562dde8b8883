// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDocs/services/docgen"
	"github.com/AleutianAI/AleutianDocs/services/docgen/diagram"
	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
)

// graphPayload is the JSON document produced by the static-analysis
// side: flat node and edge lists.
type graphPayload struct {
	Nodes []graph.NodeRecord `json:"nodes"`
	Edges []graph.EdgeRecord `json:"edges"`
}

var (
	topicsMax    int
	diagramKind  string
	diagramNodes []string
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Discover documentation topics from the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService(cmd.Context())
		if err != nil {
			return err
		}

		maxTopics := topicsMax
		if maxTopics == 0 {
			maxTopics = config.MaxTopics
		}

		result, err := svc.DiscoverTopics(cmd.Context(), maxTopics)
		if err != nil {
			return err
		}
		return outputJSON(result)
	},
}

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Render a Mermaid diagram for a node selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := diagram.ParseKind(diagramKind)
		if kind == diagram.KindUnknown {
			return fmt.Errorf("unknown diagram kind %q", diagramKind)
		}

		svc, err := loadService(cmd.Context())
		if err != nil {
			return err
		}

		out := svc.RenderDiagram(cmd.Context(), diagramNodes, kind)
		if out == "" {
			return fmt.Errorf("nothing renderable for the given nodes")
		}
		fmt.Println(out)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print graph statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService(cmd.Context())
		if err != nil {
			return err
		}
		return outputJSON(svc.Statistics())
	},
}

func init() {
	topicsCmd.Flags().IntVar(&topicsMax, "max-topics", 0, "maximum topics to generate")
	diagramCmd.Flags().StringVar(&diagramKind, "kind", "flowchart",
		"diagram kind: flowchart, component, class, sequence, er")
	diagramCmd.Flags().StringSliceVar(&diagramNodes, "nodes", nil, "node IDs to include")
	_ = diagramCmd.MarkFlagRequired("nodes")

	rootCmd.AddCommand(topicsCmd, diagramCmd, statsCmd)
}

// loadService reads the graph payload and builds the service over it.
func loadService(ctx context.Context) (*docgen.Service, error) {
	var reader io.Reader = os.Stdin
	if graphPath != "" {
		f, err := os.Open(graphPath)
		if err != nil {
			return nil, fmt.Errorf("open graph payload: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var payload graphPayload
	if err := json.NewDecoder(reader).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode graph payload: %w", err)
	}

	model := graph.Build(payload.Nodes, payload.Edges)
	clusterOpts := config.Clustering
	opts := []docgen.Option{docgen.WithClusterOptions(&clusterOpts)}
	if metrics != nil {
		metrics.GraphBuildsTotal.Add(ctx, 1)
		if dropped := model.DroppedEdges(); dropped > 0 {
			metrics.EdgesDroppedTotal.Add(ctx, int64(dropped))
		}
		opts = append(opts, docgen.WithMetrics(metrics))
	}
	return docgen.NewService(model, opts...), nil
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
