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
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianDocs/services/docgen/telemetry"
	"github.com/AleutianAI/AleutianDocs/services/docgen/topics"
)

// Config is the optional YAML configuration for topic generation.
type Config struct {
	// MaxTopics caps the discovered topic list. Zero uses the default.
	MaxTopics int `yaml:"max_topics"`

	// Clustering tunes community detection for large graphs.
	Clustering topics.ClusterOptions `yaml:"clustering"`

	// Telemetry configures exporters; defaults keep both disabled.
	Telemetry telemetry.Config `yaml:"telemetry"`

	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint when the prometheus exporter is selected.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel sets slog verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const defaultMetricsAddr = ":9464"

var (
	config     Config
	configPath string
	graphPath  string
	metrics    *telemetry.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "Generate documentation topics and diagrams from a code graph",
	Long: `docgen reads a code graph payload (JSON node and edge lists) and
derives documentation-worthy topics, structured context, and Mermaid
diagrams from the actual code structure.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&graphPath, "graph", "", "path to graph payload JSON (default stdin)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		config = Config{Telemetry: telemetry.DefaultConfig()}
		if configPath != "" {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return err
			}
			if err := yaml.Unmarshal(data, &config); err != nil {
				return err
			}
		}

		configureLogging(config.LogLevel)

		shutdown, err := telemetry.Init(context.Background(), config.Telemetry)
		if err != nil {
			return err
		}
		cobra.OnFinalize(func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
			}
		})

		if config.Telemetry.MetricExporter != "none" {
			metrics, err = telemetry.NewMetrics(otel.Meter("docgen"))
			if err != nil {
				return err
			}
		}
		if handler := telemetry.MetricsHandler(); handler != nil {
			addr := config.MetricsAddr
			if addr == "" {
				addr = defaultMetricsAddr
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", handler)
			go func() {
				if err := http.ListenAndServe(addr, mux); err != nil {
					slog.Warn("metrics endpoint failed", slog.String("error", err.Error()))
				}
			}()
		}
		return nil
	}
}

// configureLogging installs a text slog handler at the requested level.
func configureLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
