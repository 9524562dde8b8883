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
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianDocs/services/docgen/graph"
)

// Strategy thresholds and caps.
const (
	// hubDegreeThreshold is the minimum total degree for hub candidacy.
	hubDegreeThreshold = 3

	// maxHubCandidates caps the hub topics produced by the hub strategy.
	maxHubCandidates = 5

	// maxEntryPointTopics caps the entry-point topics.
	maxEntryPointTopics = 3

	// maxDownstreamNodes bounds the reachable set attached to an
	// entry-point topic.
	maxDownstreamNodes = 15

	// maxHubNeighbors bounds the neighbors attached to a hub topic.
	maxHubNeighbors = 10

	// maxPrimaryFiles caps the primary file list on any topic.
	maxPrimaryFiles = 10

	// maxOverviewNodes caps the key nodes on the overview topic.
	maxOverviewNodes = 20

	// maxOverviewFiles caps the entry files on the overview topic.
	maxOverviewFiles = 5
)

// entryNameFragments mark a node as a likely entry point when any
// fragment appears in its lowercased name.
var entryNameFragments = []string{
	"main", "app", "server", "index", "handler", "route", "api", "endpoint",
}

// directoryTitles maps well-known directory names to readable titles.
var directoryTitles = map[string]string{
	"src":         "Source Code",
	"lib":         "Library",
	"utils":       "Utilities",
	"api":         "API Layer",
	"routes":      "Route Handlers",
	"controllers": "Controllers",
	"models":      "Data Models",
	"services":    "Services",
	"components":  "Components",
	"views":       "Views",
	"tests":       "Tests",
	"config":      "Configuration",
	"middleware":  "Middleware",
	"handlers":    "Handlers",
	"schemas":     "Schemas",
}

// clusterable reports whether a node participates in community
// detection. Module nodes are containers, not cluster members.
func clusterable(n *graph.Node) bool {
	return n.Category.IsCode() && n.Category != graph.CategoryModule
}

// discoverByClustering finds component topics via community detection
// over the undirected projection of the clusterable subgraph.
//
// Returns ErrDegenerateInput when the graph is too small or too sparse
// for meaningful clustering; the caller falls back to the directory
// strategy.
func (e *Engine) discoverByClustering(ctx context.Context) ([]DocTopic, error) {
	adjacency := e.model.UndirectedProjection(clusterable)

	communities, err := DetectCommunities(ctx, adjacency, e.clusterOpts)
	if err != nil {
		return nil, err
	}

	topics := make([]DocTopic, 0, len(communities))
	for _, community := range communities {
		files := e.collectFiles(community.Nodes)
		name := e.inferClusterName(community.Nodes, files)

		topics = append(topics, DocTopic{
			ID:           fmt.Sprintf("cluster-%d-%s", community.ID, slugify(name)),
			Title:        name,
			Description:  fmt.Sprintf("Component cluster with %d code elements", len(community.Nodes)),
			NodeIDs:      community.Nodes,
			PrimaryFiles: capStrings(files, maxPrimaryFiles),
			Importance:   clampImportance(2 + len(community.Nodes)/5),
			Type:         TypeComponent,
		})
	}

	sortByImportance(topics)
	return topics, nil
}

// discoverByDirectory groups code nodes by top-level directory. This is
// the fallback strategy for small or sparse graphs.
func (e *Engine) discoverByDirectory() []DocTopic {
	dirGroups := make(map[string][]string)

	for _, id := range e.model.NodeIDs() {
		n, _ := e.model.GetNode(id)
		if !n.Category.IsCode() || n.File == "" {
			continue
		}
		dirGroups[topLevelDir(n.File)] = append(dirGroups[topLevelDir(n.File)], n.ID)
	}

	dirNames := make([]string, 0, len(dirGroups))
	for name := range dirGroups {
		dirNames = append(dirNames, name)
	}
	sort.Strings(dirNames)

	topics := make([]DocTopic, 0, len(dirNames))
	for _, dirName := range dirNames {
		nodeIDs := dirGroups[dirName]
		if len(nodeIDs) < 2 {
			continue
		}
		sort.Strings(nodeIDs)

		topics = append(topics, DocTopic{
			ID:           "dir-" + slugify(dirName),
			Title:        formatDirectoryTitle(dirName),
			Description:  fmt.Sprintf("Code in the %s/ directory", dirName),
			NodeIDs:      nodeIDs,
			PrimaryFiles: capStrings(e.collectFiles(nodeIDs), maxPrimaryFiles),
			Importance:   clampImportance(2 + len(nodeIDs)/3),
			Type:         TypeComponent,
		})
	}

	sortByImportance(topics)
	return topics
}

// discoverHubNodes finds high-connectivity nodes: heavily used APIs and
// orchestrators. Candidates are ranked by total degree.
func (e *Engine) discoverHubNodes() []DocTopic {
	type hubCandidate struct {
		node   *graph.Node
		degree int
	}

	var candidates []hubCandidate
	for _, id := range e.model.NodeIDs() {
		n, _ := e.model.GetNode(id)
		if !clusterable(n) {
			continue
		}
		if d := n.Degree(); d >= hubDegreeThreshold {
			candidates = append(candidates, hubCandidate{node: n, degree: d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].degree != candidates[j].degree {
			return candidates[i].degree > candidates[j].degree
		}
		return candidates[i].node.ID < candidates[j].node.ID
	})
	if len(candidates) > maxHubCandidates {
		candidates = candidates[:maxHubCandidates]
	}

	topics := make([]DocTopic, 0, len(candidates))
	for _, c := range candidates {
		var neighbors []string
		for _, n := range e.model.Predecessors(c.node.ID) {
			neighbors = append(neighbors, n.ID)
		}
		for _, n := range e.model.Successors(c.node.ID) {
			neighbors = append(neighbors, n.ID)
		}
		// A recursive hub appears among its own neighbors; dedupe the
		// full list so it is listed exactly once, hub first.
		nodeIDs := dedupStrings(append([]string{c.node.ID}, neighbors...), maxHubNeighbors+1)

		var files []string
		if c.node.File != "" {
			files = []string{c.node.File}
		}

		topics = append(topics, DocTopic{
			ID:           "api-" + slugify(c.node.Name),
			Title:        c.node.Name + " API",
			Description:  fmt.Sprintf("Central %s with %d connections", c.node.Category, c.degree),
			NodeIDs:      nodeIDs,
			PrimaryFiles: files,
			Importance:   clampImportance(3 + c.degree/3),
			Type:         TypeAPI,
		})
	}
	return topics
}

// discoverEntryPoints finds entry points by name pattern or by shape
// (no callers, at least one callee), each with its downstream cone.
func (e *Engine) discoverEntryPoints() []DocTopic {
	var topics []DocTopic

	for _, id := range e.model.NodeIDs() {
		n, _ := e.model.GetNode(id)
		if !n.Category.IsCode() {
			continue
		}

		lowerName := strings.ToLower(n.Name)
		isEntry := false
		for _, fragment := range entryNameFragments {
			if strings.Contains(lowerName, fragment) {
				isEntry = true
				break
			}
		}
		if !isEntry && n.InDegree() == 0 && n.OutDegree() > 0 {
			isEntry = true
		}
		if !isEntry {
			continue
		}

		downstream := e.model.Descendants(n.ID, maxDownstreamNodes)

		var files []string
		if n.File != "" {
			files = []string{n.File}
		}

		topics = append(topics, DocTopic{
			ID:           "entry-" + strings.ReplaceAll(lowerName, " ", "-"),
			Title:        n.Name + " Entry Point",
			Description:  "Application entry point: " + n.Name,
			NodeIDs:      append([]string{n.ID}, downstream...),
			PrimaryFiles: files,
			Importance:   4,
			Type:         TypeEntryPoint,
		})
		if len(topics) == maxEntryPointTopics {
			break
		}
	}
	return topics
}

// discoverAllModules creates one topic per module node, grouping the
// nodes that share its file. Suits small repos where every module is
// worth a page.
func (e *Engine) discoverAllModules() []DocTopic {
	var topics []DocTopic

	allIDs := e.model.NodeIDs()
	for _, id := range allIDs {
		module, _ := e.model.GetNode(id)
		if module.Category != graph.CategoryModule {
			continue
		}

		var children []string
		for _, childID := range allIDs {
			n, _ := e.model.GetNode(childID)
			if n.File != "" && n.File == module.File {
				children = append(children, n.ID)
			}
		}

		stem := fileStem(module.File)

		var files []string
		if module.File != "" {
			files = []string{module.File}
		}

		topics = append(topics, DocTopic{
			ID:           "module-" + stem,
			Title:        stem + " Module",
			Description:  "Module: " + module.File,
			NodeIDs:      children,
			PrimaryFiles: files,
			Importance:   3,
			Type:         TypeComponent,
		})
	}
	return topics
}

// overviewTopic builds the always-present whole-project topic.
func (e *Engine) overviewTopic() DocTopic {
	var keyNodes []string
	entryFiles := make(map[string]bool)

	for _, id := range e.model.NodeIDs() {
		n, _ := e.model.GetNode(id)
		if n.Category == graph.CategoryClass || n.Category == graph.CategoryFunction {
			keyNodes = append(keyNodes, n.ID)
		}
		if n.File == "" {
			continue
		}
		lowerFile := strings.ToLower(n.File)
		for _, fragment := range []string{"main", "app", "index", "server", "__init__"} {
			if strings.Contains(lowerFile, fragment) {
				entryFiles[n.File] = true
				break
			}
		}
	}

	files := make([]string, 0, len(entryFiles))
	for f := range entryFiles {
		files = append(files, f)
	}
	sort.Strings(files)

	return DocTopic{
		ID:           "overview",
		Title:        "Project Overview",
		Description:  "High-level overview of the project architecture and components",
		NodeIDs:      capStrings(keyNodes, maxOverviewNodes),
		PrimaryFiles: capStrings(files, maxOverviewFiles),
		Importance:   MaxImportance,
		Type:         TypeOverview,
	}
}

// inferClusterName derives a readable name for a community: the deepest
// common path segment of its files, or failing that the name of its
// best-connected member.
func (e *Engine) inferClusterName(nodeIDs, files []string) string {
	if len(files) > 1 {
		if common := commonPathSegment(files); common != "" {
			return formatDirectoryTitle(common)
		}
	}

	maxDegree := 0
	bestName := "Component"
	for _, id := range nodeIDs {
		n, ok := e.model.GetNode(id)
		if !ok {
			continue
		}
		if d := n.Degree(); d > maxDegree {
			maxDegree = d
			bestName = n.Name
		}
	}
	return bestName
}

// collectFiles gathers the distinct, sorted files behind a node set.
func (e *Engine) collectFiles(nodeIDs []string) []string {
	seen := make(map[string]bool)
	for _, id := range nodeIDs {
		if n, ok := e.model.GetNode(id); ok && n.File != "" {
			seen[n.File] = true
		}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// formatDirectoryTitle turns a directory name into a readable title,
// preferring well-known mappings over mechanical casing.
func formatDirectoryTitle(dirName string) string {
	if title, ok := directoryTitles[strings.ToLower(dirName)]; ok {
		return title
	}
	words := strings.FieldsFunc(dirName, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// commonPathSegment returns the last directory segment shared by every
// path, or "" when the paths diverge immediately.
func commonPathSegment(files []string) string {
	split := make([][]string, len(files))
	minLen := -1
	for i, f := range files {
		split[i] = strings.Split(path.Clean(f), "/")
		if minLen < 0 || len(split[i]) < minLen {
			minLen = len(split[i])
		}
	}

	last := ""
	for i := 0; i < minLen; i++ {
		segment := split[0][i]
		for _, parts := range split[1:] {
			if parts[i] != segment {
				return last
			}
		}
		last = segment
	}
	return last
}

// topLevelDir returns the first path segment, or "root" for bare files.
func topLevelDir(filePath string) string {
	parts := strings.Split(path.Clean(filePath), "/")
	if len(parts) >= 2 {
		return parts[0]
	}
	return "root"
}

// fileStem returns the file's base name without extension.
func fileStem(filePath string) string {
	base := path.Base(filePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// slugify lowercases a title and joins it with hyphens for use in IDs.
func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

// capStrings returns at most limit elements of s.
func capStrings(s []string, limit int) []string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

// dedupStrings removes duplicates preserving order, capped at limit.
func dedupStrings(s []string, limit int) []string {
	seen := make(map[string]bool, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}

// sortByImportance orders topics by descending importance, preserving
// the original order among equals.
func sortByImportance(topics []DocTopic) {
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Importance > topics[j].Importance
	})
}
