// Package workflow extracts merge-gating job names from GitHub Actions
// workflow files. Job display names drive the required-status-check
// reconciliation; publish/release jobs are deliberately excluded because
// they run after merge and must never gate it.
package workflow

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// publishNameFragment marks jobs excluded from merge gating
const publishNameFragment = "publish"

// file models the subset of the workflow schema branchgate cares about.
// Jobs is kept as a raw node so the job mapping order is preserved.
type file struct {
	Jobs yaml.Node `yaml:"jobs"`
}

// jobSpec models a single job definition
type jobSpec struct {
	Name string `yaml:"name"`
}

// ExtractJobNames parses a workflow file and returns the display names of
// its merge-gating jobs, in declaration order with duplicates collapsed.
// A job without an explicit name falls back to its job key, matching what
// GitHub displays. Names containing "publish" (any case) are excluded.
func ExtractJobNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}

	return parseJobNames(data)
}

// parseJobNames extracts gating job names from workflow file contents
func parseJobNames(data []byte) ([]string, error) {
	var wf file
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file: %w", err)
	}

	if wf.Jobs.Kind != yaml.MappingNode {
		return nil, nil
	}

	var names []string
	seen := make(map[string]bool)

	// Mapping node content alternates key, value
	for i := 0; i+1 < len(wf.Jobs.Content); i += 2 {
		keyNode := wf.Jobs.Content[i]
		valueNode := wf.Jobs.Content[i+1]

		name := keyNode.Value
		if valueNode.Kind == yaml.MappingNode {
			var spec jobSpec
			if err := valueNode.Decode(&spec); err == nil && spec.Name != "" {
				name = spec.Name
			}
		}

		if IsPublishJob(name) || seen[name] {
			continue
		}

		seen[name] = true
		names = append(names, name)
	}

	return names, nil
}

// IsPublishJob reports whether a job display name marks a publish/release
// job, which never gates merges
func IsPublishJob(name string) bool {
	return strings.Contains(strings.ToLower(name), publishNameFragment)
}

// FilterGating returns the gating subset of job names: publish-type jobs
// removed and duplicates collapsed, original order preserved
func FilterGating(names []string) []string {
	var gating []string
	seen := make(map[string]bool)

	for _, name := range names {
		if IsPublishJob(name) || seen[name] {
			continue
		}
		seen[name] = true
		gating = append(gating, name)
	}

	return gating
}
