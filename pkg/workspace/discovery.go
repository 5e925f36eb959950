// Package workspace discovers candidate repositories in a local workspace.
// A candidate is any directory one level below the workspace root that
// carries the CI workflow file branchgate derives gating jobs from.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Repository identifies a discovered repository checkout
type Repository struct {
	Name         string
	Path         string
	WorkflowPath string
}

// Discoverer locates repository checkouts carrying a CI workflow file
type Discoverer struct {
	root         string
	workflowFile string
}

// NewDiscoverer creates a discoverer for the given workspace root and
// workflow file name (e.g. "ci.yaml")
func NewDiscoverer(root, workflowFile string) *Discoverer {
	return &Discoverer{
		root:         root,
		workflowFile: workflowFile,
	}
}

// Discover lists every directory directly below the workspace root that
// contains .github/workflows/<workflowFile>, sorted by name. Directories
// without the workflow file produce no entry. An unreadable root is fatal.
func (d *Discoverer) Discover() ([]Repository, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace root %s: %w", d.root, err)
	}

	var repositories []Repository
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		workflowPath := filepath.Join(d.root, entry.Name(), ".github", "workflows", d.workflowFile)
		info, err := os.Stat(workflowPath)
		if err != nil || info.IsDir() {
			continue
		}

		repositories = append(repositories, Repository{
			Name:         entry.Name(),
			Path:         filepath.Join(d.root, entry.Name()),
			WorkflowPath: workflowPath,
		})
	}

	// Directory listing order is not stable across filesystems
	sort.Slice(repositories, func(i, j int) bool {
		return repositories[i].Name < repositories[j].Name
	})

	return repositories, nil
}
