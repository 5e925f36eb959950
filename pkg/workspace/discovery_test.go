package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkflow(t *testing.T, root, repo, workflowFile string) {
	t.Helper()
	dir := filepath.Join(root, repo, ".github", "workflows")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, workflowFile), []byte("jobs: {}\n"), 0644))
}

func TestDiscover_OnlyRepositoriesWithWorkflowFile(t *testing.T) {
	root := t.TempDir()
	writeWorkflow(t, root, "alpha", "ci.yaml")
	writeWorkflow(t, root, "beta", "ci.yaml")

	// Directory without any workflow file
	require.NoError(t, os.MkdirAll(filepath.Join(root, "no-ci"), 0755))

	// Directory with a differently named workflow file
	writeWorkflow(t, root, "other-pipeline", "release.yaml")

	// Plain file at the root level, not a repository
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0644))

	repos, err := NewDiscoverer(root, "ci.yaml").Discover()

	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "alpha", repos[0].Name)
	assert.Equal(t, "beta", repos[1].Name)
	assert.Equal(t, filepath.Join(root, "alpha", ".github", "workflows", "ci.yaml"), repos[0].WorkflowPath)
}

func TestDiscover_SortedByName(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mango"} {
		writeWorkflow(t, root, name, "ci.yaml")
	}

	repos, err := NewDiscoverer(root, "ci.yaml").Discover()

	require.NoError(t, err)
	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		names = append(names, repo.Name)
	}
	assert.Equal(t, []string{"alpha", "mango", "zeta"}, names)
}

func TestDiscover_UnreadableRootIsFatal(t *testing.T) {
	_, err := NewDiscoverer(filepath.Join(t.TempDir(), "missing"), "ci.yaml").Discover()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read workspace root")
}

func TestDiscover_EmptyWorkspace(t *testing.T) {
	repos, err := NewDiscoverer(t.TempDir(), "ci.yaml").Discover()

	require.NoError(t, err)
	assert.Empty(t, repos)
}
