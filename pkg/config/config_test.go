package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromPath_MissingFile(t *testing.T) {
	cfg, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultBranch, cfg.Protection.Branch)
	assert.Equal(t, DefaultRoot, cfg.Workspace.Root)
	assert.Equal(t, DefaultWorkflowFile, cfg.Workspace.WorkflowFile)
	assert.Empty(t, cfg.GitHub.Organization)
}

func TestLoadConfigFromPath_FullConfig(t *testing.T) {
	content := `github:
  organization: acme
  token: ghp_testtoken
protection:
  branch: develop
workspace:
  root: /srv/checkouts
  workflow_file: pipeline.yaml
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfigFromPath(path)

	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.GitHub.Organization)
	assert.Equal(t, "ghp_testtoken", cfg.GitHub.Token)
	assert.Equal(t, "develop", cfg.Protection.Branch)
	assert.Equal(t, "/srv/checkouts", cfg.Workspace.Root)
	assert.Equal(t, "pipeline.yaml", cfg.Workspace.WorkflowFile)
}

func TestLoadConfigFromPath_PartialConfigGetsDefaults(t *testing.T) {
	content := `github:
  organization: acme
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfigFromPath(path)

	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.GitHub.Organization)
	assert.Equal(t, DefaultBranch, cfg.Protection.Branch)
	assert.Equal(t, DefaultWorkflowFile, cfg.Workspace.WorkflowFile)
}

func TestLoadConfigFromPath_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("github: [unclosed"), 0600))

	_, err := LoadConfigFromPath(path)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveConfigToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{
		GitHub:     GitHubConfig{Organization: "acme"},
		Protection: ProtectionConfig{Branch: "main"},
		Workspace:  WorkspaceConfig{Root: "..", WorkflowFile: "ci.yaml"},
	}

	require.NoError(t, cfg.SaveConfigToPath(path))

	loaded, err := LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
