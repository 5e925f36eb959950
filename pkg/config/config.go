package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values applied when the configuration file leaves them unset.
const (
	DefaultBranch       = "main"
	DefaultRoot         = ".."
	DefaultWorkflowFile = "ci.yaml"
)

// Config represents the branchgate configuration
type Config struct {
	GitHub     GitHubConfig     `yaml:"github"`
	Protection ProtectionConfig `yaml:"protection"`
	Workspace  WorkspaceConfig  `yaml:"workspace"`
}

// GitHubConfig represents GitHub-specific configuration
type GitHubConfig struct {
	Organization string `yaml:"organization"`
	Token        string `yaml:"token,omitempty"`
}

// ProtectionConfig represents branch protection configuration
type ProtectionConfig struct {
	Branch string `yaml:"branch"`
}

// WorkspaceConfig represents local workspace configuration
type WorkspaceConfig struct {
	Root         string `yaml:"root"`
	WorkflowFile string `yaml:"workflow_file"`
}

// LoadConfig loads configuration from the default location
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return applyDefaults(&Config{}), nil // Return default config if file doesn't exist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyDefaults(&config), nil
}

// SaveConfigToPath saves configuration to a specific path
func (c *Config) SaveConfigToPath(path string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".branchgate", "config.yaml"), nil
}

// applyDefaults fills unset fields with their default values
func applyDefaults(c *Config) *Config {
	if c.Protection.Branch == "" {
		c.Protection.Branch = DefaultBranch
	}
	if c.Workspace.Root == "" {
		c.Workspace.Root = DefaultRoot
	}
	if c.Workspace.WorkflowFile == "" {
		c.Workspace.WorkflowFile = DefaultWorkflowFile
	}
	return c
}
