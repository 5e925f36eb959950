package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"branchgate/pkg/config"
	"branchgate/pkg/github"
	"branchgate/pkg/workflow"
	"branchgate/pkg/workspace"
)

var (
	protectionOwner        string
	protectionBranch       string
	protectionRoot         string
	protectionWorkflowFile string
	protectionRepos        []string
)

var protectionCmd = &cobra.Command{
	Use:   "protection",
	Short: "Branch protection management commands",
	Long: `Commands for reconciling branch-protection required status checks with the
CI jobs repositories actually run.

Available commands:
  sync   - Repair required-status-check drift on the default branch
  verify - Report drift without changing anything

Candidate repositories are discovered in the local workspace: every directory
one level below the workspace root that carries the CI workflow file. The
authoritative gating job set comes from the most recent workflow run; when a
repository has no recorded runs, the jobs declared in the workflow file are
used instead. Publish/release jobs never gate merges and are always excluded.`,
}

// addProtectionFlags registers the flags shared by sync and verify
func addProtectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&protectionOwner, "owner", "", "Repository owner (organization or user); overrides github.organization in config")
	cmd.Flags().StringVar(&protectionBranch, "branch", "", "Protected branch name; overrides protection.branch in config")
	cmd.Flags().StringVar(&protectionRoot, "root", "", "Workspace root containing repository checkouts; overrides workspace.root in config")
	cmd.Flags().StringVar(&protectionWorkflowFile, "workflow", "", "CI workflow file name; overrides workspace.workflow_file in config")
	cmd.Flags().StringSliceVar(&protectionRepos, "repos", nil, "Comma-separated list of repository names to process (e.g. --repos alpha,beta)")
}

// runSettings holds the effective configuration for one run
type runSettings struct {
	Owner        string
	Branch       string
	Root         string
	WorkflowFile string
}

// resolveSettings merges flags over the configuration file
func resolveSettings(cfg *config.Config) (*runSettings, error) {
	settings := &runSettings{
		Owner:        protectionOwner,
		Branch:       protectionBranch,
		Root:         protectionRoot,
		WorkflowFile: protectionWorkflowFile,
	}

	if settings.Owner == "" {
		settings.Owner = cfg.GitHub.Organization
	}
	if settings.Owner == "" {
		return nil, fmt.Errorf("repository owner not specified: use --owner flag or set github.organization in config")
	}

	if settings.Branch == "" {
		settings.Branch = cfg.Protection.Branch
	}
	if settings.Root == "" {
		settings.Root = cfg.Workspace.Root
	}
	if settings.WorkflowFile == "" {
		settings.WorkflowFile = cfg.Workspace.WorkflowFile
	}

	return settings, nil
}

// buildCandidates discovers repositories in the workspace and extracts
// their expected gating job sets
func buildCandidates(settings *runSettings) ([]github.Candidate, error) {
	repos, err := workspace.NewDiscoverer(settings.Root, settings.WorkflowFile).Discover()
	if err != nil {
		return nil, err
	}

	repos, err = filterRepositories(repos, protectionRepos)
	if err != nil {
		return nil, err
	}

	candidates := make([]github.Candidate, 0, len(repos))
	for _, repo := range repos {
		expectedJobs, err := workflow.ExtractJobNames(repo.WorkflowPath)

		candidates = append(candidates, github.Candidate{
			Name:         repo.Name,
			ExpectedJobs: expectedJobs,
			WorkflowErr:  err,
		})
	}

	return candidates, nil
}

// filterRepositories narrows the discovered set to the requested names
func filterRepositories(repos []workspace.Repository, filter []string) ([]workspace.Repository, error) {
	if len(filter) == 0 {
		return repos, nil
	}

	available := make(map[string]workspace.Repository)
	for _, repo := range repos {
		available[repo.Name] = repo
	}

	var selected []workspace.Repository
	var missing []string
	for _, name := range filter {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		repo, exists := available[name]
		if !exists {
			missing = append(missing, name)
			continue
		}
		selected = append(selected, repo)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("repositories not found in workspace: %s", strings.Join(missing, ", "))
	}

	return selected, nil
}

// outputMode selects the wording for drift outcomes
type outputMode int

const (
	modeSync outputMode = iota
	modeDryRun
	modeVerify
)

// newProgressPrinter returns a progress callback that logs each outcome
// inline as it is discovered
func newProgressPrinter(mode outputMode) github.ProgressFunc {
	return func(outcome github.Outcome) {
		switch outcome.Status {
		case github.StatusCorrect:
			note := ""
			if outcome.Fallback {
				note = " (no runs, compared declared workflow jobs)"
			}
			fmt.Printf("  ✓ %s: required checks already match%s\n", outcome.Repository, note)

		case github.StatusFixed:
			fmt.Printf("  ✓ %s: updated branch protection%s\n", outcome.Repository, driftDetail(outcome))

		case github.StatusNeedsUpdate:
			switch mode {
			case modeDryRun:
				fmt.Printf("  ~ %s: would update branch protection%s\n", outcome.Repository, driftDetail(outcome))
			default:
				fmt.Printf("  ❌ %s: incorrectly configured%s\n", outcome.Repository, driftDetail(outcome))
			}

		case github.StatusSkippedNoWorkflow:
			fmt.Printf("  ⚠️  %s: skipped, workflow file unreadable: %v\n", outcome.Repository, outcome.Err)

		case github.StatusSkippedNoRuns:
			fmt.Printf("  ⚠️  %s: skipped, no workflow runs and no gating jobs declared\n", outcome.Repository)

		case github.StatusError:
			fmt.Printf("  ❌ %s: %v\n", outcome.Repository, outcome.Err)
		}
	}
}

// driftDetail describes what was (or would be) changed for an outcome
func driftDetail(outcome github.Outcome) string {
	if outcome.Plan == nil {
		return ""
	}
	if !outcome.Plan.Protected {
		return fmt.Sprintf(" (protection absent, required checks: %s)", joinOrNone(outcome.Plan.Desired))
	}
	return fmt.Sprintf(" (missing checks: %s)", joinOrNone(outcome.Plan.Missing))
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// displaySummary prints the final tally for a fleet run
func displaySummary(result *github.FleetResult, mode outputMode) {
	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Total repositories: %d\n", result.Summary.Total)
	fmt.Printf("  • Already correct: %d\n", result.Summary.Correct)

	switch mode {
	case modeSync:
		fmt.Printf("  • Fixed: %d\n", result.Summary.Fixed)
	case modeDryRun:
		fmt.Printf("  • Would update: %d\n", result.Summary.NeedsUpdate)
	case modeVerify:
		fmt.Printf("  • Incorrectly configured: %d\n", result.Summary.NeedsUpdate)
	}

	fmt.Printf("  • Skipped: %d\n", result.Summary.Skipped)
	fmt.Printf("  • Errors: %d\n", result.Summary.Errors)
}
