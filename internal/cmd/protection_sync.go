package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"branchgate/pkg/config"
	"branchgate/pkg/github"
)

var protectionDryRun bool

var protectionSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Repair required-status-check drift across workspace repositories",
	Long: `Reconcile branch-protection required status checks with the gating CI jobs
each repository actually runs.

For every discovered repository the command resolves the gating job set from
the most recent workflow run (falling back to the jobs declared in the
workflow file when no runs exist), compares it against the branch's current
required checks, and updates the protection rule when checks are missing or
protection is absent entirely. Required checks added by hand are preserved.

Examples:
  branchgate protection sync
  branchgate protection sync --owner acme --repos alpha,beta
  branchgate protection sync --dry-run`,
	RunE: runProtectionSync,
}

func init() {
	addProtectionFlags(protectionSyncCmd)
	protectionSyncCmd.Flags().BoolVar(&protectionDryRun, "dry-run", false, "Report what would change without updating branch protection")
	protectionCmd.AddCommand(protectionSyncCmd)
}

func runProtectionSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	settings, err := resolveSettings(cfg)
	if err != nil {
		return err
	}

	candidates, err := buildCandidates(settings)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Printf("No repositories with %s found under %s\n", settings.WorkflowFile, settings.Root)
		return nil
	}

	authManager := github.NewAuthManager()
	tokenInfo, err := authManager.AuthenticateFromConfig(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ GitHub authentication failed: %v\n\n", err)
		fmt.Println(github.GetAuthInstructions())
		return fmt.Errorf("authentication required")
	}
	fmt.Printf("✓ Authenticated as %s\n", tokenInfo.User)

	token, err := authManager.GetToken(cfg)
	if err != nil {
		return err
	}
	client := github.NewClient(token)

	mode := modeSync
	action := "Syncing"
	if protectionDryRun {
		mode = modeDryRun
		action = "Checking"
	}
	fmt.Printf("%s branch protection for %d repositories (owner: %s, branch: %s)\n\n",
		action, len(candidates), settings.Owner, settings.Branch)

	reconciler := github.NewFleetReconcilerWithProgress(client, settings.Owner, settings.Branch, newProgressPrinter(mode))
	result := reconciler.Run(candidates, !protectionDryRun)

	displaySummary(result, mode)

	if result.Summary.Errors > 0 {
		return fmt.Errorf("failed to sync %d repositories", result.Summary.Errors)
	}

	return nil
}
