package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"branchgate/pkg/config"
	"branchgate/pkg/github"
)

var protectionVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report required-status-check drift without changing anything",
	Long: `Audit branch protection across workspace repositories.

Performs the same comparison as sync but never writes: each repository is
reported as correctly configured, incorrectly configured, or skipped. The
command exits non-zero when any repository is misconfigured, which makes it
suitable for scheduled audits.

Examples:
  branchgate protection verify
  branchgate protection verify --owner acme --branch main`,
	RunE: runProtectionVerify,
}

func init() {
	addProtectionFlags(protectionVerifyCmd)
	protectionCmd.AddCommand(protectionVerifyCmd)
}

func runProtectionVerify(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Verifying branch protection for %d repositories (owner: %s, branch: %s)\n\n",
		len(candidates), settings.Owner, settings.Branch)

	reconciler := github.NewFleetReconcilerWithProgress(client, settings.Owner, settings.Branch, newProgressPrinter(modeVerify))
	result := reconciler.Run(candidates, false)

	displaySummary(result, modeVerify)

	if result.Summary.Errors > 0 {
		return fmt.Errorf("failed to verify %d repositories", result.Summary.Errors)
	}
	if result.Summary.NeedsUpdate > 0 {
		return fmt.Errorf("%d repositories have incorrect branch protection", result.Summary.NeedsUpdate)
	}

	return nil
}
