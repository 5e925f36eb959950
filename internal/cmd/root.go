package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "branchgate",
	Short: "Keep GitHub branch protection in sync with CI jobs",
	Long: `Branchgate keeps branch-protection required status checks in sync with the
CI jobs each repository actually runs. It discovers repository checkouts in a
local workspace, derives the gating job set from the most recent workflow run,
and compares it against the protection enforced on the default branch.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(protectionCmd)
}
