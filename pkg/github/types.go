package github

import "time"

// WorkflowRun represents one execution of a repository's CI pipeline
type WorkflowRun struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	HeadBranch string    `json:"head_branch"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// BranchProtection represents the current protection state of a branch.
// A nil *BranchProtection means protection is absent, which is distinct
// from a protection rule with an empty check list.
type BranchProtection struct {
	Branch         string   `json:"branch"`
	RequiredChecks []string `json:"required_checks"`
}

// TokenInfo contains information about the authenticated token
type TokenInfo struct {
	User   string   `json:"user"`
	Scopes []string `json:"scopes"`
}
