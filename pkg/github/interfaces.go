package github

// APIClient defines the interface for the GitHub API operations branchgate
// performs against a repository
type APIClient interface {
	// LatestWorkflowRun returns the most recent workflow run for the
	// repository, or nil when the repository has no recorded runs
	LatestWorkflowRun(owner, name string) (*WorkflowRun, error)

	// ListRunJobs returns the display names of the jobs that executed in
	// the given workflow run
	ListRunJobs(owner, name string, runID int64) ([]string, error)

	// GetBranchProtection returns the protection state of a branch, or nil
	// when protection is absent
	GetBranchProtection(owner, name, branch string) (*BranchProtection, error)

	// UpdateBranchProtection replaces the branch protection rule with the
	// branchgate policy bundle carrying the given required-check contexts
	UpdateBranchProtection(owner, name, branch string, contexts []string) error
}

// Reconciler defines single-repository required-check reconciliation
type Reconciler interface {
	// Plan compares the gating job set against the branch protection
	// currently enforced on the repository's default branch
	Plan(repoName string, gatingJobs []string) (*Plan, error)

	// Apply repairs the branch protection rule described by the plan
	Apply(plan *Plan) error
}

// Plan captures the outcome of comparing a repository's gating jobs with
// its currently enforced required checks
type Plan struct {
	Repository string   `json:"repository"`
	Branch     string   `json:"branch"`
	Protected  bool     `json:"protected"`
	Current    []string `json:"current"`
	Desired    []string `json:"desired"`
	Missing    []string `json:"missing"`
}

// NeedsUpdate reports whether the branch protection rule must be written.
// Absent protection always needs action, regardless of job sets.
func (p *Plan) NeedsUpdate() bool {
	return !p.Protected || len(p.Missing) > 0
}
