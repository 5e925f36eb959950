package github

// reconciler implements the Reconciler interface
type reconciler struct {
	client APIClient
	owner  string
	branch string
}

// NewReconciler creates a reconciler for the given owner and default branch
func NewReconciler(client APIClient, owner, branch string) Reconciler {
	return &reconciler{
		client: client,
		owner:  owner,
		branch: branch,
	}
}

// Plan reads the branch protection currently enforced on the repository's
// default branch and computes the gating jobs missing from its
// required-check list. Membership is exact string equality: casing or
// whitespace differences count as missing, by design.
func (r *reconciler) Plan(repoName string, gatingJobs []string) (*Plan, error) {
	plan := &Plan{
		Repository: repoName,
		Branch:     r.branch,
	}

	protection, err := r.client.GetBranchProtection(r.owner, repoName, r.branch)
	if err != nil {
		return nil, err
	}

	if protection == nil {
		// Protection absent: everything is missing and a write is always needed
		plan.Desired = append([]string(nil), gatingJobs...)
		plan.Missing = append([]string(nil), gatingJobs...)
		return plan, nil
	}

	plan.Protected = true
	plan.Current = protection.RequiredChecks
	plan.Missing = difference(gatingJobs, protection.RequiredChecks)

	// The asserted set keeps contexts that were required outside of
	// CI-derived jobs instead of silently dropping them on overwrite
	plan.Desired = union(gatingJobs, protection.RequiredChecks)

	return plan, nil
}

// Apply replaces the branch protection rule with the plan's desired
// required-check contexts and the fixed policy bundle
func (r *reconciler) Apply(plan *Plan) error {
	return r.client.UpdateBranchProtection(r.owner, plan.Repository, plan.Branch, plan.Desired)
}

// difference returns the members of a not present in b, preserving the
// order of a
func difference(a, b []string) []string {
	members := make(map[string]bool, len(b))
	for _, s := range b {
		members[s] = true
	}

	var missing []string
	for _, s := range a {
		if !members[s] {
			missing = append(missing, s)
		}
	}
	return missing
}

// union returns a followed by the members of b not present in a
func union(a, b []string) []string {
	merged := append([]string(nil), a...)
	members := make(map[string]bool, len(a))
	for _, s := range a {
		members[s] = true
	}

	for _, s := range b {
		if !members[s] {
			members[s] = true
			merged = append(merged, s)
		}
	}
	return merged
}
