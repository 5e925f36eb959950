package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client *github.Client
	ctx    context.Context
}

// NewClient creates a new GitHub API client with the provided token
func NewClient(token string) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
		ctx:    ctx,
	}
}

// NewClientWithBaseURL creates a client against a non-default API endpoint.
// Used by tests to point the client at a local test server.
func NewClientWithBaseURL(token, baseURL string) (*Client, error) {
	c := NewClient(token)

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	c.client.BaseURL = parsed

	return c, nil
}

// LatestWorkflowRun retrieves the most recent workflow run for a repository.
// Returns nil without error when the repository has no recorded runs.
func (c *Client) LatestWorkflowRun(owner, name string) (*WorkflowRun, error) {
	opts := &github.ListWorkflowRunsOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	}

	var runs *github.WorkflowRuns

	err := WithRetry(func() error {
		var err error
		runs, _, err = c.client.Actions.ListRepositoryWorkflowRuns(c.ctx, owner, name, opts)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("workflow runs for %s/%s", owner, name))
		}
		return nil
	}, DefaultRetryConfig())

	if err != nil {
		return nil, err
	}

	if runs == nil || len(runs.WorkflowRuns) == 0 {
		return nil, nil
	}

	run := runs.WorkflowRuns[0]
	return &WorkflowRun{
		ID:         run.GetID(),
		Name:       run.GetName(),
		HeadBranch: run.GetHeadBranch(),
		Status:     run.GetStatus(),
		CreatedAt:  run.GetCreatedAt().Time,
	}, nil
}

// ListRunJobs lists the display names of all jobs in a workflow run
func (c *Client) ListRunJobs(owner, name string, runID int64) ([]string, error) {
	opts := &github.ListWorkflowJobsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var jobNames []string

	err := WithRetry(func() error {
		jobNames = nil // Reset on retry
		opts.Page = 0  // Reset pagination on retry

		for {
			jobs, resp, err := c.client.Actions.ListWorkflowJobs(c.ctx, owner, name, runID, opts)
			if err != nil {
				return WrapAPIError(err, fmt.Sprintf("workflow jobs for %s/%s run %d", owner, name, runID))
			}

			for _, job := range jobs.Jobs {
				jobNames = append(jobNames, job.GetName())
			}

			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	}, DefaultRetryConfig())

	return jobNames, err
}

// GetBranchProtection retrieves the protection state of a branch. Returns
// nil without error when the branch carries no protection rule, which the
// reconciler treats as distinct from an empty required-check list.
func (c *Client) GetBranchProtection(owner, name, branch string) (*BranchProtection, error) {
	var protection *github.Protection

	err := WithRetry(func() error {
		var err error
		protection, _, err = c.client.Repositories.GetBranchProtection(c.ctx, owner, name, branch)
		if err != nil {
			if isProtectionAbsent(err) {
				protection = nil
				return nil
			}
			return WrapAPIError(err, fmt.Sprintf("branch protection %s/%s:%s", owner, name, branch))
		}
		return nil
	}, DefaultRetryConfig())

	if err != nil {
		return nil, err
	}

	if protection == nil {
		return nil, nil
	}

	return convertBranchProtection(protection, branch), nil
}

// UpdateBranchProtection issues a full replacement of the branch protection
// rule: the given contexts as non-strict required status checks, admin
// enforcement on, a review requirement with zero required approvals, force
// pushes and deletions disallowed, conversation resolution off.
func (c *Client) UpdateBranchProtection(owner, name, branch string, contexts []string) error {
	request := buildProtectionRequest(contexts)

	return WithRetry(func() error {
		_, _, err := c.client.Repositories.UpdateBranchProtection(c.ctx, owner, name, branch, request)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("branch protection %s/%s:%s", owner, name, branch))
		}
		return nil
	}, DefaultRetryConfig())
}

// buildProtectionRequest builds the fixed branchgate policy bundle around
// the given required-check contexts
func buildProtectionRequest(contexts []string) *github.ProtectionRequest {
	if contexts == nil {
		contexts = []string{}
	}

	return &github.ProtectionRequest{
		RequiredStatusChecks: &github.RequiredStatusChecks{
			Strict:   false,
			Contexts: &contexts,
		},
		EnforceAdmins: true,
		RequiredPullRequestReviews: &github.PullRequestReviewsEnforcementRequest{
			RequiredApprovingReviewCount: 0,
			DismissStaleReviews:          false,
			RequireCodeOwnerReviews:      false,
		},
		AllowForcePushes:               github.Bool(false),
		AllowDeletions:                 github.Bool(false),
		RequiredConversationResolution: github.Bool(false),
	}
}

// isProtectionAbsent reports whether an error means the branch carries no
// protection rule rather than the request having failed
func isProtectionAbsent(err error) bool {
	if errors.Is(err, github.ErrBranchNotProtected) {
		return true
	}
	if ghErr, ok := err.(*github.ErrorResponse); ok {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// convertBranchProtection converts GitHub API branch protection to our internal type
func convertBranchProtection(protection *github.Protection, branch string) *BranchProtection {
	bp := &BranchProtection{
		Branch:         branch,
		RequiredChecks: []string{},
	}

	if protection.RequiredStatusChecks != nil && protection.RequiredStatusChecks.Contexts != nil {
		bp.RequiredChecks = *protection.RequiredStatusChecks.Contexts
	}

	return bp
}
