package github

import (
	"branchgate/pkg/workflow"
)

// Status tags the terminal outcome of one repository in a fleet run
type Status string

const (
	// StatusCorrect means the required checks already match the gating jobs
	StatusCorrect Status = "correct"
	// StatusFixed means drift was found and the protection rule was repaired
	StatusFixed Status = "fixed"
	// StatusNeedsUpdate means drift was found but no write was issued
	StatusNeedsUpdate Status = "needs_update"
	// StatusSkippedNoWorkflow means the workflow file could not be parsed
	StatusSkippedNoWorkflow Status = "skipped_no_workflow"
	// StatusSkippedNoRuns means there are no runs and no gating jobs to enforce
	StatusSkippedNoRuns Status = "skipped_no_runs"
	// StatusError means an API call failed for this repository
	StatusError Status = "error"
)

// Candidate is one discovered repository queued for reconciliation
type Candidate struct {
	Name string
	// ExpectedJobs is the gating job set declared in the workflow file,
	// used as a fallback when the repository has no recorded runs
	ExpectedJobs []string
	// WorkflowErr marks a missing or malformed workflow file; the
	// repository is skipped rather than failed
	WorkflowErr error
}

// Outcome is the tagged result of one repository. Every candidate yields
// exactly one outcome.
type Outcome struct {
	Repository string `json:"repository"`
	Status     Status `json:"status"`
	Plan       *Plan  `json:"plan,omitempty"`
	Fallback   bool   `json:"fallback,omitempty"`
	Err        error  `json:"-"`
}

// FleetSummary provides aggregate statistics for a fleet run
type FleetSummary struct {
	Total       int `json:"total"`
	Correct     int `json:"correct"`
	Fixed       int `json:"fixed"`
	NeedsUpdate int `json:"needs_update"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
}

// FleetResult contains the outcomes and summary of a fleet run
type FleetResult struct {
	Outcomes []Outcome    `json:"outcomes"`
	Summary  FleetSummary `json:"summary"`
}

// FleetReconciler drives reconciliation across a fleet of repositories
type FleetReconciler interface {
	// Run processes the candidates sequentially in the given order. When
	// apply is true, repositories with drift are repaired; otherwise drift
	// is only reported. A per-repository failure is recorded as an error
	// outcome and the run continues with the next repository.
	Run(candidates []Candidate, apply bool) *FleetResult
}

// ProgressFunc observes each outcome as it is produced
type ProgressFunc func(Outcome)

// fleetReconciler implements the FleetReconciler interface
type fleetReconciler struct {
	client     APIClient
	reconciler Reconciler
	progress   ProgressFunc
	owner      string
}

// NewFleetReconciler creates a fleet reconciler for the given owner and
// default branch
func NewFleetReconciler(client APIClient, owner, branch string) FleetReconciler {
	return NewFleetReconcilerWithProgress(client, owner, branch, nil)
}

// NewFleetReconcilerWithProgress creates a fleet reconciler that reports
// each outcome through the progress callback as it is produced
func NewFleetReconcilerWithProgress(client APIClient, owner, branch string, progress ProgressFunc) FleetReconciler {
	return &fleetReconciler{
		client:     client,
		reconciler: NewReconciler(client, owner, branch),
		progress:   progress,
		owner:      owner,
	}
}

// Run processes all candidates and tallies the summary
func (fr *fleetReconciler) Run(candidates []Candidate, apply bool) *FleetResult {
	result := &FleetResult{
		Outcomes: make([]Outcome, 0, len(candidates)),
		Summary:  FleetSummary{Total: len(candidates)},
	}

	for _, candidate := range candidates {
		outcome := fr.processCandidate(candidate, apply)

		result.Outcomes = append(result.Outcomes, outcome)
		fr.tally(&result.Summary, outcome.Status)

		if fr.progress != nil {
			fr.progress(outcome)
		}
	}

	return result
}

// processCandidate runs one repository through the full reconciliation flow
func (fr *fleetReconciler) processCandidate(candidate Candidate, apply bool) Outcome {
	outcome := Outcome{Repository: candidate.Name}

	if candidate.WorkflowErr != nil {
		outcome.Status = StatusSkippedNoWorkflow
		outcome.Err = candidate.WorkflowErr
		return outcome
	}

	gatingJobs, fallback, err := fr.gatingJobs(candidate)
	if err != nil {
		outcome.Status = StatusError
		outcome.Err = err
		return outcome
	}
	outcome.Fallback = fallback

	if gatingJobs == nil && fallback {
		// No runs recorded and the workflow declares no gating jobs
		outcome.Status = StatusSkippedNoRuns
		return outcome
	}

	plan, err := fr.reconciler.Plan(candidate.Name, gatingJobs)
	if err != nil {
		outcome.Status = StatusError
		outcome.Err = err
		return outcome
	}
	outcome.Plan = plan

	if !plan.NeedsUpdate() {
		outcome.Status = StatusCorrect
		return outcome
	}

	if !apply {
		outcome.Status = StatusNeedsUpdate
		return outcome
	}

	if err := fr.reconciler.Apply(plan); err != nil {
		outcome.Status = StatusError
		outcome.Err = err
		return outcome
	}

	outcome.Status = StatusFixed
	return outcome
}

// gatingJobs resolves the authoritative gating job set for a repository:
// the jobs observed on the most recent workflow run, or the statically
// declared expected jobs when no run exists. The returned bool reports
// whether the fallback was used.
func (fr *fleetReconciler) gatingJobs(candidate Candidate) ([]string, bool, error) {
	run, err := fr.client.LatestWorkflowRun(fr.owner, candidate.Name)
	if err != nil {
		return nil, false, err
	}

	if run == nil {
		if len(candidate.ExpectedJobs) == 0 {
			return nil, true, nil
		}
		return candidate.ExpectedJobs, true, nil
	}

	jobNames, err := fr.client.ListRunJobs(fr.owner, candidate.Name, run.ID)
	if err != nil {
		return nil, false, err
	}

	return workflow.FilterGating(jobNames), false, nil
}

// tally updates the summary counters for one outcome
func (fr *fleetReconciler) tally(summary *FleetSummary, status Status) {
	switch status {
	case StatusCorrect:
		summary.Correct++
	case StatusFixed:
		summary.Fixed++
	case StatusNeedsUpdate:
		summary.NeedsUpdate++
	case StatusSkippedNoWorkflow, StatusSkippedNoRuns:
		summary.Skipped++
	case StatusError:
		summary.Errors++
	}
}
