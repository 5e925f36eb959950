// Package github keeps branch-protection required-status-check lists in
// sync with the CI jobs a repository actually runs. It wraps the GitHub
// REST API for workflow-run, job and branch-protection operations and
// provides the per-repository and fleet-level reconciliation logic.
//
// The package includes:
// - APIClient interface for the GitHub API operations branchgate needs
// - Reconciler for single-repository required-check reconciliation
// - FleetReconciler driving the sequential multi-repository run
// - Structured error taxonomy with retry support
package github
