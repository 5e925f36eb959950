package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"branchgate/pkg/github"
	"branchgate/pkg/workflow"
	"branchgate/pkg/workspace"
)

// fakeGitHub simulates the subset of the GitHub API the reconciler touches
// for a small fleet of repositories
type fakeGitHub struct {
	mux *http.ServeMux

	// protection by repository name; a missing entry answers 404
	protection map[string][]string
	// updates records every PUT payload keyed by repository name
	updates map[string][]string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()

	f := &fakeGitHub{
		mux:        http.NewServeMux(),
		protection: make(map[string][]string),
		updates:    make(map[string][]string),
	}

	// alpha ran CI recently; its latest run carries a publish job that
	// must never become a required check
	f.mux.HandleFunc("/repos/acme/alpha/actions/runs", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total_count":7,"workflow_runs":[{"id":101,"name":"CI","head_branch":"main","status":"completed"}]}`)
	})
	f.mux.HandleFunc("/repos/acme/alpha/actions/runs/101/jobs", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total_count":3,"jobs":[{"id":1,"name":"Unit Tests"},{"id":2,"name":"Lint"},{"id":3,"name":"Publish Release"}]}`)
	})

	// beta and gamma have no recorded runs
	for _, repo := range []string{"beta", "gamma"} {
		f.mux.HandleFunc("/repos/acme/"+repo+"/actions/runs", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"total_count":0,"workflow_runs":[]}`)
		})
	}

	for _, repo := range []string{"alpha", "beta", "gamma"} {
		repo := repo
		f.mux.HandleFunc("/repos/acme/"+repo+"/branches/main/protection", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				contexts, protected := f.protection[repo]
				if !protected {
					w.WriteHeader(http.StatusNotFound)
					fmt.Fprint(w, `{"message":"Branch not protected"}`)
					return
				}
				// assert, not require: handlers run outside the test goroutine
				assert.NoError(t, json.NewEncoder(w).Encode(map[string]any{
					"required_status_checks": map[string]any{
						"strict":   false,
						"contexts": contexts,
					},
				}))

			case http.MethodPut:
				var payload struct {
					RequiredStatusChecks struct {
						Contexts []string `json:"contexts"`
					} `json:"required_status_checks"`
				}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				f.protection[repo] = payload.RequiredStatusChecks.Contexts
				f.updates[repo] = payload.RequiredStatusChecks.Contexts
				fmt.Fprint(w, `{}`)
			}
		})
	}

	return f
}

// writeFleetWorkspace lays out checkouts for alpha, beta and gamma plus a
// repository without a CI workflow that discovery must ignore
func writeFleetWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	workflows := map[string]string{
		"alpha": `name: CI
jobs:
  test:
    name: Unit Tests
    runs-on: ubuntu-latest
  lint:
    name: Lint
    runs-on: ubuntu-latest
  publish:
    name: Publish Release
    runs-on: ubuntu-latest
`,
		"beta": `name: CI
jobs:
  build:
    name: Build
    runs-on: ubuntu-latest
`,
		"gamma": `name: CI
jobs:
  test:
    name: Unit Tests
    runs-on: ubuntu-latest
`,
	}

	for repo, content := range workflows {
		dir := filepath.Join(root, repo, ".github", "workflows")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ci.yaml"), []byte(content), 0o644))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs-site"), 0o755))

	return root
}

func buildFleetCandidates(t *testing.T, root string) []github.Candidate {
	t.Helper()

	repos, err := workspace.NewDiscoverer(root, "ci.yaml").Discover()
	require.NoError(t, err)

	candidates := make([]github.Candidate, 0, len(repos))
	for _, repo := range repos {
		jobs, err := workflow.ExtractJobNames(repo.WorkflowPath)
		candidates = append(candidates, github.Candidate{
			Name:         repo.Name,
			ExpectedJobs: jobs,
			WorkflowErr:  err,
		})
	}
	return candidates
}

func TestFleetEndToEnd(t *testing.T) {
	fake := newFakeGitHub(t)
	// alpha is missing Lint, beta already matches its declared jobs and
	// gamma has never been protected
	fake.protection["alpha"] = []string{"Unit Tests"}
	fake.protection["beta"] = []string{"Build"}

	server := httptest.NewServer(fake.mux)
	t.Cleanup(server.Close)

	client, err := github.NewClientWithBaseURL("test-token", server.URL+"/")
	require.NoError(t, err)

	root := writeFleetWorkspace(t)
	candidates := buildFleetCandidates(t, root)

	require.Len(t, candidates, 3)
	assert.Equal(t, "alpha", candidates[0].Name)
	assert.Equal(t, "beta", candidates[1].Name)
	assert.Equal(t, "gamma", candidates[2].Name)

	reconciler := github.NewFleetReconciler(client, "acme", "main")

	t.Run("verify reports drift without writing", func(t *testing.T) {
		result := reconciler.Run(candidates, false)

		assert.Equal(t, github.StatusNeedsUpdate, result.Outcomes[0].Status)
		assert.Equal(t, []string{"Lint"}, result.Outcomes[0].Plan.Missing)

		assert.Equal(t, github.StatusCorrect, result.Outcomes[1].Status)
		assert.True(t, result.Outcomes[1].Fallback, "beta has no runs so declared jobs decide")

		assert.Equal(t, github.StatusNeedsUpdate, result.Outcomes[2].Status)
		assert.False(t, result.Outcomes[2].Plan.Protected)

		assert.Empty(t, fake.updates, "verify must never write")
		assert.Equal(t, 3, result.Summary.Total)
		assert.Equal(t, 1, result.Summary.Correct)
		assert.Equal(t, 2, result.Summary.NeedsUpdate)
	})

	t.Run("sync repairs drift", func(t *testing.T) {
		result := reconciler.Run(candidates, true)

		assert.Equal(t, github.StatusFixed, result.Outcomes[0].Status)
		assert.Equal(t, github.StatusCorrect, result.Outcomes[1].Status)
		assert.Equal(t, github.StatusFixed, result.Outcomes[2].Status)

		// alpha keeps its existing check and gains Lint; the publish
		// job from the latest run is excluded
		assert.ElementsMatch(t, []string{"Unit Tests", "Lint"}, fake.updates["alpha"])
		assert.NotContains(t, fake.updates["alpha"], "Publish Release")

		// gamma goes from unprotected to the declared gating set
		assert.Equal(t, []string{"Unit Tests"}, fake.updates["gamma"])

		assert.NotContains(t, fake.updates, "beta")
		assert.Equal(t, 2, result.Summary.Fixed)
	})

	t.Run("second sync is idempotent", func(t *testing.T) {
		fake.updates = make(map[string][]string)

		result := reconciler.Run(candidates, true)

		assert.Equal(t, 3, result.Summary.Correct)
		assert.Equal(t, 0, result.Summary.Fixed)
		assert.Empty(t, fake.updates)
	})
}
