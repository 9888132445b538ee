package domain

import "time"

// sampleLimit caps the per-class issue samples embedded in the report so PR
// comments built from it stay readable.
const sampleLimit = 20

// Report is the artifact written after every run, consumed by the PR-comment
// and check-run glue.
type Report struct {
	GeneratedAt     string            `json:"generated_at"`
	BaseURL         string            `json:"base_url"`
	ModelID         string            `json:"model_id"`
	TotalIssues     int               `json:"total_issues"`
	NewIssues       int               `json:"new_issues"`
	ExistingIssues  int               `json:"existing_issues"`
	ResolvedIssues  int               `json:"resolved_issues"`
	Issues          []NormalizedIssue `json:"issues"`
	NewSamples      []NormalizedIssue `json:"new_issue_samples"`
	ExistingSamples []NormalizedIssue `json:"existing_issue_samples"`
	ResolvedSamples []NormalizedIssue `json:"resolved_issue_samples"`
}

// BuildReport assembles a report from the normalized issues and their
// classification.
func BuildReport(baseURL, modelID string, issues []NormalizedIssue, c Classification) *Report {
	return &Report{
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		BaseURL:         baseURL,
		ModelID:         modelID,
		TotalIssues:     len(issues),
		NewIssues:       len(c.New),
		ExistingIssues:  len(c.Existing),
		ResolvedIssues:  len(c.Resolved),
		Issues:          issues,
		NewSamples:      sample(c.New),
		ExistingSamples: sample(c.Existing),
		ResolvedSamples: sample(c.Resolved),
	}
}

// Failed reports whether the run should exit non-zero under the active
// policy. The default policy fails on any issue, new or existing;
// failOnNewOnly ignores issues already present in history.
func (r *Report) Failed(failOnNewOnly bool) bool {
	if failOnNewOnly {
		return r.NewIssues > 0
	}
	return r.TotalIssues > 0
}

// Snapshot returns the history artifact for the next run.
func (r *Report) Snapshot() HistorySnapshot {
	return HistorySnapshot{
		GeneratedAt: r.GeneratedAt,
		BaseURL:     r.BaseURL,
		ModelID:     r.ModelID,
		Issues:      r.Issues,
	}
}

func sample(issues []NormalizedIssue) []NormalizedIssue {
	if len(issues) > sampleLimit {
		return issues[:sampleLimit]
	}
	return issues
}
