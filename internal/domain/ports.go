package domain

import "context"

// ValidationRequest identifies what the validator should run against.
type ValidationRequest struct {
	ModelID  string
	UserID   string
	BranchID string
}

// ValidatorClient calls the remote Omni content-validator API.
type ValidatorClient interface {
	// FetchValidation runs the validator and returns the raw JSON response.
	FetchValidation(ctx context.Context, req ValidationRequest) ([]byte, error)
	// ResolveBranch resolves a branch name to its model UUID. An empty
	// return with a nil error means no matching branch exists.
	ResolveBranch(ctx context.Context, modelID, branchName string) (string, error)
}

// HistoryStore persists the issue baseline between runs.
type HistoryStore interface {
	// Load returns nil without error when no artifact exists at path.
	Load(path string) (*HistorySnapshot, error)
	// Save rewrites the artifact in full.
	Save(path string, snap HistorySnapshot) error
}

// ProjectConfigLoader reads optional project-level defaults.
type ProjectConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// GitInfo reports details about the local git checkout.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	BranchName(projectPath string) (string, error)
}
