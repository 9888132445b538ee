package application

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ernestoongaro/omnicles/internal/domain"
)

// GateService runs the content-validation gate pipeline:
// resolve branch -> fetch -> extract -> classify -> persist -> report.
type GateService struct {
	client  domain.ValidatorClient
	history domain.HistoryStore
}

// NewGateService creates a GateService with its outbound dependencies.
func NewGateService(client domain.ValidatorClient, history domain.HistoryStore) *GateService {
	return &GateService{client: client, history: history}
}

// GateResult carries the report plus the user-facing side notes collected
// during the run. Notices are informational; Warnings flag soft failures
// (an unreadable history artifact) that did not stop the run.
type GateResult struct {
	Report         *domain.Report
	Classification domain.Classification
	Notices        []string
	Warnings       []string
}

// Run executes one gate invocation. The history artifact is only rewritten
// after a successful extraction, so an infrastructure failure never erases
// the baseline.
func (s *GateService) Run(ctx context.Context, opts domain.Options) (*GateResult, error) {
	result := &GateResult{}

	// 1. Resolve the branch name to a branch UUID when only a name is given.
	branchID := opts.BranchID
	if branchID == "" && opts.BranchName != "" {
		id, err := s.client.ResolveBranch(ctx, opts.ModelID, opts.BranchName)
		if err != nil {
			return nil, fmt.Errorf("resolving branch %q: %w", opts.BranchName, err)
		}
		if id == "" {
			result.Notices = append(result.Notices,
				fmt.Sprintf("no matching branch found for %q, validating the default model", opts.BranchName))
		} else {
			branchID = id
			result.Notices = append(result.Notices,
				fmt.Sprintf("resolved branch %q to id %s", opts.BranchName, id))
		}
	}

	// 2. Run the validator.
	raw, err := s.client.FetchValidation(ctx, domain.ValidationRequest{
		ModelID:  opts.ModelID,
		UserID:   opts.UserID,
		BranchID: branchID,
	})
	if err != nil {
		return nil, err
	}

	// 3. Optional raw response dump for debugging the extraction paths.
	if opts.RawResponseOut != "" {
		if err := writeJSON(opts.RawResponseOut, map[string]any{"payload": json.RawMessage(raw)}); err != nil {
			return nil, fmt.Errorf("writing raw response: %w", err)
		}
	}

	// 4. Extract and normalize issues.
	issues, err := domain.Extract(raw, opts.IssuesPath)
	if err != nil {
		return nil, err
	}
	normalized := domain.Normalize(issues)

	// 5. Load the previous snapshot. A missing or unreadable artifact means
	// an empty baseline, never a hard failure.
	var previous []domain.NormalizedIssue
	snap, err := s.history.Load(opts.HistoryIn)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("unreadable history artifact %s: %v (using empty baseline)", opts.HistoryIn, err))
	} else if snap != nil {
		previous = snap.Issues
	}

	// 6. Classify against the baseline.
	classification := domain.Classify(normalized, previous)

	// 7. Persist the report and the next run's baseline.
	report := domain.BuildReport(opts.BaseURL, opts.ModelID, normalized, classification)
	if err := writeJSON(opts.ReportOut, report); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	if err := s.history.Save(opts.HistoryOut, report.Snapshot()); err != nil {
		return nil, fmt.Errorf("writing history: %w", err)
	}

	result.Report = report
	result.Classification = classification
	return result, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
