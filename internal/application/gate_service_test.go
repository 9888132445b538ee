package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ernestoongaro/omnicles/internal/adapters/outbound/history"
	"github.com/ernestoongaro/omnicles/internal/application"
	"github.com/ernestoongaro/omnicles/internal/domain"
)

// stubClient implements domain.ValidatorClient for service tests.
type stubClient struct {
	response   []byte
	fetchErr   error
	branchID   string
	resolveErr error

	lastRequest    domain.ValidationRequest
	resolveCalls   int
	resolvedModel  string
	resolvedBranch string
}

func (c *stubClient) FetchValidation(_ context.Context, req domain.ValidationRequest) ([]byte, error) {
	c.lastRequest = req
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	return c.response, nil
}

func (c *stubClient) ResolveBranch(_ context.Context, modelID, branchName string) (string, error) {
	c.resolveCalls++
	c.resolvedModel = modelID
	c.resolvedBranch = branchName
	return c.branchID, c.resolveErr
}

func testOptions(t *testing.T) domain.Options {
	t.Helper()
	dir := t.TempDir()
	return domain.Options{
		BaseURL:    "https://acme.omniapp.co",
		ModelID:    "model-1",
		APIKey:     "secret",
		AuthHeader: domain.DefaultAuthHeader,
		AuthScheme: domain.DefaultAuthScheme,
		Timeout:    domain.DefaultTimeout,
		HistoryIn:  filepath.Join(dir, "history.json"),
		HistoryOut: filepath.Join(dir, "history.json"),
		ReportOut:  filepath.Join(dir, "report.json"),
	}
}

func TestRun_NewIssueOnEmptyHistory(t *testing.T) {
	client := &stubClient{response: []byte(`{"issues":[{"msg":"A"}]}`)}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)

	result, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Report.TotalIssues)
	assert.Equal(t, 1, result.Report.NewIssues)
	assert.Equal(t, 0, result.Report.ExistingIssues)
	assert.True(t, result.Report.Failed(false))
	assert.True(t, result.Report.Failed(true))

	// Next run's baseline was written.
	snap, err := history.New().Load(opts.HistoryOut)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.Issues, 1)
}

func TestRun_ExistingIssueOnSecondRun(t *testing.T) {
	client := &stubClient{response: []byte(`{"issues":[{"msg":"A"}]}`)}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)

	_, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	result, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Report.NewIssues)
	assert.Equal(t, 1, result.Report.ExistingIssues)
	assert.True(t, result.Report.Failed(false), "default policy still fails on existing issues")
	assert.False(t, result.Report.Failed(true), "fail-on-new-only passes on existing issues")
}

func TestRun_ResolvedIssueCounted(t *testing.T) {
	client := &stubClient{response: []byte(`{"issues":[{"msg":"A"},{"msg":"B"}]}`)}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)

	_, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	client.response = []byte(`{"issues":[{"msg":"A"}]}`)
	result, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Report.ResolvedIssues)
	assert.Equal(t, 1, result.Report.ExistingIssues)
}

func TestRun_NoIssues(t *testing.T) {
	client := &stubClient{response: []byte(`{"issues":[]}`)}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)

	result, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Report.TotalIssues)
	assert.False(t, result.Report.Failed(false))
	assert.False(t, result.Report.Failed(true))
}

func TestRun_ExtractionErrorLeavesHistoryAlone(t *testing.T) {
	client := &stubClient{response: []byte(`{"summary":"ok"}`)}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)
	opts.IssuesPath = "content.0.custom_issues"

	_, err := svc.Run(context.Background(), opts)
	require.Error(t, err)

	var extractionErr *domain.ExtractionError
	assert.True(t, errors.As(err, &extractionErr))

	_, statErr := os.Stat(opts.HistoryOut)
	assert.True(t, os.IsNotExist(statErr), "history must not be written on extraction failure")
}

func TestRun_CorruptHistoryIsSoftFailure(t *testing.T) {
	client := &stubClient{response: []byte(`{"issues":[{"msg":"A"}]}`)}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)
	require.NoError(t, os.WriteFile(opts.HistoryIn, []byte("{not json"), 0644))

	result, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unreadable history artifact")
	assert.Equal(t, 1, result.Report.NewIssues, "empty baseline: everything is new")
}

func TestRun_BranchNameResolved(t *testing.T) {
	client := &stubClient{
		response: []byte(`{"issues":[]}`),
		branchID: "1b671a64-40d5-491e-99b0-da01ff1f3341",
	}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)
	opts.BranchName = "feature/foo"

	result, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, client.resolveCalls)
	assert.Equal(t, "model-1", client.resolvedModel)
	assert.Equal(t, "feature/foo", client.resolvedBranch)
	assert.Equal(t, "1b671a64-40d5-491e-99b0-da01ff1f3341", client.lastRequest.BranchID)
	require.Len(t, result.Notices, 1)
	assert.Contains(t, result.Notices[0], "resolved branch")
}

func TestRun_BranchNameUnresolvedFallsBack(t *testing.T) {
	client := &stubClient{response: []byte(`{"issues":[]}`)}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)
	opts.BranchName = "feature/foo"

	result, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Empty(t, client.lastRequest.BranchID)
	require.Len(t, result.Notices, 1)
	assert.Contains(t, result.Notices[0], "no matching branch")
}

func TestRun_ExplicitBranchIDSkipsResolution(t *testing.T) {
	client := &stubClient{response: []byte(`{"issues":[]}`)}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)
	opts.BranchID = "1b671a64-40d5-491e-99b0-da01ff1f3341"
	opts.BranchName = "feature/foo"

	_, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Zero(t, client.resolveCalls)
	assert.Equal(t, opts.BranchID, client.lastRequest.BranchID)
}

func TestRun_RawResponseDump(t *testing.T) {
	client := &stubClient{response: []byte(`{"issues":[]}`)}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)
	opts.RawResponseOut = filepath.Join(t.TempDir(), "raw.json")

	_, err := svc.Run(context.Background(), opts)
	require.NoError(t, err)

	data, err := os.ReadFile(opts.RawResponseOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payload"`)
}

func TestRun_FetchErrorIsFatal(t *testing.T) {
	client := &stubClient{fetchErr: errors.New("401 unauthorized")}
	svc := application.NewGateService(client, history.New())
	opts := testOptions(t)

	_, err := svc.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
