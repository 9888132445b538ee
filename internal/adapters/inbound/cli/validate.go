package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configAdapter "github.com/ernestoongaro/omnicles/internal/adapters/outbound/config"
	"github.com/ernestoongaro/omnicles/internal/adapters/outbound/gitinfo"
	"github.com/ernestoongaro/omnicles/internal/adapters/outbound/history"
	"github.com/ernestoongaro/omnicles/internal/adapters/outbound/omni"
	"github.com/ernestoongaro/omnicles/internal/adapters/outbound/tui"
	"github.com/ernestoongaro/omnicles/internal/application"
	"github.com/ernestoongaro/omnicles/internal/domain"
)

func newValidateCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the content validator and diff against history",
		Long:  "Call the Omni content-validator endpoint for a model, classify the returned issues as new or existing against the history artifact, and exit non-zero per the active failure policy.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("base-url", "", "Omni base URL (env OMNI_BASE_URL)")
	flags.String("model-id", "", "Model to validate (env OMNI_MODEL_ID)")
	flags.String("api-key", "", "API key (env OMNI_API_KEY)")
	flags.String("user-id", "", "Run the validator as this user (env OMNI_USER_ID)")
	flags.String("branch-id", "", "Branch model UUID (env OMNI_BRANCH_ID)")
	flags.String("branch-name", "", "Branch name, resolved to a UUID before validation (env OMNI_BRANCH_NAME)")
	flags.String("issues-path", "", "Explicit dot-path to the issues array in the response (env OMNI_ISSUES_PATH)")
	flags.String("auth-header", "", "Header carrying the credentials (default Authorization)")
	flags.String("auth-scheme", domain.DefaultAuthScheme, "Scheme prefixed to the API key; empty sends the bare key")
	flags.Int("timeout", 0, "Request timeout in seconds (default 60)")
	flags.String("history-in", "", "History artifact to diff against (default "+domain.DefaultHistoryPath+")")
	flags.String("history-out", "", "Where to write the next run's baseline (default "+domain.DefaultHistoryPath+")")
	flags.String("report-out", "", "Where to write the report artifact (default "+domain.DefaultReportPath+")")
	flags.String("raw-response-out", "", "Dump the raw validator response to this file")
	flags.Bool("fail-on-new-only", false, "Only fail when there are issues not present in history")
	flags.Bool("json", false, "Print the full report as JSON instead of the summary")
	flags.String("path", ".", "Project path, for .omnicles.yaml and git branch detection")

	v.SetEnvPrefix("OMNI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	return cmd
}

func runValidate(cmd *cobra.Command, v *viper.Viper) error {
	projectPath := v.GetString("path")

	opts := domain.Options{
		BaseURL:        v.GetString("base-url"),
		ModelID:        v.GetString("model-id"),
		APIKey:         v.GetString("api-key"),
		UserID:         v.GetString("user-id"),
		BranchID:       v.GetString("branch-id"),
		BranchName:     v.GetString("branch-name"),
		IssuesPath:     v.GetString("issues-path"),
		AuthHeader:     v.GetString("auth-header"),
		AuthScheme:     v.GetString("auth-scheme"),
		Timeout:        time.Duration(v.GetInt("timeout")) * time.Second,
		HistoryIn:      v.GetString("history-in"),
		HistoryOut:     v.GetString("history-out"),
		ReportOut:      v.GetString("report-out"),
		RawResponseOut: v.GetString("raw-response-out"),
		FailOnNewOnly:  v.GetBool("fail-on-new-only"),
	}

	cfg, err := configAdapter.New().Load(projectPath)
	if err != nil {
		return fmt.Errorf("loading project config: %w", err)
	}
	opts.ApplyProjectConfig(cfg)
	opts.ApplyDefaults()

	var notices []string
	if opts.BranchID == "" && opts.BranchName == "" {
		if name := detectGitBranch(projectPath); name != "" {
			opts.BranchName = name
			notices = append(notices, fmt.Sprintf("using git branch %q (pass --branch-name or --branch-id to override)", name))
		}
	}

	if err := opts.Validate(); err != nil {
		return err
	}

	client := omni.New(opts.BaseURL, opts.APIKey, opts.AuthHeader, opts.AuthScheme, opts.Timeout)
	svc := application.NewGateService(client, history.New())

	result, err := svc.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	for _, notice := range append(notices, result.Notices...) {
		fmt.Fprintln(errOut, notice)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(errOut, tui.RenderWarning(warning))
	}

	if v.GetBool("json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(result.Report, result.Classification))
	}

	report := result.Report
	if report.Failed(opts.FailOnNewOnly) {
		if opts.FailOnNewOnly {
			return fmt.Errorf("content validation failed: %d new issue(s)", report.NewIssues)
		}
		return fmt.Errorf("content validation failed: %d issue(s) (%d new, %d existing)",
			report.TotalIssues, report.NewIssues, report.ExistingIssues)
	}
	return nil
}

// detectGitBranch supplies a branch name from the local checkout when neither
// branch flag was given. The default branch maps to the default Omni model,
// so main/master yield nothing.
func detectGitBranch(projectPath string) string {
	gi := gitinfo.New()
	if !gi.IsGitRepo(projectPath) {
		return ""
	}
	name, err := gi.BranchName(projectPath)
	if err != nil || name == "main" || name == "master" {
		return ""
	}
	return name
}
