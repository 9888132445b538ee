package domain

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default artifact locations, relative to the working directory.
const (
	DefaultHistoryPath = ".omnicles/history.json"
	DefaultReportPath  = ".omnicles/report.json"
)

const (
	DefaultAuthHeader = "Authorization"
	DefaultAuthScheme = "Bearer"
	DefaultTimeout    = 60 * time.Second
)

// Options is the resolved configuration for a gate run after merging flags,
// OMNI_* environment variables, and .omnicles.yaml project defaults.
type Options struct {
	BaseURL        string
	ModelID        string
	APIKey         string
	UserID         string
	BranchID       string
	BranchName     string
	IssuesPath     string
	AuthHeader     string
	AuthScheme     string
	Timeout        time.Duration
	HistoryIn      string
	HistoryOut     string
	ReportOut      string
	RawResponseOut string
	FailOnNewOnly  bool
}

// FromEnv returns Options populated from the OMNI_* environment variables.
func FromEnv() Options {
	return Options{
		BaseURL:    os.Getenv("OMNI_BASE_URL"),
		ModelID:    os.Getenv("OMNI_MODEL_ID"),
		APIKey:     os.Getenv("OMNI_API_KEY"),
		UserID:     os.Getenv("OMNI_USER_ID"),
		BranchID:   os.Getenv("OMNI_BRANCH_ID"),
		BranchName: os.Getenv("OMNI_BRANCH_NAME"),
		IssuesPath: os.Getenv("OMNI_ISSUES_PATH"),
		AuthScheme: DefaultAuthScheme,
	}
}

// ApplyProjectConfig fills unset fields from .omnicles.yaml values. Explicit
// flag and environment values always win.
func (o *Options) ApplyProjectConfig(cfg ProjectConfig) {
	if o.BaseURL == "" {
		o.BaseURL = cfg.BaseURL
	}
	if o.ModelID == "" {
		o.ModelID = cfg.ModelID
	}
	if o.UserID == "" {
		o.UserID = cfg.UserID
	}
	if o.IssuesPath == "" {
		o.IssuesPath = cfg.IssuesPath
	}
	if o.AuthHeader == "" {
		o.AuthHeader = cfg.AuthHeader
	}
	if o.HistoryIn == "" {
		o.HistoryIn = cfg.HistoryPath
	}
	if o.HistoryOut == "" {
		o.HistoryOut = cfg.HistoryPath
	}
	if o.ReportOut == "" {
		o.ReportOut = cfg.ReportPath
	}
	if o.Timeout == 0 && cfg.TimeoutSeconds > 0 {
		o.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if !o.FailOnNewOnly && cfg.FailOnNewOnly != nil {
		o.FailOnNewOnly = *cfg.FailOnNewOnly
	}
}

// ApplyDefaults fills remaining zero fields with built-in defaults.
// AuthScheme is left alone: an empty scheme is meaningful (the bare API key
// is sent as the header value).
func (o *Options) ApplyDefaults() {
	if o.AuthHeader == "" {
		o.AuthHeader = DefaultAuthHeader
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HistoryIn == "" {
		o.HistoryIn = DefaultHistoryPath
	}
	if o.HistoryOut == "" {
		o.HistoryOut = DefaultHistoryPath
	}
	if o.ReportOut == "" {
		o.ReportOut = DefaultReportPath
	}
}

// Validate checks that the required values are present, reporting all missing
// ones together, and that an explicit branch ID parses as a UUID.
func (o *Options) Validate() error {
	var missing []string
	if o.BaseURL == "" {
		missing = append(missing, "--base-url or OMNI_BASE_URL")
	}
	if o.ModelID == "" {
		missing = append(missing, "--model-id or OMNI_MODEL_ID")
	}
	if o.APIKey == "" {
		missing = append(missing, "--api-key or OMNI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required values: %s", strings.Join(missing, ", "))
	}

	if o.BranchID != "" {
		if _, err := uuid.Parse(o.BranchID); err != nil {
			return fmt.Errorf("branch id %q is not a UUID: %w", o.BranchID, err)
		}
	}
	return nil
}
