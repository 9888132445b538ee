package domain

// ProjectConfig holds optional project-level defaults loaded from
// .omnicles.yaml. Credentials have no place here: the API key only comes
// from a flag or the environment.
type ProjectConfig struct {
	BaseURL        string `yaml:"base_url"`
	ModelID        string `yaml:"model_id"`
	UserID         string `yaml:"user_id"`
	IssuesPath     string `yaml:"issues_path"`
	AuthHeader     string `yaml:"auth_header"`
	HistoryPath    string `yaml:"history_path"`
	ReportPath     string `yaml:"report_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	FailOnNewOnly  *bool  `yaml:"fail_on_new_only"`
}
