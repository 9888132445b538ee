package domain

// HistorySnapshot is the baseline persisted between runs: the normalized
// issues observed by the previous run on the same branch lineage.
type HistorySnapshot struct {
	GeneratedAt string            `json:"generated_at"`
	BaseURL     string            `json:"base_url"`
	ModelID     string            `json:"model_id"`
	Issues      []NormalizedIssue `json:"issues"`
}
