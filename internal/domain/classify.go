package domain

// Classification partitions the current run's issues against the previous
// snapshot. Slices preserve input order so repeated runs over the same
// inputs produce byte-identical output.
type Classification struct {
	New      []NormalizedIssue `json:"new"`
	Existing []NormalizedIssue `json:"existing"`
	Resolved []NormalizedIssue `json:"resolved"`
}

// Classify splits current issues into new (ID absent from previous) and
// existing (ID present), and collects previous issues absent from the
// current run as resolved.
func Classify(current, previous []NormalizedIssue) Classification {
	previousIDs := make(map[string]bool, len(previous))
	for _, issue := range previous {
		previousIDs[issue.ID] = true
	}
	currentIDs := make(map[string]bool, len(current))
	for _, issue := range current {
		currentIDs[issue.ID] = true
	}

	var c Classification
	for _, issue := range current {
		if previousIDs[issue.ID] {
			c.Existing = append(c.Existing, issue)
		} else {
			c.New = append(c.New, issue)
		}
	}
	for _, issue := range previous {
		if !currentIDs[issue.ID] {
			c.Resolved = append(c.Resolved, issue)
		}
	}
	return c
}
