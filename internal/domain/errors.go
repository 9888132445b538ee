package domain

import "fmt"

// ExtractionError indicates the validator response does not contain an issues
// array at the requested path. It is a validation infrastructure failure,
// distinct from "issues found".
type ExtractionError struct {
	Path    string // dot-path that was requested
	Segment string // prefix of the path up to the segment that failed
	Reason  string
}

func (e *ExtractionError) Error() string {
	if e.Segment != "" && e.Segment != e.Path {
		return fmt.Sprintf("no issues at path %q: segment %q %s", e.Path, e.Segment, e.Reason)
	}
	return fmt.Sprintf("no issues at path %q: %s", e.Path, e.Reason)
}
