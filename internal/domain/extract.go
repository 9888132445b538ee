package domain

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Extract locates the issue arrays in a raw validator response and flattens
// them into a single ordered slice. When path is non-empty it is resolved as
// an explicit dot-path (object keys and numeric array indices) and must lead
// to an array. Without a path the known default locations are searched in
// order and all matches concatenated. Finding nothing is not an error.
func Extract(raw []byte, path string) ([]any, error) {
	if path != "" {
		return extractByPath(raw, path)
	}
	return extractDefaults(raw), nil
}

func extractByPath(raw []byte, path string) ([]any, error) {
	current := gjson.ParseBytes(raw)
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		next := current.Get(escapeSegment(segment))
		if !next.Exists() {
			return nil, &ExtractionError{
				Path:    path,
				Segment: strings.Join(segments[:i+1], "."),
				Reason:  "not found",
			}
		}
		current = next
	}
	if !current.IsArray() {
		return nil, &ExtractionError{Path: path, Reason: "is not an array"}
	}
	return current.Value().([]any), nil
}

// extractDefaults searches the known issue locations: top-level arrays, then
// per-document query issues, then per-document dashboard filter issues, and
// finally a bare top-level listing key. Issues found under content[] are
// enriched with their document context so that identical messages on
// different documents stay distinguishable.
func extractDefaults(raw []byte) []any {
	doc := gjson.ParseBytes(raw)

	// The validator occasionally returns a bare array of issues.
	if doc.IsArray() {
		return doc.Value().([]any)
	}

	var issues []any
	matched := false
	for _, key := range []string{"issues", "validation_issues", "errors"} {
		if arr := doc.Get(key); arr.IsArray() {
			matched = true
			issues = append(issues, arr.Value().([]any)...)
		}
	}

	doc.Get("content").ForEach(func(_, document gjson.Result) bool {
		ctx := documentContext(document)

		document.Get("queries_and_issues").ForEach(func(_, query gjson.Result) bool {
			query.Get("issues").ForEach(func(_, item gjson.Result) bool {
				issue := contentIssue(item, "query", ctx)
				issue["query_name"] = query.Get("query_name").Value()
				issue["query_presentation_id"] = query.Get("query_presentation_id").Value()
				issues = append(issues, issue)
				return true
			})
			return true
		})

		document.Get("dashboard_filter_issues").ForEach(func(_, item gjson.Result) bool {
			issues = append(issues, contentIssue(item, "dashboard_filter", ctx))
			return true
		})

		return true
	})

	if len(issues) > 0 || matched {
		return issues
	}

	// Last resort: some payload shapes put the findings directly under a
	// top-level listing key. An empty issue array above already answered
	// "no issues", so this only fires when nothing matched at all.
	for _, key := range []string{"content", "documents", "items", "results"} {
		if arr := doc.Get(key); arr.IsArray() {
			return arr.Value().([]any)
		}
	}

	return nil
}

func documentContext(document gjson.Result) map[string]any {
	return map[string]any{
		"document_id":   document.Get("document_id").Value(),
		"document_name": document.Get("name").Value(),
		"document_type": document.Get("type").Value(),
		"folder_name":   document.Get("folder.name").Value(),
		"folder_path":   document.Get("folder.path").Value(),
	}
}

func contentIssue(item gjson.Result, issueType string, ctx map[string]any) map[string]any {
	var message any
	if item.IsObject() {
		message = item.Get("message").Value()
	} else {
		message = item.Value()
	}

	issue := map[string]any{
		"message":    message,
		"raw_issue":  item.Value(),
		"issue_type": issueType,
	}
	for k, v := range ctx {
		issue[k] = v
	}
	return issue
}

var segmentEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "?", `\?`, "#", `\#`, "|", `\|`, "@", `\@`,
)

// escapeSegment makes a path segment a literal key lookup rather than a
// gjson query.
func escapeSegment(segment string) string {
	return segmentEscaper.Replace(segment)
}
