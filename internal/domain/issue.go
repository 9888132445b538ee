package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizedIssue is a single validation finding with a stable identity
// attached. Raw keeps the issue body exactly as the validator returned it.
type NormalizedIssue struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Raw     any    `json:"raw"`
}

// Identity derives a stable identifier for an issue. encoding/json emits map
// keys in sorted order, so two issues with identical semantic content hash to
// the same ID regardless of the field order the API happened to serialize.
func Identity(issue any) string {
	var data []byte
	switch v := issue.(type) {
	case string:
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			b = []byte(fmt.Sprint(v))
		}
		data = b
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Summarize produces a one-line human summary for an issue. Issues carrying a
// message are prefixed with their document and query context when present;
// otherwise the first recognizable label field wins, falling back to the
// serialized body.
func Summarize(issue any) string {
	switch v := issue.(type) {
	case string:
		return v
	case map[string]any:
		if msg := messageOf(v); msg != "" {
			var prefix []string
			for _, key := range []string{"document_name", "query_name"} {
				if s := stringField(v, key); s != "" {
					prefix = append(prefix, s)
				}
			}
			if len(prefix) > 0 {
				return strings.Join(prefix, " / ") + ": " + msg
			}
			return msg
		}
		for _, key := range []string{"title", "name", "path", "field"} {
			if s := stringField(v, key); s != "" {
				return s
			}
		}
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(issue)
}

// Normalize maps extracted issues to their normalized form, preserving order.
func Normalize(issues []any) []NormalizedIssue {
	normalized := make([]NormalizedIssue, 0, len(issues))
	for _, issue := range issues {
		normalized = append(normalized, NormalizedIssue{
			ID:      Identity(issue),
			Summary: Summarize(issue),
			Raw:     issue,
		})
	}
	return normalized
}

func messageOf(issue map[string]any) string {
	msg, ok := issue["message"]
	if !ok || msg == nil {
		return ""
	}
	if s, ok := msg.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(msg)
}

func stringField(issue map[string]any, key string) string {
	if s, ok := issue[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
