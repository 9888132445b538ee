package omni

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/ernestoongaro/omnicles/internal/domain"
)

// Client implements domain.ValidatorClient against the Omni REST API.
// Requests carry a single auth header; failures are surfaced immediately
// with no retries (CI reruns handle transient faults).
type Client struct {
	baseURL    string
	apiKey     string
	authHeader string
	authScheme string
	http       *http.Client
}

// New creates a Client. The timeout bounds each request end to end.
func New(baseURL, apiKey, authHeader, authScheme string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		authHeader: authHeader,
		authScheme: authScheme,
		http:       &http.Client{Timeout: timeout},
	}
}

// FetchValidation runs the content validator for a model and returns the raw
// JSON response body.
func (c *Client) FetchValidation(ctx context.Context, req domain.ValidationRequest) ([]byte, error) {
	params := url.Values{}
	if req.UserID != "" {
		params.Set("userId", req.UserID)
	}
	if req.BranchID != "" {
		params.Set("branch_id", req.BranchID)
	}

	path := fmt.Sprintf("/api/v1/models/%s/content-validator", url.PathEscape(req.ModelID))
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("content validator: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("content validator did not return JSON")
	}
	return body, nil
}

type modelRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ModelKind   string `json:"modelKind"`
	BaseModelID string `json:"baseModelId"`
}

type modelPage struct {
	Records  []modelRecord `json:"records"`
	PageInfo struct {
		NextCursor string `json:"nextCursor"`
	} `json:"pageInfo"`
}

// ResolveBranch walks the cursor-paginated model listing looking for a
// BRANCH model of the given base model with the given name. Returns "" when
// no branch matches.
func (c *Client) ResolveBranch(ctx context.Context, modelID, branchName string) (string, error) {
	cursor := ""
	for {
		params := url.Values{}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		body, err := c.get(ctx, "/api/v1/models", params)
		if err != nil {
			return "", fmt.Errorf("branch lookup: %w", err)
		}

		var page modelPage
		if err := json.Unmarshal(body, &page); err != nil {
			return "", fmt.Errorf("branch lookup: decoding model list: %w", err)
		}

		for _, record := range page.Records {
			if record.ModelKind != "BRANCH" || record.BaseModelID != modelID || record.Name != branchName {
				continue
			}
			if _, err := uuid.Parse(record.ID); err != nil {
				return "", fmt.Errorf("branch %q resolved to non-UUID id %q", branchName, record.ID)
			}
			return record.ID, nil
		}

		cursor = page.PageInfo.NextCursor
		if cursor == "" {
			return "", nil
		}
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(c.authHeader, c.authValue())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// authValue formats the header value. An empty scheme sends the bare key.
func (c *Client) authValue() string {
	if c.authScheme == "" {
		return c.apiKey
	}
	return c.authScheme + " " + c.apiKey
}
