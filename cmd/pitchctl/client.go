package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/pitchrank/pitchrank-engine/pkg/handlers"
	"github.com/pitchrank/pitchrank-engine/pkg/retry"
	"github.com/pitchrank/pitchrank-engine/pkg/services"
)

// defaultTimeout is the maximum time to wait for engine responses.
const defaultTimeout = 30 * time.Second

// apiClient talks to the pitchrank-engine HTTP API.
type apiClient struct {
	httpClient *http.Client
	baseURL    string
	retryCfg   *retry.Config
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:  baseURL,
		retryCfg: retry.DefaultConfig(),
	}
}

// apiError is a non-200 engine response. Reads treat engine-side failures
// as transient; validation and precondition rejections are final answers.
type apiError struct {
	status  int
	code    string
	message string
	body    string
}

func (e *apiError) Error() string {
	if e.code != "" {
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
	return fmt.Sprintf("pitchrank-engine returned status %d: %s", e.status, e.body)
}

func (e *apiError) IsRetryable() bool {
	return e.status >= http.StatusInternalServerError
}

func (c *apiClient) suggestions(ctx context.Context, ageGroup, gender, state string, minConfidence float64, limit int) (*services.SuggestionReport, error) {
	query := url.Values{}
	if ageGroup != "" {
		query.Set("age_group", ageGroup)
	}
	if gender != "" {
		query.Set("gender", gender)
	}
	if state != "" {
		query.Set("state", state)
	}
	if minConfidence > 0 {
		query.Set("min_confidence", strconv.FormatFloat(minConfidence, 'f', -1, 64))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	endpoint, err := c.buildURL(query, "api", "merge", "suggestions")
	if err != nil {
		return nil, err
	}

	var report services.SuggestionReport
	if err := c.get(ctx, endpoint, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *apiClient) merge(ctx context.Context, req handlers.MergeTeamsRequest) (*services.MergeResult, error) {
	endpoint, err := c.buildURL(nil, "api", "merges")
	if err != nil {
		return nil, err
	}

	var result services.MergeResult
	if err := c.do(ctx, http.MethodPost, endpoint, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) revert(ctx context.Context, mergeID string, req handlers.RevertMergeRequest) (*services.RevertResult, error) {
	endpoint, err := c.buildURL(nil, "api", "merges", mergeID, "revert")
	if err != nil {
		return nil, err
	}

	var result services.RevertResult
	if err := c.do(ctx, http.MethodPost, endpoint, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) team(ctx context.Context, teamID string) (*services.TeamDetail, error) {
	endpoint, err := c.buildURL(nil, "api", "teams", teamID)
	if err != nil {
		return nil, err
	}

	var detail services.TeamDetail
	if err := c.get(ctx, endpoint, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *apiClient) mergeStatus(ctx context.Context, teamID string) (*services.MergeStatus, error) {
	endpoint, err := c.buildURL(nil, "api", "teams", teamID, "merge-status")
	if err != nil {
		return nil, err
	}

	var status services.MergeStatus
	if err := c.get(ctx, endpoint, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *apiClient) teamHistory(ctx context.Context, teamID string, limit int) (*handlers.AuditListResponse, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	endpoint, err := c.buildURL(query, "api", "teams", teamID, "audit")
	if err != nil {
		return nil, err
	}

	var list handlers.AuditListResponse
	if err := c.get(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *apiClient) recentAudit(ctx context.Context, limit int) (*handlers.AuditListResponse, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	endpoint, err := c.buildURL(query, "api", "audit", "recent")
	if err != nil {
		return nil, err
	}

	var list handlers.AuditListResponse
	if err := c.get(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// get wraps idempotent reads in the client's retry policy. Merges and
// reverts go through do directly; a mutation replayed after an ambiguous
// failure could land twice.
func (c *apiClient) get(ctx context.Context, endpoint string, out any) error {
	return retry.Do(ctx, c.retryCfg, func() error {
		return c.do(ctx, http.MethodGet, endpoint, nil, out)
	})
}

// do executes a request and unmarshals the envelope's data into out.
func (c *apiClient) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call pitchrank-engine: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		outErr := &apiError{status: resp.StatusCode, body: string(raw)}
		var decoded struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error != "" {
			outErr.code = decoded.Error
			outErr.message = decoded.Message
		}
		return outErr
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}
	return nil
}

// buildURL constructs a URL by parsing the server base and joining path segments.
func (c *apiClient) buildURL(query url.Values, segments ...string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", c.baseURL, err)
	}

	parts := append([]string{u.Path}, segments...)
	u.Path = path.Join(parts...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
