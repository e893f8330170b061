package cloudcall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/callsight/backend/internal/types"
	"github.com/rs/zerolog"
)

const (
	activityPath = "/reporting/activity/agents"
	summaryPath  = "/reporting/summary/agents"

	// summaryAPIVersion is pinned; 1.1 is the first version that returns
	// per-direction in-call durations.
	summaryAPIVersion = "1.1"

	maxErrorBodyBytes = 2048
)

// TokenSource supplies the bearer credential for each request. Credential
// collection and refresh live outside this package.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed credential.
type StaticToken string

func (t StaticToken) Token(_ context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("cloudcall: no credential configured")
	}
	return string(t), nil
}

// Client talks to the CloudCall reporting API. All calls are read-only.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  zerolog.Logger
}

// New creates a reporting API client.
func New(baseURL string, tokens TokenSource, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		logger:  logger.With().Str("component", "cloudcall").Logger(),
	}
}

// GetAgentActivity fetches one page of itemized call events.
func (c *Client) GetAgentActivity(ctx context.Context, q types.ActivityQuery) (*types.ActivityEnvelope, error) {
	params := url.Values{}
	params.Set("From", q.From.UTC().Format(time.RFC3339))
	params.Set("To", q.To.UTC().Format(time.RFC3339))
	if q.Take > 0 {
		params.Set("Take", strconv.Itoa(q.Take))
	}
	if q.Page > 0 {
		params.Set("Page", strconv.Itoa(q.Page))
	}

	var envelope types.ActivityEnvelope
	if err := c.get(ctx, activityPath, params, &envelope); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("page", q.Page).
		Int("records", len(envelope.Data)).
		Int("total_count", envelope.TotalCount).
		Msg("activity page fetched")

	return &envelope, nil
}

// GetAgentSummary fetches the rollup records for a range.
func (c *Client) GetAgentSummary(ctx context.Context, q types.SummaryQuery) (*types.SummaryEnvelope, error) {
	params := url.Values{}
	params.Set("From", q.From.UTC().Format(time.RFC3339))
	params.Set("To", q.To.UTC().Format(time.RFC3339))
	params.Set("Reach", strconv.Itoa(q.Reach))
	params.Set("api-version", summaryAPIVersion)

	var envelope types.SummaryEnvelope
	if err := c.get(ctx, summaryPath, params, &envelope); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("records", len(envelope.Data)).
		Msg("summaries fetched")

	return &envelope, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("cloudcall: acquiring credential: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("cloudcall: building request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%s: %w", path, ErrAuthExpired)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &MalformedError{Op: path, Err: err}
	}

	return nil
}
