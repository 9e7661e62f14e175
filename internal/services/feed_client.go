package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var feedJSON = jsoniter.ConfigCompatibleWithStandardLibrary

const maxFeedBody = 32 << 20

// FeedClient pulls report batches from a partner API.
type FeedClient struct {
	client *http.Client
}

func NewFeedClient(timeout time.Duration) *FeedClient {
	return &FeedClient{
		client: &http.Client{Timeout: timeout},
	}
}

type feedResponse struct {
	Reports []jsoniter.RawMessage `json:"reports"`
}

// Fetch issues one GET against endpoint with credential as a bearer token and
// returns the elements under the "reports" key as rows numbered from 1.
// Every transport, status or envelope problem is wrapped in
// ErrExternalFetchFailed. An element that is not a JSON object only fails
// its own row with ErrInvalidFormat.
func (c *FeedClient) Fetch(ctx context.Context, endpoint, credential string) ([]SourceRow, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid endpoint %q", ErrExternalFetchFailed, endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrExternalFetchFailed, resp.StatusCode, string(snippet))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrExternalFetchFailed, err)
	}

	var payload feedResponse
	if err := feedJSON.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrExternalFetchFailed, err)
	}

	rows := make([]SourceRow, len(payload.Reports))
	for i, elem := range payload.Reports {
		rows[i] = decodeFeedRow(i+1, elem)
	}
	return rows, nil
}

func decodeFeedRow(n int, elem jsoniter.RawMessage) SourceRow {
	var rec RawRecord
	if err := feedJSON.Unmarshal(elem, &rec); err != nil || rec == nil {
		return SourceRow{
			Row: n,
			Err: fmt.Errorf("%w: report %d is not a JSON object", ErrInvalidFormat, n),
		}
	}
	return SourceRow{Row: n, Record: rec}
}
