package dataservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liyue/tracemap/internal/domain"
)

// Options configures an HTTP data service client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPClient implements Client over the data service's JSON API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client for the service rooted at opts.BaseURL.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) Timestamps(ctx context.Context) ([]int64, error) {
	var timestamps []int64
	if err := c.getJSON(ctx, "timestamps", "/api/timestamps", &timestamps); err != nil {
		return nil, err
	}
	return timestamps, nil
}

func (c *HTTPClient) ContactsAt(ctx context.Context, timestamp int64) ([]domain.ContactRecord, error) {
	var records []domain.ContactRecord
	path := fmt.Sprintf("/api/contacts/%d", timestamp)
	if err := c.getJSON(ctx, "contacts", path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) Bounds(ctx context.Context) (domain.BoundingBox, error) {
	var bounds domain.BoundingBox
	if err := c.getJSON(ctx, "bounds", "/api/bounds", &bounds); err != nil {
		return domain.BoundingBox{}, err
	}
	return bounds, nil
}

func (c *HTTPClient) UserContacts(ctx context.Context, userID int) ([]domain.ContactRecord, error) {
	var records []domain.ContactRecord
	path := fmt.Sprintf("/api/user/%d/contacts", userID)
	if err := c.getJSON(ctx, "user contacts", path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) UserSecondaryContacts(ctx context.Context, userID int) ([]domain.ContactRecord, error) {
	var records []domain.ContactRecord
	path := fmt.Sprintf("/api/user/%d/secondary-contacts", userID)
	if err := c.getJSON(ctx, "user secondary contacts", path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) Trajectory(ctx context.Context, id1, id2 int) ([]domain.TrackPoint, error) {
	var points []domain.TrackPoint
	path := fmt.Sprintf("/api/trajectory/%d/%d", id1, id2)
	if err := c.getJSON(ctx, "trajectory", path, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return &FetchError{Endpoint: "health", Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &FetchError{Endpoint: "health", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &FetchError{Endpoint: "health", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Endpoint: endpoint, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}
