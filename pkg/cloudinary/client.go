// Package cloudinary is a minimal client for the media store's Admin API:
// listing uploaded images under a folder prefix and bulk-deleting them.
package cloudinary

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/dish-catalog/internal/resilience"
)

const (
	defaultBaseURL = "https://api.cloudinary.com/v1_1"

	// MaxListResults is the largest page the listing endpoint returns.
	MaxListResults = 500
	// MaxDeleteIDs is the most public ids one delete call accepts.
	MaxDeleteIDs = 100
)

// Per-resource statuses in a delete response.
const (
	StatusDeleted  = "deleted"
	StatusNotFound = "not_found"
)

// Client performs media store Admin API operations.
type Client interface {
	ListResources(ctx context.Context, req ListRequest) (*ListResponse, error)
	DeleteResources(ctx context.Context, ids []string) (*DeleteResponse, error)
}

// ListRequest selects uploaded images by folder prefix.
type ListRequest struct {
	// Prefix may end in "*", which is trimmed.
	Prefix string
	// MaxResults is clamped to MaxListResults. Zero means the maximum.
	MaxResults int
}

// ListResponse is one page of resources. Further pages are not requested.
type ListResponse struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// Truncated reports whether the store holds more matching resources.
func (r *ListResponse) Truncated() bool {
	return r.NextCursor != ""
}

// Resource is an uploaded image.
type Resource struct {
	PublicID  string           `json:"public_id"`
	Format    string           `json:"format"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Bytes     int64            `json:"bytes"`
	URL       string           `json:"url"`
	SecureURL string           `json:"secure_url"`
	Tags      []string         `json:"tags"`
	Context   *ResourceContext `json:"context,omitempty"`
	CreatedAt string           `json:"created_at"`
}

// ResourceContext carries user-supplied key/value metadata.
type ResourceContext struct {
	Custom map[string]string `json:"custom"`
}

// ContextValue returns a custom context value, or "".
func (r Resource) ContextValue(key string) string {
	if r.Context == nil {
		return ""
	}
	return r.Context.Custom[key]
}

// DeleteResponse maps each requested id to its status. Some deployments
// also report missing ids in NotFound.
type DeleteResponse struct {
	Deleted  map[string]string `json:"deleted"`
	NotFound []string          `json:"not_found,omitempty"`
	Partial  bool              `json:"partial,omitempty"`
}

// Status returns the reported status for id and whether one was reported.
func (r *DeleteResponse) Status(id string) (string, bool) {
	if s, ok := r.Deleted[id]; ok {
		return s, true
	}
	for _, nf := range r.NotFound {
		if nf == id {
			return StatusNotFound, true
		}
	}
	return "", false
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry overrides the retry policy for listing calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithRateLimit caps outgoing calls at rps requests per second. Zero or
// negative leaves calls unthrottled.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
	retry     resilience.RetryConfig
	limiter   *rate.Limiter
}

// NewClient creates an Admin API client for one cloud.
func NewClient(cloudName, apiKey, apiSecret string, opts ...Option) Client {
	c := &httpClient{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("cloudinary", "list_resources")
	}
	return c
}

func (c *httpClient) resourcesURL() string {
	return c.baseURL + "/" + url.PathEscape(c.cloudName) + "/resources/image/upload"
}

func (c *httpClient) ListResources(ctx context.Context, lr ListRequest) (*ListResponse, error) {
	limit := lr.MaxResults
	if limit <= 0 || limit > MaxListResults {
		limit = MaxListResults
	}

	q := url.Values{}
	if p := strings.TrimSuffix(lr.Prefix, "*"); p != "" {
		q.Set("prefix", p)
	}
	q.Set("max_results", strconv.Itoa(limit))
	q.Set("context", "true")
	q.Set("tags", "true")
	endpoint := c.resourcesURL() + "?" + q.Encode()

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*ListResponse, error) {
		var out ListResponse
		if err := c.do(ctx, http.MethodGet, endpoint, &out); err != nil {
			return nil, eris.Wrap(err, "cloudinary: list resources")
		}
		return &out, nil
	})
}

func (c *httpClient) DeleteResources(ctx context.Context, ids []string) (*DeleteResponse, error) {
	if len(ids) == 0 {
		return &DeleteResponse{Deleted: map[string]string{}}, nil
	}
	if len(ids) > MaxDeleteIDs {
		return nil, eris.Errorf("cloudinary: delete accepts at most %d ids, got %d", MaxDeleteIDs, len(ids))
	}

	q := url.Values{}
	for _, id := range ids {
		q.Add("public_ids[]", id)
	}

	var out DeleteResponse
	if err := c.do(ctx, http.MethodDelete, c.resourcesURL()+"?"+q.Encode(), &out); err != nil {
		return nil, eris.Wrap(err, "cloudinary: delete resources")
	}
	if out.Deleted == nil {
		out.Deleted = map[string]string{}
	}
	return &out, nil
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *httpClient) do(ctx context.Context, method, endpoint string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limit")
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		msg := body
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			msg = []byte(ae.Error.Message)
		}
		return resilience.CheckStatus("cloudinary", resp.StatusCode, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
