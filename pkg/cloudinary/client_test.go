package cloudinary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dish-catalog/internal/resilience"
)

func fastRetry() Option {
	return WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})
}

func TestListResources_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/demo/resources/image/upload", r.URL.Path)
		assert.Equal(t, "dishes/", r.URL.Query().Get("prefix"))
		assert.Equal(t, "500", r.URL.Query().Get("max_results"))
		assert.Equal(t, "true", r.URL.Query().Get("context"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"resources": [{
				"public_id": "dishes/india/biryani/biryani_1",
				"format": "jpg", "width": 1200, "height": 800, "bytes": 240000,
				"secure_url": "https://res.example.com/biryani_1.jpg",
				"tags": ["rice"],
				"context": {"custom": {"alt": "Chicken biryani"}}
			}],
			"next_cursor": "abc"
		}`))
	}))
	defer srv.Close()

	c := NewClient("demo", "key", "secret", WithBaseURL(srv.URL+"/"))
	resp, err := c.ListResources(context.Background(), ListRequest{Prefix: "dishes/*", MaxResults: 2000})

	require.NoError(t, err)
	require.Len(t, resp.Resources, 1)
	res := resp.Resources[0]
	assert.Equal(t, "dishes/india/biryani/biryani_1", res.PublicID)
	assert.Equal(t, 1200, res.Width)
	assert.Equal(t, int64(240000), res.Bytes)
	assert.Equal(t, "Chicken biryani", res.ContextValue("alt"))
	assert.Equal(t, "", res.ContextValue("caption"))
	assert.True(t, resp.Truncated())
}

func TestListResources_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"Rate Limit Exceeded"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"resources":[]}`))
	}))
	defer srv.Close()

	c := NewClient("demo", "key", "secret", WithBaseURL(srv.URL), fastRetry())
	resp, err := c.ListResources(context.Background(), ListRequest{})

	require.NoError(t, err)
	assert.Empty(t, resp.Resources)
	assert.False(t, resp.Truncated())
	assert.Equal(t, int32(2), calls.Load())
}

func TestListResources_PermanentError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid api_key"}}`))
	}))
	defer srv.Close()

	c := NewClient("demo", "bad", "secret", WithBaseURL(srv.URL), fastRetry())
	_, err := c.ListResources(context.Background(), ListRequest{Prefix: "dishes"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid api_key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeleteResources_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, []string{"a", "b", "c"}, r.URL.Query()["public_ids[]"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"deleted":   map[string]string{"a": "deleted", "b": "not_found"},
			"not_found": []string{"c"},
		})
	}))
	defer srv.Close()

	c := NewClient("demo", "key", "secret", WithBaseURL(srv.URL))
	resp, err := c.DeleteResources(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	s, ok := resp.Status("a")
	assert.True(t, ok)
	assert.Equal(t, StatusDeleted, s)
	s, _ = resp.Status("b")
	assert.Equal(t, StatusNotFound, s)
	s, _ = resp.Status("c")
	assert.Equal(t, StatusNotFound, s)
	_, ok = resp.Status("d")
	assert.False(t, ok)
}

func TestDeleteResources_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("demo", "key", "secret", WithBaseURL(srv.URL), fastRetry())
	_, err := c.DeleteResources(context.Background(), []string{"a"})

	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeleteResources_Limits(t *testing.T) {
	c := NewClient("demo", "key", "secret", WithBaseURL("http://127.0.0.1:0"))

	resp, err := c.DeleteResources(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Deleted)

	ids := make([]string, MaxDeleteIDs+1)
	for i := range ids {
		ids[i] = "id"
	}
	_, err = c.DeleteResources(context.Background(), ids)
	assert.Error(t, err)
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c := NewClient("demo", "k", "s", WithHTTPClient(hc)).(*httpClient)
	assert.Same(t, hc, c.http)
	assert.Equal(t, defaultBaseURL, c.baseURL)
}

func TestWithRateLimit_SpacesCalls(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"deleted": {"a": "deleted"}}`))
	}))
	defer srv.Close()

	c := NewClient("demo", "key", "secret", WithBaseURL(srv.URL), WithRateLimit(20))

	start := time.Now()
	for range 3 {
		_, err := c.DeleteResources(context.Background(), []string{"a"})
		require.NoError(t, err)
	}

	// Burst of one at 20/s: the second and third calls wait 50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWithRateLimit_CancelledWait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"deleted": {}}`))
	}))
	defer srv.Close()

	c := NewClient("demo", "key", "secret", WithBaseURL(srv.URL), WithRateLimit(0.001))
	_, err := c.DeleteResources(context.Background(), []string{"a"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.DeleteResources(ctx, []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}
