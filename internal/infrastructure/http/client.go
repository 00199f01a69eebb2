package infrastructure

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"video_trend_ranker/config"
)

// HTTPClient wraps a pooled http.Client and paces outgoing requests so a
// burst of lookups stays under the upstream quota.
type HTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPClient creates an HTTP client tuned from cfg
func NewHTTPClient(cfg *config.Config) *HTTPClient {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.HTTPClientTimeout,
	}

	return NewHTTPClientWith(client, cfg.YouTubeRequestsPerSecond)
}

// NewHTTPClientWith wraps an existing client. A non-positive rps disables pacing.
func NewHTTPClientWith(client *http.Client, rps float64) *HTTPClient {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &HTTPClient{client: client, limiter: limiter}
}

// Get performs a GET request bound to ctx
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Do waits for a rate limit token, then performs the request
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.client.Do(req)
}
