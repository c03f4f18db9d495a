package ps99

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL  = "https://biggamesapi.io/api"
	DefaultCacheTTL = 30 * time.Second

	cacheSize    = 256
	maxBodyBytes = 16 << 20
)

// clanListParams are the query parameters forwarded to /clans.
var clanListParams = []string{"page", "pageSize", "sort", "sortOrder"}

// Response is an upstream reply passed through unchanged.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client proxies the Pet Simulator 99 public API. Successful responses are
// cached for the configured TTL.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *expirable.LRU[string, Response]
}

// NewClient returns a Client for baseURL. A ttl of zero or less disables caching.
func NewClient(baseURL string, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	if ttl > 0 {
		c.cache = expirable.NewLRU[string, Response](cacheSize, nil, ttl)
	}
	return c
}

// Get fetches path (relative to the base URL) with the given query.
// Non-2xx responses are returned, not cached, and not treated as errors.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (Response, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if c.cache != nil {
		if r, ok := c.cache.Get(u); ok {
			log.Debug().Str("url", u).Msg("ps99 cache hit")
			return r, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("ps99 request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("ps99 read body: %w", err)
	}

	r := Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	if r.ContentType == "" {
		r.ContentType = "application/json"
	}
	if c.cache != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.cache.Add(u, r)
	}
	return r, nil
}

// Clans lists clans, forwarding only the paging and sort parameters.
func (c *Client) Clans(ctx context.Context, params url.Values) (Response, error) {
	q := url.Values{}
	for _, k := range clanListParams {
		if v := params.Get(k); v != "" {
			q.Set(k, v)
		}
	}
	return c.Get(ctx, "/clans", q)
}

func (c *Client) Clan(ctx context.Context, name string) (Response, error) {
	return c.Get(ctx, "/clan/"+url.PathEscape(name), nil)
}

func (c *Client) ActiveClanBattle(ctx context.Context) (Response, error) {
	return c.Get(ctx, "/activeClanBattle", nil)
}

func (c *Client) RAP(ctx context.Context) (Response, error) {
	return c.Get(ctx, "/rap", nil)
}

func (c *Client) Exists(ctx context.Context) (Response, error) {
	return c.Get(ctx, "/exists", nil)
}

func (c *Client) Collections(ctx context.Context) (Response, error) {
	return c.Get(ctx, "/collections", nil)
}

func (c *Client) Collection(ctx context.Context, name string) (Response, error) {
	return c.Get(ctx, "/collection/"+url.PathEscape(name), nil)
}
