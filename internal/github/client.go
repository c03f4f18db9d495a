package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultAPIURL = "https://api.github.com"
	userAgent     = "AHK-Script-Finder"

	// languageFilter is appended to every code search.
	languageFilter = "extension:ahk"
)

// BuildQuery appends the AutoHotkey extension filter to a free-text query and
// percent-encodes it for use as the q parameter. Spaces become %20.
func BuildQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(strings.TrimSpace(q)+" "+languageFilter), "+", "%20")
}

// APIError is returned for any non-2xx response from GitHub.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %s - %s", e.Status, e.Body)
}

type Owner struct {
	Login string `json:"login"`
}

type Repository struct {
	Name          string  `json:"name"`
	FullName      string  `json:"full_name"`
	Owner         Owner   `json:"owner"`
	Description   *string `json:"description"`
	Stars         int     `json:"stargazers_count"`
	DefaultBranch string  `json:"default_branch"`
}

// CodeItem is a single hit from the code search endpoint.
type CodeItem struct {
	SHA         string     `json:"sha"`
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	URL         string     `json:"url"`
	HTMLURL     string     `json:"html_url"`
	DownloadURL string     `json:"download_url"`
	Repository  Repository `json:"repository"`
}

type CodeSearchResult struct {
	TotalCount int        `json:"total_count"`
	Items      []CodeItem `json:"items"`
}

// Client talks to the GitHub REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for apiURL; an empty apiURL means api.github.com.
// The token is optional and sent as a bearer credential when set.
func NewClient(apiURL, token string) *Client {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		baseURL: strings.TrimRight(apiURL, "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// SearchCode runs one page of a code search for .ahk files.
func (c *Client) SearchCode(ctx context.Context, query string, page, perPage int) (CodeSearchResult, error) {
	u := c.baseURL + "/search/code?q=" + BuildQuery(query) +
		"&page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return CodeSearchResult{}, err
	}
	c.setHeaders(req, "application/vnd.github.v3+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return CodeSearchResult{}, err
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CodeSearchResult{}, newAPIError(resp)
	}

	var out CodeSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CodeSearchResult{}, fmt.Errorf("decode search response: %w", err)
	}
	return out, nil
}

// FetchContent downloads the raw content of a file from its contents API URL.
func (c *Client) FetchContent(ctx context.Context, contentURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return "", err
	}
	c.setHeaders(req, "application/vnd.github.v3.raw")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newAPIError(resp)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Client) setHeaders(req *http.Request, accept string) {
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func newAPIError(resp *http.Response) *APIError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(b)),
	}
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close response body")
	}
}
