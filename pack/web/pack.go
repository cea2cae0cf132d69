// Package web provides the web_search tool: keyword search via the Google
// Custom Search API and SSRF-guarded URL fetching.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zkhudr/gemini-agent/domain/tool"
)

const usage = `Web Search Tool: Provides tools to search the web and fetch content from URLs.
- operation: "search" or "fetch"
  - "search": Searches the web using a query.
    - query: The string to search for.
  - "fetch": Retrieves the text-based content of a public URL.
    - url: The public URL to fetch.
NOTE: The 'search' operation requires a Google API key and CSE identifier.`

// maxFetchBytes caps the amount of body read from a fetched URL.
const maxFetchBytes = 1 << 20 // 1 MiB

const searchEndpoint = "https://www.googleapis.com/customsearch/v1"

// Resolver resolves a hostname to IP addresses. Injected so the SSRF guard
// can be tested without DNS.
type Resolver func(host string) ([]net.IP, error)

// Config configures the web tool.
type Config struct {
	// APIKey and CSEID authenticate against the Custom Search API.
	APIKey string
	CSEID  string

	// Timeout bounds every outbound request.
	Timeout time.Duration

	// Resolver overrides hostname resolution for the SSRF guard.
	Resolver Resolver

	// Client overrides the HTTP client.
	Client *http.Client
}

// Option configures the web tool.
type Option func(*Config)

// WithCredentials sets the search API credentials.
func WithCredentials(apiKey, cseID string) Option {
	return func(c *Config) {
		c.APIKey = apiKey
		c.CSEID = cseID
	}
}

// WithResolver overrides hostname resolution.
func WithResolver(r Resolver) Option {
	return func(c *Config) {
		c.Resolver = r
	}
}

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.Client = client
	}
}

type params struct {
	Operation string `json:"operation"`
	Query     string `json:"query,omitempty"`
	URL       string `json:"url,omitempty"`
}

// New creates the web_search tool.
func New(opts ...Option) tool.Tool {
	cfg := Config{
		Timeout:  10 * time.Second,
		Resolver: net.LookupIP,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}

	return tool.NewBuilder("web_search").
		WithDescription("Search the web and fetch public URLs").
		WithUsage(usage).
		Safe().
		WithHandler(func(ctx context.Context, raw json.RawMessage) (tool.Result, error) {
			var in params
			if err := json.Unmarshal(raw, &in); err != nil {
				return tool.NewErrorResult(err), nil
			}

			operation := in.Operation
			if operation == "" {
				operation = "search"
			}
			switch operation {
			case "search":
				if in.Query == "" {
					return tool.NewErrorResultf("Missing 'query' parameter for search."), nil
				}
				return search(ctx, &cfg, in.Query), nil
			case "fetch":
				if in.URL == "" {
					return tool.NewErrorResultf("Missing 'url' parameter for fetch."), nil
				}
				return fetch(ctx, &cfg, in.URL), nil
			default:
				return tool.NewErrorResult(fmt.Errorf("%w: %s", tool.ErrUnsupportedOperation, operation)), nil
			}
		}).
		MustBuild()
}

// CheckURL resolves the hostname and rejects any private, loopback or
// otherwise non-public address before a connection is attempted.
func CheckURL(rawURL string, resolve Resolver) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return fmt.Errorf("%w: invalid URL", tool.ErrSecurityRejection)
	}

	ips, err := resolve(parsed.Hostname())
	if err != nil || len(ips) == 0 {
		return fmt.Errorf("%w: hostname could not be resolved", tool.ErrSecurityRejection)
	}
	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() ||
			ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("%w: URL resolves to a private or local network address", tool.ErrSecurityRejection)
		}
	}
	return nil
}

func fetch(ctx context.Context, cfg *Config, rawURL string) tool.Result {
	if err := CheckURL(rawURL, cfg.Resolver); err != nil {
		return tool.NewErrorResult(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return tool.NewErrorResult(err)
	}
	req.Header.Set("User-Agent", "GeminiAgent/1.0")

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return tool.NewErrorResultf("Error fetching URL: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return tool.NewErrorResultf("Error fetching URL: status " + resp.Status)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !textContentType(contentType) {
		return tool.NewErrorResultf(fmt.Sprintf(
			"Unsupported content type: %s. Only text-based content is allowed.", contentType))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return tool.NewErrorResultf("Error fetching URL: " + err.Error())
	}
	return tool.NewResultWithMetadata(string(body), map[string]any{
		"url":          rawURL,
		"content_type": contentType,
		"size":         len(body),
	})
}

func textContentType(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "text/plain") ||
		strings.Contains(contentType, "application/json")
}

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func search(ctx context.Context, cfg *Config, query string) tool.Result {
	if cfg.APIKey == "" || cfg.CSEID == "" {
		return tool.NewErrorResultf(
			"Configuration Error: a Google API key and CSE identifier must be configured.")
	}

	q := url.Values{}
	q.Set("key", cfg.APIKey)
	q.Set("cx", cfg.CSEID)
	q.Set("q", query)
	q.Set("num", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return tool.NewErrorResult(err)
	}

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return tool.NewErrorResultf("Error during web search: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tool.NewErrorResultf("Error during web search: status " + resp.Status)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return tool.NewErrorResultf("Error during web search: " + err.Error())
	}

	if len(parsed.Items) == 0 {
		return tool.NewResult(fmt.Sprintf("No search results found for '%s'.", query))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for '%s':\n\n", query)
	for _, item := range parsed.Items {
		fmt.Fprintf(&b, "Title: %s\nLink: %s\nSnippet: %s\n---\n", item.Title, item.Link, item.Snippet)
	}
	return tool.NewResult(b.String())
}
