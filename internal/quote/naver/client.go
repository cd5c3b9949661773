// Package naver fetches quote documents from the Naver Finance item page and
// runs them through the extractor. The site serves plain HTML and blocks
// clients without a browser-like User-Agent.
package naver

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://finance.naver.com"

	// The source site rejects requests without a browser identification.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxBodyBytes caps how much of the quote page is read; the values of
	// interest sit well within the first megabyte.
	maxBodyBytes = 2 << 20
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=naver_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches quote snapshots for instrument codes.
type Client struct {
	// baseURL is the site root the item page path is appended to.
	baseURL string
	// userAgent is sent with every request.
	userAgent string
	// httpClient performs the outbound requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// now stamps FetchedAt on produced snapshots.
	now func() time.Time
}

// Option is a configuration option for the client.
type Option func(*Client)

// WithBaseURL sets the site root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent overrides the browser identification header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// New creates a quote client for the Naver Finance item page.
func New(options ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		now:        time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Name() string { return "naver" }

func (c *Client) itemURL(code string) string {
	return fmt.Sprintf("%s/item/main.nhn?code=%s", c.baseURL, url.QueryEscape(code))
}
