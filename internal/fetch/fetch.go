package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "setlist-scraper/1.0"
)

// ErrNetwork wraps every failure to obtain a page body.
var ErrNetwork = errors.New("network error")

// Page is a fetched web page.
type Page struct {
	URL         string
	FinalURL    string
	Status      string
	StatusCode  int
	ContentType string
	Body        string
}

// Fetcher retrieves a page as text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Client fetches pages with a single plain HTTP GET.
//
// The response status is not checked: error pages are returned like any
// other page and it is up to the caller to decide whether the body is useful.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new HTTP fetcher.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs a GET request and returns the body decoded as UTF-8 text.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	log := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching URL: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Str("content_type", contentType).
		Dur("elapsed", time.Since(start)).
		Msg("Received response")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("Non-success status, parsing body anyway")
	}

	body, err := decodeBody(resp.Body, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}

	return &Page{
		URL:         url,
		FinalURL:    resp.Request.URL.String(),
		Status:      resp.Status,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// decodeBody converts the body to UTF-8 using the declared or sniffed charset.
func decodeBody(r io.Reader, contentType string) (string, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return "", fmt.Errorf("decoding charset: %w", err)
	}
	data, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
