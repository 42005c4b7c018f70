// Package fetcher performs the bounded GET requests every extraction stage relies on.
package fetcher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent identifies requests as a desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/123.0.0.0 Safari/537.36"

// Fetcher is the contract shared by all stages. Every failure is reported as an
// *Error matching ErrUnavailable.
type Fetcher interface {
	Text(ctx context.Context, url string) (Page, error)
	JSON(ctx context.Context, url string, v any) (int, error)
}

type Page struct {
	URL         string
	FinalURL    string
	Status      int
	ContentType string
	Body        string
}

type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	VerifyTLS    bool
	UserAgent    string
	MaxRetries   int
	MaxBodyBytes int64
	Logger       *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Timeout:      15 * time.Second,
		MaxRedirects: 5,
		VerifyTLS:    true,
		UserAgent:    DefaultUserAgent,
		MaxRetries:   1,
		MaxBodyBytes: 5 * 1024 * 1024,
	}
}

var _ Fetcher = (*Client)(nil)

// Client is safe for concurrent use and holds no per-request state.
type Client struct {
	http         *resty.Client
	maxBodyBytes int64
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRedirects < 0 {
		opts.MaxRedirects = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 * 1024 * 1024
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(opts.MaxRedirects)).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.8,*/*;q=0.7").
		SetHeader("Accept-Language", "en-US,en;q=0.8").
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetResponseBodyLimit(int(opts.MaxBodyBytes)).
		AddRetryCondition(isRetryable).
		SetLogger(restyLogger{logger: logger.With("component", "fetcher")})

	if !opts.VerifyTLS {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in via configuration
	}

	return &Client{http: client, maxBodyBytes: opts.MaxBodyBytes}
}

// Text fetches url and returns its body decoded to UTF-8.
func (c *Client) Text(ctx context.Context, url string) (Page, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return Page{}, err
	}

	contentType := resp.Header().Get("Content-Type")
	body, err := decode(resp.Body(), contentType)
	if err != nil {
		return Page{}, &Error{URL: url, Status: resp.StatusCode(), Err: fmt.Errorf("failed to decode body: %w", err)}
	}

	page := Page{
		URL:         url,
		FinalURL:    url,
		Status:      resp.StatusCode(),
		ContentType: contentType,
		Body:        body,
	}
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		page.FinalURL = resp.RawResponse.Request.URL.String()
	}

	return page, nil
}

// JSON fetches url and decodes the body into v.
func (c *Client) JSON(ctx context.Context, url string, v any) (int, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return statusOf(err), err
	}

	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return resp.StatusCode(), &Error{URL: url, Status: resp.StatusCode(), Err: fmt.Errorf("failed to decode JSON: %w", err)}
	}

	return resp.StatusCode(), nil
}

func (c *Client) get(ctx context.Context, url string) (*resty.Response, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		if errors.Is(err, resty.ErrResponseBodyTooLarge) {
			err = fmt.Errorf("response body exceeds limit of %d bytes: %w", c.maxBodyBytes, err)
		}
		return nil, &Error{URL: url, Status: status, Err: err}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &Error{URL: url, Status: resp.StatusCode()}
	}

	return resp, nil
}

func decode(data []byte, contentType string) (string, error) {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(utf8data), nil
}

func isRetryable(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, resty.ErrResponseBodyTooLarge)
	}
	if resp == nil {
		return false
	}
	switch resp.StatusCode() {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
