// Package client provides the Gamma API HTTP client: a single-page fetcher
// with typed errors, plus the market and event endpoints built on it.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/gamma-markets-client/pkg/logging"
	"github.com/Sternrassler/gamma-markets-client/pkg/pagination"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public Gamma API.
	DefaultBaseURL = "https://gamma-api.polymarket.com"

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "gamma-markets-client/0.1.0"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
)

// Client is the Gamma API client.
//
// The underlying HTTP session is opened on the first request, shared by
// all concurrent requests and released by Close.
type Client struct {
	config    Config
	logger    zerolog.Logger
	paginator *pagination.Paginator

	mu         sync.Mutex
	session    *resty.Client
	httpClient *http.Client
	closed     bool
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the Gamma API, without trailing slash.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP request (0 disables it).
	Timeout time.Duration

	// PageCap bounds the pages of one paginated fetch (see pagination.Config).
	PageCap int
}

// DefaultConfig returns the default configuration for the public Gamma API.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		PageCap:   pagination.DefaultPageCap,
	}
}

// New creates a new Gamma client. No connection is made until the first request.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &ConfigurationError{Message: "base url is required"}
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigurationError{Message: fmt.Sprintf("invalid base url %q", cfg.BaseURL)}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.UserAgent == "" {
		return nil, &ConfigurationError{Message: "user-agent is required"}
	}

	if cfg.Timeout < 0 {
		return nil, &ConfigurationError{Message: fmt.Sprintf("timeout must be >= 0 (got %s)", cfg.Timeout)}
	}

	c := &Client{
		config: cfg,
		logger: logging.NewLogger(logging.ComponentClient),
	}
	c.paginator = pagination.NewPaginator(c, pagination.Config{PageCap: cfg.PageCap})

	return c, nil
}

// restySession returns the shared HTTP session, opening it on first use.
func (c *Client) restySession() (*resty.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	if c.session == nil {
		var session *resty.Client
		if c.httpClient != nil {
			session = resty.NewWithClient(c.httpClient)
		} else {
			session = resty.New()
			session.SetTimeout(c.config.Timeout)
		}
		session.SetLogger(restyLogger{logger: c.logger})
		session.SetBaseURL(c.config.BaseURL)
		session.SetHeader("User-Agent", c.config.UserAgent)
		session.SetHeader("Accept", "application/json")

		c.session = session
		c.logger.Debug().Str("base_url", c.config.BaseURL).Msg("HTTP session opened")
	}

	return c.session, nil
}

// Get performs a GET request against endpoint and returns the status code and body.
// Only network failures are returned as errors; status handling is left to the caller.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (int, []byte, error) {
	session, err := c.restySession()
	if err != nil {
		return 0, nil, err
	}

	label := endpointLabel(endpoint)
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(label).Observe(time.Since(startTime).Seconds())
	}()

	req := session.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("query", query.Encode()).
		Msg("Executing Gamma request")

	resp, err := req.Get(endpoint)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(label, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return 0, nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	requestsTotal.WithLabelValues(label, strconv.Itoa(resp.StatusCode())).Inc()
	return resp.StatusCode(), resp.Body(), nil
}

// fetchJSON performs a GET request and returns the body of a 200 response.
func (c *Client) fetchJSON(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	status, body, err := c.Get(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		apiErr := &RemoteAPIError{
			StatusCode: status,
			Endpoint:   endpoint,
			ErrorClass: classifyStatus(status),
			Body:       readBodySnippet(body),
		}
		errorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", status).
			Str("error_class", string(apiErr.ErrorClass)).
			Msg("Gamma request error")
		return nil, apiErr
	}

	return body, nil
}

// FetchPage fetches one page of a collection endpoint.
// It implements pagination.PageFetcher.
func (c *Client) FetchPage(ctx context.Context, req pagination.PageRequest) ([]pagination.Record, error) {
	body, err := c.fetchJSON(ctx, req.Endpoint, req.Query())
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(req.Endpoint, body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Warn().
			Err(err).
			Str("endpoint", req.Endpoint).
			Int("offset", req.Offset).
			Msg("Failed to decode page")
		return nil, err
	}

	return records, nil
}

// decodeRecords decodes a JSON array of objects.
func decodeRecords(endpoint string, body []byte) ([]pagination.Record, error) {
	var records []pagination.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	if records == nil {
		records = []pagination.Record{}
	}
	return records, nil
}

// decodeRecord decodes a single JSON object.
func decodeRecord(endpoint string, body []byte) (pagination.Record, error) {
	var record pagination.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	if record == nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("empty response body")}
	}
	return record, nil
}

// Paginator returns the paginator bound to this client.
func (c *Client) Paginator() *pagination.Paginator {
	return c.paginator
}

// Close releases the HTTP session. It is safe to call more than once;
// requests made after Close fail with ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.session != nil {
		c.session.GetClient().CloseIdleConnections()
		c.session = nil
		c.logger.Debug().Msg("HTTP session released")
	}

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
// It must be called before the first request.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpClient = client
}

// SessionOpen reports whether the HTTP session is currently open (for testing).
func (c *Client) SessionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// endpointLabel collapses per-item paths such as /markets/123 to /markets/:id
// to keep metric cardinality bounded.
func endpointLabel(endpoint string) string {
	trimmed := strings.Trim(endpoint, "/")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return "/" + trimmed[:i] + "/:id"
	}
	return "/" + trimmed
}

// restyLogger routes resty's internal messages to zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
