package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Sternrassler/gamma-markets-client/pkg/dump"
	"github.com/Sternrassler/gamma-markets-client/pkg/models"
	"github.com/Sternrassler/gamma-markets-client/pkg/pagination"
)

// Gamma collection endpoints.
const (
	MarketsEndpoint = "/markets"
	EventsEndpoint  = "/events"
)

// Defaults of the "all current" helpers.
const (
	DefaultPageSize = 100
	DefaultMaxPages = 10
)

// GetOptions selects the output mode of GetMarkets and GetEvents.
// Parse and Dump are mutually exclusive.
type GetOptions struct {
	// Parse fills Result.Markets or Result.Events with typed models.
	Parse bool

	// Dump stores the raw response body instead of returning records.
	// A nil sink or one of type dump.TypeNone selects no dump mode.
	Dump dump.Sink

	// DumpKey names the dump entry (default: "<collection>.json").
	DumpKey string
}

func (o GetOptions) dumping() bool {
	return o.Dump != nil && o.Dump.Type() != dump.TypeNone
}

func (o GetOptions) validate() error {
	if o.Parse && o.dumping() {
		return &ConfigurationError{Message: `cannot use "parse" and "dump" output modes simultaneously`}
	}
	return nil
}

// Result is the outcome of a single collection request.
type Result struct {
	// Records holds the raw records (empty in dump mode).
	Records []pagination.Record

	// Markets is set by GetMarkets in parse mode.
	Markets []models.Market

	// Events is set by GetEvents in parse mode.
	Events []models.Event

	// ParseErr joins the errors of records skipped in parse mode.
	ParseErr error

	// DumpKey is the key the body was stored under in dump mode.
	DumpKey string
}

// CurrentFilter selects active, open, unarchived items.
func CurrentFilter() pagination.Filter {
	return pagination.Filter{
		"active":   true,
		"closed":   false,
		"archived": false,
	}
}

// GetMarkets fetches one request's worth of markets.
func (c *Client) GetMarkets(ctx context.Context, filter pagination.Filter, opts GetOptions) (*Result, error) {
	result, err := c.getCollection(ctx, MarketsEndpoint, filter, opts)
	if err != nil || !opts.Parse {
		return result, err
	}

	result.Markets, result.ParseErr = models.ParseMarkets(result.Records)
	c.logParseErrors(MarketsEndpoint, result.ParseErr)
	return result, nil
}

// GetEvents fetches one request's worth of events.
func (c *Client) GetEvents(ctx context.Context, filter pagination.Filter, opts GetOptions) (*Result, error) {
	result, err := c.getCollection(ctx, EventsEndpoint, filter, opts)
	if err != nil || !opts.Parse {
		return result, err
	}

	result.Events, result.ParseErr = models.ParseEvents(result.Records)
	c.logParseErrors(EventsEndpoint, result.ParseErr)
	return result, nil
}

// getCollection fetches and decodes a collection endpoint, dumping the raw
// body instead of returning it when a sink is configured.
func (c *Client) getCollection(ctx context.Context, endpoint string, filter pagination.Filter, opts GetOptions) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	body, err := c.fetchJSON(ctx, endpoint, filter.Values())
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(endpoint, body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, err
	}

	if opts.dumping() {
		key := opts.DumpKey
		if key == "" {
			key = strings.Trim(endpoint, "/") + ".json"
		}
		if err := opts.Dump.Write(ctx, key, body); err != nil {
			return nil, fmt.Errorf("dump %s to %s sink: %w", endpoint, opts.Dump.Type(), err)
		}
		c.logger.Info().
			Str("endpoint", endpoint).
			Str("sink", opts.Dump.Type()).
			Str("key", key).
			Int("records", len(records)).
			Msg("Dumped raw response")
		return &Result{Records: []pagination.Record{}, DumpKey: key}, nil
	}

	return &Result{Records: records}, nil
}

func (c *Client) logParseErrors(endpoint string, err error) {
	if err == nil {
		return
	}
	c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Some records could not be parsed")
}

// AllMarkets fetches up to limit markets without any filter.
func (c *Client) AllMarkets(ctx context.Context, limit int) ([]pagination.Record, error) {
	return c.records(c.GetMarkets(ctx, pagination.Filter{pagination.ParamLimit: limit}, GetOptions{}))
}

// AllEvents fetches up to limit events without any filter.
func (c *Client) AllEvents(ctx context.Context, limit int) ([]pagination.Record, error) {
	return c.records(c.GetEvents(ctx, pagination.Filter{pagination.ParamLimit: limit}, GetOptions{}))
}

// CurrentMarkets fetches up to limit active markets.
func (c *Client) CurrentMarkets(ctx context.Context, limit int) ([]pagination.Record, error) {
	filter := CurrentFilter()
	filter[pagination.ParamLimit] = limit
	return c.records(c.GetMarkets(ctx, filter, GetOptions{}))
}

// CurrentEvents fetches up to limit active events.
func (c *Client) CurrentEvents(ctx context.Context, limit int) ([]pagination.Record, error) {
	filter := CurrentFilter()
	filter[pagination.ParamLimit] = limit
	return c.records(c.GetEvents(ctx, filter, GetOptions{}))
}

// ClobTradableMarkets fetches up to limit active markets with an enabled order book.
func (c *Client) ClobTradableMarkets(ctx context.Context, limit int) ([]pagination.Record, error) {
	filter := CurrentFilter()
	filter[pagination.ParamLimit] = limit
	filter["enableOrderBook"] = true
	return c.records(c.GetMarkets(ctx, filter, GetOptions{}))
}

// AllCurrentMarkets fetches every page of active markets concurrently.
func (c *Client) AllCurrentMarkets(ctx context.Context, pageSize, maxPages int) ([]pagination.Record, error) {
	return c.paginator.FetchAll(ctx, MarketsEndpoint, CurrentFilter(), pageSize, maxPages)
}

// AllCurrentEvents fetches every page of active events concurrently.
func (c *Client) AllCurrentEvents(ctx context.Context, pageSize, maxPages int) ([]pagination.Record, error) {
	return c.paginator.FetchAll(ctx, EventsEndpoint, CurrentFilter(), pageSize, maxPages)
}

// Market fetches a single market by id.
func (c *Client) Market(ctx context.Context, id string) (pagination.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ConfigurationError{Message: "market id is required"}
	}

	endpoint := MarketsEndpoint + "/" + url.PathEscape(id)
	body, err := c.fetchJSON(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(endpoint, body)
}

func (c *Client) records(result *Result, err error) ([]pagination.Record, error) {
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}
