package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Sternrassler/gamma-markets-client/internal/config"
	"github.com/Sternrassler/gamma-markets-client/pkg/client"
	"github.com/Sternrassler/gamma-markets-client/pkg/dump"
	"github.com/Sternrassler/gamma-markets-client/pkg/logging"
	"github.com/Sternrassler/gamma-markets-client/pkg/metrics"
	"github.com/Sternrassler/gamma-markets-client/pkg/pagination"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger(logging.ComponentCLI)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("Fetch failed")
		stop()
		os.Exit(1)
	}
}

// summary is the JSON document written by gamma-fetch.
type summary struct {
	Endpoint    string              `json:"endpoint"`
	PageSize    int                 `json:"page_size"`
	Pages       int                 `json:"pages"`
	EarlyStop   bool                `json:"early_stop"`
	StopOffset  int                 `json:"stop_offset,omitempty"`
	FailedPages []failedPage        `json:"failed_pages,omitempty"`
	RecordCount int                 `json:"record_count"`
	Records     []pagination.Record `json:"records"`
}

type failedPage struct {
	Offset int    `json:"offset"`
	Error  string `json:"error"`
}

// run fetches all current items of the configured resource and writes the
// summary to out, or to the dump sink when one is configured.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := logging.NewLogger(logging.ComponentCLI)

	clientCfg := client.DefaultConfig()
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.UserAgent = cfg.UserAgent
	clientCfg.Timeout = cfg.Timeout
	clientCfg.PageCap = cfg.PageCap

	gamma, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer gamma.Close()

	sink, closeSink, err := openSink(cfg)
	if err != nil {
		return fmt.Errorf("open dump sink: %w", err)
	}
	defer closeSink()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	logger.Info().
		Str("endpoint", cfg.Endpoint()).
		Int("page_size", cfg.PageSize).
		Int("max_pages", cfg.MaxPages).
		Str("dump", sink.Type()).
		Msg("Fetching all current items")

	session, err := gamma.Paginator().Run(ctx, cfg.Endpoint(), client.CurrentFilter(), cfg.PageSize, cfg.MaxPages)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(newSummary(session), "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	if sink.Type() == dump.TypeNone {
		_, err = fmt.Fprintln(out, string(payload))
		return err
	}

	key := cfg.Resource + "-current.json"
	if err := sink.Write(ctx, key, payload); err != nil {
		return fmt.Errorf("dump summary: %w", err)
	}
	dumpLogger := logging.NewLogger(logging.ComponentDump)
	dumpLogger.Info().
		Str("sink", sink.Type()).
		Str("key", key).
		Int("records", session.Len()).
		Msg("Dumped fetch summary")
	return nil
}

func newSummary(session *pagination.Session) summary {
	s := summary{
		Endpoint:    session.Endpoint,
		PageSize:    session.PageSize,
		Pages:       session.PagesAttempted,
		EarlyStop:   session.EarlyStop,
		RecordCount: session.Len(),
		Records:     session.Records(),
	}
	if session.EarlyStop {
		s.StopOffset = session.StopOffset
	}
	for _, failure := range session.Failures {
		s.FailedPages = append(s.FailedPages, failedPage{
			Offset: failure.Request.Offset,
			Error:  failure.Err.Error(),
		})
	}
	return s
}

// openSink creates the configured dump sink and a function releasing it
// together with any Redis connection it owns.
func openSink(cfg *config.Config) (dump.Sink, func(), error) {
	opts := dump.Options{}

	var rdb *redis.Client
	if strings.EqualFold(strings.TrimSpace(cfg.DumpType), dump.TypeRedis) {
		var err error
		rdb, err = newRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		opts.Redis = rdb
		opts.KeyPrefix = cfg.DumpTarget
	}

	sink, err := dump.NewSink(cfg.DumpType, cfg.DumpTarget, opts)
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return nil, nil, err
	}

	closeSink := func() {
		if err := sink.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close dump sink")
		}
		if rdb != nil {
			rdb.Close()
		}
	}
	return sink, closeSink, nil
}

// newRedisClient accepts either a redis:// URL or a bare host:port address.
func newRedisClient(redisURL string) (*redis.Client, error) {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return nil, errors.New("redis url is required for the redis dump sink")
	}

	if strings.Contains(redisURL, "://") {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	}

	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}
