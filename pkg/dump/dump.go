// Package dump persists raw Gamma responses for debugging.
//
// A Sink stores an opaque payload under a key. The file sink mirrors the
// behaviour of writing a response to a local path; the Redis and bbolt
// sinks keep the payloads next to other tooling state.
package dump

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Sink types accepted by NewSink.
const (
	TypeNone  = "none"
	TypeFile  = "file"
	TypeRedis = "redis"
	TypeBolt  = "bbolt"
)

// ErrUnsupportedSink is returned by NewSink for unknown sink types.
var ErrUnsupportedSink = errors.New("unsupported dump sink")

var writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gamma_dump_writes_total",
	Help: "Total raw response dumps by sink and result",
}, []string{"sink", "result"})

// Sink stores raw response payloads.
type Sink interface {
	Type() string
	Write(ctx context.Context, key string, payload []byte) error
	Close() error
}

// Options configures sink construction.
type Options struct {
	// Redis is required for the redis sink.
	Redis redis.UniversalClient

	// KeyPrefix is prepended to keys by the redis sink.
	KeyPrefix string

	// TTL of redis entries (0 keeps them forever).
	TTL time.Duration
}

// NewSink creates the configured sink. target is a directory for the file
// sink and a database path for the bbolt sink; it is ignored otherwise.
func NewSink(typ, target string, opts Options) (Sink, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	var (
		sink Sink
		err  error
	)
	switch typ {
	case "", TypeNone, "disabled":
		return noopSink{}, nil
	case TypeFile:
		sink, err = NewFileSink(target)
	case TypeRedis:
		sink, err = NewRedisSink(opts.Redis, opts.KeyPrefix, opts.TTL)
	case TypeBolt:
		if strings.TrimSpace(target) == "" {
			return nil, fmt.Errorf("bbolt sink requires a path")
		}
		sink, err = OpenBoltSink(target)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedSink, typ)
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// record updates the write counter for sink.
func record(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	writesTotal.WithLabelValues(sink, result).Inc()
}

type noopSink struct{}

func (noopSink) Type() string                                { return TypeNone }
func (noopSink) Write(context.Context, string, []byte) error { return nil }
func (noopSink) Close() error                                { return nil }
