package models

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Record kinds reported by ParseError and gamma_parse_failures_total.
const (
	KindMarket = "market"
	KindEvent  = "event"
)

var parseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gamma_parse_failures_total",
	Help: "Total raw records that could not be parsed by kind",
}, []string{"kind"})

// ErrMissingID is returned for records without an id.
var ErrMissingID = errors.New("missing id")

// ParseError reports a raw record that could not be turned into a typed model.
type ParseError struct {
	Kind  string
	Index int
	ID    string
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("parse %s %s (index %d): %v", e.Kind, e.ID, e.Index, e.Err)
	}
	return fmt.Sprintf("parse %s (index %d): %v", e.Kind, e.Index, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseMarket converts a raw market record.
func ParseMarket(record map[string]any) (Market, error) {
	var market Market
	if err := convert(record, &market); err != nil {
		return Market{}, err
	}
	if market.ID == "" {
		return Market{}, ErrMissingID
	}
	return market, nil
}

// ParseEvent converts a raw event record.
func ParseEvent(record map[string]any) (Event, error) {
	var event Event
	if err := convert(record, &event); err != nil {
		return Event{}, err
	}
	if event.ID == "" {
		return Event{}, ErrMissingID
	}
	return event, nil
}

// ParseMarkets converts raw market records. Records that fail are skipped;
// the returned error joins one *ParseError per skipped record.
func ParseMarkets(records []map[string]any) ([]Market, error) {
	return parseAll(KindMarket, records, ParseMarket)
}

// ParseEvents converts raw event records. Records that fail are skipped;
// the returned error joins one *ParseError per skipped record.
func ParseEvents(records []map[string]any) ([]Event, error) {
	return parseAll(KindEvent, records, ParseEvent)
}

func parseAll[T any](kind string, records []map[string]any, parse func(map[string]any) (T, error)) ([]T, error) {
	out := make([]T, 0, len(records))
	var errs []error

	for i, record := range records {
		item, err := parse(record)
		if err != nil {
			parseErr := &ParseError{Kind: kind, Index: i, ID: recordID(record), Err: err}
			errs = append(errs, parseErr)
			parseFailures.WithLabelValues(kind).Inc()
			log.Warn().
				Err(err).
				Str("kind", kind).
				Int("index", i).
				Str("id", parseErr.ID).
				Msg("Skipping record that failed to parse")
			continue
		}
		out = append(out, item)
	}

	return out, errors.Join(errs...)
}

// convert re-encodes a generic record into a typed model.
func convert(record map[string]any, out any) error {
	if record == nil {
		return errors.New("nil record")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

func recordID(record map[string]any) string {
	if record == nil {
		return ""
	}
	if id, ok := record["id"]; ok && id != nil {
		return fmt.Sprint(id)
	}
	return ""
}
