package pagination

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"
)

// Query parameter names used for offset/limit paging.
const (
	ParamLimit  = "limit"
	ParamOffset = "offset"
)

// Record is one raw, schema-agnostic item of a remote collection.
type Record = map[string]any

// Filter holds the query parameters shared by every page of a fetch.
// Values may be strings, booleans, integers, floats or fmt.Stringer.
type Filter map[string]any

// Values serializes the filter as URL query parameters.
func (f Filter) Values() url.Values {
	values := make(url.Values, len(f))
	for key, value := range f {
		values.Set(key, formatValue(value))
	}
	return values
}

// formatValue renders a scalar the way the Gamma API expects it in a query string.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// PageRequest addresses one page of a collection endpoint.
// Build it with NewPageRequest; the filter is copied so later changes
// to the caller's map do not leak into an issued request.
type PageRequest struct {
	Endpoint string
	Filter   Filter
	Limit    int
	Offset   int
}

// NewPageRequest creates a request for the page at offset with the given limit.
func NewPageRequest(endpoint string, filter Filter, limit, offset int) PageRequest {
	return PageRequest{
		Endpoint: endpoint,
		Filter:   maps.Clone(filter),
		Limit:    limit,
		Offset:   offset,
	}
}

// Index returns the zero-based page index of the request.
func (r PageRequest) Index() int {
	if r.Limit <= 0 {
		return 0
	}
	return r.Offset / r.Limit
}

// Query returns the full query string parameters for the request.
// limit and offset always override same-named filter keys.
func (r PageRequest) Query() url.Values {
	values := r.Filter.Values()
	values.Set(ParamLimit, strconv.Itoa(r.Limit))
	values.Set(ParamOffset, strconv.Itoa(r.Offset))
	return values
}

// String renders the request as endpoint?query for logs and errors.
func (r PageRequest) String() string {
	return r.Endpoint + "?" + r.Query().Encode()
}
